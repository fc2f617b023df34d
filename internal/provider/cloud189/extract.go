package cloud189

import (
	"regexp"

	"signin_engine/internal/model"
)

const (
	FieldRedirectURL  = "redirectURL"
	FieldLoginEntry   = "loginEntry"
	FieldCaptchaToken = "captchaToken"
	FieldLoginTicket  = "lt"
	FieldReturnURL    = "returnUrl"
	FieldParamID      = "paramId"
	FieldPublicKey    = "j_rsaKey"
)

// tokenFields 是提交登录必需的字段，顺序即报错时的检查顺序。
var tokenFields = []string{
	FieldCaptchaToken,
	FieldLoginTicket,
	FieldReturnURL,
	FieldParamID,
	FieldPublicKey,
}

// FieldExtractor 从 HTML 中提取一个字段。页面改版时只需要替换对应的一条规则。
// 有捕获组时取第一个捕获组，否则取整个匹配。
type FieldExtractor struct {
	Field   string
	Pattern *regexp.Regexp
}

func (e FieldExtractor) Extract(body string) (string, bool) {
	if e.Pattern == nil {
		return "", false
	}
	m := e.Pattern.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	v := m[0]
	if len(m) > 1 {
		v = m[1]
	}
	return v, v != ""
}

var (
	RedirectExtractor = FieldExtractor{
		Field:   FieldRedirectURL,
		Pattern: regexp.MustCompile(`https?://[^\s'"]+`),
	}
	LoginEntryExtractor = FieldExtractor{
		Field:   FieldLoginEntry,
		Pattern: regexp.MustCompile(`<a id="j-tab-login-link"[^>]*href="([^"]+)"`),
	}
)

func DefaultTokenExtractors() []FieldExtractor {
	return []FieldExtractor{
		{Field: FieldCaptchaToken, Pattern: regexp.MustCompile(`captchaToken' value='(.+?)'`)},
		{Field: FieldLoginTicket, Pattern: regexp.MustCompile(`lt = "(.+?)"`)},
		{Field: FieldReturnURL, Pattern: regexp.MustCompile(`returnUrl= '(.+?)'`)},
		{Field: FieldParamID, Pattern: regexp.MustCompile(`paramId = "(.+?)"`)},
		{Field: FieldPublicKey, Pattern: regexp.MustCompile(`j_rsaKey" value="([^"\s]+)"`)},
	}
}

// ExtractTokenSet 要么返回完整的 TokenSet，要么返回 *TokenExtractionError，不会返回半成品。
// 同一字段配置了多条规则时以最后一条为准。
func ExtractTokenSet(body string, extractors []FieldExtractor) (model.TokenSet, error) {
	byField := make(map[string]FieldExtractor, len(extractors))
	for _, e := range extractors {
		byField[e.Field] = e
	}

	values := make(map[string]string, len(tokenFields))
	for _, field := range tokenFields {
		e, ok := byField[field]
		if !ok {
			return model.TokenSet{}, &TokenExtractionError{Field: field}
		}
		v, ok := e.Extract(body)
		if !ok {
			return model.TokenSet{}, &TokenExtractionError{Field: field}
		}
		values[field] = v
	}

	return model.TokenSet{
		CaptchaToken: values[FieldCaptchaToken],
		LoginTicket:  values[FieldLoginTicket],
		ReturnURL:    values[FieldReturnURL],
		ParamID:      values[FieldParamID],
		PublicKey:    values[FieldPublicKey],
	}, nil
}
