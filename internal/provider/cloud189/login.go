package cloud189

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"signin_engine/internal/model"
	"signin_engine/internal/provider"
	"signin_engine/internal/report"
	"signin_engine/internal/utils"
)

const loginReferer = "https://open.e.189.cn/"

type loginSubmitResponse struct {
	Result json.RawMessage `json:"result"`
	Msg    string          `json:"msg"`
	ToURL  string          `json:"toUrl"`
}

// Login 完成一次完整的网页登录，成功后返回带登录态的会话。
// 每次调用都使用全新的 Cookie，失败时不会留下可复用的会话。
func (p *Provider) Login(ctx context.Context, account model.Account) (provider.Session, error) {
	masked := report.MaskIdentifier(account.Username)
	client, err := p.newClient()
	if err != nil {
		return nil, err
	}

	tokens, err := p.resolver.Resolve(ctx, client)
	if err != nil {
		return nil, err
	}
	client.SetHeader("lt", tokens.LoginTicket)

	creds, err := utils.EncryptCredentials(tokens.PublicKey, account)
	if err != nil {
		return nil, err
	}

	loginUA := p.cfg.LoginUserAgent
	if loginUA == "" {
		loginUA = utils.DefaultLoginUserAgent()
	}
	resp, err := client.R().
		SetContext(ctx).
		SetHeader("User-Agent", loginUA).
		SetHeader("Referer", loginReferer).
		SetFormData(map[string]string{
			"appKey":       "cloud",
			"accountType":  "01",
			"userName":     creds.Username,
			"password":     creds.Password,
			"validateCode": "",
			"captchaToken": tokens.CaptchaToken,
			"returnUrl":    tokens.ReturnURL,
			"mailSuffix":   "@189.cn",
			"paramId":      tokens.ParamID,
		}).
		Post(p.cfg.LoginSubmitURL)
	if err != nil {
		return nil, fmt.Errorf("submit login: %w", err)
	}

	var out loginSubmitResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("decode login response (HTTP %d): %w", resp.StatusCode(), err)
	}
	if !resultIsZero(out.Result) {
		msg := strings.TrimSpace(out.Msg)
		if msg == "" {
			msg = "未知错误"
		}
		return nil, &LoginFailedError{Message: msg}
	}
	if strings.TrimSpace(out.ToURL) == "" {
		return nil, &LoginFailedError{Message: "登录响应缺少跳转地址"}
	}

	if _, err := client.R().SetContext(ctx).Get(out.ToURL); err != nil {
		return nil, fmt.Errorf("follow login redirect: %w", err)
	}

	p.bus.Log("info", "登录成功", map[string]any{"account": masked})
	return &Session{client: client, cfg: p.cfg, now: p.now}, nil
}

// resultIsZero 兼容 result 为数字或字符串两种写法。
func resultIsZero(raw json.RawMessage) bool {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	return s == "0"
}

// IsLoginFailure 判断错误是否为服务端明确拒绝登录。
func IsLoginFailure(err error) bool {
	var lf *LoginFailedError
	return errors.As(err, &lf)
}
