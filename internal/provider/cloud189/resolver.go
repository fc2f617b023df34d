package cloud189

import (
	"context"
	"fmt"
	"html"
	"net/url"

	"github.com/go-resty/resty/v2"

	"signin_engine/internal/logbus"
	"signin_engine/internal/model"
)

// Resolver 沿着 入口页 -> 动态登录页 -> 登录框 三跳拿到提交登录所需的全部字段。
// 三个阶段的提取规则都可以单独替换。
type Resolver struct {
	TokenPageURL string
	Redirect     FieldExtractor
	LoginEntry   FieldExtractor
	Tokens       []FieldExtractor

	bus *logbus.Bus
}

func NewResolver(tokenPageURL string, bus *logbus.Bus) *Resolver {
	return &Resolver{
		TokenPageURL: tokenPageURL,
		Redirect:     RedirectExtractor,
		LoginEntry:   LoginEntryExtractor,
		Tokens:       DefaultTokenExtractors(),
		bus:          bus,
	}
}

// SetTokenExtractor 替换（或新增）某个字段的提取规则。
func (r *Resolver) SetTokenExtractor(e FieldExtractor) {
	for i := range r.Tokens {
		if r.Tokens[i].Field == e.Field {
			r.Tokens[i] = e
			return
		}
	}
	r.Tokens = append(r.Tokens, e)
}

// Resolve 用传入的客户端依次请求三个页面，client 上的 Cookie 会在各跳之间保留。
func (r *Resolver) Resolve(ctx context.Context, client *resty.Client) (model.TokenSet, error) {
	body, _, err := r.fetch(ctx, client, r.TokenPageURL)
	if err != nil {
		return model.TokenSet{}, fmt.Errorf("fetch token page: %w", err)
	}
	redirectURL, ok := r.Redirect.Extract(body)
	if !ok {
		return model.TokenSet{}, ErrRedirectNotFound
	}

	body, base, err := r.fetch(ctx, client, redirectURL)
	if err != nil {
		return model.TokenSet{}, fmt.Errorf("fetch redirect page: %w", err)
	}
	href, ok := r.LoginEntry.Extract(body)
	if !ok {
		return model.TokenSet{}, ErrLoginEntryNotFound
	}
	loginURL := resolveRef(base, html.UnescapeString(href))

	body, _, err = r.fetch(ctx, client, loginURL)
	if err != nil {
		return model.TokenSet{}, fmt.Errorf("fetch login page: %w", err)
	}
	tokens, err := ExtractTokenSet(body, r.Tokens)
	if err != nil {
		return model.TokenSet{}, err
	}
	r.bus.Log("debug", "登录参数解析完成", map[string]any{"paramId": tokens.ParamID})
	return tokens, nil
}

// fetch 返回响应正文以及跟随跳转之后的最终地址。
func (r *Resolver) fetch(ctx context.Context, client *resty.Client, target string) (string, *url.URL, error) {
	resp, err := client.R().SetContext(ctx).Get(target)
	if err != nil {
		return "", nil, err
	}
	var final *url.URL
	if resp.RawResponse != nil && resp.RawResponse.Request != nil {
		final = resp.RawResponse.Request.URL
	}
	return resp.String(), final, nil
}

func resolveRef(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
