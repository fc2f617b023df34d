package cloud189

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"signin_engine/internal/config"
	"signin_engine/internal/logbus"
	"signin_engine/internal/utils"
)

type Provider struct {
	cfg      config.Cloud189Config
	proxyCfg config.ProxyConfig
	bus      *logbus.Bus
	resolver *Resolver
	now      func() time.Time
}

func New(cfg config.Cloud189Config, proxyCfg config.ProxyConfig, bus *logbus.Bus) *Provider {
	return &Provider{
		cfg:      cfg,
		proxyCfg: proxyCfg,
		bus:      bus,
		resolver: NewResolver(cfg.TokenPageURL, bus),
		now:      time.Now,
	}
}

func (p *Provider) Name() string { return "cloud189" }

// Resolver 暴露给调用方，以便替换单个字段的提取规则。
func (p *Provider) Resolver() *Resolver { return p.resolver }

// newClient 每次登录尝试都新建客户端和 Cookie，避免不同账号之间串会话。
// 登录链路上的请求不自动重试：失败就放弃这个账号，防止触发风控。
func (p *Provider) newClient() (*resty.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	client := resty.New().
		SetTimeout(p.cfg.Timeout()).
		SetCookieJar(jar).
		SetRetryCount(0)

	if p.proxyCfg.Global != "" {
		client.SetProxy(p.proxyCfg.Global)
	}

	ua := p.cfg.LoginUserAgent
	if ua == "" {
		ua = utils.DefaultLoginUserAgent()
	}
	client.SetHeader("User-Agent", ua)

	// 签到接口要求 Host 与 URL 不一致，net/http 只认 Request.Host。
	client.SetPreRequestHook(func(_ *resty.Client, req *http.Request) error {
		if h := req.Header.Get("Host"); h != "" {
			req.Host = h
		}
		return nil
	})

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if p.bus != nil {
			p.bus.Log("debug", "http request", map[string]any{
				"method": req.Method,
				"url":    redactQuery(req.URL),
			})
		}
		return nil
	})

	return client, nil
}

// redactQuery 去掉查询串再写日志，查询串里可能带着一次性令牌。
func redactQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
