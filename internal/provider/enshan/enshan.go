// Package enshan 查询恩山论坛的积分页。登录态完全来自用户提供的 Cookie，
// 访问积分页即完成当日签到。
package enshan

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"signin_engine/internal/config"
	"signin_engine/internal/logbus"
	"signin_engine/internal/model"
	"signin_engine/internal/utils"
)

const (
	TitleSuccess   = "恩山签到成功"
	TitleFailure   = "恩山签到失败"
	failureContent = "获取恩山积分信息失败，请检查Cookie是否有效"
	forumReferer   = "https://www.right.com.cn/FORUM/"
)

var (
	coinPattern  = regexp.MustCompile(`(?i)恩山币[^:]*:\s*</em>([^<&]+)`)
	pointPattern = regexp.MustCompile(`(?i)积分[^:]*:\s*</em>([^<&]+)`)
)

// Credit 是积分页上的两个数值。Found=false 表示所有尝试都没有拿到。
type Credit struct {
	Coin  string
	Point string
	Found bool
}

type Client struct {
	cfg      config.EnshanConfig
	proxyCfg config.ProxyConfig
	bus      *logbus.Bus
	sleep    utils.SleepFunc
}

func New(cfg config.EnshanConfig, proxyCfg config.ProxyConfig, bus *logbus.Bus) *Client {
	return &Client{cfg: cfg, proxyCfg: proxyCfg, bus: bus, sleep: utils.Sleep}
}

// WithSleep 替换重试间隔的等待实现。
func (c *Client) WithSleep(sleep utils.SleepFunc) *Client {
	if sleep != nil {
		c.sleep = sleep
	}
	return c
}

func (c *Client) newClient() *resty.Client {
	client := resty.New().
		SetTimeout(c.cfg.Timeout()).
		SetRetryCount(0).
		SetHeaders(map[string]string{
			"User-Agent":                utils.DefaultEnshanUserAgent(),
			"Cookie":                    model.CookieHeader(model.ParseCookieHeader(c.cfg.Cookie)),
			"Referer":                   forumReferer,
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"Accept-Language":           "zh-CN,zh;q=0.8,zh-TW;q=0.7,zh-HK;q=0.5,en-US;q=0.3,en;q=0.2",
			"Upgrade-Insecure-Requests": "1",
		})
	if c.proxyCfg.Global != "" {
		client.SetProxy(c.proxyCfg.Global)
	}
	return client
}

// FetchCredit 最多请求 MaxRetries 次，两次之间固定等待 RetryDelay。
// 网络错误、非 200 和页面里找不到数值都会触发重试；全部失败时返回 Found=false 而不是错误。
// 只有 ctx 被取消时才返回 error。
func (c *Client) FetchCredit(ctx context.Context) (Credit, error) {
	client := c.newClient()
	attempts := c.cfg.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		credit, err := c.fetchOnce(ctx, client)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return Credit{}, ctx.Err()
			}
			c.bus.Log("error", "第"+strconv.Itoa(attempt)+"次请求失败", map[string]any{"error": err.Error()})
		case credit.Found:
			return credit, nil
		default:
			c.bus.Log("warn", "第"+strconv.Itoa(attempt)+"次尝试: 未找到积分信息，可能是页面结构变化或Cookie失效", nil)
		}

		if attempt < attempts {
			if !c.sleep(ctx, c.cfg.RetryDelay()) {
				return Credit{}, ctx.Err()
			}
		}
	}
	return Credit{}, nil
}

func (c *Client) fetchOnce(ctx context.Context, client *resty.Client) (Credit, error) {
	resp, err := client.R().SetContext(ctx).Get(c.cfg.CreditURL)
	if err != nil {
		return Credit{}, err
	}
	if resp.StatusCode() != http.StatusOK {
		return Credit{}, fmt.Errorf("unexpected status %d", resp.StatusCode())
	}
	return ParseCredit(resp.String()), nil
}

// ParseCredit 两个数值必须同时存在才算找到。
func ParseCredit(body string) Credit {
	coin := coinPattern.FindStringSubmatch(body)
	point := pointPattern.FindStringSubmatch(body)
	if coin == nil || point == nil {
		return Credit{}
	}
	return Credit{
		Coin:  strings.TrimSpace(coin[1]),
		Point: strings.TrimSpace(point[1]),
		Found: true,
	}
}

func Notification(c Credit) model.NotificationPayload {
	if !c.Found {
		return model.NotificationPayload{Title: TitleFailure, Body: failureContent}
	}
	return model.NotificationPayload{
		Title: TitleSuccess,
		Body:  "恩山币：" + c.Coin + "\n积分：" + c.Point,
	}
}
