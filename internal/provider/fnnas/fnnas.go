// Package fnnas 完成飞牛论坛的每日打卡。打卡链接里带有页面动态生成的 sign 参数，
// 必须先打开打卡页拿到它。
package fnnas

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"signin_engine/internal/config"
	"signin_engine/internal/logbus"
	"signin_engine/internal/model"
	"signin_engine/internal/utils"
)

const (
	TitleSuccess = "飞牛论坛打卡成功"
	TitleForum   = "飞牛论坛"
	TitleFailure = "飞牛签到失败"

	markerSuccess = "恭喜您，打卡成功！"
	markerAlready = "您今天已经打过卡了"
)

var (
	ErrSignLinkNotFound  = errors.New("无法从页面中找到签到链接(可能Cookie失效或页面改版)")
	ErrSignParamNotFound = errors.New("从签到链接中提取sign参数失败")
	errNoDetails         = errors.New("未找到签到详情信息，页面结构可能已变更")

	signPattern = regexp.MustCompile(`sign=([a-f0-9]+)`)

	// detailLabels 是打卡页统计区里要汇报的条目，按此顺序输出。
	detailLabels = []string{"最近打卡", "本月打卡", "连续打卡", "累计打卡", "累计奖励", "最近奖励", "当前打卡等级"}
)

// Report 是一次打卡的结果和要推送的内容。
type Report struct {
	Outcome model.Outcome
	Payload model.NotificationPayload
}

type Client struct {
	cfg      config.FNNASConfig
	proxyCfg config.ProxyConfig
	bus      *logbus.Bus
}

func New(cfg config.FNNASConfig, proxyCfg config.ProxyConfig, bus *logbus.Bus) *Client {
	return &Client{cfg: cfg, proxyCfg: proxyCfg, bus: bus}
}

func (c *Client) newClient() *resty.Client {
	client := resty.New().
		SetTimeout(c.cfg.Timeout()).
		SetRetryCount(0).
		SetHeader("User-Agent", utils.DefaultBrowserUserAgent()).
		SetHeader("Cookie", model.CookieHeader(model.ParseCookieHeader(c.cfg.Cookie)))
	if c.proxyCfg.Global != "" {
		client.SetProxy(c.proxyCfg.Global)
	}
	return client
}

// CheckIn 只有 ctx 被取消时返回 error，其余失败都体现在 Report 里。
func (c *Client) CheckIn(ctx context.Context) (Report, error) {
	client := c.newClient()

	sign, err := c.discoverSign(ctx, client)
	if err != nil {
		if ctx.Err() != nil {
			return Report{}, ctx.Err()
		}
		c.bus.Log("error", "获取动态sign参数失败", map[string]any{"error": err.Error()})
		return failed(TitleFailure, "获取动态sign参数失败: "+err.Error()), nil
	}
	c.bus.Log("info", "动态sign参数获取成功", map[string]any{"sign": sign})

	signURL, err := withSign(c.cfg.SignPageURL, sign)
	if err != nil {
		return failed(TitleForum, "签到请求失败: "+err.Error()), nil
	}
	resp, err := client.R().SetContext(ctx).Get(signURL)
	if err != nil {
		if ctx.Err() != nil {
			return Report{}, ctx.Err()
		}
		return failed(TitleForum, "签到请求失败: "+err.Error()), nil
	}

	body := resp.String()
	switch {
	case strings.Contains(body, markerSuccess):
		c.bus.Log("info", "打卡成功", nil)
		details, err := c.fetchDetails(ctx, client)
		if err != nil {
			if ctx.Err() != nil {
				return Report{}, ctx.Err()
			}
			c.bus.Log("warn", "获取打卡信息失败", map[string]any{"error": err.Error()})
			return Report{
				Outcome: model.OutcomeSuccess,
				Payload: model.NotificationPayload{Title: TitleForum, Body: "获取打卡信息失败: " + err.Error()},
			}, nil
		}
		return Report{
			Outcome: model.OutcomeSuccess,
			Payload: model.NotificationPayload{Title: TitleSuccess, Body: strings.Join(details, "\n")},
		}, nil
	case strings.Contains(body, markerAlready):
		c.bus.Log("info", "已经打过卡了", nil)
		return Report{
			Outcome: model.OutcomeAlreadyDone,
			Payload: model.NotificationPayload{Title: TitleForum, Body: markerAlready},
		}, nil
	default:
		return failed(TitleForum, "打卡失败, cookies可能已经过期或站点更新."), nil
	}
}

func failed(title, body string) Report {
	return Report{Outcome: model.OutcomeFailed, Payload: model.NotificationPayload{Title: title, Body: body}}
}

func (c *Client) fetchDocument(ctx context.Context, client *resty.Client) (*goquery.Document, error) {
	resp, err := client.R().SetContext(ctx).Get(c.cfg.SignPageURL)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
}

func (c *Client) discoverSign(ctx context.Context, client *resty.Client) (string, error) {
	doc, err := c.fetchDocument(ctx, client)
	if err != nil {
		return "", err
	}
	return SignFromDocument(doc)
}

// SignFromDocument 从打卡按钮 a.btna 的链接里取出 sign 参数。
func SignFromDocument(doc *goquery.Document) (string, error) {
	href, ok := doc.Find("a.btna").First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return "", ErrSignLinkNotFound
	}
	m := signPattern.FindStringSubmatch(href)
	if m == nil {
		return "", ErrSignParamNotFound
	}
	return m[1], nil
}

func (c *Client) fetchDetails(ctx context.Context, client *resty.Client) ([]string, error) {
	doc, err := c.fetchDocument(ctx, client)
	if err != nil {
		return nil, err
	}
	details := DetailsFromDocument(doc)
	if len(details) == 0 {
		return nil, errNoDetails
	}
	return details, nil
}

// DetailsFromDocument 返回 "名称: 值" 形式的统计条目，页面上没有的条目直接跳过。
func DetailsFromDocument(doc *goquery.Document) []string {
	var out []string
	items := doc.Find("li")
	for _, label := range detailLabels {
		li := items.FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.Contains(s.Text(), label)
		}).First()
		if li.Length() == 0 {
			continue
		}
		out = append(out, label+": "+valueAfterLabel(li.Text(), label))
	}
	return out
}

// valueAfterLabel 去掉标签本身和紧随其后的冒号（半角或全角）。
// 时间值里的冒号要保留，所以不能按最后一个冒号切。
func valueAfterLabel(text, label string) string {
	_, rest, ok := strings.Cut(text, label)
	if !ok {
		return strings.TrimSpace(text)
	}
	rest = strings.TrimSpace(rest)
	rest = strings.TrimPrefix(rest, ":")
	rest = strings.TrimPrefix(rest, "：")
	return strings.TrimSpace(rest)
}

func withSign(pageURL, sign string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse sign page url: %w", err)
	}
	q := u.Query()
	q.Set("sign", sign)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
