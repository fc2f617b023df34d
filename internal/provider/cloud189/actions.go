package cloud189

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"signin_engine/internal/config"
	"signin_engine/internal/model"
	"signin_engine/internal/utils"
)

const (
	appReferer = "https://m.cloud.189.cn/zhuanti/2016/sign/index.jsp?albumBackupOpened=1"
	appHost    = "m.cloud.189.cn"
)

// Session 是登录后的会话，只能在同一个账号的处理流程里使用。
type Session struct {
	client *resty.Client
	cfg    config.Cloud189Config
	now    func() time.Time
}

func (s *Session) appRequest(ctx context.Context) *resty.Request {
	return s.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", utils.NormalizeCloudAppUserAgent(s.cfg.AppUserAgent)).
		SetHeader("Referer", appReferer).
		SetHeader("Host", appHost)
}

// SignIn 调用每日签到接口。isSign=false 表示本次签到成功，true 表示今天已经签过。
func (s *Session) SignIn(ctx context.Context) (model.ActionResult, error) {
	resp, err := s.appRequest(ctx).
		SetQueryParams(map[string]string{
			"rand":       strconv.FormatInt(s.now().UnixMilli(), 10),
			"clientType": "TELEANDROID",
			"version":    "8.6.3",
			"model":      "SM-G930K",
		}).
		Get(s.cfg.SignURL)
	if err != nil {
		return model.ActionResult{}, fmt.Errorf("sign request: %w", err)
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return model.ActionResult{}, fmt.Errorf("decode sign response (HTTP %d): %w", resp.StatusCode(), err)
	}
	return parseSignResponse(body), nil
}

func parseSignResponse(body map[string]json.RawMessage) model.ActionResult {
	raw, ok := body["isSign"]
	if !ok {
		msg := rawText(body["errorMsg"])
		if msg == "" {
			msg = "未知错误"
		}
		return model.Failed(model.ActionSignIn, "签到失败: "+msg)
	}

	bonus := rawText(body["netdiskBonus"])
	switch strings.ToLower(rawText(raw)) {
	case "false":
		return model.Succeeded(model.ActionSignIn, bonus)
	case "true":
		return model.AlreadyDone(model.ActionSignIn, bonus)
	default:
		return model.Failed(model.ActionSignIn, "签到失败: 无法识别的 isSign="+string(raw))
	}
}

// Lottery 调用每日抽奖接口，响应里有 errorCode 即视为失败。
func (s *Session) Lottery(ctx context.Context) (model.ActionResult, error) {
	resp, err := s.appRequest(ctx).Get(s.cfg.LotteryURL)
	if err != nil {
		return model.ActionResult{}, fmt.Errorf("lottery request: %w", err)
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return model.ActionResult{}, fmt.Errorf("decode lottery response (HTTP %d): %w", resp.StatusCode(), err)
	}
	return parseLotteryResponse(body), nil
}

func parseLotteryResponse(body map[string]json.RawMessage) model.ActionResult {
	if code, ok := body["errorCode"]; ok {
		return model.Failed(model.ActionLottery, rawText(code))
	}
	prize := rawText(body["prizeName"])
	if prize == "" {
		prize = rawText(body["description"])
	}
	if prize == "" {
		prize = "未知奖品"
	}
	return model.Succeeded(model.ActionLottery, prize)
}

// rawText 把 JSON 里的字符串、数字或布尔值统一成文本，null 和缺失都返回空串。
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	v := strings.TrimSpace(string(raw))
	if v == "null" {
		return ""
	}
	return v
}
