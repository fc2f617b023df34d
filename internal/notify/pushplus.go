package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"signin_engine/internal/config"
)

type PushPlusNotifier struct {
	cfg    config.PushPlusConfig
	client *resty.Client
}

func NewPushPlusNotifier(cfg config.PushPlusConfig) *PushPlusNotifier {
	return &PushPlusNotifier{
		cfg:    cfg,
		client: resty.New().SetTimeout(10 * time.Second),
	}
}

func (n *PushPlusNotifier) Name() string { return "pushplus" }

type pushPlusRequest struct {
	Token    string `json:"token"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Template string `json:"template"`
}

type pushPlusResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (n *PushPlusNotifier) Send(ctx context.Context, title, body string) error {
	if strings.TrimSpace(n.cfg.Token) == "" {
		return errors.New("pushplus token is required")
	}
	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(pushPlusRequest{Token: n.cfg.Token, Title: title, Content: body, Template: "txt"}).
		Post(n.cfg.URL)
	if err != nil {
		return err
	}
	var out pushPlusResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return fmt.Errorf("decode pushplus response (HTTP %d): %w", resp.StatusCode(), err)
	}
	if out.Code != 200 {
		return fmt.Errorf("pushplus code=%d msg=%s", out.Code, out.Msg)
	}
	return nil
}
