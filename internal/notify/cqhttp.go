package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"signin_engine/internal/config"
)

// maxFramesBeforeReply 是等待回执时最多跳过的其它帧（心跳、生命周期事件）。
const maxFramesBeforeReply = 16

type CQHTTPNotifier struct {
	cfg     config.CQHTTPConfig
	dialer  *websocket.Dialer
	timeout time.Duration
}

func NewCQHTTPNotifier(cfg config.CQHTTPConfig) *CQHTTPNotifier {
	return &CQHTTPNotifier{
		cfg:     cfg,
		dialer:  &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		timeout: 10 * time.Second,
	}
}

func (n *CQHTTPNotifier) Name() string { return "cqhttp" }

type cqAction struct {
	Action string         `json:"action"`
	Params cqPrivateParam `json:"params"`
	Echo   string         `json:"echo"`
}

type cqPrivateParam struct {
	UserID  int64  `json:"user_id"`
	Message string `json:"message"`
}

type cqReply struct {
	Status  string `json:"status"`
	Retcode int    `json:"retcode"`
	Msg     string `json:"msg"`
	Wording string `json:"wording"`
	Echo    string `json:"echo"`
}

func (n *CQHTTPNotifier) Send(ctx context.Context, title, body string) error {
	if n.cfg.WSURL == "" || n.cfg.UserID == 0 {
		return errors.New("cqhttp wsURL and userId are required")
	}

	header := http.Header{}
	if n.cfg.AccessToken != "" {
		header.Set("Authorization", "Bearer "+n.cfg.AccessToken)
	}
	conn, _, err := n.dialer.DialContext(ctx, n.cfg.WSURL, header)
	if err != nil {
		return fmt.Errorf("dial cqhttp: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(n.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetWriteDeadline(deadline)
	_ = conn.SetReadDeadline(deadline)

	echo := uuid.NewString()
	req := cqAction{
		Action: "send_private_msg",
		Params: cqPrivateParam{UserID: n.cfg.UserID, Message: title + "\n\n" + body},
		Echo:   echo,
	}
	if err := conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write cqhttp action: %w", err)
	}

	for i := 0; i < maxFramesBeforeReply; i++ {
		var reply cqReply
		if err := conn.ReadJSON(&reply); err != nil {
			return fmt.Errorf("read cqhttp reply: %w", err)
		}
		if reply.Echo != echo {
			continue
		}
		if reply.Status != "ok" {
			msg := reply.Wording
			if msg == "" {
				msg = reply.Msg
			}
			return fmt.Errorf("cqhttp status=%s retcode=%d %s", reply.Status, reply.Retcode, msg)
		}
		return nil
	}
	return errors.New("cqhttp reply not received")
}
