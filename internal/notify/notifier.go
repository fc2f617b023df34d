package notify

import (
	"context"
	"errors"
	"fmt"
)

// Notifier 是一个推送渠道。Send 失败时返回 error，由调用方决定是否回退。
type Notifier interface {
	Name() string
	Send(ctx context.Context, title, body string) error
}

// Fanout 依次发给所有渠道，单个渠道失败不影响其它渠道。
type Fanout []Notifier

func (f Fanout) Name() string { return "fanout" }

func (f Fanout) Send(ctx context.Context, title, body string) error {
	var errs []error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, title, body); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}
