package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"signin_engine/internal/logbus"
	"signin_engine/internal/model"
)

// Dispatcher 在启动时确定是否有可用渠道。没有渠道或发送失败时把内容打印到标准输出，
// 保证结果总能被看到。
type Dispatcher struct {
	channels Fanout
	bus      *logbus.Bus
	out      io.Writer
}

func NewDispatcher(channels []Notifier, bus *logbus.Bus, out io.Writer) *Dispatcher {
	if out == nil {
		out = os.Stdout
	}
	var kept Fanout
	for _, n := range channels {
		if n != nil {
			kept = append(kept, n)
		}
	}
	d := &Dispatcher{channels: kept, bus: bus, out: out}
	if len(kept) == 0 {
		bus.Log("warn", "未配置任何通知渠道，结果将直接打印", nil)
	} else {
		names := make([]string, 0, len(kept))
		for _, n := range kept {
			names = append(names, n.Name())
		}
		bus.Log("info", "通知渠道已就绪", map[string]any{"channels": strings.Join(names, ",")})
	}
	return d
}

func (d *Dispatcher) Available() bool { return len(d.channels) > 0 }

// Dispatch 不返回错误：渠道失败只记录日志并回退到标准输出。
func (d *Dispatcher) Dispatch(ctx context.Context, p model.NotificationPayload) {
	if !d.Available() {
		d.fallback(p)
		return
	}
	if err := d.channels.Send(ctx, p.Title, p.Body); err != nil {
		d.bus.Log("warn", "通知发送失败", map[string]any{"error": err.Error()})
		d.fallback(p)
		return
	}
	d.bus.Log("info", "通知已发送", map[string]any{"title": p.Title})
}

func (d *Dispatcher) fallback(p model.NotificationPayload) {
	_, _ = fmt.Fprintf(d.out, "%s\n\n%s\n", p.Title, p.Body)
}
