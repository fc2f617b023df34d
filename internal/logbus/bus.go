package logbus

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type Message struct {
	Type string `json:"type"`
	Time int64  `json:"time"`
	Data any    `json:"data"`
}

type LogData struct {
	Level  string         `json:"level"`
	Msg    string         `json:"msg"`
	Fields map[string]any `json:"fields,omitempty"`
}

// Bus 保留最近 cap 条消息（测试和运行结束时的汇总会用到），
// 同时把日志转发给 zap。
type Bus struct {
	mu     sync.RWMutex
	buf    []Message
	cap    int
	logger *zap.Logger
	closed bool
}

func New(capacity int, logger *zap.Logger) *Bus {
	if capacity <= 0 {
		capacity = 200
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		cap:    capacity,
		buf:    make([]Message, 0, capacity),
		logger: logger,
	}
}

func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.buf = nil
	logger := b.logger
	b.mu.Unlock()
	_ = logger.Sync()
}

func (b *Bus) Snapshot() []Message {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Message, len(b.buf))
	copy(out, b.buf)
	return out
}

func (b *Bus) Publish(typ string, data any) {
	msg := Message{
		Type: typ,
		Time: time.Now().UnixMilli(),
		Data: data,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if len(b.buf) < b.cap {
		b.buf = append(b.buf, msg)
	} else if b.cap > 0 {
		copy(b.buf, b.buf[1:])
		b.buf[b.cap-1] = msg
	}
}

func (b *Bus) Log(level, message string, fields map[string]any) {
	if b == nil {
		return
	}
	b.Publish("log", LogData{Level: level, Msg: message, Fields: fields})

	zf := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}
	switch level {
	case "debug":
		b.logger.Debug(message, zf...)
	case "warn":
		b.logger.Warn(message, zf...)
	case "error":
		b.logger.Error(message, zf...)
	default:
		b.logger.Info(message, zf...)
	}
}

// Logs 只返回 type=log 的消息内容，按发布顺序。
func (b *Bus) Logs() []LogData {
	snap := b.Snapshot()
	out := make([]LogData, 0, len(snap))
	for _, m := range snap {
		if d, ok := m.Data.(LogData); ok {
			out = append(out, d)
		}
	}
	return out
}
