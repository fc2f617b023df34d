package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"signin_engine/internal/config"
	"signin_engine/internal/logbus"
	"signin_engine/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
	)
}

type fakeNotifier struct {
	name  string
	err   error
	calls []model.NotificationPayload
}

func (f *fakeNotifier) Name() string { return f.name }

func (f *fakeNotifier) Send(_ context.Context, title, body string) error {
	f.calls = append(f.calls, model.NotificationPayload{Title: title, Body: body})
	return f.err
}

var samplePayload = model.NotificationPayload{Title: "⛅ 天翼云盘签到汇总", Body: "账号: 138****8000\n"}

func TestDispatcher_NoChannelsFallsBackToStdout(t *testing.T) {
	var out bytes.Buffer
	bus := logbus.New(10, nil)
	d := NewDispatcher(nil, bus, &out)

	assert.False(t, d.Available())
	d.Dispatch(context.Background(), samplePayload)
	assert.Equal(t, "⛅ 天翼云盘签到汇总\n\n账号: 138****8000\n\n", out.String())

	logs := bus.Logs()
	require.NotEmpty(t, logs)
	assert.Equal(t, "warn", logs[0].Level)
}

func TestDispatcher_SendsToAllChannels(t *testing.T) {
	var out bytes.Buffer
	a := &fakeNotifier{name: "a"}
	b := &fakeNotifier{name: "b"}
	d := NewDispatcher([]Notifier{a, nil, b}, nil, &out)

	require.True(t, d.Available())
	d.Dispatch(context.Background(), samplePayload)
	assert.Equal(t, []model.NotificationPayload{samplePayload}, a.calls)
	assert.Equal(t, []model.NotificationPayload{samplePayload}, b.calls)
	assert.Empty(t, out.String())
}

func TestDispatcher_ChannelFailureFallsBack(t *testing.T) {
	var out bytes.Buffer
	a := &fakeNotifier{name: "a", err: errors.New("boom")}
	b := &fakeNotifier{name: "b"}
	d := NewDispatcher([]Notifier{a, b}, nil, &out)

	d.Dispatch(context.Background(), samplePayload)
	assert.Len(t, b.calls, 1, "other channels still receive the payload")
	assert.Contains(t, out.String(), samplePayload.Title)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestDispatcher_FallbackIgnoresWriteErrors(t *testing.T) {
	d := NewDispatcher(nil, nil, failingWriter{})
	assert.NotPanics(t, func() { d.Dispatch(context.Background(), samplePayload) })
}

func TestFanout_JoinsErrors(t *testing.T) {
	f := Fanout{
		&fakeNotifier{name: "a", err: errors.New("x")},
		&fakeNotifier{name: "b", err: errors.New("y")},
	}
	err := f.Send(context.Background(), "t", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a: x")
	assert.Contains(t, err.Error(), "b: y")
}

func TestFromConfig(t *testing.T) {
	assert.Empty(t, FromConfig(config.NotifyConfig{}, nil))

	got := FromConfig(config.NotifyConfig{
		Email:    config.EmailConfig{Email: "me@qq.com", AuthCode: "code"},
		PushPlus: config.PushPlusConfig{Token: "tok", URL: "http://127.0.0.1:1/send"},
		Telegram: config.TelegramConfig{BotToken: "123:ABC", ChatID: 42},
		CQHTTP:   config.CQHTTPConfig{WSURL: "ws://127.0.0.1:1", UserID: 10001},
	}, nil)

	names := make([]string, 0, len(got))
	for _, n := range got {
		names = append(names, n.Name())
	}
	assert.Equal(t, []string{"email", "pushplus", "telegram", "cqhttp"}, names)
}
