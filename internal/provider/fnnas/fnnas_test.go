package fnnas

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signin_engine/internal/config"
	"signin_engine/internal/model"
)

const signPage = `<html><body>
<div class="qiandao"><a class="btna" href="plugin.php?id=zqlj_sign&sign=9f3a0c1e">点击打卡</a></div>
<ul class="xl xl1">
<li>最近打卡：2025-03-01 08:15:30</li>
<li>本月打卡：1 天</li>
<li>连续打卡：12 天</li>
<li>累计打卡：300 天</li>
<li>累计奖励：600 飞牛币</li>
<li>最近奖励：2 飞牛币</li>
<li>当前打卡等级：Lv.5</li>
</ul>
</body></html>`

type forum struct {
	mu        sync.Mutex
	page      string
	signReply string
	gotSign   string
	gotCookie string
	pageHits  int
}

func newForum(t *testing.T) (*forum, *Client) {
	t.Helper()
	f := &forum{page: signPage, signReply: "<div>恭喜您，打卡成功！</div>"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.gotCookie = r.Header.Get("Cookie")
		if s := r.URL.Query().Get("sign"); s != "" {
			f.gotSign = s
			_, _ = w.Write([]byte(f.signReply))
			return
		}
		f.pageHits++
		_, _ = w.Write([]byte(f.page))
	}))
	t.Cleanup(srv.Close)

	cfg := config.FNNASConfig{SignPageURL: srv.URL + "/plugin.php?id=zqlj_sign", Cookie: "pvRK_2132_auth=xyz", TimeoutMs: 2000}
	return f, New(cfg, config.ProxyConfig{}, nil)
}

func TestCheckIn_Success(t *testing.T) {
	f, c := newForum(t)

	rep, err := c.CheckIn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeSuccess, rep.Outcome)
	assert.Equal(t, TitleSuccess, rep.Payload.Title)
	assert.Equal(t, strings.Join([]string{
		"最近打卡: 2025-03-01 08:15:30",
		"本月打卡: 1 天",
		"连续打卡: 12 天",
		"累计打卡: 300 天",
		"累计奖励: 600 飞牛币",
		"最近奖励: 2 飞牛币",
		"当前打卡等级: Lv.5",
	}, "\n"), rep.Payload.Body)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, "9f3a0c1e", f.gotSign)
	assert.Equal(t, "pvRK_2132_auth=xyz", f.gotCookie)
	assert.Equal(t, 2, f.pageHits)
}

func TestCheckIn_AlreadyDone(t *testing.T) {
	f, c := newForum(t)
	f.signReply = "<p>您今天已经打过卡了，请勿重复操作！</p>"

	rep, err := c.CheckIn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeAlreadyDone, rep.Outcome)
	assert.Equal(t, model.NotificationPayload{Title: TitleForum, Body: "您今天已经打过卡了"}, rep.Payload)
}

func TestCheckIn_UnknownReply(t *testing.T) {
	f, c := newForum(t)
	f.signReply = "<p>请先登录</p>"

	rep, err := c.CheckIn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeFailed, rep.Outcome)
	assert.Equal(t, "打卡失败, cookies可能已经过期或站点更新.", rep.Payload.Body)
}

func TestCheckIn_NoSignLink(t *testing.T) {
	f, c := newForum(t)
	f.page = "<html><body>登录后查看</body></html>"

	rep, err := c.CheckIn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeFailed, rep.Outcome)
	assert.Equal(t, TitleFailure, rep.Payload.Title)
	assert.Contains(t, rep.Payload.Body, ErrSignLinkNotFound.Error())
	assert.Empty(t, f.gotSign)
}

func TestSignFromDocument_BadHref(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<a class="btna" href="plugin.php?id=zqlj_sign">打卡</a>`))
	require.NoError(t, err)
	_, err = SignFromDocument(doc)
	assert.ErrorIs(t, err, ErrSignParamNotFound)
}

func TestDetailsFromDocument_SkipsMissing(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<ul><li>连续打卡: 3 天</li><li>其它</li></ul>`))
	require.NoError(t, err)
	assert.Equal(t, []string{"连续打卡: 3 天"}, DetailsFromDocument(doc))
}
