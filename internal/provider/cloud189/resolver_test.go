package cloud189

import (
	"context"
	"errors"
	"net/http/cookiejar"
	"regexp"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signin_engine/internal/model"
)

func testClient(t *testing.T) *resty.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return resty.New().SetCookieJar(jar)
}

func TestResolver_FollowsThreeHops(t *testing.T) {
	p := newPortal(t)
	_, blob := fixtureRSAKey(t)

	r := NewResolver(p.srv.URL+"/token", nil)
	got, err := r.Resolve(context.Background(), testClient(t))
	require.NoError(t, err)

	assert.Equal(t, model.TokenSet{
		CaptchaToken: "cap-123",
		LoginTicket:  "lt-456",
		ReturnURL:    "https://m.cloud.189.cn/back.jsp",
		ParamID:      "pid-789",
		PublicKey:    blob,
	}, got)
	assert.Equal(t, 1, p.hitCount("token"))
	assert.Equal(t, 1, p.hitCount("redirect"))
	assert.Equal(t, 1, p.hitCount("login"))
}

func TestResolver_RedirectMissing(t *testing.T) {
	p := newPortal(t)
	p.set(&p.tokenPage, "<html>维护中</html>")

	got, err := NewResolver(p.srv.URL+"/token", nil).Resolve(context.Background(), testClient(t))
	assert.ErrorIs(t, err, ErrRedirectNotFound)
	assert.Equal(t, model.TokenSet{}, got)
	assert.Zero(t, p.hitCount("redirect"))
}

func TestResolver_LoginEntryMissing(t *testing.T) {
	p := newPortal(t)
	p.set(&p.redirectPage, `<a id="other" href="/x">x</a>`)

	_, err := NewResolver(p.srv.URL+"/token", nil).Resolve(context.Background(), testClient(t))
	assert.ErrorIs(t, err, ErrLoginEntryNotFound)
	assert.Zero(t, p.hitCount("login"))
}

func TestResolver_MissingTokenField(t *testing.T) {
	p := newPortal(t)
	_, blob := fixtureRSAKey(t)
	p.set(&p.loginPage, loginPageHTML("cap", "lt", "https://r", "", blob))

	got, err := NewResolver(p.srv.URL+"/token", nil).Resolve(context.Background(), testClient(t))
	var te *TokenExtractionError
	require.True(t, errors.As(err, &te), "got %v", err)
	assert.Equal(t, FieldParamID, te.Field)
	assert.Equal(t, model.TokenSet{}, got)
}

func TestResolver_SetTokenExtractor(t *testing.T) {
	p := newPortal(t)
	_, blob := fixtureRSAKey(t)
	p.set(&p.loginPage, loginPageHTML("cap", "lt", "https://r", "", blob)+`<i data-param="P-NEW"></i>`)

	r := NewResolver(p.srv.URL+"/token", nil)
	r.SetTokenExtractor(FieldExtractor{Field: FieldParamID, Pattern: regexp.MustCompile(`data-param="([^"]+)"`)})

	got, err := r.Resolve(context.Background(), testClient(t))
	require.NoError(t, err)
	assert.Equal(t, "P-NEW", got.ParamID)
}

func TestResolver_CancelledContext(t *testing.T) {
	p := newPortal(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewResolver(p.srv.URL+"/token", nil).Resolve(ctx, testClient(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
