package cloud189

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"signin_engine/internal/config"
	"signin_engine/internal/utils"
)

var (
	fixtureKeyOnce sync.Once
	fixtureKey     *rsa.PrivateKey
	fixtureBlob    string
)

func fixtureRSAKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	fixtureKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
		if err != nil {
			panic(err)
		}
		fixtureKey = key
		fixtureBlob = base64.StdEncoding.EncodeToString(der)
	})
	return fixtureKey, fixtureBlob
}

// portal 模拟登录链路和签到接口，字段都可以在测试里改写。
type portal struct {
	t   *testing.T
	srv *httptest.Server
	key *rsa.PrivateKey

	mu            sync.Mutex
	tokenPage     string
	redirectPage  string
	loginPage     string
	loginResponse string
	signResponse  string
	lotteryResp   string
	// rejectPass 非空时，解密出的密码等于它的登录请求返回"密码错误"。
	rejectPass string

	gotUser    string
	gotPass    string
	gotLT      string
	gotForm    map[string]string
	signHost   string
	signQuery  map[string]string
	signCookie bool
	hits       map[string]int
}

func newPortal(t *testing.T) *portal {
	t.Helper()
	key, blob := fixtureRSAKey(t)
	p := &portal{t: t, key: key, hits: map[string]int{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		p.hit("token")
		fmt.Fprint(w, p.get(&p.tokenPage))
	})
	mux.HandleFunc("/redirect", func(w http.ResponseWriter, r *http.Request) {
		p.hit("redirect")
		fmt.Fprint(w, p.get(&p.redirectPage))
	})
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		p.hit("login")
		http.SetCookie(w, &http.Cookie{Name: "LT_SESSION", Value: "s1", Path: "/"})
		fmt.Fprint(w, p.get(&p.loginPage))
	})
	mux.HandleFunc("/loginSubmit", func(w http.ResponseWriter, r *http.Request) {
		p.hit("loginSubmit")
		_ = r.ParseForm()
		form := map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		p.mu.Lock()
		p.gotForm = form
		p.gotLT = r.Header.Get("lt")
		p.gotUser = p.decrypt(form["userName"])
		p.gotPass = p.decrypt(form["password"])
		rejected := p.rejectPass != "" && p.gotPass == p.rejectPass
		p.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if rejected {
			fmt.Fprint(w, `{"result":-2,"msg":"密码错误"}`)
			return
		}
		fmt.Fprint(w, p.get(&p.loginResponse))
	})
	mux.HandleFunc("/done", func(w http.ResponseWriter, r *http.Request) {
		p.hit("done")
		http.SetCookie(w, &http.Cookie{Name: "COOKIE_LOGIN_USER", Value: "ok", Path: "/"})
		fmt.Fprint(w, "ok")
	})
	mux.HandleFunc("/sign", func(w http.ResponseWriter, r *http.Request) {
		p.hit("sign")
		q := map[string]string{}
		for k := range r.URL.Query() {
			q[k] = r.URL.Query().Get(k)
		}
		_, cerr := r.Cookie("COOKIE_LOGIN_USER")
		p.mu.Lock()
		p.signHost = r.Host
		p.signQuery = q
		p.signCookie = cerr == nil
		p.mu.Unlock()
		fmt.Fprint(w, p.get(&p.signResponse))
	})
	mux.HandleFunc("/lottery", func(w http.ResponseWriter, r *http.Request) {
		p.hit("lottery")
		fmt.Fprint(w, p.get(&p.lotteryResp))
	})

	p.srv = httptest.NewServer(mux)
	t.Cleanup(p.srv.Close)

	p.tokenPage = fmt.Sprintf(`<html><script>window.location.replace('%s/redirect?pageKey=default');</script></html>`, p.srv.URL)
	p.redirectPage = `<div class="tab"><a id="j-tab-login-link" class="tab-item" href="/login?appId=cloud&amp;lt=1">账号登录</a></div>`
	p.loginPage = loginPageHTML("cap-123", "lt-456", "https://m.cloud.189.cn/back.jsp", "pid-789", blob)
	p.loginResponse = fmt.Sprintf(`{"result":0,"msg":"登录成功","toUrl":"%s/done"}`, p.srv.URL)
	p.signResponse = `{"isSign":false,"netdiskBonus":50}`
	p.lotteryResp = `{"prizeName":"50M空间"}`
	return p
}

func loginPageHTML(captcha, lt, returnURL, paramID, blob string) string {
	var b strings.Builder
	b.WriteString("<html><head><script>\n")
	if lt != "" {
		fmt.Fprintf(&b, "var lt = \"%s\";\n", lt)
	}
	if returnURL != "" {
		fmt.Fprintf(&b, "var returnUrl= '%s';\n", returnURL)
	}
	if paramID != "" {
		fmt.Fprintf(&b, "var paramId = \"%s\";\n", paramID)
	}
	b.WriteString("</script></head><body>\n")
	if captcha != "" {
		fmt.Fprintf(&b, "<input type='hidden' name='captchaToken' value='%s'>\n", captcha)
	}
	if blob != "" {
		fmt.Fprintf(&b, "<input type=\"hidden\" id=\"j_rsaKey\" value=\"%s\">\n", blob)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func (p *portal) hit(name string) {
	p.mu.Lock()
	p.hits[name]++
	p.mu.Unlock()
}

func (p *portal) hitCount(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits[name]
}

func (p *portal) get(field *string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return *field
}

func (p *portal) set(field *string, v string) {
	p.mu.Lock()
	*field = v
	p.mu.Unlock()
}

func (p *portal) decrypt(v string) string {
	hexPart, ok := strings.CutPrefix(v, utils.RSAPrefix)
	if !ok {
		return ""
	}
	raw, err := hex.DecodeString(hexPart)
	if err != nil {
		return ""
	}
	plain, err := rsa.DecryptPKCS1v15(nil, p.key, raw)
	if err != nil {
		return ""
	}
	return string(plain)
}

func (p *portal) config() config.Cloud189Config {
	return config.Cloud189Config{
		TokenPageURL:   p.srv.URL + "/token",
		LoginSubmitURL: p.srv.URL + "/loginSubmit",
		SignURL:        p.srv.URL + "/sign",
		LotteryURL:     p.srv.URL + "/lottery?taskId=TASK_SIGNIN&activityId=ACT_SIGNIN",
		TimeoutMs:      5000,
	}
}

func mustJSON(t *testing.T, raw string) map[string]json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("bad fixture json %q: %v", raw, err)
	}
	return m
}
