package main

import (
	crand "crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"signin_engine/internal/utils"
)

// mock 在本地模拟天翼云盘登录/签到/抽奖、恩山积分页和飞牛打卡页，
// 用于不接触真实站点时联调 cmd/signin。
func main() {
	addr := flag.String("addr", ":8080", "listen address")
	public := flag.String("public", "http://127.0.0.1:8080", "base URL the mock is reachable at (used in redirects)")
	rejectPassword := flag.String("reject-password", "wrong", "password that makes loginSubmit fail")
	flag.Parse()

	key, err := rsa.GenerateKey(crand.Reader, 1024)
	if err != nil {
		log.Fatalf("generate rsa key: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		log.Fatalf("marshal public key: %v", err)
	}
	blob := base64.StdEncoding.EncodeToString(der)
	base := strings.TrimRight(*public, "/")

	st := &state{signed: map[string]bool{}, lottery: map[string]int{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/mock/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"ok": true})
	})

	mux.HandleFunc("/udb/udb_login.jsp", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "<html><script>window.location.replace('%s/mock/redirect?pageKey=default');</script></html>", base)
	})

	mux.HandleFunc("/mock/redirect", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<div class="tab"><a id="j-tab-login-link" class="tab-item" href="/mock/login?appId=cloud&amp;clientType=wap">账号登录</a></div>`)
	})

	mux.HandleFunc("/mock/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "LT", Value: randString(16), Path: "/"})
		fmt.Fprintf(w, `<html><head><script>
var lt = "%s";
var returnUrl= '%s/mock/done';
var paramId = "%s";
</script></head><body>
<input type='hidden' name='captchaToken' value='%s'>
<input type="hidden" id="j_rsaKey" value="%s">
</body></html>`, randString(16), base, randString(32), randString(24), blob)
	})

	mux.HandleFunc("/api/logbox/oauth2/loginSubmit.do", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		_ = r.ParseForm()
		user, uerr := decryptField(key, r.PostForm.Get("userName"))
		pass, perr := decryptField(key, r.PostForm.Get("password"))
		switch {
		case uerr != nil || perr != nil:
			writeJSON(w, map[string]any{"result": -1, "msg": "参数解密失败"})
		case r.Header.Get("lt") == "":
			writeJSON(w, map[string]any{"result": -1, "msg": "缺少 lt"})
		case pass == *rejectPassword:
			writeJSON(w, map[string]any{"result": -2, "msg": "帐号或密码错误"})
		default:
			writeJSON(w, map[string]any{"result": 0, "msg": "登录成功", "toUrl": base + "/mock/done?u=" + url.QueryEscape(user)})
		}
	})

	mux.HandleFunc("/mock/done", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "COOKIE_LOGIN_USER", Value: r.URL.Query().Get("u"), Path: "/"})
		fmt.Fprint(w, "ok")
	})

	mux.HandleFunc("/mkt/userSign.action", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("COOKIE_LOGIN_USER")
		if err != nil || c.Value == "" {
			writeJSON(w, map[string]any{"errorCode": "InvalidSessionKey", "errorMsg": "会话失效"})
			return
		}
		already := st.sign(c.Value)
		writeJSON(w, map[string]any{"isSign": already, "netdiskBonus": 10 + rand.Intn(50)})
	})

	mux.HandleFunc("/v2/drawPrizeMarketDetails.action", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("COOKIE_LOGIN_USER")
		if err != nil || c.Value == "" {
			writeJSON(w, map[string]any{"errorCode": "InvalidSessionKey"})
			return
		}
		if st.draw(c.Value) > 1 {
			writeJSON(w, map[string]any{"errorCode": "User_Not_Chance"})
			return
		}
		prizes := []string{"天翼云盘50M空间", "天翼云盘100M空间", "谢谢参与"}
		writeJSON(w, map[string]any{"prizeName": prizes[rand.Intn(len(prizes))]})
	})

	mux.HandleFunc("/FORUM/home.php", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cookie") == "" {
			fmt.Fprint(w, "<html>请先登录</html>")
			return
		}
		fmt.Fprintf(w, `<ul class="creditl"><li><em> 恩山币: </em>%d 币 &nbsp;</li><li><em> 积分: </em>%d </li></ul>`, rand.Intn(100), 1000+rand.Intn(100))
	})

	mux.HandleFunc("/plugin.php", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cookie") == "" {
			fmt.Fprint(w, "<html>登录后查看</html>")
			return
		}
		if sign := r.URL.Query().Get("sign"); sign != "" {
			if st.sign("fnnas") {
				fmt.Fprint(w, "<p>您今天已经打过卡了，请勿重复操作！</p>")
				return
			}
			fmt.Fprint(w, "<p>恭喜您，打卡成功！</p>")
			return
		}
		fmt.Fprintf(w, `<html><body><a class="btna" href="plugin.php?id=zqlj_sign&sign=%s">点击打卡</a>
<ul><li>最近打卡：%s</li><li>连续打卡：3 天</li><li>累计奖励：6 飞牛币</li><li>当前打卡等级：Lv.1</li></ul>
</body></html>`, hex.EncodeToString([]byte(randString(4))), time.Now().Format("2006-01-02 15:04:05"))
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("mock listening on %s (public %s)", *addr, base)
	log.Printf("config.yaml:\ncloud189:\n  tokenPageURL: %s/udb/udb_login.jsp\n  loginSubmitURL: %s/api/logbox/oauth2/loginSubmit.do\n  signURL: %s/mkt/userSign.action\n  lotteryURL: %s/v2/drawPrizeMarketDetails.action?taskId=TASK_SIGNIN&activityId=ACT_SIGNIN\nenshan:\n  creditURL: %s/FORUM/home.php?mod=spacecp&ac=credit&showcredit=1\nfnnas:\n  signPageURL: %s/plugin.php?id=zqlj_sign",
		base, base, base, base, base, base)
	log.Fatal(srv.ListenAndServe())
}

// state 记录每个账号当天是否已经签到、抽了几次奖。
type state struct {
	mu      sync.Mutex
	signed  map[string]bool
	lottery map[string]int
}

// sign 返回调用前是否已经签过。
func (s *state) sign(user string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	already := s.signed[user]
	s.signed[user] = true
	return already
}

func (s *state) draw(user string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lottery[user]++
	return s.lottery[user]
}

func decryptField(key *rsa.PrivateKey, v string) (string, error) {
	hexPart, ok := strings.CutPrefix(v, utils.RSAPrefix)
	if !ok {
		return "", fmt.Errorf("missing %s prefix", utils.RSAPrefix)
	}
	raw, err := hex.DecodeString(hexPart)
	if err != nil {
		return "", err
	}
	plain, err := rsa.DecryptPKCS1v15(nil, key, raw)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func randString(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	if n <= 0 {
		return ""
	}
	raw := make([]byte, n)
	_, _ = crand.Read(raw)
	out := make([]byte, n)
	for i := range out {
		out[i] = letters[int(raw[i])%len(letters)]
	}
	return string(out)
}
