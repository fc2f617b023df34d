package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"signin_engine/internal/model"
)

// AccountSeparator 是环境变量里多个账号之间的分隔符。
const AccountSeparator = "&"

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
	Proxy    ProxyConfig    `yaml:"proxy"`
	Limits   LimitsConfig   `yaml:"limits"`
	Cloud189 Cloud189Config `yaml:"cloud189"`
	Enshan   EnshanConfig   `yaml:"enshan"`
	FNNAS    FNNASConfig    `yaml:"fnnas"`
	Notify   NotifyConfig   `yaml:"notify"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// File 为空时只输出到控制台；否则额外写一份 JSON 日志并按大小滚动。
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	BufferSize int    `yaml:"bufferSize"`
}

type StorageConfig struct {
	// SQLitePath 为空表示不记录运行历史。
	SQLitePath string `yaml:"sqlitePath"`
}

type ProxyConfig struct {
	Global string `yaml:"global"`
}

type LimitsConfig struct {
	// AccountIntervalMs 两个账号开始处理之间的最小间隔，默认 3000，负数表示不限制。
	AccountIntervalMs int `yaml:"accountIntervalMs"`
	// CourtesyMinMs/CourtesyMaxMs 签到与抽奖之间的随机停顿区间，避免触发风控。
	CourtesyMinMs    int  `yaml:"courtesyMinMs"`
	CourtesyMaxMs    int  `yaml:"courtesyMaxMs"`
	CourtesyDisabled bool `yaml:"courtesyDisabled"`
}

func (c LimitsConfig) AccountInterval() time.Duration {
	if c.AccountIntervalMs <= 0 {
		return 0
	}
	return time.Duration(c.AccountIntervalMs) * time.Millisecond
}

func (c LimitsConfig) CourtesyRange() (time.Duration, time.Duration) {
	if c.CourtesyDisabled {
		return 0, 0
	}
	lo := time.Duration(c.CourtesyMinMs) * time.Millisecond
	hi := time.Duration(c.CourtesyMaxMs) * time.Millisecond
	if lo < 0 {
		lo = 0
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

type Cloud189Config struct {
	Accounts       []model.Account `yaml:"accounts"`
	TokenPageURL   string          `yaml:"tokenPageURL"`
	LoginSubmitURL string          `yaml:"loginSubmitURL"`
	SignURL        string          `yaml:"signURL"`
	LotteryURL     string          `yaml:"lotteryURL"`
	TimeoutMs      int             `yaml:"timeoutMs"`
	LoginUserAgent string          `yaml:"loginUserAgent"`
	AppUserAgent   string          `yaml:"appUserAgent"`
	Title          string          `yaml:"title"`
}

func (c Cloud189Config) Timeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

type EnshanConfig struct {
	CreditURL    string `yaml:"creditURL"`
	Cookie       string `yaml:"cookie"`
	MaxRetries   int    `yaml:"maxRetries"`
	RetryDelayMs int    `yaml:"retryDelayMs"`
	TimeoutMs    int    `yaml:"timeoutMs"`
}

func (c EnshanConfig) Timeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

func (c EnshanConfig) RetryDelay() time.Duration {
	if c.RetryDelayMs < 0 {
		return 0
	}
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

type FNNASConfig struct {
	SignPageURL string `yaml:"signPageURL"`
	Cookie      string `yaml:"cookie"`
	TimeoutMs   int    `yaml:"timeoutMs"`
}

func (c FNNASConfig) Timeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

type NotifyConfig struct {
	Email    EmailConfig    `yaml:"email"`
	PushPlus PushPlusConfig `yaml:"pushPlus"`
	Telegram TelegramConfig `yaml:"telegram"`
	CQHTTP   CQHTTPConfig   `yaml:"cqhttp"`
}

type EmailConfig struct {
	Email    string `yaml:"email"`
	AuthCode string `yaml:"authCode"`
	// SMTPHost 为空时按邮箱域名推断。
	SMTPHost string `yaml:"smtpHost"`
	SMTPPort int    `yaml:"smtpPort"`
}

type PushPlusConfig struct {
	Token string `yaml:"token"`
	URL   string `yaml:"url"`
}

type TelegramConfig struct {
	BotToken  string `yaml:"botToken"`
	ChatID    int64  `yaml:"chatId"`
	ServerURL string `yaml:"serverURL"`
}

type CQHTTPConfig struct {
	WSURL       string `yaml:"wsURL"`
	UserID      int64  `yaml:"userId"`
	AccessToken string `yaml:"accessToken"`
}

// ConfigError 是面向用户的配置错误，出现时整个运行在任何网络请求之前终止。
type ConfigError struct {
	Msg  string
	Hint string
}

func (e *ConfigError) Error() string {
	if e.Hint == "" {
		return e.Msg
	}
	return e.Msg + "（" + e.Hint + "）"
}

// LookupFunc 与 os.LookupEnv 同签名，测试里可以换成 map。
type LookupFunc func(key string) (string, bool)

// Load 读取 YAML 配置（文件不存在时使用默认值），再用 .env 和环境变量覆盖。
func Load(path string) (Config, error) {
	// .env 只是补充来源，缺失时忽略；已存在的环境变量优先。
	_ = godotenv.Load()
	return LoadWithEnv(path, os.LookupEnv)
}

func LoadWithEnv(path string, lookup LookupFunc) (Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, &ConfigError{Msg: "读取配置文件失败: " + err.Error()}
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, &ConfigError{Msg: "配置文件格式错误: " + err.Error()}
			}
		}
	}
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	i64 := func(key string, dst *int64) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return &ConfigError{Msg: "环境变量 " + key + " 必须是数字"}
		}
		*dst = n
		return nil
	}

	usernames, hasUsers := lookup("ty_username")
	passwords, hasPasswords := lookup("ty_password")
	if hasUsers || hasPasswords {
		accounts, err := ParseAccounts(usernames, passwords)
		if err != nil {
			return err
		}
		c.Cloud189.Accounts = accounts
	}

	str("enshanck", &c.Enshan.Cookie)
	str("FN_COOKIE", &c.FNNAS.Cookie)
	str("SIGNIN_SQLITE_PATH", &c.Storage.SQLitePath)
	str("SIGNIN_LOG_LEVEL", &c.Log.Level)
	str("PUSH_PLUS_TOKEN", &c.Notify.PushPlus.Token)
	str("TG_BOT_TOKEN", &c.Notify.Telegram.BotToken)
	str("SMTP_EMAIL", &c.Notify.Email.Email)
	str("SMTP_PASSWORD", &c.Notify.Email.AuthCode)
	str("CQHTTP_WS_URL", &c.Notify.CQHTTP.WSURL)
	str("CQHTTP_ACCESS_TOKEN", &c.Notify.CQHTTP.AccessToken)
	if v, ok := lookup("SMTP_SERVER"); ok && strings.TrimSpace(v) != "" {
		host, port, _ := strings.Cut(strings.TrimSpace(v), ":")
		c.Notify.Email.SMTPHost = host
		if port != "" {
			n, err := strconv.Atoi(port)
			if err != nil {
				return &ConfigError{Msg: "SMTP_SERVER 端口无效", Hint: "格式: smtp.qq.com:465"}
			}
			c.Notify.Email.SMTPPort = n
		}
	}
	if err := i64("TG_USER_ID", &c.Notify.Telegram.ChatID); err != nil {
		return err
	}
	return i64("CQHTTP_USER_ID", &c.Notify.CQHTTP.UserID)
}

// ParseAccounts 把 "a&b" 形式的用户名、密码两两配对。
func ParseAccounts(usernames, passwords string) ([]model.Account, error) {
	users := strings.Split(usernames, AccountSeparator)
	pwds := strings.Split(passwords, AccountSeparator)
	if strings.TrimSpace(usernames) == "" || strings.TrimSpace(passwords) == "" {
		return nil, &ConfigError{
			Msg:  "请设置环境变量 ty_username 和 ty_password",
			Hint: "多个账号用&隔开，如: ty_username=13800138000&13900139000",
		}
	}
	if len(users) != len(pwds) {
		return nil, &ConfigError{
			Msg:  "账号和密码数量不匹配",
			Hint: "用户名数量: " + strconv.Itoa(len(users)) + ", 密码数量: " + strconv.Itoa(len(pwds)),
		}
	}
	out := make([]model.Account, 0, len(users))
	for i := range users {
		u := strings.TrimSpace(users[i])
		p := strings.TrimSpace(pwds[i])
		if u == "" || p == "" {
			return nil, &ConfigError{Msg: "第 " + strconv.Itoa(i+1) + " 个账号的用户名或密码为空"}
		}
		out = append(out, model.Account{Username: u, Password: p})
	}
	return out, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.BufferSize <= 0 {
		c.Log.BufferSize = 200
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups <= 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays <= 0 {
		c.Log.MaxAgeDays = 30
	}
	if c.Limits.AccountIntervalMs == 0 {
		c.Limits.AccountIntervalMs = 3000
	}
	if c.Limits.CourtesyMinMs == 0 && c.Limits.CourtesyMaxMs == 0 {
		c.Limits.CourtesyMinMs = 2000
		c.Limits.CourtesyMaxMs = 5000
	}

	if c.Cloud189.TokenPageURL == "" {
		c.Cloud189.TokenPageURL = "https://m.cloud.189.cn/udb/udb_login.jsp?pageId=1&pageKey=default&clientType=wap&redirectURL=https://m.cloud.189.cn/zhuanti/2021/shakeLottery/index.html"
	}
	if c.Cloud189.LoginSubmitURL == "" {
		c.Cloud189.LoginSubmitURL = "https://open.e.189.cn/api/logbox/oauth2/loginSubmit.do"
	}
	if c.Cloud189.SignURL == "" {
		c.Cloud189.SignURL = "https://api.cloud.189.cn/mkt/userSign.action"
	}
	if c.Cloud189.LotteryURL == "" {
		c.Cloud189.LotteryURL = "https://m.cloud.189.cn/v2/drawPrizeMarketDetails.action?taskId=TASK_SIGNIN&activityId=ACT_SIGNIN"
	}
	if c.Cloud189.Title == "" {
		c.Cloud189.Title = "⛅ 天翼云盘签到汇总"
	}

	if c.Enshan.CreditURL == "" {
		c.Enshan.CreditURL = "https://www.right.com.cn/FORUM/home.php?mod=spacecp&ac=credit&showcredit=1"
	}
	if c.Enshan.MaxRetries <= 0 {
		c.Enshan.MaxRetries = 3
	}
	if c.Enshan.RetryDelayMs == 0 {
		c.Enshan.RetryDelayMs = 5000
	}

	if c.FNNAS.SignPageURL == "" {
		c.FNNAS.SignPageURL = "https://club.fnnas.com/plugin.php?id=zqlj_sign"
	}

	if c.Notify.PushPlus.URL == "" {
		c.Notify.PushPlus.URL = "https://www.pushplus.plus/send"
	}
}

func (c Config) validate() error {
	lo, hi := c.Limits.CourtesyMinMs, c.Limits.CourtesyMaxMs
	if lo < 0 || hi < 0 || hi < lo {
		return &ConfigError{Msg: "limits.courtesyMinMs/courtesyMaxMs 无效", Hint: "需要 0 <= min <= max"}
	}
	if c.Notify.Telegram.BotToken != "" && c.Notify.Telegram.ChatID == 0 {
		return &ConfigError{Msg: "已设置 TG_BOT_TOKEN 但缺少 TG_USER_ID"}
	}
	if c.Notify.CQHTTP.WSURL != "" && c.Notify.CQHTTP.UserID == 0 {
		return &ConfigError{Msg: "已设置 CQHTTP_WS_URL 但缺少 CQHTTP_USER_ID"}
	}
	return nil
}

// RequireCloud189 在执行天翼云盘任务前检查账号配置。
func (c Config) RequireCloud189() ([]model.Account, error) {
	if len(c.Cloud189.Accounts) == 0 {
		return nil, &ConfigError{
			Msg:  "请设置环境变量 ty_username 和 ty_password",
			Hint: "多个账号用&隔开，如: ty_username=13800138000&13900139000",
		}
	}
	for i, acc := range c.Cloud189.Accounts {
		if strings.TrimSpace(acc.Username) == "" || strings.TrimSpace(acc.Password) == "" {
			return nil, &ConfigError{Msg: "第 " + strconv.Itoa(i+1) + " 个账号的用户名或密码为空"}
		}
	}
	return c.Cloud189.Accounts, nil
}

func (c Config) RequireEnshan() error {
	if strings.TrimSpace(c.Enshan.Cookie) == "" {
		return &ConfigError{Msg: "未找到恩山Cookie配置，请设置环境变量: enshanck"}
	}
	return nil
}

func (c Config) RequireFNNAS() error {
	if strings.TrimSpace(c.FNNAS.Cookie) == "" {
		return &ConfigError{Msg: "未设置环境变量 FN_COOKIE，请先在青龙面板中配置。"}
	}
	return nil
}
