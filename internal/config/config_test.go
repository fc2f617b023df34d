package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signin_engine/internal/model"
)

func envMap(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestLoadWithEnv_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadWithEnv(filepath.Join(t.TempDir(), "absent.yaml"), envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 10*time.Second, cfg.Cloud189.Timeout())
	assert.Equal(t, 3*time.Second, cfg.Limits.AccountInterval())
	lo, hi := cfg.Limits.CourtesyRange()
	assert.Equal(t, 2*time.Second, lo)
	assert.Equal(t, 5*time.Second, hi)
	assert.Equal(t, 3, cfg.Enshan.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.Enshan.RetryDelay())
	assert.Contains(t, cfg.Cloud189.LoginSubmitURL, "loginSubmit.do")
	assert.Empty(t, cfg.Storage.SQLitePath)
}

func TestLoadWithEnv_FileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
limits:
  accountIntervalMs: -1
  courtesyDisabled: true
cloud189:
  timeoutMs: 2500
  accounts:
    - username: "13000000000"
      password: "from-file"
enshan:
  cookie: file-cookie
`), 0o600))

	cfg, err := LoadWithEnv(path, envMap(map[string]string{
		"ty_username":    "13800138000&13900139000",
		"ty_password":    "a & b",
		"enshanck":       " env-cookie ",
		"TG_BOT_TOKEN":   "123:abc",
		"TG_USER_ID":     "42",
		"SMTP_SERVER":    "smtp.example.com:587",
		"CQHTTP_USER_ID": "",
	}))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, time.Duration(0), cfg.Limits.AccountInterval())
	lo, hi := cfg.Limits.CourtesyRange()
	assert.Zero(t, lo)
	assert.Zero(t, hi)
	assert.Equal(t, 2500*time.Millisecond, cfg.Cloud189.Timeout())
	assert.Equal(t, []model.Account{
		{Username: "13800138000", Password: "a"},
		{Username: "13900139000", Password: "b"},
	}, cfg.Cloud189.Accounts)
	assert.Equal(t, "env-cookie", cfg.Enshan.Cookie)
	assert.Equal(t, int64(42), cfg.Notify.Telegram.ChatID)
	assert.Equal(t, "smtp.example.com", cfg.Notify.Email.SMTPHost)
	assert.Equal(t, 587, cfg.Notify.Email.SMTPPort)
}

func TestLoadWithEnv_ConfigErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"count mismatch":      {"ty_username": "a&b", "ty_password": "only"},
		"missing password":    {"ty_username": "13800138000"},
		"empty member":        {"ty_username": "a&", "ty_password": "x&y"},
		"bad telegram id":     {"TG_BOT_TOKEN": "t", "TG_USER_ID": "me"},
		"telegram without id": {"TG_BOT_TOKEN": "t"},
		"cqhttp without user": {"CQHTTP_WS_URL": "ws://127.0.0.1:8080"},
		"bad smtp port":       {"SMTP_SERVER": "smtp.qq.com:ssl"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadWithEnv("", envMap(env))
			var ce *ConfigError
			require.True(t, errors.As(err, &ce), "got %v", err)
			assert.NotEmpty(t, ce.Error())
		})
	}
}

func TestLoadWithEnv_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("limits: [1, 2"), 0o600))
	_, err := LoadWithEnv(path, envMap(nil))
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
}

func TestRequireTasks(t *testing.T) {
	cfg, err := LoadWithEnv("", envMap(nil))
	require.NoError(t, err)

	_, err = cfg.RequireCloud189()
	assert.Error(t, err)
	assert.Error(t, cfg.RequireEnshan())
	assert.Error(t, cfg.RequireFNNAS())

	cfg.Enshan.Cookie = "c"
	cfg.FNNAS.Cookie = "c"
	cfg.Cloud189.Accounts = []model.Account{{Username: "u", Password: "p"}}
	accounts, err := cfg.RequireCloud189()
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
	assert.NoError(t, cfg.RequireEnshan())
	assert.NoError(t, cfg.RequireFNNAS())
}

func TestParseAccounts_HintMentionsCounts(t *testing.T) {
	_, err := ParseAccounts("a&b&c", "x&y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "用户名数量: 3, 密码数量: 2")
}
