package utils

import "strings"

const (
	// 登录提交使用的桌面 UA，与网页端登录框一致。
	defaultLoginUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:74.0) Gecko/20100101 Firefox/76.0"
	// 签到/抽奖接口校验客户端指纹，必须是天翼云盘安卓客户端的 UA。
	defaultCloudAppUserAgent = "Mozilla/5.0 (Linux; Android 5.1.1; SM-G930K Build/NRD90M; wv) AppleWebKit/537.36 (KHTML, like Gecko) Version/4.0 Chrome/74.0.3729.136 Mobile Safari/537.36 Ecloud/8.6.3 Android/22 clientId/355325117317828 clientModel/SM-G930K imsi/460071114317824 clientChannelId/qq proVersion/1.0.6"
	defaultBrowserUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
	// 恩山论坛的积分页沿用旧版 Chrome UA。
	defaultEnshanUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

func DefaultLoginUserAgent() string { return defaultLoginUserAgent }

func DefaultCloudAppUserAgent() string { return defaultCloudAppUserAgent }

func DefaultBrowserUserAgent() string { return defaultBrowserUserAgent }

func DefaultEnshanUserAgent() string { return defaultEnshanUserAgent }

// NormalizeCloudAppUserAgent 保证签到用的 UA 带有客户端标识；空值或不像客户端的 UA 回退到默认值。
func NormalizeCloudAppUserAgent(ua string) string {
	v := strings.TrimSpace(ua)
	if v == "" {
		return defaultCloudAppUserAgent
	}
	if looksLikeCloudAppUA(v) {
		return v
	}
	return defaultCloudAppUserAgent
}

func looksLikeCloudAppUA(ua string) bool {
	s := strings.ToLower(ua)
	if !strings.Contains(s, "android") {
		return false
	}
	return strings.Contains(s, "ecloud/")
}
