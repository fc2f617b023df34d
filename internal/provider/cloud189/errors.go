package cloud189

import "errors"

var (
	ErrRedirectNotFound   = errors.New("未找到动态登录页")
	ErrLoginEntryNotFound = errors.New("登录入口获取失败")
)

// TokenExtractionError 表示登录页缺少某个必需字段，Field 为字段名。
type TokenExtractionError struct {
	Field string
}

func (e *TokenExtractionError) Error() string {
	return "登录参数解析失败: 缺少 " + e.Field
}

// LoginFailedError 是服务端明确拒绝登录（result != 0）时的结果。
type LoginFailedError struct {
	Message string
}

func (e *LoginFailedError) Error() string {
	return "服务端拒绝登录: " + e.Message
}
