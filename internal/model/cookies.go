package model

import (
	"net/http"
	"strings"
)

// ParseCookieHeader 把浏览器里复制出来的 "a=1; b=2" 形式的 Cookie 串拆成 http.Cookie。
// 没有 "=" 的片段会被忽略。
func ParseCookieHeader(raw string) []*http.Cookie {
	parts := strings.Split(raw, ";")
	out := make([]*http.Cookie, 0, len(parts))
	for _, part := range parts {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, &http.Cookie{Name: name, Value: strings.TrimSpace(value)})
	}
	return out
}

// CookieHeader 是 ParseCookieHeader 的逆过程，用于按固定顺序回写 Cookie 头。
func CookieHeader(cookies []*http.Cookie) string {
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		if c == nil || c.Name == "" {
			continue
		}
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}
