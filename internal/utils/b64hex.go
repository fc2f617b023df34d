package utils

import (
	"fmt"
	"strings"
)

const (
	b64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	hexDigits   = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// B64ToHex 复刻登录页 JS 里的 b64tohex：逐个 6 bit 读入，用 4 状态移位寄存器
// 拼出 4 bit 一组的十六进制字符。"=" 不参与计算。
// 对于合法的 base64 输入，结果等价于先解码再做小写 hex 编码。
func B64ToHex(in string) (string, error) {
	var (
		sb    strings.Builder
		state int
		carry int
	)
	sb.Grow(len(in) * 3 / 2)

	for i := 0; i < len(in); i++ {
		ch := in[i]
		if ch == '=' {
			continue
		}
		v := strings.IndexByte(b64Alphabet, ch)
		if v < 0 {
			return "", fmt.Errorf("b64tohex: invalid character %q at %d", ch, i)
		}
		switch state {
		case 0:
			state = 1
			sb.WriteByte(hexDigits[v>>2])
			carry = v & 3
		case 1:
			state = 2
			sb.WriteByte(hexDigits[carry<<2|v>>4])
			carry = v & 15
		case 2:
			state = 3
			sb.WriteByte(hexDigits[carry])
			sb.WriteByte(hexDigits[v>>2])
			carry = v & 3
		default:
			state = 0
			sb.WriteByte(hexDigits[carry<<2|v>>4])
			sb.WriteByte(hexDigits[v&15])
			carry = 0
		}
	}
	if state == 1 {
		sb.WriteByte(hexDigits[carry<<2])
	}
	return sb.String(), nil
}
