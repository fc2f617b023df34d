package report

import "signin_engine/internal/model"

// MaskIdentifier 是报告里账号列的写法，与 model.Account 的格式化输出一致。
func MaskIdentifier(id string) string {
	return model.MaskIdentifier(id)
}
