package model

// Account 是一个待签到的账号，从配置加载后不再修改。
type Account struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"-" yaml:"password"`
}

// String 只输出脱敏后的账号名，密码永远不会出现在日志或格式化输出中。
func (a Account) String() string {
	return MaskIdentifier(a.Username)
}

func (a Account) GoString() string {
	return "model.Account{Username:" + MaskIdentifier(a.Username) + "}"
}

// MaskIdentifier 隐藏手机号中间四位，例如 13800138000 -> 138****8000。
// 按字符计数，不是 11 位的标识原样返回。
func MaskIdentifier(id string) string {
	r := []rune(id)
	if len(r) != 11 {
		return id
	}
	return string(r[:3]) + "****" + string(r[7:])
}

// TokenSet 是一次登录尝试从登录页提取的全部临时字段。
type TokenSet struct {
	CaptchaToken string `json:"captchaToken"`
	LoginTicket  string `json:"lt"`
	ReturnURL    string `json:"returnUrl"`
	ParamID      string `json:"paramId"`
	PublicKey    string `json:"-"`
}

// EncryptedCredentials 中的两个字段都已带上 {RSA} 前缀，可直接提交。
type EncryptedCredentials struct {
	Username string
	Password string
}
