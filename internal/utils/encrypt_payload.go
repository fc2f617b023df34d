package utils

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"

	"signin_engine/internal/model"
)

// RSAPrefix 是登录接口要求的密文前缀。
const RSAPrefix = "{RSA}"

// KeyFormatError 表示登录页给出的公钥无法解析。
type KeyFormatError struct {
	Err error
}

func (e *KeyFormatError) Error() string {
	return "invalid public key: " + e.Err.Error()
}

func (e *KeyFormatError) Unwrap() error { return e.Err }

// EncryptionError 表示 RSA 加密本身失败（例如明文超过密钥长度）。
type EncryptionError struct {
	Err error
}

func (e *EncryptionError) Error() string {
	return "rsa encrypt: " + e.Err.Error()
}

func (e *EncryptionError) Unwrap() error { return e.Err }

// ParsePublicKeyBlob 把页面里裸的 base64 公钥套上 PEM 头尾后解析。
func ParsePublicKeyBlob(blob string) (*rsa.PublicKey, error) {
	armored := "-----BEGIN PUBLIC KEY-----\n" + blob + "\n-----END PUBLIC KEY-----"
	block, _ := pem.Decode([]byte(armored))
	if block == nil {
		return nil, &KeyFormatError{Err: errors.New("pem decode failed")}
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, &KeyFormatError{Err: err}
	}
	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, &KeyFormatError{Err: fmt.Errorf("unexpected key type %T", parsed)}
	}
	return pub, nil
}

// EncryptCredential 按登录页的规则加密账号或密码：
// 1) PKCS#1 v1.5 公钥加密
// 2) 标准 Base64 编码
// 3) 再经过 B64ToHex 转成十六进制串
// PKCS#1 填充带随机数，所以同一明文每次结果都不同。
func EncryptCredential(blob, plaintext string) (string, error) {
	pub, err := ParsePublicKeyBlob(blob)
	if err != nil {
		return "", err
	}
	cipher, err := rsa.EncryptPKCS1v15(rand.Reader, pub, []byte(plaintext))
	if err != nil {
		return "", &EncryptionError{Err: err}
	}
	out, err := B64ToHex(base64.StdEncoding.EncodeToString(cipher))
	if err != nil {
		return "", &EncryptionError{Err: err}
	}
	return out, nil
}

// EncryptCredentials 加密账号名和密码，并加上 {RSA} 前缀。
func EncryptCredentials(blob string, acc model.Account) (model.EncryptedCredentials, error) {
	user, err := EncryptCredential(blob, acc.Username)
	if err != nil {
		return model.EncryptedCredentials{}, err
	}
	pass, err := EncryptCredential(blob, acc.Password)
	if err != nil {
		return model.EncryptedCredentials{}, err
	}
	return model.EncryptedCredentials{
		Username: RSAPrefix + user,
		Password: RSAPrefix + pass,
	}, nil
}
