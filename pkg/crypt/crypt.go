// Package crypt 个人数据（手机号、收货地址）的落库加密
//
// 设计说明：
//  1. 密钥由配置中的口令经PBKDF2派生（32字节）
//  2. 使用ChaCha20-Poly1305（AEAD），每次加密随机nonce
//  3. 密文格式：base64url(nonce || ciphertext)
package crypt

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"
)

const (
	kdfIterations = 100000
	kdfSalt       = "meatshop_encryption_salt_v1"
)

// ErrMalformedCiphertext 密文格式错误或被篡改
var ErrMalformedCiphertext = errors.New("crypt: malformed ciphertext")

// Cipher 对称加解密器（并发安全）
type Cipher struct {
	key []byte
}

// NewCipher 由口令派生密钥
func NewCipher(passphrase string) (*Cipher, error) {
	if passphrase == "" {
		return nil, errors.New("crypt: empty passphrase")
	}
	key := pbkdf2.Key([]byte(passphrase), []byte(kdfSalt), kdfIterations, chacha20poly1305.KeySize, sha256.New)
	return &Cipher{key: key}, nil
}

// Encrypt 加密字符串，空串原样返回
func (c *Cipher) Encrypt(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}

	aead, err := chacha20poly1305.New(c.key)
	if err != nil {
		return "", fmt.Errorf("crypt: init aead: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("crypt: nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt 解密Encrypt的输出，空串原样返回
func (c *Cipher) Decrypt(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrMalformedCiphertext
	}

	aead, err := chacha20poly1305.New(c.key)
	if err != nil {
		return "", fmt.Errorf("crypt: init aead: %w", err)
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return "", ErrMalformedCiphertext
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrMalformedCiphertext
	}
	return string(plain), nil
}
