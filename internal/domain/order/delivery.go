package order

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minAddressLen = 10
	maxAddressLen = 500
	maxNotesLen   = 200
)

var (
	phoneJunk = regexp.MustCompile(`[\s()\-]`)
	// 地址和备注里出现这些片段通常意味着注入尝试
	suspiciousMarkup = regexp.MustCompile(`(?i)<\s*script|javascript:|on\w+\s*=|data:`)
	// 地址额外检查SQL注入片段
	suspiciousSQL = regexp.MustCompile(`(?i);\s*select|union.*select|drop\s+table`)
)

// NormalizePhone 规范化俄罗斯手机号为+7XXXXXXXXXX
// 接受 +7 / 8 / 7 开头，允许空格、括号和连字符
func NormalizePhone(raw string) (string, error) {
	s := phoneJunk.ReplaceAllString(strings.TrimSpace(raw), "")
	if s == "" {
		return "", ErrInvalidPhone
	}

	switch {
	case strings.HasPrefix(s, "+7"):
		s = s[2:]
	case len(s) == 11 && (s[0] == '8' || s[0] == '7'):
		s = s[1:]
	default:
		return "", ErrInvalidPhone
	}

	if len(s) != 10 || !isASCIIDigits(s) {
		return "", ErrInvalidPhone
	}
	return "+7" + s, nil
}

// ValidateAddress 校验收货地址
func ValidateAddress(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(s)
	if n < minAddressLen || n > maxAddressLen {
		return "", ErrInvalidAddress
	}
	if suspiciousMarkup.MatchString(s) || suspiciousSQL.MatchString(s) {
		return "", ErrInvalidAddress
	}
	return s, nil
}

// SanitizeNotes 校验并转义备注，最多200个字符
func SanitizeNotes(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if utf8.RuneCountInString(s) > maxNotesLen {
		return "", ErrInvalidNotes
	}
	if suspiciousMarkup.MatchString(s) {
		return "", ErrInvalidNotes
	}
	return html.EscapeString(s), nil
}

// NewDelivery 校验并规范化收货信息
func NewDelivery(address, phone, notes string) (Delivery, error) {
	addr, err := ValidateAddress(address)
	if err != nil {
		return Delivery{}, err
	}
	p, err := NormalizePhone(phone)
	if err != nil {
		return Delivery{}, err
	}
	n, err := SanitizeNotes(notes)
	if err != nil {
		return Delivery{}, err
	}
	return Delivery{Address: addr, Phone: p, Notes: n}, nil
}
