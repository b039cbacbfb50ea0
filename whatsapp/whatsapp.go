package whatsapp

import (
	"net/url"
	"strings"
)

const baseURL = "https://wa.me/"

// Link builds a click-to-chat URL. Every non digit is stripped from
// phone; message is omitted when empty.
func Link(phone, message string) string {
	digits := Digits(phone)
	if digits == "" {
		return ""
	}

	if message == "" {
		return baseURL + digits
	}

	return baseURL + digits + "?text=" + escape(message)
}

func Digits(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// escape encodes spaces as %20 rather than "+".
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
