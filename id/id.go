package id

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Alphanumeric only: conversation ids are built by joining
// other ids with "_".
const (
	alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	size     = 21
)

func Generate() string {
	return gonanoid.MustGenerate(alphabet, size)
}

func Valid(s string) bool {
	if len(s) != size {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return false
		}
	}

	return true
}
