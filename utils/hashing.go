package utils

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
)

func CheapHash(input string) string {
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash)
}

func CheapCompareHash(input string, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(CheapHash(input)), []byte(hash)) == 1
}
