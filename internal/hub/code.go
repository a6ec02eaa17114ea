package hub

import (
	"crypto/rand"
	"math/big"
)

// codeAlphabet excludes visually ambiguous characters (0/O, 1/I).
const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 6
)

// GenerateCode produces one candidate lobby code; the hub retries until the
// code is not already in use.
func GenerateCode() (string, error) {
	code := make([]byte, codeLength)
	for i := 0; i < codeLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[num.Int64()]
	}
	return string(code), nil
}
