// Package authdigest computes the salted password digest placed into the
// LOGIN and REGISTER request bodies. It is pure and stateless.
package authdigest

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// Hash returns the Base64-standard encoding of
// SHA-256(password || SHA-256(lowercase(email))), the exact material the
// server's reference implementation expects in a password field.
func Hash(password, email string) string {
	salt := sha256.Sum256([]byte(strings.ToLower(email)))

	h := sha256.New()
	h.Write([]byte(password))
	h.Write(salt[:])
	digest := h.Sum(nil)

	return base64.StdEncoding.EncodeToString(digest)
}
