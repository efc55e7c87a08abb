package obs

import (
	"crypto/sha256"
	"encoding/base64"
)

// authResponse computes the obs-websocket v5 challenge response:
// base64(sha256(base64(sha256(password + salt)) + challenge)).
func authResponse(password, salt, challenge string) string {
	secret := b64sha256(password + salt)
	return b64sha256(secret + challenge)
}

func b64sha256(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.StdEncoding.EncodeToString(sum[:])
}
