package common

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// ProvisionPassword derives the initial chat password for a provisioned
// user. Both the HR system and the chat backend compute it from the shared
// secret, so provisioning needs no credential exchange. Users are expected
// to change it on first login.
func ProvisionPassword(chatUserId, sharedSecret string) string {
	mac := hmac.New(sha256.New, []byte(sharedSecret))
	mac.Write([]byte(chatUserId))
	return hex.EncodeToString(mac.Sum(nil))[:32]
}

// VerifyProvisionPassword checks a candidate against the derived password in
// constant time
func VerifyProvisionPassword(chatUserId, sharedSecret, candidate string) bool {
	expected := ProvisionPassword(chatUserId, sharedSecret)
	return hmac.Equal([]byte(expected), []byte(candidate))
}
