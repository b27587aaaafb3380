// Package signature verifies inbound webhook authenticity. The booking
// platform signs each forwarded email as HMAC-SHA256 over
// "<messageId>.<date>" with a shared secret and declares the digest in an
// "sha256=<hex>" header.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

// Header is the request header carrying the webhook signature.
const Header = "X-Vivi-Signature"

var headerRe = regexp.MustCompile(`(?i)^sha256=([0-9a-f]+)$`)

// Verify checks the signature header against the shared secret. An empty
// secret means signing is not configured and verification is skipped, which
// keeps development setups working unsigned. A configured secret
// with a missing or malformed header, absent messageID/date, or a digest
// mismatch fails closed.
func Verify(header, messageID, date, secret string) bool {
	if secret == "" {
		return true
	}
	m := headerRe.FindStringSubmatch(header)
	if m == nil {
		return false
	}
	if messageID == "" || date == "" {
		return false
	}
	declared, err := hex.DecodeString(m[1])
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(messageID + "." + date))
	return hmac.Equal(declared, mac.Sum(nil))
}

// Sign computes the header value for a payload; used by tests and by
// operators wiring up the forwarding rule.
func Sign(messageID, date, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(messageID + "." + date))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
