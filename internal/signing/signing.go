// Package signing generates and verifies HMAC signatures for the
// time-limited sign links embedded in invitation email.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// Signer generates and validates HMAC based signatures.
type Signer struct {
	secret []byte
}

// NewSigner creates a Signer.
func NewSigner(secret []byte) *Signer {
	return &Signer{secret: secret}
}

// Sign returns the hex signature for an invitation ID and expiry.
func (s *Signer) Sign(invitationID string, expiresUnix int64) string {
	mac := hmac.New(sha256.New, s.secret)
	payload := fmt.Sprintf("%s:%d", invitationID, expiresUnix)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Validate checks a signature against the invitation ID and the raw
// expires query parameter. Signatures past their expiry never validate.
func (s *Signer) Validate(invitationID, expires, signature string) bool {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return false
	}
	if time.Now().Unix() > exp {
		return false
	}
	expected := s.Sign(invitationID, exp)
	// Constant-time comparison to avoid timing attacks.
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignURL builds the full sign link for an invitation.
func (s *Signer) SignURL(baseURL, invitationID string, expiresAt time.Time) string {
	exp := expiresAt.Unix()
	return fmt.Sprintf("%s/sign/%s?expires=%d&signature=%s", baseURL, invitationID, exp, s.Sign(invitationID, exp))
}
