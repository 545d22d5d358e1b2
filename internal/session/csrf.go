package session

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

const (
	// CSRFSessionKey is the key used to persist tokens in the session store.
	CSRFSessionKey = "csrf_token"
	// CSRFFormField is the form field name carrying the CSRF token.
	CSRFFormField = "csrf_token"
	// CSRFHeader carries the token for non-form requests.
	CSRFHeader = "X-CSRF-Token"
)

var (
	// ErrCSRFTokenMissing occurs when the request or session lacks a token.
	ErrCSRFTokenMissing = errors.New("session: csrf token missing")
	// ErrCSRFTokenMismatch occurs when the tokens differ.
	ErrCSRFTokenMismatch = errors.New("session: csrf token mismatch")
)

// CSRF issues and verifies tokens bound to a session.
type CSRF struct {
	secret []byte
}

// NewCSRF returns a CSRF keyed by secret.
func NewCSRF(secret string) *CSRF {
	return &CSRF{secret: []byte(secret)}
}

// Token returns the session token, issuing one when absent.
func (c *CSRF) Token(sess *Session) string {
	if token := sess.Get(CSRFSessionKey); token != "" {
		return token
	}
	token := c.generate(sess.ID)
	sess.Set(CSRFSessionKey, token)
	return token
}

// Verify compares token with the session token in constant time.
func (c *CSRF) Verify(sess *Session, token string) error {
	if sess == nil || token == "" {
		return ErrCSRFTokenMissing
	}
	expected := sess.Get(CSRFSessionKey)
	if expected == "" {
		return ErrCSRFTokenMissing
	}
	if !hmac.Equal([]byte(expected), []byte(token)) {
		return ErrCSRFTokenMismatch
	}
	return nil
}

func (c *CSRF) generate(sessionID string) string {
	nonce := make([]byte, 16)
	_, _ = rand.Read(nonce)
	mac := hmac.New(sha256.New, c.secret)
	_, _ = mac.Write([]byte(sessionID))
	_, _ = mac.Write([]byte{'|'})
	_, _ = mac.Write(nonce)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
