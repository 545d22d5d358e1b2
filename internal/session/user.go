package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserInfo is the signed-in operator as returned by the backend at login.
type UserInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	CompanyID   string    `json:"company_id,omitempty"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the access token has lapsed at now.
func (u UserInfo) Expired(now time.Time) bool {
	return !u.ExpiresAt.IsZero() && !now.Before(u.ExpiresAt)
}

// TokenExpiry reads the exp claim of a JWT access token. The signature is
// not checked; the backend verifies the token on every call.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Login binds info to the session under a fresh id. Open dialogs of a
// previous user are dropped.
func Login(sess *Session, info UserInfo) {
	if info.ExpiresAt.IsZero() {
		if exp, ok := TokenExpiry(info.AccessToken); ok {
			info.ExpiresAt = exp
		}
	}
	sess.rotate()
	sess.user = &info
	clear(sess.pending)
	sess.Delete(CSRFSessionKey)
	sess.dirty = true
}

// Logout clears the user and marks the session for deletion.
func Logout(sess *Session) {
	sess.user = nil
	clear(sess.pending)
	sess.destroyed = true
}

// User returns the signed-in operator.
func (s *Session) User() (UserInfo, bool) {
	if s == nil || s.user == nil {
		return UserInfo{}, false
	}
	return *s.user, true
}

type contextKey struct{}

// WithSession stores the session in ctx.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext extracts the session from ctx.
func FromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(contextKey{}).(*Session)
	return sess
}

// UserFrom returns the signed-in, unexpired operator of the request.
func UserFrom(ctx context.Context) (UserInfo, bool) {
	user, ok := FromContext(ctx).User()
	if !ok || user.Expired(time.Now()) {
		return UserInfo{}, false
	}
	return user, true
}
