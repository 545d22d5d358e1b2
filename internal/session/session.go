// Package session keeps operator sessions in Redis: the signed-in user,
// flash notifications, CSRF tokens and open confirmation dialogs.
package session

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/arguide/backoffice/internal/listctl"
)

// Flash is a one-time notification shown on the next rendered page.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Manager orchestrates cookie based sessions backed by Redis.
type Manager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
	secret     []byte
}

// Session holds per-request session data.
type Session struct {
	ID        string
	values    map[string]string
	user      *UserInfo
	flashes   []Flash
	pending   map[string]listctl.PendingMutation
	previous  string
	isNew     bool
	dirty     bool
	destroyed bool
}

type payload struct {
	Values  map[string]string                  `json:"values,omitempty"`
	User    *UserInfo                          `json:"user,omitempty"`
	Flashes []Flash                            `json:"flashes,omitempty"`
	Pending map[string]listctl.PendingMutation `json:"pending,omitempty"`
}

// NewManager constructs a Manager.
func NewManager(client *redis.Client, cookieName, secret string, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		secret:     []byte(secret),
	}
}

// Load loads the session named by the request cookie, or starts a new one.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return m.newSession(), nil
		}
		return nil, err
	}

	id, ok := m.verify(cookie.Value)
	if !ok {
		return m.newSession(), nil
	}
	data, err := m.client.Get(ctx, m.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Unknown ids are never adopted.
			return m.newSession(), nil
		}
		return nil, err
	}

	var stored payload
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}
	sess := &Session{
		ID:      id,
		values:  stored.Values,
		user:    stored.User,
		flashes: stored.Flashes,
		pending: stored.Pending,
	}
	if sess.values == nil {
		sess.values = make(map[string]string)
	}
	if sess.pending == nil {
		sess.pending = make(map[string]listctl.PendingMutation)
	}
	return sess, nil
}

// Commit persists the session and writes the cookie.
func (m *Manager) Commit(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return nil
	}

	if sess.destroyed {
		if err := m.client.Del(ctx, m.key(sess.ID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		http.SetCookie(w, &http.Cookie{
			Name:     m.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   m.secure,
			SameSite: http.SameSiteLaxMode,
		})
		return nil
	}

	if sess.previous != "" {
		if err := m.client.Del(ctx, m.key(sess.previous)).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		sess.previous = ""
	}

	if sess.isNew && !sess.dirty {
		return nil
	}
	if sess.dirty {
		data, err := json.Marshal(payload{Values: sess.values, User: sess.user, Flashes: sess.flashes, Pending: sess.pending})
		if err != nil {
			return err
		}
		if err := m.client.Set(ctx, m.key(sess.ID), data, m.ttl).Err(); err != nil {
			return err
		}
		sess.dirty = false
		sess.isNew = false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    m.sign(sess.ID),
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(m.ttl),
	})
	return nil
}

// Destroy marks the session for deletion on Commit.
func (m *Manager) Destroy(sess *Session) {
	if sess == nil {
		return
	}
	sess.destroyed = true
}

// TTL exposes the configured session lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }

// CookieName returns the cookie identifier used for sessions.
func (m *Manager) CookieName() string { return m.cookieName }

// Set stores a key-value pair.
func (s *Session) Set(key, value string) {
	s.values[key] = value
	s.dirty = true
}

// Get retrieves a value.
func (s *Session) Get(key string) string {
	return s.values[key]
}

// Delete removes a value.
func (s *Session) Delete(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	s.dirty = true
}

// AddFlash queues a flash message.
func (s *Session) AddFlash(f Flash) {
	s.flashes = append(s.flashes, f)
	s.dirty = true
}

// PopFlashes returns and clears the queued flash messages.
func (s *Session) PopFlashes() []Flash {
	if len(s.flashes) == 0 {
		return nil
	}
	out := s.flashes
	s.flashes = nil
	s.dirty = true
	return out
}

// SetPending remembers the open confirmation dialog of resource.
func (s *Session) SetPending(resource string, p listctl.PendingMutation) {
	s.pending[resource] = p
	s.dirty = true
}

// Pending returns the open confirmation dialog of resource.
func (s *Session) Pending(resource string) (listctl.PendingMutation, bool) {
	p, ok := s.pending[resource]
	return p, ok
}

// ClearPending forgets the dialog of resource.
func (s *Session) ClearPending(resource string) {
	if _, ok := s.pending[resource]; !ok {
		return
	}
	delete(s.pending, resource)
	s.dirty = true
}

// IsNew reports whether the session has not been stored yet.
func (s *Session) IsNew() bool { return s.isNew }

// rotate moves the session to a fresh id; the old record is deleted on Commit.
func (s *Session) rotate() {
	if !s.isNew {
		s.previous = s.ID
	}
	s.ID = newID()
	s.dirty = true
}

func (m *Manager) newSession() *Session {
	return &Session{
		ID:      newID(),
		values:  make(map[string]string),
		pending: make(map[string]listctl.PendingMutation),
		isNew:   true,
	}
}

func (m *Manager) key(id string) string {
	return "backoffice:session:" + id
}

func (m *Manager) sign(id string) string {
	mac := hmac.New(sha256.New, m.secret)
	_, _ = mac.Write([]byte(id))
	return id + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (m *Manager) verify(value string) (string, bool) {
	id, sig, found := strings.Cut(value, ".")
	if !found || id == "" {
		return "", false
	}
	expected := m.sign(id)
	if !hmac.Equal([]byte(expected), []byte(id+"."+sig)) {
		return "", false
	}
	return id, true
}

func newID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
