package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	// MaxPasswordBytes is the most bcrypt will hash
	MaxPasswordBytes = 72
)

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong    = fmt.Errorf("password must be at most %d bytes", MaxPasswordBytes)
	ErrEmailInUse         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Session is a signed-in user
type Session struct {
	Token     string    `json:"-"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Provider is the identity backend
type Provider interface {
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token string) error
	Session(ctx context.Context, token string) (*Session, bool)
}

type user struct {
	id     string
	email  string
	digest []byte
}

// MemoryProvider keeps accounts and sessions in process memory
type MemoryProvider struct {
	mu       sync.RWMutex
	users    map[string]*user
	sessions *cache.Cache
}

func NewMemoryProvider(sessionTTL time.Duration) *MemoryProvider {
	return &MemoryProvider{
		users:    make(map[string]*user),
		sessions: cache.New(sessionTTL, 10*time.Minute),
	}
}

// AddUser registers an account without opening a session
func (p *MemoryProvider) AddUser(email, password string) error {
	_, err := p.register(email, password)
	return err
}

func (p *MemoryProvider) SignUp(ctx context.Context, email, password string) (*Session, error) {
	u, err := p.register(email, password)
	if err != nil {
		return nil, err
	}
	slog.Info("User signed up", "user_id", u.id)
	return p.open(u), nil
}

func (p *MemoryProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	p.mu.RLock()
	u, ok := p.users[normalizeEmail(email)]
	p.mu.RUnlock()
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.digest, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return p.open(u), nil
}

func (p *MemoryProvider) SignOut(ctx context.Context, token string) error {
	p.sessions.Delete(token)
	return nil
}

func (p *MemoryProvider) Session(ctx context.Context, token string) (*Session, bool) {
	if token == "" {
		return nil, false
	}
	v, found := p.sessions.Get(token)
	if !found {
		return nil, false
	}
	s, ok := v.(*Session)
	if !ok {
		return nil, false
	}
	out := *s
	return &out, true
}

func (p *MemoryProvider) register(email, password string) (*user, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Name != "" {
		return nil, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	if len(password) > MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	key := normalizeEmail(addr.Address)
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.users[key]; exists {
		return nil, ErrEmailInUse
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	u := &user{id: uuid.NewString(), email: key, digest: digest}
	p.users[key] = u
	return u, nil
}

func (p *MemoryProvider) open(u *user) *Session {
	s := &Session{
		Token:     uuid.NewString(),
		UserID:    u.id,
		Email:     u.email,
		CreatedAt: time.Now(),
	}
	p.sessions.Set(s.Token, s, cache.DefaultExpiration)
	out := *s
	return &out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
