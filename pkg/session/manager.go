package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/beam-cloud/mailtriage/pkg/types"
)

const (
	defaultCookieName = "mailtriage_session"
	defaultTTL        = 24 * time.Hour
	issuer            = "mailtriage"
)

// Claims carries the session id in the signed cookie
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Manager binds browsers to server-side session data through a signed cookie
type Manager struct {
	secret     []byte
	cookieName string
	ttl        time.Duration
	store      Store
}

func NewManager(cfg types.SessionConfig, store Store) *Manager {
	secret := cfg.Secret
	if secret == "" {
		// Random key: sessions won't survive a restart
		b := make([]byte, 32)
		rand.Read(b)
		secret = hex.EncodeToString(b)
		log.Warn().Msg("session secret not set, using a random key")
	}
	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}

	return &Manager{
		secret:     []byte(secret),
		cookieName: cfg.CookieName,
		ttl:        cfg.TTL,
		store:      store,
	}
}

// Sign issues a token for a session id
func (m *Manager) Sign(sessionID string) (string, error) {
	now := time.Now()
	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Validate parses a token and returns its session id
func (m *Manager) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		return "", err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.SessionID != "" {
		return claims.SessionID, nil
	}
	return "", jwt.ErrSignatureInvalid
}

// ID returns the session id from the request cookie, or "" when the cookie is
// missing, tampered or expired
func (m *Manager) ID(c echo.Context) string {
	cookie, err := c.Cookie(m.cookieName)
	if err != nil {
		return ""
	}
	id, err := m.Validate(cookie.Value)
	if err != nil {
		return ""
	}
	return id
}

// Load returns the current session's id and data
func (m *Manager) Load(c echo.Context) (string, *Data, error) {
	id := m.ID(c)
	if id == "" {
		return "", nil, types.ErrSessionNotFound
	}

	data, err := m.store.Get(c.Request().Context(), id)
	if err != nil {
		return id, nil, err
	}
	return id, data, nil
}

// Ensure returns the current session, starting a new one when there is none
func (m *Manager) Ensure(c echo.Context) (string, *Data, error) {
	id, data, err := m.Load(c)
	if err == nil {
		return id, data, nil
	}
	if !errors.Is(err, types.ErrSessionNotFound) {
		return "", nil, err
	}

	id = uuid.New().String()
	token, err := m.Sign(id)
	if err != nil {
		return "", nil, err
	}
	m.setCookie(c, token)

	return id, &Data{}, nil
}

// Save stores data for a session id
func (m *Manager) Save(c echo.Context, id string, data *Data) error {
	return m.store.Save(c.Request().Context(), id, data)
}

// Destroy removes the server-side data and clears the cookie
func (m *Manager) Destroy(c echo.Context) error {
	if id := m.ID(c); id != "" {
		if err := m.store.Delete(c.Request().Context(), id); err != nil {
			return err
		}
	}
	m.clearCookie(c)
	return nil
}

func (m *Manager) setCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Request().TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.ttl.Seconds()),
	})
}

func (m *Manager) clearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:   m.cookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}
