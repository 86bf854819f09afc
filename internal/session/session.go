// Package session issues and verifies the signed session cookie and
// keeps the server-side mirror rows that make revocation possible.
// Every verification failure resolves to "no session"; callers never
// see an error for a bad token, only a nil claims value.
package session

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/craftroni/shop/internal/models"
)

const (
	CookieName = "shop_session"
	TTL        = 7 * 24 * time.Hour

	// Deployment fallback only, same caveat as the original shop: set
	// JWT_SECRET in any real environment.
	defaultSecret = "craftroni-secret-key-change-in-production"
)

type Claims struct {
	UserID    uint
	Email     string
	Role      string
	ExpiresAt time.Time
}

type Manager struct {
	DB     *gorm.DB
	Secret []byte
	Log    *slog.Logger
}

func NewManager(db *gorm.DB, secret string, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	if secret == "" {
		log.Warn("JWT_SECRET is not set, falling back to the built-in default")
		secret = defaultSecret
	}
	return &Manager{DB: db, Secret: []byte(secret), Log: log}
}

func CreateCookie(name, value, path string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Issue signs a session token for the user, records the mirror row and
// sets the cookie on the response.
func (m *Manager) Issue(c echo.Context, user models.User) (string, error) {
	exp := time.Now().Add(TTL)
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"exp":   exp.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.Secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	mirror := models.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: exp,
	}
	if err := m.DB.Create(&mirror).Error; err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	c.SetCookie(CreateCookie(CookieName, token, "/", exp))
	return token, nil
}

// Verify resolves a raw token to claims, or nil for anything invalid:
// bad signature, expiry in the past, or a revoked (missing) mirror row.
func (m *Manager) Verify(raw string) *Claims {
	if raw == "" {
		return nil
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.Secret, nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return nil
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	expRaw, ok := claims["exp"].(float64)
	if !ok {
		return nil
	}
	exp := time.Unix(int64(expRaw), 0)
	if time.Now().After(exp) {
		return nil
	}

	var mirror models.Session
	if err := m.DB.Where("token = ?", raw).First(&mirror).Error; err != nil {
		return nil
	}
	if time.Now().After(mirror.ExpiresAt) {
		return nil
	}

	return &Claims{
		UserID:    uint(sub),
		Email:     email,
		Role:      role,
		ExpiresAt: exp,
	}
}

// FromRequest reads the session cookie and verifies it. Absent cookie
// means no session.
func (m *Manager) FromRequest(c echo.Context) *Claims {
	cookie, err := c.Cookie(CookieName)
	if err != nil {
		return nil
	}
	return m.Verify(cookie.Value)
}

// Revoke deletes the mirror row for the current cookie (if any) and
// expires the cookie. Logging out without a session is not an error.
func (m *Manager) Revoke(c echo.Context) error {
	cookie, err := c.Cookie(CookieName)
	if err == nil && cookie.Value != "" {
		if err := m.DB.Where("token = ?", cookie.Value).Delete(&models.Session{}).Error; err != nil {
			return err
		}
	}
	c.SetCookie(CreateCookie(CookieName, "", "/", time.Now().Add(-time.Hour)))
	return nil
}

// SweepExpired removes mirror rows whose expiry has passed.
func (m *Manager) SweepExpired() (int64, error) {
	res := m.DB.Where("expires_at < ?", time.Now()).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
