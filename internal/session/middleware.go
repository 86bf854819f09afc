package session

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/craftroni/shop/internal/models"
)

// RequireAdmin gates a route on a valid session with the ADMIN role.
// Anything else, including an expired or revoked token, is a plain 401.
func (m *Manager) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims := m.FromRequest(c)
		if claims == nil || claims.Role != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		setUserContext(c, claims)
		return next(c)
	}
}

func setUserContext(c echo.Context, claims *Claims) {
	c.Set("userID", claims.UserID)
	c.Set("email", claims.Email)
	c.Set("role", claims.Role)
}

// StartSweeper prunes expired session rows until ctx is cancelled.
func (m *Manager) StartSweeper(ctx context.Context, every time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := m.SweepExpired()
				if err != nil {
					m.Log.Error("session sweep failed", "error", err)
				} else if n > 0 {
					m.Log.Info("swept expired sessions", "count", n)
				}
			}
		}
	}()
}
