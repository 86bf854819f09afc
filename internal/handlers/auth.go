package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/craftroni/shop/internal/hash"
	"github.com/craftroni/shop/internal/models"
	"github.com/craftroni/shop/internal/mykafka"
	"github.com/craftroni/shop/internal/session"
)

type AuthHandler struct {
	DB       *gorm.DB
	Sessions *session.Manager
	Producer *mykafka.Producer
}

// Login verifies credentials and sets the session cookie. Unknown
// email and wrong password answer with the same message.
func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return respondError(c, http.StatusBadRequest, "email and password are required")
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, http.StatusUnauthorized, "invalid email or password")
		}
		return serverError(c, err)
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return respondError(c, http.StatusUnauthorized, "invalid email or password")
	}

	if _, err := h.Sessions.Issue(c, user); err != nil {
		return serverError(c, err)
	}

	// Opportunistic prune alongside the background sweeper.
	if _, err := h.Sessions.SweepExpired(); err != nil {
		c.Logger().Errorf("session sweep error: %v", err)
	}

	publish(c, h.Producer, "auth_events", fmt.Sprint(user.ID), map[string]interface{}{
		"type":   "user_logged_in",
		"userID": user.ID,
		"email":  user.Email,
		"role":   user.Role,
	})

	return respondData(c, http.StatusOK, echo.Map{
		"user": echo.Map{"id": user.ID, "email": user.Email, "role": user.Role},
	})
}

// Logout revokes the mirror row and clears the cookie. Calling it
// without a session is fine.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.Sessions.Revoke(c); err != nil {
		return serverError(c, err)
	}
	return respondData(c, http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHandler) Me(c echo.Context) error {
	claims := h.Sessions.FromRequest(c)
	if claims == nil {
		return respondError(c, http.StatusUnauthorized, "not authenticated")
	}
	return respondData(c, http.StatusOK, echo.Map{
		"authenticated": true,
		"user": echo.Map{
			"id":    claims.UserID,
			"email": claims.Email,
			"role":  claims.Role,
		},
	})
}
