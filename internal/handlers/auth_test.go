package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/craftroni/shop/internal/hash"
	"github.com/craftroni/shop/internal/models"
	"github.com/craftroni/shop/internal/session"
)

func (env *testEnv) seedUser(email, password, role string) models.User {
	env.t.Helper()
	hashed, err := hash.HashPassword(password)
	require.NoError(env.t, err)
	user := models.User{Email: email, PasswordHash: hashed, Role: role}
	require.NoError(env.t, env.db.Create(&user).Error)
	return user
}

// adminCookie issues a session for a fresh admin user.
func (env *testEnv) adminCookie() *http.Cookie {
	env.t.Helper()
	user := env.seedUser("admin@craftroni.pl", "secret123", models.RoleAdmin)
	c := env.e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	token, err := env.sessions.Issue(c, user)
	require.NoError(env.t, err)
	return &http.Cookie{Name: session.CookieName, Value: token}
}

func TestLoginSetsCookieAndMirror(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser("anna@craftroni.pl", "correct horse", models.RoleAdmin)
	h := &AuthHandler{DB: env.db, Sessions: env.sessions}

	rec := env.do(h.Login, http.MethodPost, "/api/auth",
		echo.Map{"email": "anna@craftroni.pl", "password": "correct horse"})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		User struct {
			ID    uint   `json:"id"`
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	resp := decode(t, rec, &body)
	require.True(t, resp.Success)
	require.Equal(t, user.ID, body.User.ID)
	require.Equal(t, models.RoleAdmin, body.User.Role)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, session.CookieName, cookies[0].Name)
	require.NotNil(t, env.sessions.Verify(cookies[0].Value))

	var mirrors int64
	require.NoError(t, env.db.Model(&models.Session{}).Count(&mirrors).Error)
	require.Equal(t, int64(1), mirrors)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser("anna@craftroni.pl", "correct horse", models.RoleAdmin)
	h := &AuthHandler{DB: env.db, Sessions: env.sessions}

	// Wrong password and unknown email answer identically.
	rec := env.do(h.Login, http.MethodPost, "/api/auth",
		echo.Map{"email": "anna@craftroni.pl", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "invalid email or password", decode(t, rec, nil).Error)

	rec = env.do(h.Login, http.MethodPost, "/api/auth",
		echo.Map{"email": "nobody@craftroni.pl", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "invalid email or password", decode(t, rec, nil).Error)
}

func TestLoginRequiresEmailAndPassword(t *testing.T) {
	env := newTestEnv(t)
	h := &AuthHandler{DB: env.db, Sessions: env.sessions}

	rec := env.do(h.Login, http.MethodPost, "/api/auth", echo.Map{"email": "a@b.c"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginSweepsExpiredSessions(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser("anna@craftroni.pl", "correct horse", models.RoleAdmin)
	h := &AuthHandler{DB: env.db, Sessions: env.sessions}

	stale := models.Session{Token: "stale", UserID: user.ID, ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, env.db.Create(&stale).Error)

	rec := env.do(h.Login, http.MethodPost, "/api/auth",
		echo.Map{"email": "anna@craftroni.pl", "password": "correct horse"})
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, env.db.Model(&models.Session{}).Where("token = ?", "stale").Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestLogoutRevokesSession(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.adminCookie()
	h := &AuthHandler{DB: env.db, Sessions: env.sessions}

	req := httptest.NewRequest(http.MethodDelete, "/api/auth", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Logout(env.e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	require.Nil(t, env.sessions.Verify(cookie.Value))

	// Logging out again without a session is still a 200.
	rec = env.do(h.Logout, http.MethodDelete, "/api/auth", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.adminCookie()
	h := &AuthHandler{DB: env.db, Sessions: env.sessions}

	rec := env.do(h.Me, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	require.NoError(t, h.Me(env.e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Authenticated bool `json:"authenticated"`
		User          struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	decode(t, rec, &body)
	require.True(t, body.Authenticated)
	require.Equal(t, "admin@craftroni.pl", body.User.Email)
	require.Equal(t, models.RoleAdmin, body.User.Role)
}
