package session

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/craftroni/shop/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Session{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestManager(t *testing.T) *Manager {
	return NewManager(newTestDB(t), "test-secret", nil)
}

func newTestContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func testUser(t *testing.T, db *gorm.DB, role string) models.User {
	t.Helper()
	user := models.User{Email: "admin@example.com", PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestIssueAndVerify(t *testing.T) {
	m := newTestManager(t)
	user := testUser(t, m.DB, models.RoleAdmin)

	c, rec := newTestContext()
	token, err := m.Issue(c, user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, CookieName, cookies[0].Name)
	require.Equal(t, token, cookies[0].Value)
	require.True(t, cookies[0].HttpOnly)

	claims := m.Verify(token)
	require.NotNil(t, claims)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, user.Email, claims.Email)
	require.Equal(t, models.RoleAdmin, claims.Role)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := newTestManager(t)
	require.Nil(t, m.Verify(""))
	require.Nil(t, m.Verify("not-a-token"))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	m := newTestManager(t)
	user := testUser(t, m.DB, models.RoleAdmin)

	c, _ := newTestContext()
	token, err := m.Issue(c, user)
	require.NoError(t, err)

	other := NewManager(m.DB, "other-secret", nil)
	require.Nil(t, other.Verify(token))
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := newTestManager(t)

	exp := time.Now().Add(-time.Minute)
	claims := jwt.MapClaims{"sub": 1, "email": "a@b.c", "role": models.RoleAdmin, "exp": exp.Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.Secret)
	require.NoError(t, err)

	require.Nil(t, m.Verify(token))
}

func TestVerifyRejectsRevokedToken(t *testing.T) {
	m := newTestManager(t)
	user := testUser(t, m.DB, models.RoleAdmin)

	c, _ := newTestContext()
	token, err := m.Issue(c, user)
	require.NoError(t, err)
	require.NotNil(t, m.Verify(token))

	require.NoError(t, m.DB.Where("token = ?", token).Delete(&models.Session{}).Error)
	require.Nil(t, m.Verify(token))
}

func TestRevokeDeletesMirrorAndExpiresCookie(t *testing.T) {
	m := newTestManager(t)
	user := testUser(t, m.DB, models.RoleAdmin)

	c, _ := newTestContext()
	token, err := m.Issue(c, user)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec := httptest.NewRecorder()
	require.NoError(t, m.Revoke(e.NewContext(req, rec)))

	require.Nil(t, m.Verify(token))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.True(t, cookies[0].Expires.Before(time.Now()))
}

func TestSweepExpired(t *testing.T) {
	m := newTestManager(t)
	user := testUser(t, m.DB, models.RoleCustomer)

	live := models.Session{Token: "live", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}
	dead := models.Session{Token: "dead", UserID: user.ID, ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, m.DB.Create(&live).Error)
	require.NoError(t, m.DB.Create(&dead).Error)

	n, err := m.SweepExpired()
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	var count int64
	require.NoError(t, m.DB.Model(&models.Session{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestRequireAdmin(t *testing.T) {
	m := newTestManager(t)
	e := echo.New()

	handler := m.RequireAdmin(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	do := func(cookie *http.Cookie) (*httptest.ResponseRecorder, error) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		rec := httptest.NewRecorder()
		return rec, handler(e.NewContext(req, rec))
	}

	// No cookie at all.
	_, err := do(nil)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusUnauthorized, httpErr.Code)

	// Valid session, wrong role.
	customer := testUser(t, m.DB, models.RoleCustomer)
	c, _ := newTestContext()
	customerToken, err := m.Issue(c, customer)
	require.NoError(t, err)
	_, err = do(&http.Cookie{Name: CookieName, Value: customerToken})
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusUnauthorized, httpErr.Code)

	// Admin session passes through.
	admin := models.User{Email: "root@example.com", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, m.DB.Create(&admin).Error)
	c, _ = newTestContext()
	adminToken, err := m.Issue(c, admin)
	require.NoError(t, err)
	rec, err := do(&http.Cookie{Name: CookieName, Value: adminToken})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
}
