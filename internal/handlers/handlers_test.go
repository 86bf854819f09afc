package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/craftroni/shop/internal/config"
	"github.com/craftroni/shop/internal/models"
	"github.com/craftroni/shop/internal/session"
)

type testEnv struct {
	t        *testing.T
	e        *echo.Echo
	db       *gorm.DB
	sessions *session.Manager

	seedClock time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return &testEnv{
		t:         t,
		e:         echo.New(),
		db:        db,
		sessions:  session.NewManager(db, "test-secret", nil),
		seedClock: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// do runs a handler directly against a recorded request. Optional path
// parameters come in name/value pairs after the body.
func (env *testEnv) do(h echo.HandlerFunc, method, target string, body interface{}, params ...string) *httptest.ResponseRecorder {
	env.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(env.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)

	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)

	require.NoError(env.t, h(c))
	return rec
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env
}

type pagedResponse struct {
	Items      json.RawMessage `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int64           `json:"total_pages"`
}

func decodePaged(t *testing.T, rec *httptest.ResponseRecorder, items interface{}) pagedResponse {
	t.Helper()
	var paged pagedResponse
	decode(t, rec, &paged)
	if items != nil {
		require.NoError(t, json.Unmarshal(paged.Items, items))
	}
	return paged
}

// nextCreatedAt hands out strictly increasing timestamps so tests can
// rely on created_at ordering.
func (env *testEnv) nextCreatedAt() time.Time {
	env.seedClock = env.seedClock.Add(time.Minute)
	return env.seedClock
}

func (env *testEnv) seedCategory(name, slug string) models.Category {
	env.t.Helper()
	category := models.Category{Name: name, Slug: slug, IsActive: true}
	require.NoError(env.t, env.db.Create(&category).Error)
	return category
}

func (env *testEnv) seedProduct(category models.Category, name, slug string, price float64, stock int) models.Product {
	env.t.Helper()
	product := models.Product{
		Name:       name,
		Slug:       slug,
		Price:      price,
		Stock:      stock,
		IsActive:   true,
		CategoryID: category.ID,
		CreatedAt:  env.nextCreatedAt(),
	}
	require.NoError(env.t, env.db.Create(&product).Error)
	return product
}
