package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-tracker-api/internal/config"
	"github.com/yukikurage/project-tracker-api/internal/database"
	"github.com/yukikurage/project-tracker-api/internal/middleware"
	"gorm.io/driver/sqlite"
	gormlogger "gorm.io/gorm/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(sqlite.Open(":memory:"), gormlogger.Silent)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	cfg := config.DefaultConfig()
	cfg.RateLimit.JoinBurst = 100

	store, err := newSessionStore(cfg)
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.RequestID(), sessions.Sessions(cfg.Session.CookieName, store))
	registerRoutes(r, bootstrap(cfg, db))

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		sqlDB.Close()
	})
	return srv
}

// client is a signed-in user with its own cookie jar.
type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newClient(t *testing.T, srv *httptest.Server, name string) *client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	c := &client{t: t, base: srv.URL, http: &http.Client{Jar: jar}}

	status, _ := c.do(http.MethodPost, "/api/auth/signup", map[string]string{
		"name":     name,
		"email":    name + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, status)

	status, _ = c.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    name + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, status)
	return c
}

func (c *client) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(c.t, err)
	}

	req, err := http.NewRequest(method, c.base+path, bytes.NewReader(payload))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestHealthAndNoRoute(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, err = http.Get(srv.URL + "/api/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/projects")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestInvitationScenario(t *testing.T) {
	srv := newTestServer(t)
	alice := newClient(t, srv, "alice")
	bob := newClient(t, srv, "bob")
	dave := newClient(t, srv, "dave")

	status, project := alice.do(http.MethodPost, "/api/projects", map[string]any{"name": "Apollo"})
	require.Equal(t, http.StatusCreated, status)
	projectPath := fmt.Sprintf("/api/projects/%v", project["id"])

	status, _ = bob.do(http.MethodGet, projectPath, nil)
	require.Equal(t, http.StatusNotFound, status)

	status, code := alice.do(http.MethodPost, projectPath+"/invitation-code", nil)
	require.Equal(t, http.StatusCreated, status)
	first := code["code"].(string)

	status, joined := bob.do(http.MethodPost, "/api/projects/join", map[string]string{"code": first})
	require.Equal(t, http.StatusOK, status)
	member := joined["member"].(map[string]any)
	assert.Equal(t, "MEMBER", member["role"])

	status, body := bob.do(http.MethodPost, "/api/projects/join", map[string]string{"code": first})
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body["code"])

	status, _ = bob.do(http.MethodGet, projectPath+"/invitation-code", nil)
	require.Equal(t, http.StatusForbidden, status)

	status, code = alice.do(http.MethodPost, projectPath+"/invitation-code", nil)
	require.Equal(t, http.StatusCreated, status)
	second := code["code"].(string)
	assert.NotEqual(t, first, second)

	status, _ = dave.do(http.MethodPost, "/api/projects/join", map[string]string{"code": first})
	require.Equal(t, http.StatusNotFound, status)

	status, _ = dave.do(http.MethodPost, "/api/projects/join", map[string]string{"code": second})
	require.Equal(t, http.StatusOK, status)

	status, task := alice.do(http.MethodPost, projectPath+"/tasks", map[string]any{
		"name":      "Launch",
		"member_id": member["id"],
	})
	require.Equal(t, http.StatusCreated, status)
	taskPath := fmt.Sprintf("/api/tasks/%v", task["id"])

	status, updated := bob.do(http.MethodPatch, taskPath, map[string]any{"status": "DONE"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "DONE", updated["status"])

	status, _ = bob.do(http.MethodPatch, taskPath, map[string]any{"name": "Scrub"})
	require.Equal(t, http.StatusForbidden, status)

	status, _ = bob.do(http.MethodPost, projectPath+"/leave", nil)
	require.Equal(t, http.StatusOK, status)

	status, task = alice.do(http.MethodGet, taskPath, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, task["member_id"])

	status, _ = bob.do(http.MethodGet, taskPath, nil)
	require.Equal(t, http.StatusNotFound, status)

	status, _ = alice.do(http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = alice.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusUnauthorized, status)
}
