package dify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dify-migrate/internal/core/domain"
	"github.com/custodia-labs/dify-migrate/internal/logger"
)

// consoleFixture is a fake console API tracking logins and issued tokens.
type consoleFixture struct {
	t          *testing.T
	logins     atomic.Int32
	validToken string
}

func (f *consoleFixture) mount(r chi.Router) {
	r.Post("/console/api/login", func(w http.ResponseWriter, req *http.Request) {
		var body loginRequest
		require.NoError(f.t, json.NewDecoder(req.Body).Decode(&body))
		if body.Email != "admin@example.com" || body.Password != "password123" {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		f.logins.Add(1)
		var resp loginResponse
		resp.Data.AccessToken = f.validToken
		writeJSON(f.t, w, resp)
	})
}

func (f *consoleFixture) authorised(req *http.Request) bool {
	return req.Header.Get("Authorization") == "Bearer "+f.validToken
}

func TestListAppsLazyLogin(t *testing.T) {
	fixture := &consoleFixture{t: t, validToken: "session-1"}
	r := chi.NewRouter()
	fixture.mount(r)
	r.Get("/console/api/apps", func(w http.ResponseWriter, req *http.Request) {
		if !fixture.authorised(req) {
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		writeJSON(t, w, appListResponse{
			Data:    []appDTO{{ID: "app-1", Name: "support-bot", Mode: "chat"}},
			HasMore: false,
		})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	// Two console calls; login happens once, lazily.
	for i := 0; i < 2; i++ {
		apps, err := c.ListAllApps(context.Background())
		require.NoError(t, err)
		require.Len(t, apps, 1)
		assert.Equal(t, "support-bot", apps[0].Name)
	}
	assert.Equal(t, int32(1), fixture.logins.Load())
}

func TestConsoleReloginOnExpiredSession(t *testing.T) {
	fixture := &consoleFixture{t: t, validToken: "session-1"}
	var appCalls atomic.Int32

	r := chi.NewRouter()
	fixture.mount(r)
	r.Get("/console/api/apps", func(w http.ResponseWriter, req *http.Request) {
		// First call is rejected regardless, simulating expiry of a
		// previously cached session.
		if appCalls.Add(1) == 1 || !fixture.authorised(req) {
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		writeJSON(t, w, appListResponse{Data: []appDTO{{ID: "app-1", Name: "bot"}}})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	c.session = "stale-session"

	apps, err := c.ListAllApps(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, int32(1), fixture.logins.Load())
	assert.Equal(t, int32(2), appCalls.Load())
}

func TestConsoleRepeatedRejectionIsAuthError(t *testing.T) {
	fixture := &consoleFixture{t: t, validToken: "session-1"}
	r := chi.NewRouter()
	fixture.mount(r)
	r.Get("/console/api/apps", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthorised", http.StatusUnauthorized)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.ListAllApps(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuthError(err), "expected AuthError, got %v", err)
}

func TestConsoleMissingCredentials(t *testing.T) {
	cfg := domain.InstanceConfig{
		BaseURL: "http://unused.invalid/v1",
		APIKey:  "dataset-test-key-123",
	}
	require.NoError(t, cfg.Validate())
	c := NewClient(cfg, logger.New(testWriter{t}))

	_, err := c.ListAllApps(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.ErrorIs(t, err, domain.ErrConsoleCredentialsMissing)
}

func TestConsoleRejectedLogin(t *testing.T) {
	fixture := &consoleFixture{t: t, validToken: "session-1"}
	r := chi.NewRouter()
	fixture.mount(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	c.cfg.Password = "wrong-password"

	err := c.Login(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
}

func TestExportAppDSL(t *testing.T) {
	const dsl = "app:\n  name: support-bot\n"

	fixture := &consoleFixture{t: t, validToken: "session-1"}
	r := chi.NewRouter()
	fixture.mount(r)
	r.Get("/console/api/apps/{appID}/export", func(w http.ResponseWriter, req *http.Request) {
		if !fixture.authorised(req) {
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "app-1", chi.URLParam(req, "appID"))

		switch req.URL.Query().Get("include_secret") {
		case "true":
			writeJSON(t, w, map[string]string{"data": dsl + "secret: yes\n"})
		default:
			// Envelope form.
			writeJSON(t, w, map[string]string{"data": dsl})
		}
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	out, err := c.ExportAppDSL(context.Background(), "app-1", false)
	require.NoError(t, err)
	assert.Equal(t, dsl, out)

	out, err = c.ExportAppDSL(context.Background(), "app-1", true)
	require.NoError(t, err)
	assert.Contains(t, out, "secret: yes")
}

func TestExportAppDSLRawBody(t *testing.T) {
	const dsl = "app:\n  name: raw-bot\n"

	fixture := &consoleFixture{t: t, validToken: "session-1"}
	r := chi.NewRouter()
	fixture.mount(r)
	r.Get("/console/api/apps/{appID}/export", func(w http.ResponseWriter, req *http.Request) {
		if !fixture.authorised(req) {
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		// Older servers send the YAML text directly.
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write([]byte(dsl))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	out, err := c.ExportAppDSL(context.Background(), "app-1", false)
	require.NoError(t, err)
	assert.Equal(t, dsl, out)
}

func TestImportAppDSL(t *testing.T) {
	fixture := &consoleFixture{t: t, validToken: "session-1"}
	r := chi.NewRouter()
	fixture.mount(r)
	r.Post("/console/api/apps/imports", func(w http.ResponseWriter, req *http.Request) {
		if !fixture.authorised(req) {
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		var body importAppRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "yaml-content", body.Mode)
		assert.Contains(t, body.YAMLContent, "support-bot")

		var resp importAppResponse
		resp.Data.App = appDTO{ID: "app-new", Name: "support-bot"}
		writeJSON(t, w, resp)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	id, err := c.ImportAppDSL(context.Background(), "app:\n  name: support-bot\n")
	require.NoError(t, err)
	assert.Equal(t, "app-new", id)
}

func TestListAppsPagination(t *testing.T) {
	fixture := &consoleFixture{t: t, validToken: "session-1"}
	r := chi.NewRouter()
	fixture.mount(r)
	r.Get("/console/api/apps", func(w http.ResponseWriter, req *http.Request) {
		if !fixture.authorised(req) {
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		switch req.URL.Query().Get("page") {
		case "1":
			writeJSON(t, w, appListResponse{Data: []appDTO{{ID: "a", Name: "A"}}, HasMore: true})
		case "2":
			writeJSON(t, w, appListResponse{Data: []appDTO{{ID: "b", Name: "B"}}, HasMore: false})
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	apps, err := c.ListAllApps(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, "A", apps[0].Name)
	assert.Equal(t, "B", apps[1].Name)
}
