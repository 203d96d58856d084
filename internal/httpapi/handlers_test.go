package httpapi

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/decrypto-backend/internal/hub"
	"github.com/DoyleJ11/decrypto-backend/internal/identity"
	"github.com/DoyleJ11/decrypto-backend/internal/store"
	"github.com/DoyleJ11/decrypto-backend/internal/words"
)

type testAPI struct {
	handler http.Handler
	names   *identity.MemoryDirectory
	tokens  *identity.JWTAuthenticator
}

func newTestAPI(t *testing.T) testAPI {
	t.Helper()
	src := words.NewWeighted([]words.List{
		{Name: "words", Description: "default", Weight: 1, Words: []string{"river", "gold", "piano", "moon", "tiger", "salt", "cloud", "anchor"}},
		{Name: "tiny", Weight: 0, Words: []string{"one", "two"}},
	}, rand.New(rand.NewPCG(1, 2)))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := hub.NewHub(ctx, hub.Config{
		Store: store.NewMemory(),
		Words: src,
		Now:   time.Now,
	})
	names := identity.NewMemoryDirectory()
	tokens := identity.NewJWTAuthenticator("test-secret", time.Hour)
	return testAPI{
		handler: SetupRoutes(Deps{
			Hub:            h,
			Sources:        src,
			Auth:           tokens,
			Tokens:         tokens,
			Names:          names,
			AllowedOrigins: []string{"localhost:*"},
		}),
		names:  names,
		tokens: tokens,
	}
}

func (a testAPI) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGameLifecycle(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/decrypto/new", `{"name":"  Friday night  "}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created gameRef
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Friday night", created.Name)

	rec = api.do(t, http.MethodGet, "/api/decrypto/games", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var games []store.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &games))
	require.Len(t, games, 1)
	assert.Equal(t, created.ID, games[0].ID)

	rec = api.do(t, http.MethodGet, "/api/decrypto/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var info gameInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "preStart", info.Phase)
	assert.Empty(t, info.Teams[0])
	assert.Empty(t, info.Teams[1])

	rec = api.do(t, http.MethodDelete, "/api/decrypto/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/decrypto/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = api.do(t, http.MethodDelete, "/api/decrypto/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewGame_BadRequests(t *testing.T) {
	api := newTestAPI(t)
	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{"name":`},
		{"empty name", `{"name":"   "}`},
		{"too long", `{"name":"` + strings.Repeat("x", maxNameLength+1) + `"}`},
		{"not enough words", `{"name":"x","weights":{"words":0,"tiny":1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/api/decrypto/new", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestListSources(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/api/decrypto/sources", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var lists []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lists))
	require.Len(t, lists, 2)
	assert.Equal(t, "words", lists[0]["file"])
	assert.Equal(t, 1.0, lists[0]["weight"])
	assert.NotContains(t, lists[0], "words")
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/login", `{"username":"ann","displayName":"Ann"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	id, err := api.tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "ann", id.Username)

	name, err := api.names.DisplayName(context.Background(), "ann")
	require.NoError(t, err)
	assert.Equal(t, "Ann", name)

	rec = api.do(t, http.MethodPost, "/api/login", `{"username":" "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORS(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/decrypto/games", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec = httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOriginAllowed(t *testing.T) {
	patterns := []string{"localhost:*", "*.example.org"}
	tests := []struct {
		origin string
		want   bool
	}{
		{"http://localhost:3000", true},
		{"https://play.example.org", true},
		{"https://example.org", false},
		{"https://evil.example", false},
		{"::not a url", false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			assert.Equal(t, tt.want, originAllowed(tt.origin, patterns))
		})
	}
}
