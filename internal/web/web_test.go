package web_test

import (
	"context"
	"encoding/json"
	"image"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rook-computer/mirror/internal/input"
	"github.com/rook-computer/mirror/internal/registry"
	"github.com/rook-computer/mirror/internal/render"
	"github.com/rook-computer/mirror/internal/state"
	"github.com/rook-computer/mirror/internal/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMux(t *testing.T) (*http.ServeMux, *state.Store, *render.ImageOutput, *input.Bus) {
	t.Helper()
	store := state.NewStore()
	frames := render.NewImageOutput("")
	bus := input.NewBus()
	return web.NewDefaultMux(web.APIV1Config{State: store, Frames: frames}, bus), store, frames, bus
}

func do(mux http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestPing(t *testing.T) {
	mux, _, _, _ := newMux(t)

	rec := do(mux, http.MethodGet, "/api/v1/ping")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestDebugReportsModules(t *testing.T) {
	mux, store, _, _ := newMux(t)
	store.SetPhase(state.Running)
	store.UpdateFrames(state.FrameInfo{Count: 42})
	store.UpdateModules([]registry.Status{{Name: "clock", Source: "clock", Active: true}, {Name: "broken", Error: "boom"}})

	rec := do(mux, http.MethodGet, "/api/v1/debug")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Phase  string `json:"phase"`
		Frames struct {
			Count int64 `json:"count"`
		} `json:"frames"`
		Modules []struct {
			Name   string `json:"name"`
			Active bool   `json:"active"`
			Error  string `json:"error"`
		} `json:"modules"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "running", body.Phase)
	assert.Equal(t, int64(42), body.Frames.Count)
	require.Len(t, body.Modules, 2)
	assert.True(t, body.Modules[0].Active)
	assert.Equal(t, "boom", body.Modules[1].Error)
}

func TestFrame(t *testing.T) {
	mux, _, frames, _ := newMux(t)

	assert.Equal(t, http.StatusServiceUnavailable, do(mux, http.MethodGet, "/api/v1/frame.png").Code)

	require.NoError(t, frames.Present(image.NewRGBA(image.Rect(0, 0, 8, 8))))
	rec := do(mux, http.MethodGet, "/api/v1/frame.png")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))
}

func TestFrameWithoutSource(t *testing.T) {
	mux := web.NewDefaultMux(web.APIV1Config{State: state.NewStore()}, nil)

	assert.Equal(t, http.StatusNotFound, do(mux, http.MethodGet, "/api/v1/frame.png").Code)
	assert.Equal(t, http.StatusNotFound, do(mux, http.MethodPost, "/sim/quit").Code)
}

func TestSimEndpoints(t *testing.T) {
	mux, _, _, bus := newMux(t)

	assert.Equal(t, http.StatusAccepted, do(mux, http.MethodPost, "/sim/resize?w=800&h=600").Code)
	assert.Equal(t, http.StatusAccepted, do(mux, http.MethodPost, "/sim/reload").Code)
	assert.Equal(t, http.StatusBadRequest, do(mux, http.MethodPost, "/sim/resize?w=0&h=600").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(mux, http.MethodGet, "/sim/quit").Code)
	assert.Equal(t, http.StatusAccepted, do(mux, http.MethodPost, "/sim/quit").Code)

	events := bus.Drain()
	require.Len(t, events, 3)
	assert.Equal(t, input.Event{Kind: input.Resize, Width: 800, Height: 600, Source: "sim"}, events[0])
	assert.Equal(t, input.Reload, events[1].Kind)
	assert.Equal(t, input.Quit, events[2].Kind)
}

func TestDevCORS(t *testing.T) {
	h := web.WithDevCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/debug", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServerConfigFromEnv(t *testing.T) {
	t.Setenv(web.EnvListenAddr, "")
	t.Setenv(web.EnvDevMode, "")
	cfg, err := web.ServerConfigFromEnv(":8080")
	require.NoError(t, err)
	assert.Equal(t, web.ServerConfig{ListenAddr: ":8080"}, cfg)

	cfg, err = web.ServerConfigFromEnv("")
	require.NoError(t, err)
	assert.Empty(t, cfg.ListenAddr)

	t.Setenv(web.EnvListenAddr, "127.0.0.1:9999")
	t.Setenv(web.EnvDevMode, "true")
	cfg, err = web.ServerConfigFromEnv(":8080")
	require.NoError(t, err)
	assert.Equal(t, web.ServerConfig{ListenAddr: "127.0.0.1:9999", DevMode: true}, cfg)

	t.Setenv(web.EnvListenAddr, "off")
	cfg, err = web.ServerConfigFromEnv(":8080")
	require.NoError(t, err)
	assert.Empty(t, cfg.ListenAddr)

	t.Setenv(web.EnvListenAddr, "8080")
	_, err = web.ServerConfigFromEnv("")
	assert.Error(t, err)

	t.Setenv(web.EnvListenAddr, "")
	t.Setenv(web.EnvDevMode, "maybe")
	_, err = web.ServerConfigFromEnv(":8080")
	assert.Error(t, err)
}

func TestHTTPServerServesAndStops(t *testing.T) {
	mux, _, _, _ := newMux(t)
	srv := web.NewHTTPServer(web.ServerConfig{ListenAddr: "127.0.0.1:0"}, mux)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, srv.Start(ctx))
	resp, err := http.Get("http://" + srv.Addr() + "/api/v1/ping")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))

	require.NoError(t, srv.Stop())
	assert.Error(t, srv.Start(ctx))
}
