package server_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Tyrowin/roomchat/internal/server"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		t.Run(method, func(t *testing.T) {
			rr := httptest.NewRecorder()

			server.HealthHandler(rr, httptest.NewRequest(method, "/", http.NoBody))

			require.Equal(t, http.StatusOK, rr.Code)
			require.Equal(t, "text/plain", rr.Header().Get("Content-Type"))
			require.Equal(t, server.HealthResponse, rr.Body.String())
		})
	}
}

func TestWebSocketHandlerMethodValidation(t *testing.T) {
	srv := startTestServer(t, nil)
	handler := server.WebSocketHandler(srv.hub)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			rr := httptest.NewRecorder()

			handler(rr, httptest.NewRequest(method, "/ws", http.NoBody))

			require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
		})
	}
}

func TestWebSocketHandlerGETWithoutUpgrade(t *testing.T) {
	srv := startTestServer(t, nil)
	rr := httptest.NewRecorder()

	server.WebSocketHandler(srv.hub)(rr, httptest.NewRequest(http.MethodGet, "/ws", http.NoBody))

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStatsHandler(t *testing.T) {
	srv := startTestServer(t, nil)

	resp, err := http.Get(srv.http.URL + "/stats")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestCreateServer(t *testing.T) {
	mux := http.NewServeMux()

	srv := server.CreateServer(":8080", mux)

	require.Equal(t, ":8080", srv.Addr)
	require.Equal(t, mux, srv.Handler)
	require.Equal(t, 15*time.Second, srv.ReadTimeout)
	require.Equal(t, 15*time.Second, srv.WriteTimeout)
	require.Equal(t, 60*time.Second, srv.IdleTimeout)
}
