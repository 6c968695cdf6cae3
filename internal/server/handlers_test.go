package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/roomchat/internal/chat"
)

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "roomchat server is running!", rec.Body.String())
}

func TestRoomsEndpoint(t *testing.T) {
	app, ts := startTestApp(t, nil)
	app.Router().Register("c1", "alice")
	app.Router().JoinRoom("c1", "lobby")

	resp, body := get(t, ts.URL+"/rooms")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var rooms []chat.RoomInfo
	require.NoError(t, json.Unmarshal([]byte(body), &rooms))
	assert.Equal(t, []chat.RoomInfo{
		{Name: chat.DefaultRoom, UserCount: 0},
		{Name: "lobby", UserCount: 1},
	}, rooms)
}

func TestRoomsEndpointRejectsPost(t *testing.T) {
	_, ts := startTestApp(t, nil)

	resp, err := http.Post(ts.URL+"/rooms", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestWebSocketEndpointRejectsPost(t *testing.T) {
	_, ts := startTestApp(t, nil)

	resp, err := http.Post(ts.URL+"/ws", "text/plain", http.NoBody)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := startTestApp(t, nil)
	conn := connectWebSocket(t, ts)

	send(t, conn, eventRegister, 1, "alice")
	var reply chat.RegisterReply
	readAck(t, conn, 1, &reply)

	resp, body := get(t, ts.URL+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "roomchat_connections 1")
	assert.Contains(t, body, "roomchat_registered_users 1")
	assert.Contains(t, body, `roomchat_events_total{event="register",result="ok"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestCORSPreflight(t *testing.T) {
	_, ts := startTestApp(t, nil)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/rooms", http.NoBody)
	require.NoError(t, err)
	req.Header.Set("Origin", testOriginURL)
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, testOriginURL, resp.Header.Get("Access-Control-Allow-Origin"))
}
