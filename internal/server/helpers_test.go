package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testOriginURL = "http://localhost:8080"

// testFrame is an outbound frame as a client sees it.
type testFrame struct {
	Event string          `json:"event"`
	Ack   *int64          `json:"ack"`
	Data  json.RawMessage `json:"data"`
}

// startTestApp runs an App behind an httptest server with the hub loop
// started. Both are stopped when the test ends.
func startTestApp(t *testing.T, configure func(*Config)) (*App, *httptest.Server) {
	t.Helper()

	cfg := NewConfig()
	if configure != nil {
		configure(cfg)
	}
	app := NewApp(cfg, zerolog.Nop())
	go app.Hub().Run()

	ts := httptest.NewServer(app.Handler())
	t.Cleanup(func() {
		ts.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = app.Hub().Shutdown(ctx)
	})
	return app, ts
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

// connectWebSocket dials the test server with the allowed origin.
func connectWebSocket(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	headers := http.Header{}
	headers.Set("Origin", testOriginURL)

	conn, resp, err := dialer.Dial(wsURL(ts), headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, ack int64, data any) {
	t.Helper()

	frame := map[string]any{"event": event, "data": data}
	if ack > 0 {
		frame["ack"] = ack
	}
	require.NoError(t, conn.WriteJSON(frame))
}

// readUntil reads frames until one named event arrives, skipping others.
func readUntil(t *testing.T, conn *websocket.Conn, event string) testFrame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var f testFrame
		require.NoError(t, conn.ReadJSON(&f), "waiting for %q", event)
		if f.Event == event {
			return f
		}
	}
}

// readAck reads frames until the reply for ack arrives and decodes it into v.
func readAck(t *testing.T, conn *websocket.Conn, ack int64, v any) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var f testFrame
		require.NoError(t, conn.ReadJSON(&f), "waiting for ack %d", ack)
		if f.Event == eventAck && f.Ack != nil && *f.Ack == ack {
			require.NoError(t, json.Unmarshal(f.Data, v))
			return
		}
	}
}

func decode[T any](t *testing.T, f testFrame) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(f.Data, &v))
	return v
}
