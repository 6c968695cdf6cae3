package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func requestWithOrigin(origin string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/ws", http.NoBody)
	if origin != "" {
		r.Header.Set("Origin", origin)
	}
	return r
}

func TestOriginPolicy(t *testing.T) {
	policy := newOriginPolicy([]string{"http://localhost:8080", " HTTPS://Chat.Example.com ", "not a url"}, zerolog.Nop())

	tests := []struct {
		origin string
		want   bool
	}{
		{"http://localhost:8080", true},
		{"HTTP://LOCALHOST:8080", true},
		{"https://chat.example.com", true},
		{"http://chat.example.com", false},
		{"http://localhost:3000", false},
		{"", false},
		{"null", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.checkOrigin(requestWithOrigin(tt.origin)))
		})
	}
}

func TestOriginPolicyWildcard(t *testing.T) {
	policy := newOriginPolicy([]string{"*"}, zerolog.Nop())

	assert.True(t, policy.isAllowed(requestWithOrigin("https://anywhere.example")))
	assert.False(t, policy.isAllowed(requestWithOrigin("")), "a missing origin is never allowed")
	assert.Equal(t, []string{"*"}, policy.corsOrigins())
}

func TestOriginPolicyEmpty(t *testing.T) {
	policy := newOriginPolicy(nil, zerolog.Nop())

	assert.False(t, policy.isAllowed(requestWithOrigin("http://localhost:8080")))
	assert.Empty(t, policy.corsOrigins())
}
