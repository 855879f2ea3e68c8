package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPResolver(t *testing.T) {
	r, err := NewIPResolver([]string{"10.0.0.0/8", "127.0.0.1", " "})
	require.NoError(t, err)

	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{"直连", "203.0.113.9:5000", nil, "203.0.113.9"},
		{"不可信对端忽略转发头", "203.0.113.9:5000", map[string]string{"X-Forwarded-For": "1.1.1.1"}, "203.0.113.9"},
		{"CF 优先", "10.1.2.3:80", map[string]string{
			"CF-Connecting-IP": "1.1.1.1", "X-Real-IP": "2.2.2.2", "X-Forwarded-For": "3.3.3.3",
		}, "1.1.1.1"},
		{"X-Real-IP", "127.0.0.1:80", map[string]string{"X-Real-IP": "2.2.2.2", "X-Forwarded-For": "3.3.3.3"}, "2.2.2.2"},
		{"XFF 取第一个", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "3.3.3.3, 10.0.0.5"}, "3.3.3.3"},
		{"非法头回退到对端", "10.0.0.1:80", map[string]string{"X-Real-IP": "not-an-ip"}, "10.0.0.1"},
		{"IPv6 对端", "[2001:db8::1]:443", nil, "2001:db8::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, r.ClientIP(req))
		})
	}
}

func TestIPResolver_Invalid(t *testing.T) {
	_, err := NewIPResolver([]string{"10.0.0.0/99"})
	assert.Error(t, err)
	_, err = NewIPResolver([]string{"localhost"})
	assert.Error(t, err)
}

func TestRateLimiter_ForwardedClients(t *testing.T) {
	ips, err := NewIPResolver([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	rl := NewRateLimiter(ips, time.Minute)
	defer rl.Stop()

	h := rl.Limit("x", 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	send := func(client string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:80"
		req.Header.Set("X-Real-IP", client)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	// 同一代理后面的不同客户端分别计数
	assert.Equal(t, http.StatusOK, send("1.1.1.1"))
	assert.Equal(t, http.StatusOK, send("2.2.2.2"))
	assert.Equal(t, http.StatusTooManyRequests, send("1.1.1.1"))

	rl.Stop()
	rl.Stop()
}
