package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"rollcall/pkg/requestcontext"
)

func TestClientIPFromRequest(t *testing.T) {
	t.Run("first X-Forwarded-For hop wins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		req.Header.Set("X-Forwarded-For", "10.0.0.5, 172.16.0.1")
		req.Header.Set("X-Real-IP", "192.168.1.1")
		assert.Equal(t, "10.0.0.5", ClientIPFromRequest(req))
	})

	t.Run("X-Real-IP used when no forwarded header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		req.Header.Set("X-Real-IP", " 192.168.1.1 ")
		assert.Equal(t, "192.168.1.1", ClientIPFromRequest(req))
	})

	t.Run("remote address port is stripped", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		req.RemoteAddr = "10.1.2.3:52311"
		assert.Equal(t, "10.1.2.3", ClientIPFromRequest(req))
	})

	t.Run("ipv6 remote address port is stripped", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		req.RemoteAddr = "[::1]:8088"
		assert.Equal(t, "::1", ClientIPFromRequest(req))
	})
}

func TestDeviceSummary(t *testing.T) {
	assert.Equal(t, "Unknown Device", DeviceSummary(""))

	chrome := "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	summary := DeviceSummary(chrome)
	assert.Contains(t, summary, "Chrome")
	assert.Contains(t, summary, " on ")

	iphone := "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	assert.Contains(t, DeviceSummary(iphone), "(mobile)")
}

func TestClientMetadataMiddleware(t *testing.T) {
	var gotIP, gotUA, gotDevice string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIP = requestcontext.ClientIP(r.Context())
		gotUA = requestcontext.UserAgent(r.Context())
		gotDevice = requestcontext.Device(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/getStudent/jerry", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.5")
	req.Header.Set("User-Agent", "curl/8.4.0")
	ClientMetadata(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "10.0.0.5", gotIP)
	assert.Equal(t, "curl/8.4.0", gotUA)
	assert.NotEmpty(t, gotDevice)
}
