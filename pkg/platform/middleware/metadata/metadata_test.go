package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"portfolio/pkg/requestcontext"
)

func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "first forwarded address wins", headers: map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, remote: "10.0.0.2:1234", want: "1.2.3.4"},
		{name: "real ip header", headers: map[string]string{"X-Real-IP": " 5.6.7.8 "}, remote: "10.0.0.2:1234", want: "5.6.7.8"},
		{name: "remote addr ipv4", remote: "9.9.9.9:443", want: "9.9.9.9"},
		{name: "remote addr ipv6", remote: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "remote addr without port", remote: "9.9.9.9", want: "9.9.9.9"},
		{name: "nothing known", remote: "", want: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIPFromRequest(r))
		})
	}
}

func TestClientMetadata(t *testing.T) {
	var gotIP, gotUA string
	h := ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIP = requestcontext.ClientIP(r.Context())
		gotUA = requestcontext.UserAgent(r.Context())
	}))

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.Header.Set("X-Forwarded-For", "1.2.3.4")
	r.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0)")
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "1.2.3.4", gotIP)
	assert.Equal(t, "Mozilla/5.0 (Windows NT 10.0)", gotUA)
}
