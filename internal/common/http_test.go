package common

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded", headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, remote: "10.0.0.2:5000", want: "203.0.113.7"},
		{name: "garbage forwarded falls through", headers: map[string]string{"X-Forwarded-For": "unknown", "X-Real-IP": "198.51.100.4"}, remote: "10.0.0.2:5000", want: "198.51.100.4"},
		{name: "mapped v4", headers: map[string]string{"X-Real-IP": "::ffff:192.0.2.1"}, want: "192.0.2.1"},
		{name: "peer", remote: "10.0.0.2:5000", want: "10.0.0.2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tc.remote != "" {
				req.RemoteAddr = tc.remote
			}
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tc.want, ClientIP(req))
		})
	}
}
