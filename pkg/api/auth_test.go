package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
)

func TestExtractAuthor(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name: "no identity headers falls back to api-client",
			want: "api-client",
		},
		{
			name: "forwarded user wins over email",
			headers: map[string]string{
				"X-Forwarded-User":  "alice",
				"X-Forwarded-Email": "alice@example.com",
			},
			want: "alice",
		},
		{
			name: "email used when no user header",
			headers: map[string]string{
				"X-Forwarded-Email": "bob@example.com",
			},
			want: "bob@example.com",
		},
		{
			name: "remote user covers kube-rbac-proxy service accounts",
			headers: map[string]string{
				"X-Remote-User": "system:serviceaccount:my-namespace:my-api-client",
			},
			want: "system:serviceaccount:my-namespace:my-api-client",
		},
		{
			name: "forwarded user wins over remote user",
			headers: map[string]string{
				"X-Forwarded-User": "alice",
				"X-Remote-User":    "system:serviceaccount:ns:sa",
			},
			want: "alice",
		},
	}

	e := echo.New()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			assert.Equal(t, tc.want, extractAuthor(c))
		})
	}
}
