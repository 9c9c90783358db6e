package api

import (
	echo "github.com/labstack/echo/v5"
)

// authorHeaders lists the proxy identity headers in precedence order:
// oauth2-proxy user, oauth2-proxy email, then kube-rbac-proxy user.
var authorHeaders = []string{"X-Forwarded-User", "X-Forwarded-Email", "X-Remote-User"}

// extractAuthor resolves the submitting identity from proxy headers, falling
// back to "api-client" for direct API callers.
func extractAuthor(c *echo.Context) string {
	for _, h := range authorHeaders {
		if v := c.Request().Header.Get(h); v != "" {
			return v
		}
	}
	return "api-client"
}
