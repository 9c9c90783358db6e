package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/models"
)

func newAlertContext(t *testing.T, body any) (*echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts", strings.NewReader(string(raw)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSubmitAlertHandler_Validation(t *testing.T) {
	// Validation-only coverage: requests rejected before the service runs.
	// Queue-full (429) and duplicate (409) need a real DB and are covered
	// by the service and e2e tests.
	s := &Server{
		cfg: &config.Config{
			MCPServerRegistry: config.NewMCPServerRegistry(map[string]*config.MCPServerConfig{
				"kubernetes-server": {
					Transport: config.TransportConfig{
						Type:    config.TransportTypeStdio,
						Command: "kubectl-mcp",
					},
				},
			}),
		},
	}

	t.Run("missing data returns 400", func(t *testing.T) {
		c, _ := newAlertContext(t, map[string]any{
			"alert_type": "kubernetes",
		})

		err := s.submitAlertHandler(c)
		if assert.Error(t, err) {
			he, ok := err.(*echo.HTTPError)
			if assert.True(t, ok, "expected echo.HTTPError") {
				assert.Equal(t, http.StatusBadRequest, he.Code)
				assert.Contains(t, he.Message, "data field is required")
			}
		}
	})

	t.Run("oversized data returns 400", func(t *testing.T) {
		c, _ := newAlertContext(t, map[string]any{
			"alert_type": "kubernetes",
			"data":       strings.Repeat("a", agent.MaxAlertDataSize+1),
		})

		err := s.submitAlertHandler(c)
		if assert.Error(t, err) {
			he, ok := err.(*echo.HTTPError)
			if assert.True(t, ok) {
				assert.Equal(t, http.StatusBadRequest, he.Code)
				assert.Contains(t, he.Message, "exceeds maximum size")
			}
		}
	})

	t.Run("unknown MCP server returns 400", func(t *testing.T) {
		c, _ := newAlertContext(t, SubmitAlertRequest{
			AlertType: "kubernetes",
			Data:      `{"message": "pod crash-looping"}`,
			MCP: &models.MCPSelectionConfig{
				Servers: []models.MCPServerSelection{
					{Name: "no-such-server"},
				},
			},
		})

		err := s.submitAlertHandler(c)
		if assert.Error(t, err) {
			he, ok := err.(*echo.HTTPError)
			if assert.True(t, ok) {
				assert.Equal(t, http.StatusBadRequest, he.Code)
				assert.Contains(t, he.Message, "no-such-server")
			}
		}
	})

	t.Run("known MCP server passes validation", func(t *testing.T) {
		// Passing validation with a nil alert service would panic; only the
		// registry check itself is under test, so the malformed-body reject
		// path below stands in for the happy path (covered end to end in e2e).
		c, _ := newAlertContext(t, map[string]any{
			"alert_type": "kubernetes",
			"mcp": map[string]any{
				"servers": []map[string]any{{"name": "kubernetes-server"}},
			},
		})

		err := s.submitAlertHandler(c)
		if assert.Error(t, err) {
			he, ok := err.(*echo.HTTPError)
			if assert.True(t, ok) {
				// Rejected for the missing data field, not the MCP server.
				assert.Equal(t, http.StatusBadRequest, he.Code)
				assert.Contains(t, he.Message, "data field is required")
			}
		}
	})
}
