package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
)

func callAlertTypes(t *testing.T, chains map[string]*config.ChainConfig) AlertTypesResponse {
	t.Helper()

	s := &Server{cfg: &config.Config{ChainRegistry: config.NewChainRegistry(chains)}}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/alert-types", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, s.alertTypesHandler(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp AlertTypesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAlertTypesHandler(t *testing.T) {
	t.Run("returns sorted alert types with default chain", func(t *testing.T) {
		resp := callAlertTypes(t, map[string]*config.ChainConfig{
			"z-chain": {
				AlertTypes:  []string{"alert-z"},
				Description: "Z chain",
			},
			"a-chain": {
				AlertTypes:  []string{"alert-a1", "alert-a2"},
				Description: "A chain",
			},
		})

		// No configured default, so the first chain in sorted order wins.
		assert.Equal(t, "a-chain", resp.DefaultChainID)

		// Chains are emitted in sorted order: a-chain's types before z-chain's.
		require.Len(t, resp.AlertTypes, 3)
		assert.Equal(t, "alert-a1", resp.AlertTypes[0].Type)
		assert.Equal(t, "a-chain", resp.AlertTypes[0].ChainID)
		assert.Equal(t, "A chain", resp.AlertTypes[0].Description)
		assert.Equal(t, "alert-a2", resp.AlertTypes[1].Type)
		assert.Equal(t, "alert-z", resp.AlertTypes[2].Type)
		assert.Equal(t, "z-chain", resp.AlertTypes[2].ChainID)
	})

	t.Run("returns empty array for no chains", func(t *testing.T) {
		resp := callAlertTypes(t, map[string]*config.ChainConfig{})

		assert.Empty(t, resp.DefaultChainID)
		assert.NotNil(t, resp.AlertTypes, "should be empty array, not nil")
		assert.Len(t, resp.AlertTypes, 0)
	})
}
