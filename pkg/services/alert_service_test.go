package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsoaresd/tarsy-bot-sub007/ent/alertsession"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/database"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/masking"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/models"
	testdb "github.com/rsoaresd/tarsy-bot-sub007/test/database"
)

func alertTestChainRegistry() *config.ChainRegistry {
	return config.NewChainRegistry(map[string]*config.ChainConfig{
		"k8s-analysis": {
			ID:          "k8s-analysis",
			AlertTypes:  []string{"pod-crash"},
			Description: "Kubernetes pod crash analysis",
			Stages: []config.StageConfig{
				{
					Name:   "analysis",
					Agents: []config.StageAgentConfig{{Name: "KubernetesAgent"}},
				},
			},
		},
		"default-chain": {
			ID:          "default-chain",
			AlertTypes:  []string{"generic"},
			Description: "Default generic analysis",
			Stages: []config.StageConfig{
				{
					Name:   "analysis",
					Agents: []config.StageAgentConfig{{Name: "GenericAgent"}},
				},
			},
		},
	})
}

type alertServiceOptions struct {
	masking      *masking.Service
	maxQueueSize int
}

func setupTestAlertService(t *testing.T, client *database.Client, opts alertServiceOptions) *AlertService {
	t.Helper()

	sessions := NewSessionService(client.Client)
	defaults := &config.Defaults{AlertType: "generic"}

	return NewAlertService(sessions, alertTestChainRegistry(), defaults, opts.masking, opts.maxQueueSize, nil)
}

func TestNewAlertService(t *testing.T) {
	client := testdb.NewTestClient(t)
	sessions := NewSessionService(client.Client)
	chainRegistry := config.NewChainRegistry(map[string]*config.ChainConfig{})
	defaults := &config.Defaults{AlertType: "generic"}

	t.Run("panics when sessions is nil", func(t *testing.T) {
		assert.Panics(t, func() {
			NewAlertService(nil, chainRegistry, defaults, nil, 0, nil)
		})
	})

	t.Run("panics when chainRegistry is nil", func(t *testing.T) {
		assert.Panics(t, func() {
			NewAlertService(sessions, nil, defaults, nil, 0, nil)
		})
	})

	t.Run("panics when defaults is nil", func(t *testing.T) {
		assert.Panics(t, func() {
			NewAlertService(sessions, chainRegistry, nil, nil, 0, nil)
		})
	})

	t.Run("succeeds with valid inputs", func(t *testing.T) {
		service := NewAlertService(sessions, chainRegistry, defaults, nil, 0, nil)
		assert.NotNil(t, service)
	})
}

func TestAlertService_SubmitAlert(t *testing.T) {
	client := testdb.NewTestClient(t)
	service := setupTestAlertService(t, client, alertServiceOptions{})
	ctx := context.Background()

	t.Run("creates session with all fields", func(t *testing.T) {
		input := SubmitAlertInput{
			AlertType: "pod-crash",
			Runbook:   "https://runbook.example.com/pod-crash",
			Data:      "Pod nginx-xyz crashed with exit code 137",
			MCP: &models.MCPSelectionConfig{
				Servers: []models.MCPServerSelection{{Name: "kubernetes-server"}},
			},
			Author: "test@example.com",
		}

		session, err := service.SubmitAlert(ctx, input)
		require.NoError(t, err)
		require.NotNil(t, session)

		assert.NotEmpty(t, session.ID)
		assert.Equal(t, ComputeAlertID("pod-crash", input.Data), session.AlertID)
		assert.Equal(t, input.Data, session.AlertData)
		assert.Equal(t, "chain:k8s-analysis", session.AgentType)
		assert.Equal(t, input.AlertType, session.AlertType)
		assert.Equal(t, "k8s-analysis", session.ChainID)
		assert.Equal(t, alertsession.StatusPending, session.Status)
		assert.NotZero(t, session.CreatedAt, "created_at should be set at submission")
		assert.Nil(t, session.StartedAtUs, "started_at_us should be nil until a worker claims the session")
		require.NotNil(t, session.Author)
		assert.Equal(t, input.Author, *session.Author)
		require.NotNil(t, session.RunbookURL)
		assert.Equal(t, input.Runbook, *session.RunbookURL)

		// Chain definition is frozen on the session
		assert.Equal(t, "k8s-analysis", session.ChainDefinition["ID"])
	})

	t.Run("uses default alert type when not provided", func(t *testing.T) {
		input := SubmitAlertInput{
			Data: "Generic alert data",
		}

		session, err := service.SubmitAlert(ctx, input)
		require.NoError(t, err)
		require.NotNil(t, session)

		assert.Equal(t, "generic", session.AlertType)
		assert.Equal(t, "default-chain", session.ChainID)
		assert.Equal(t, "chain:default-chain", session.AgentType)
		assert.Equal(t, alertsession.StatusPending, session.Status)
		assert.Nil(t, session.Author)
		assert.Nil(t, session.RunbookURL)
	})

	t.Run("validates alert data is required", func(t *testing.T) {
		input := SubmitAlertInput{
			AlertType: "pod-crash",
			Data:      "",
		}

		session, err := service.SubmitAlert(ctx, input)
		require.Error(t, err)
		assert.Nil(t, session)

		var validErr *ValidationError
		require.ErrorAs(t, err, &validErr)
		assert.Equal(t, "data", validErr.Field)
		assert.Contains(t, validErr.Error(), "required")
	})

	t.Run("rejects unknown alert type listing known types", func(t *testing.T) {
		input := SubmitAlertInput{
			AlertType: "nonexistent-type",
			Data:      "Some data",
		}

		session, err := service.SubmitAlert(ctx, input)
		require.Error(t, err)
		assert.Nil(t, session)

		var validErr *ValidationError
		require.ErrorAs(t, err, &validErr)
		assert.Equal(t, "alert_type", validErr.Field)
		assert.Contains(t, validErr.Error(), "no chain found")
		assert.Contains(t, validErr.Error(), "nonexistent-type")
		assert.Contains(t, validErr.Error(), "pod-crash", "error should list known types")
	})

	t.Run("stores MCP selection", func(t *testing.T) {
		input := SubmitAlertInput{
			Data: "Alert with MCP config",
			MCP: &models.MCPSelectionConfig{
				Servers: []models.MCPServerSelection{
					{Name: "kubernetes-server"},
					{Name: "test-server", Tools: []string{"query_logs"}},
				},
			},
		}

		session, err := service.SubmitAlert(ctx, input)
		require.NoError(t, err)
		require.NotNil(t, session)

		selection, err := models.ParseMCPSelectionConfig(session.McpSelection)
		require.NoError(t, err)
		require.NotNil(t, selection)
		assert.Len(t, selection.Servers, 2)
	})

	t.Run("stores slack message fingerprint", func(t *testing.T) {
		input := SubmitAlertInput{
			Data:                    "Alert with fingerprint",
			AlertType:               "pod-crash",
			SlackMessageFingerprint: "Pod nginx crashed OOMKilled",
		}

		session, err := service.SubmitAlert(ctx, input)
		require.NoError(t, err)
		require.NotNil(t, session)

		stored, err := client.AlertSession.Get(ctx, session.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.SlackMessageFingerprint)
		assert.Equal(t, "Pod nginx crashed OOMKilled", *stored.SlackMessageFingerprint)
	})

	t.Run("omits slack message fingerprint when empty", func(t *testing.T) {
		input := SubmitAlertInput{
			Data:      "Alert without fingerprint",
			AlertType: "pod-crash",
		}

		session, err := service.SubmitAlert(ctx, input)
		require.NoError(t, err)
		require.NotNil(t, session)

		stored, err := client.AlertSession.Get(ctx, session.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.SlackMessageFingerprint)
	})
}

func TestAlertService_SubmitAlert_Deduplication(t *testing.T) {
	client := testdb.NewTestClient(t)
	service := setupTestAlertService(t, client, alertServiceOptions{})
	ctx := context.Background()

	t.Run("identical payloads collide", func(t *testing.T) {
		input := SubmitAlertInput{
			AlertType: "pod-crash",
			Data:      "Pod api-server-1 OOMKilled",
		}

		_, err := service.SubmitAlert(ctx, input)
		require.NoError(t, err)

		_, err = service.SubmitAlert(ctx, input)
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("JSON formatting differences collide", func(t *testing.T) {
		first := SubmitAlertInput{
			AlertType: "pod-crash",
			Data:      `{"pod": "api-2", "reason": "OOMKilled"}`,
		}
		_, err := service.SubmitAlert(ctx, first)
		require.NoError(t, err)

		// Same object, different key order and whitespace
		second := SubmitAlertInput{
			AlertType: "pod-crash",
			Data:      "  {\"reason\":\"OOMKilled\",\"pod\":\"api-2\"}\n",
		}
		_, err = service.SubmitAlert(ctx, second)
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("same payload with different alert type does not collide", func(t *testing.T) {
		data := "disk usage at 95%"
		_, err := service.SubmitAlert(ctx, SubmitAlertInput{AlertType: "pod-crash", Data: data})
		require.NoError(t, err)

		_, err = service.SubmitAlert(ctx, SubmitAlertInput{AlertType: "generic", Data: data})
		assert.NoError(t, err)
	})
}

func TestAlertService_SubmitAlert_QueueAdmission(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects when pending queue is full", func(t *testing.T) {
		client := testdb.NewTestClient(t)
		service := setupTestAlertService(t, client, alertServiceOptions{maxQueueSize: 2})

		_, err := service.SubmitAlert(ctx, SubmitAlertInput{Data: "alert one"})
		require.NoError(t, err)
		_, err = service.SubmitAlert(ctx, SubmitAlertInput{Data: "alert two"})
		require.NoError(t, err)

		_, err = service.SubmitAlert(ctx, SubmitAlertInput{Data: "alert three"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrQueueFull)

		var qfe *QueueFullError
		require.ErrorAs(t, err, &qfe)
		assert.Equal(t, 2, qfe.QueueSize)
		assert.Equal(t, 2, qfe.MaxQueueSize)
	})

	t.Run("only pending sessions count against the limit", func(t *testing.T) {
		client := testdb.NewTestClient(t)
		sessions := NewSessionService(client.Client)
		service := NewAlertService(sessions, alertTestChainRegistry(), &config.Defaults{AlertType: "generic"}, nil, 1, nil)

		_, err := service.SubmitAlert(ctx, SubmitAlertInput{Data: "queued alert"})
		require.NoError(t, err)

		// A claimed session is in flight, not queued
		claimed, err := sessions.ClaimNextPendingSession(ctx, "pod-1")
		require.NoError(t, err)
		require.NotNil(t, claimed)

		_, err = service.SubmitAlert(ctx, SubmitAlertInput{Data: "next alert"})
		assert.NoError(t, err)
	})

	t.Run("zero max queue size disables admission control", func(t *testing.T) {
		client := testdb.NewTestClient(t)
		service := setupTestAlertService(t, client, alertServiceOptions{maxQueueSize: 0})

		for i := 0; i < 5; i++ {
			_, err := service.SubmitAlert(ctx, SubmitAlertInput{
				Data: "alert " + string(rune('a'+i)),
			})
			require.NoError(t, err)
		}
	})
}

func TestComputeAlertID(t *testing.T) {
	t.Run("canonicalizes JSON payloads", func(t *testing.T) {
		a := ComputeAlertID("pod-crash", `{"b": 2, "a": 1}`)
		b := ComputeAlertID("pod-crash", `{"a":1,"b":2}`)
		assert.Equal(t, a, b)
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		a := ComputeAlertID("pod-crash", "plain text alert")
		b := ComputeAlertID("pod-crash", "  plain text alert\n")
		assert.Equal(t, a, b)
	})

	t.Run("non-JSON payloads hash as-is", func(t *testing.T) {
		a := ComputeAlertID("pod-crash", "alert about {braces")
		b := ComputeAlertID("pod-crash", "alert about {braces")
		assert.Equal(t, a, b)
	})

	t.Run("alert type salts the hash", func(t *testing.T) {
		a := ComputeAlertID("pod-crash", "same payload")
		b := ComputeAlertID("generic", "same payload")
		assert.NotEqual(t, a, b)
	})
}

// --- Alert masking tests ---

func TestAlertService_SubmitAlert_MaskingApplied(t *testing.T) {
	client := testdb.NewTestClient(t)
	maskingSvc := masking.NewService(
		config.NewMCPServerRegistry(nil),
		masking.AlertMaskingConfig{Enabled: true, PatternGroup: "security"},
	)
	service := setupTestAlertService(t, client, alertServiceOptions{masking: maskingSvc})
	ctx := context.Background()

	input := SubmitAlertInput{
		Data: `Alert: password: "FAKE-S3CRET-NOT-REAL" found in config. Contact user@example.com`,
	}

	session, err := service.SubmitAlert(ctx, input)
	require.NoError(t, err)
	require.NotNil(t, session)

	// Read back from DB to verify masking was applied before storage
	stored, err := client.AlertSession.Get(ctx, session.ID)
	require.NoError(t, err)

	assert.NotContains(t, stored.AlertData, "FAKE-S3CRET-NOT-REAL", "Password should be masked")
	assert.NotContains(t, stored.AlertData, "user@example.com", "Email should be masked")
	assert.Contains(t, stored.AlertData, "[MASKED_PASSWORD]")
	assert.Contains(t, stored.AlertData, "[MASKED_EMAIL]")

	// Dedup key is computed over the masked payload
	assert.Equal(t, ComputeAlertID(stored.AlertType, stored.AlertData), stored.AlertID)
}

func TestAlertService_SubmitAlert_MaskingDisabled(t *testing.T) {
	client := testdb.NewTestClient(t)
	maskingSvc := masking.NewService(
		config.NewMCPServerRegistry(nil),
		masking.AlertMaskingConfig{Enabled: false, PatternGroup: "security"},
	)
	service := setupTestAlertService(t, client, alertServiceOptions{masking: maskingSvc})
	ctx := context.Background()

	input := SubmitAlertInput{
		Data: `password: "FAKE-S3CRET-NOT-REAL"`,
	}

	session, err := service.SubmitAlert(ctx, input)
	require.NoError(t, err)
	require.NotNil(t, session)

	stored, err := client.AlertSession.Get(ctx, session.ID)
	require.NoError(t, err)

	assert.Equal(t, input.Data, stored.AlertData, "Data should be stored as-is when masking disabled")
}

func TestAlertService_SubmitAlert_NilMaskingService(t *testing.T) {
	client := testdb.NewTestClient(t)
	service := setupTestAlertService(t, client, alertServiceOptions{})
	ctx := context.Background()

	input := SubmitAlertInput{
		Data: `password: "FAKE-S3CRET-NOT-REAL"`,
	}

	session, err := service.SubmitAlert(ctx, input)
	require.NoError(t, err)
	require.NotNil(t, session)

	stored, err := client.AlertSession.Get(ctx, session.ID)
	require.NoError(t, err)

	assert.Equal(t, input.Data, stored.AlertData, "Data should be stored as-is with nil masking service")
}
