package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rsoaresd/tarsy-bot-sub007/ent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/models"
)

// setupTestSessionService creates a SessionService backed by the given test client.
func setupTestSessionService(_ *testing.T, client *ent.Client) *SessionService {
	return NewSessionService(client)
}

// testChainRegistry builds a registry with the chains the service tests dispatch to.
func testChainRegistry() *config.ChainRegistry {
	return config.NewChainRegistry(map[string]*config.ChainConfig{
		"k8s-analysis": {
			ID:         "k8s-analysis",
			AlertTypes: []string{"kubernetes"},
			Stages: []config.StageConfig{
				{
					Name: "analysis",
					Agents: []config.StageAgentConfig{
						{Name: "KubernetesAgent"},
					},
				},
			},
		},
		"k8s-deep-analysis": {
			ID:         "k8s-deep-analysis",
			AlertTypes: []string{"kubernetes-deep"},
			Stages: []config.StageConfig{
				{
					Name: "triage",
					Agents: []config.StageAgentConfig{
						{Name: "KubernetesAgent"},
					},
				},
				{
					Name: "root-cause",
					Agents: []config.StageAgentConfig{
						{Name: "KubernetesAgent"},
						{Name: "LogAgent"},
					},
				},
			},
		},
		"test-chain": {
			ID:         "test-chain",
			AlertTypes: []string{"test"},
			Stages: []config.StageConfig{
				{
					Name: "stage1",
					Agents: []config.StageAgentConfig{
						{Name: "test-agent"},
					},
				},
			},
		},
	})
}

// testMCPServerRegistry builds a registry with the servers referenced by test chains.
func testMCPServerRegistry() *config.MCPServerRegistry {
	return config.NewMCPServerRegistry(map[string]*config.MCPServerConfig{
		"kubernetes-server": {
			Transport: config.TransportConfig{
				Type:    config.TransportTypeStdio,
				Command: "test-command",
			},
		},
		"test-server": {
			Transport: config.TransportConfig{
				Type:    config.TransportTypeStdio,
				Command: "test-command",
			},
		},
	})
}

// newSessionRequest returns a valid CreateSessionRequest with unique IDs.
// Callers override fields as needed before submitting.
func newSessionRequest() models.CreateSessionRequest {
	id := uuid.New().String()
	return models.CreateSessionRequest{
		SessionID: id,
		AlertID:   fmt.Sprintf("alert-%s", id),
		AlertData: `{"alert_type": "test", "message": "pod crash-looping"}`,
		AgentType: "KubernetesAgent",
		AlertType: "test",
		ChainID:   "test-chain",
	}
}

// createPendingSession creates a fresh pending session and returns it.
func createPendingSession(t *testing.T, svc *SessionService) *ent.AlertSession {
	t.Helper()
	session, err := svc.CreateSession(context.Background(), newSessionRequest())
	require.NoError(t, err)
	return session
}
