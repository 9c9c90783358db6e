package cleanup

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsoaresd/tarsy-bot-sub007/ent/alertsession"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/event"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/database"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/models"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/services"
	testdb "github.com/rsoaresd/tarsy-bot-sub007/test/database"
)

func setupServices(t *testing.T) (*database.Client, *services.SessionService, *services.EventService) {
	t.Helper()
	client := testdb.NewTestClient(t)
	return client, services.NewSessionService(client.Client), services.NewEventService(client.Client)
}

func retentionConfig() *config.RetentionConfig {
	return &config.RetentionConfig{
		SessionRetentionDays:   30,
		EventRetention:         24 * time.Hour,
		SessionCleanupInterval: time.Hour,
		EventCleanupInterval:   time.Hour,
	}
}

func createTestSession(t *testing.T, svc *services.SessionService) string {
	t.Helper()
	id := uuid.New().String()
	_, err := svc.CreateSession(context.Background(), models.CreateSessionRequest{
		SessionID: id,
		AlertID:   fmt.Sprintf("alert-%s", id),
		AlertData: `{"message": "pod crash-looping"}`,
		AgentType: "KubernetesAgent",
		AlertType: "kubernetes",
		ChainID:   "k8s-analysis",
	})
	require.NoError(t, err)
	return id
}

func completeSessionAt(t *testing.T, client *database.Client, sessionID string, completedAt time.Time) {
	t.Helper()
	err := client.AlertSession.UpdateOneID(sessionID).
		SetStatus(alertsession.StatusCompleted).
		SetCompletedAtUs(completedAt.UnixMicro()).
		Exec(context.Background())
	require.NoError(t, err)
}

func TestSweepSessions_DeletesExpiredTerminalSessions(t *testing.T) {
	client, sessionService, eventService := setupServices(t)
	ctx := context.Background()

	oldID := createTestSession(t, sessionService)
	completeSessionAt(t, client, oldID, time.Now().Add(-40*24*time.Hour))

	recentID := createTestSession(t, sessionService)
	completeSessionAt(t, client, recentID, time.Now().Add(-time.Hour))

	svc := NewService(retentionConfig(), sessionService, eventService)
	svc.sweepSessions()

	_, err := sessionService.GetSession(ctx, oldID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = sessionService.GetSession(ctx, recentID)
	assert.NoError(t, err)
}

func TestSweepSessions_KeepsActiveSessions(t *testing.T) {
	client, sessionService, eventService := setupServices(t)
	ctx := context.Background()

	// A pending session has no completed_at_us; it survives any sweep
	// regardless of how long it has been queued.
	id := createTestSession(t, sessionService)
	err := client.AlertSession.UpdateOneID(id).
		SetStartedAtUs(time.Now().Add(-60 * 24 * time.Hour).UnixMicro()).
		Exec(ctx)
	require.NoError(t, err)

	svc := NewService(retentionConfig(), sessionService, eventService)
	svc.sweepSessions()

	_, err = sessionService.GetSession(ctx, id)
	assert.NoError(t, err)
}

func TestSweepEvents_DeletesExpiredEvents(t *testing.T) {
	client, sessionService, eventService := setupServices(t)
	ctx := context.Background()

	old, err := client.Event.Create().
		SetChannel("sessions").
		SetPayload(map[string]any{"type": "session.completed"}).
		SetCreatedAt(time.Now().Add(-48 * time.Hour)).
		Save(ctx)
	require.NoError(t, err)

	fresh, err := eventService.CreateEvent(ctx, "sessions", map[string]any{"type": "session.started"})
	require.NoError(t, err)

	svc := NewService(retentionConfig(), sessionService, eventService)
	svc.sweepEvents()

	exists, err := client.Event.Query().Where(event.IDEQ(old.ID)).Exist(ctx)
	require.NoError(t, err)
	assert.False(t, exists, "expired event should be deleted")

	exists, err = client.Event.Query().Where(event.IDEQ(fresh.ID)).Exist(ctx)
	require.NoError(t, err)
	assert.True(t, exists, "fresh event should survive the sweep")
}

func TestService_StartStop(t *testing.T) {
	_, sessionService, eventService := setupServices(t)

	svc := NewService(retentionConfig(), sessionService, eventService)
	svc.Start(context.Background())
	// Second Start is a no-op, not a second goroutine.
	svc.Start(context.Background())
	svc.Stop()
}
