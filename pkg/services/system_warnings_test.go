package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemWarningsService_AddAndGet(t *testing.T) {
	svc := NewSystemWarningsService()

	id := svc.AddWarning(WarningCategoryMCPHealth, "Server unreachable", "connection refused", "kubernetes")
	assert.NotEmpty(t, id)

	warnings := svc.GetWarnings()
	require.Len(t, warnings, 1)
	w := warnings[0]
	assert.Equal(t, WarningCategoryMCPHealth, w.Category)
	assert.Equal(t, "Server unreachable", w.Message)
	assert.Equal(t, "connection refused", w.Details)
	assert.Equal(t, "kubernetes", w.ServerID)
	assert.False(t, w.CreatedAt.IsZero())
}

func TestSystemWarningsService_ClearByServerID(t *testing.T) {
	svc := NewSystemWarningsService()

	svc.AddWarning(WarningCategoryMCPHealth, "Server unreachable", "", "kubernetes")
	svc.AddWarning(WarningCategoryMCPHealth, "Server unreachable", "", "github")
	require.Len(t, svc.GetWarnings(), 2)

	assert.True(t, svc.ClearByServerID(WarningCategoryMCPHealth, "kubernetes"))
	remaining := svc.GetWarnings()
	require.Len(t, remaining, 1)
	assert.Equal(t, "github", remaining[0].ServerID)

	assert.False(t, svc.ClearByServerID(WarningCategoryMCPHealth, "nonexistent"))
}

func TestSystemWarningsService_ReplacesDuplicate(t *testing.T) {
	svc := NewSystemWarningsService()

	// Same category+server twice: the newer warning replaces the older.
	svc.AddWarning(WarningCategoryMCPHealth, "First error", "err1", "kubernetes")
	svc.AddWarning(WarningCategoryMCPHealth, "Second error", "err2", "kubernetes")

	warnings := svc.GetWarnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, "Second error", warnings[0].Message)
	assert.Equal(t, "err2", warnings[0].Details)
}

func TestSystemWarningsService_Empty(t *testing.T) {
	assert.Empty(t, NewSystemWarningsService().GetWarnings())
}

func TestSystemWarningsService_ThreadSafety(t *testing.T) {
	svc := NewSystemWarningsService()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			svc.AddWarning("test", "msg", "", "")
		}()
		go func() {
			defer wg.Done()
			_ = svc.GetWarnings()
		}()
	}

	wg.Wait()
	assert.NotNil(t, svc.GetWarnings())
}
