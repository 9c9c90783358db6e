package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Categories for system warnings.
const (
	WarningCategoryMCPHealth   = "mcp_health"   // MCP server became unhealthy at runtime
	WarningCategoryLLMProvider = "llm_provider" // Provider disabled (missing API key env)
	WarningCategoryConfig      = "config"       // Non-fatal config issues (deprecated keys)
)

// SystemWarning is a non-fatal issue surfaced to operators.
type SystemWarning struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	ServerID  string    `json:"server_id,omitempty"` // set for MCP-related warnings
	CreatedAt time.Time `json:"created_at"`
}

// SystemWarningsService holds active warnings in memory. Safe for
// concurrent use; warnings are transient and vanish on restart.
type SystemWarningsService struct {
	mu       sync.RWMutex
	warnings map[string]*SystemWarning // keyed by warning ID
}

func NewSystemWarningsService() *SystemWarningsService {
	return &SystemWarningsService{
		warnings: make(map[string]*SystemWarning),
	}
}

// removeLocked drops the warning matching category+serverID, if any.
// Caller must hold the write lock.
func (s *SystemWarningsService) removeLocked(category, serverID string) bool {
	for id, w := range s.warnings {
		if w.Category == category && w.ServerID == serverID {
			delete(s.warnings, id)
			return true
		}
	}
	return false
}

// AddWarning records a warning and returns its ID. A prior warning with
// the same category+serverID is replaced, keeping one warning per source.
func (s *SystemWarningsService) AddWarning(category, message, details, serverID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(category, serverID)

	id := uuid.New().String()
	s.warnings[id] = &SystemWarning{
		ID:        id,
		Category:  category,
		Message:   message,
		Details:   details,
		ServerID:  serverID,
		CreatedAt: time.Now(),
	}
	return id
}

// GetWarnings returns copies of all active warnings, so callers can
// read them without further locking.
func (s *SystemWarningsService) GetWarnings() []*SystemWarning {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*SystemWarning, 0, len(s.warnings))
	for _, w := range s.warnings {
		cp := *w
		result = append(result, &cp)
	}
	return result
}

// ClearByServerID removes the warning for category+serverID and reports
// whether one existed. The health monitor calls this when a server recovers.
func (s *SystemWarningsService) ClearByServerID(category, serverID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.removeLocked(category, serverID)
}
