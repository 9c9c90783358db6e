package queue

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rsoaresd/tarsy-bot-sub007/ent"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/alertsession"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/stageexecution"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/models"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/services"
)

// stageIdentifier derives the stage ID recorded on executions and progress
// updates. Stages carry no configured ID, so the ID is derived from position
// and name; the chain snapshot freezes both for the session's lifetime, which
// keeps the ID stable across pause and resume.
func stageIdentifier(index int, name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "stage"
	}
	return fmt.Sprintf("stage-%d-%s", index, slug)
}

// chainFromSnapshot rebuilds the chain configuration from the JSON snapshot
// stored on the session at submit time. The snapshot, not the live registry,
// drives execution so config reloads never change a running session.
func chainFromSnapshot(raw map[string]any) (*config.ChainConfig, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("session has no chain definition")
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chain definition: %w", err)
	}
	var chain config.ChainConfig
	if err := json.Unmarshal(data, &chain); err != nil {
		return nil, fmt.Errorf("failed to parse chain definition: %w", err)
	}
	if len(chain.Stages) == 0 {
		return nil, fmt.Errorf("chain definition has no stages")
	}
	return &chain, nil
}

// resolveMCPSelection applies the per-alert MCP override to the
// config-resolved server list. A selection replaces the configured servers
// outright; per-server tool lists become the allow-filter. Without a
// selection the configured servers pass through unfiltered.
func resolveMCPSelection(configured []string, selection *models.MCPSelectionConfig) ([]string, map[string][]string) {
	if selection == nil || len(selection.Servers) == 0 {
		return configured, nil
	}
	serverIDs := make([]string, 0, len(selection.Servers))
	var toolFilter map[string][]string
	for _, srv := range selection.Servers {
		serverIDs = append(serverIDs, srv.Name)
		if len(srv.Tools) > 0 {
			if toolFilter == nil {
				toolFilter = make(map[string][]string)
			}
			toolFilter[srv.Name] = srv.Tools
		}
	}
	return serverIDs, toolFilter
}

// successPolicyString maps the config enum onto the aggregation policy
// strings the stage service stores.
func successPolicyString(p config.SuccessPolicy) string {
	if p == config.SuccessPolicyAll {
		return services.SuccessPolicyAll
	}
	return services.SuccessPolicyAny
}

// stageStatusFromAgent maps an agent execution outcome onto the stage
// execution status enum.
func stageStatusFromAgent(s agent.ExecutionStatus) stageexecution.Status {
	switch s {
	case agent.ExecutionStatusCompleted:
		return stageexecution.StatusCompleted
	case agent.ExecutionStatusPaused:
		return stageexecution.StatusPaused
	case agent.ExecutionStatusCancelled:
		return stageexecution.StatusCancelled
	case agent.ExecutionStatusTimedOut:
		return stageexecution.StatusTimedOut
	default:
		return stageexecution.StatusFailed
	}
}

// sessionStatusFromStage maps a failed stage's status onto the session
// terminal status. Completed and partial stages keep the chain going and
// never reach this mapping.
func sessionStatusFromStage(s stageexecution.Status) alertsession.Status {
	switch s {
	case stageexecution.StatusCancelled:
		return alertsession.StatusCancelled
	case stageexecution.StatusTimedOut:
		return alertsession.StatusTimedOut
	default:
		return alertsession.StatusFailed
	}
}

// stageSucceeded reports whether a stage outcome lets the chain continue.
// Partial counts as success: the surviving branches' synthesis feeds the
// next stage.
func stageSucceeded(s stageexecution.Status) bool {
	return s == stageexecution.StatusCompleted || s == stageexecution.StatusPartial
}

// rootExecution returns the stage's conclusion record from prior executions:
// the single record of a non-parallel stage, or the synthesis record of a
// parallel one. Both carry no parallel index and no parent.
func rootExecution(prior []*ent.StageExecution) *ent.StageExecution {
	for _, rec := range prior {
		if rec.ParallelIndex == nil && rec.ParentStageExecutionID == nil {
			return rec
		}
	}
	return nil
}

// parentExecution returns the parallel parent record from prior executions,
// identified by parallel index 0.
func parentExecution(prior []*ent.StageExecution) *ent.StageExecution {
	for _, rec := range prior {
		if rec.ParallelIndex != nil && *rec.ParallelIndex == 0 {
			return rec
		}
	}
	return nil
}

// branchExecution returns the prior record for the 1-based branch index,
// or nil when the branch never ran.
func branchExecution(prior []*ent.StageExecution, index int) *ent.StageExecution {
	for _, rec := range prior {
		if rec.ParallelIndex != nil && *rec.ParallelIndex == index {
			return rec
		}
	}
	return nil
}

// isTerminalStageStatus reports whether a stage execution reached a final
// state. Paused is not terminal: the record is reused on resume.
func isTerminalStageStatus(s stageexecution.Status) bool {
	switch s {
	case stageexecution.StatusCompleted, stageexecution.StatusPartial,
		stageexecution.StatusFailed, stageexecution.StatusCancelled,
		stageexecution.StatusTimedOut:
		return true
	}
	return false
}

// groupByStageIndex indexes prior stage executions by stage_index for
// resume matching.
func groupByStageIndex(records []*ent.StageExecution) map[int][]*ent.StageExecution {
	if len(records) == 0 {
		return nil
	}
	out := make(map[int][]*ent.StageExecution)
	for _, rec := range records {
		out[rec.StageIndex] = append(out[rec.StageIndex], rec)
	}
	return out
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
