package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rsoaresd/tarsy-bot-sub007/ent"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/stageexecution"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/models"
)

// Success policies for parallel stages.
const (
	SuccessPolicyAll = "all_success"
	SuccessPolicyAny = "any_success"
)

// StageService manages stage execution lifecycle
type StageService struct {
	client *ent.Client
}

// NewStageService creates a new StageService
func NewStageService(client *ent.Client) *StageService {
	return &StageService{client: client}
}

// CreateStageExecution creates a single stage execution record
func (s *StageService) CreateStageExecution(httpCtx context.Context, req models.CreateStageExecutionRequest) (*ent.StageExecution, error) {
	if req.ExecutionID == "" {
		return nil, NewValidationError("execution_id", "required")
	}
	if req.SessionID == "" {
		return nil, NewValidationError("session_id", "required")
	}
	if req.StageID == "" {
		return nil, NewValidationError("stage_id", "required")
	}
	if req.Agent == "" {
		return nil, NewValidationError("agent", "required")
	}
	if req.ParallelType != "" {
		pt := req.ParallelType
		if pt != "single" && pt != "multi_agent" && pt != "replica" {
			return nil, NewValidationError("parallel_type", "invalid: must be 'single', 'multi_agent' or 'replica'")
		}
	}

	ctx, cancel := context.WithTimeout(httpCtx, 10*time.Second)
	defer cancel()

	builder := s.client.StageExecution.Create().
		SetID(req.ExecutionID).
		SetSessionID(req.SessionID).
		SetStageID(req.StageID).
		SetStageIndex(req.StageIndex).
		SetStageName(req.StageName).
		SetAgent(req.Agent).
		SetStatus(stageexecution.StatusPending)

	if req.IterationStrategy != nil {
		builder.SetIterationStrategy(stageexecution.IterationStrategy(*req.IterationStrategy))
	}
	if req.ParentStageExecutionID != nil {
		builder.SetParentStageExecutionID(*req.ParentStageExecutionID)
	}
	if req.ParallelIndex != nil {
		builder.SetParallelIndex(*req.ParallelIndex)
	}
	if req.ParallelType != "" {
		builder.SetParallelType(stageexecution.ParallelType(req.ParallelType))
	}

	execution, err := builder.Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create stage execution: %w", err)
	}

	return execution, nil
}

// StartExecution moves an execution to active and stamps started_at_us.
// A restart after a pause shifts started_at_us forward by the paused
// interval so the derived duration_ms covers active time only.
func (s *StageService) StartExecution(ctx context.Context, executionID string) (*ent.StageExecution, error) {
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exec, err := s.client.StageExecution.Get(writeCtx, executionID)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get stage execution: %w", err)
	}

	update := exec.Update().
		SetStatus(stageexecution.StatusActive).
		ClearPausedAtUs()
	switch {
	case exec.StartedAtUs == nil:
		update = update.SetStartedAtUs(time.Now().UnixMicro())
	case exec.PausedAtUs != nil:
		pausedFor := time.Now().UnixMicro() - *exec.PausedAtUs
		update = update.SetStartedAtUs(*exec.StartedAtUs + pausedFor)
	}

	exec, err = update.Save(writeCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to start stage execution: %w", err)
	}

	return exec, nil
}

// CompleteExecution writes a terminal status, stamping completed_at_us and
// deriving duration_ms when the execution had started.
func (s *StageService) CompleteExecution(ctx context.Context, executionID string, status stageexecution.Status, output map[string]any, errorMsg string) error {
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exec, err := s.client.StageExecution.Get(writeCtx, executionID)
	if err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get stage execution: %w", err)
	}

	nowUs := time.Now().UnixMicro()
	update := exec.Update().
		SetStatus(status).
		SetCompletedAtUs(nowUs)

	if exec.StartedAtUs != nil {
		update = update.SetDurationMs(int((nowUs - *exec.StartedAtUs) / 1000))
	}
	if output != nil {
		update = update.SetStageOutput(output)
	}
	if errorMsg != "" {
		update = update.SetErrorMessage(errorMsg)
	}

	if err := update.Exec(writeCtx); err != nil {
		return fmt.Errorf("failed to complete stage execution: %w", err)
	}

	return nil
}

// PauseExecution records a pause: status, pause timestamp and loop progress
func (s *StageService) PauseExecution(ctx context.Context, executionID string, currentIteration int) error {
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := s.client.StageExecution.UpdateOneID(executionID).
		SetStatus(stageexecution.StatusPaused).
		SetPausedAtUs(time.Now().UnixMicro()).
		SetCurrentIteration(currentIteration).
		Exec(writeCtx)
	if err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to pause stage execution: %w", err)
	}

	return nil
}

// SetCurrentIteration updates loop progress for observers
func (s *StageService) SetCurrentIteration(ctx context.Context, executionID string, iteration int) error {
	err := s.client.StageExecution.UpdateOneID(executionID).
		SetCurrentIteration(iteration).
		Exec(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update iteration: %w", err)
	}
	return nil
}

// FinalizeParent aggregates branch statuses into the parent record of a
// parallel stage, honoring the stage's success policy:
//   - all_success: every branch must complete
//   - any_success (default): at least one completed branch; mixed results
//     finalize as partial
//
// Uniform timeout and uniform cancellation dominate failure either way.
func (s *StageService) FinalizeParent(ctx context.Context, parentExecutionID string, successPolicy string) (*ent.StageExecution, error) {
	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	parent, err := s.client.StageExecution.Get(writeCtx, parentExecutionID)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get parent execution: %w", err)
	}

	branches, err := s.GetBranches(writeCtx, parentExecutionID)
	if err != nil {
		return nil, err
	}
	if len(branches) == 0 {
		return nil, fmt.Errorf("parent execution %s has no branches", parentExecutionID)
	}

	finalStatus, errorMessage := AggregateBranchStatuses(branches, successPolicy)

	nowUs := time.Now().UnixMicro()
	update := parent.Update().
		SetStatus(finalStatus).
		SetCompletedAtUs(nowUs)

	if parent.StartedAtUs != nil {
		update = update.SetDurationMs(int((nowUs - *parent.StartedAtUs) / 1000))
	}
	if errorMessage != "" {
		update = update.SetErrorMessage(errorMessage)
	}

	parent, err = update.Save(writeCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize parent execution: %w", err)
	}

	return parent, nil
}

// AggregateBranchStatuses computes the parent status for a set of finished
// branches under the given success policy. Timeout and cancellation
// dominate failure only when uniform: a mixed all-failure set (say one
// cancelled branch next to a failed one) aggregates to failed, since no
// single non-failure cause explains the stage's outcome.
func AggregateBranchStatuses(branches []*ent.StageExecution, successPolicy string) (stageexecution.Status, string) {
	allCompleted := true
	allTimedOut := true
	allCancelled := true
	anyCompleted := false

	for _, br := range branches {
		if br.Status == stageexecution.StatusCompleted {
			anyCompleted = true
		} else {
			allCompleted = false
		}
		if br.Status != stageexecution.StatusTimedOut {
			allTimedOut = false
		}
		if br.Status != stageexecution.StatusCancelled {
			allCancelled = false
		}
	}

	switch {
	case allCompleted:
		return stageexecution.StatusCompleted, ""
	case allTimedOut:
		return stageexecution.StatusTimedOut, "all agents timed out"
	case allCancelled:
		return stageexecution.StatusCancelled, "all agents cancelled"
	}

	if successPolicy == SuccessPolicyAll {
		return stageexecution.StatusFailed, "one or more agents failed"
	}

	// any_success: mixed results still carry the successful branches forward
	if anyCompleted {
		return stageexecution.StatusPartial, "some agents failed"
	}
	return stageexecution.StatusFailed, "all agents failed"
}

// GetExecution retrieves a stage execution by ID
func (s *StageService) GetExecution(ctx context.Context, executionID string) (*ent.StageExecution, error) {
	execution, err := s.client.StageExecution.Get(ctx, executionID)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get stage execution: %w", err)
	}

	return execution, nil
}

// GetStageExecutions retrieves all executions for a session in chain order
func (s *StageService) GetStageExecutions(ctx context.Context, sessionID string) ([]*ent.StageExecution, error) {
	executions, err := s.client.StageExecution.Query().
		Where(stageexecution.SessionIDEQ(sessionID)).
		Order(
			ent.Asc(stageexecution.FieldStageIndex),
			ent.Asc(stageexecution.FieldParallelIndex),
		).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stage executions: %w", err)
	}

	return executions, nil
}

// GetBranches retrieves the child executions of a parallel stage parent
func (s *StageService) GetBranches(ctx context.Context, parentExecutionID string) ([]*ent.StageExecution, error) {
	branches, err := s.client.StageExecution.Query().
		Where(stageexecution.ParentStageExecutionIDEQ(parentExecutionID)).
		Order(ent.Asc(stageexecution.FieldParallelIndex)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get branch executions: %w", err)
	}

	return branches, nil
}

// FailActiveExecutions marks every non-terminal execution of a session
// failed. Used when a session is orphaned or recovered after a crash.
func (s *StageService) FailActiveExecutions(ctx context.Context, sessionID string, errorMsg string) (int, error) {
	writeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	update := s.client.StageExecution.Update().
		Where(
			stageexecution.SessionIDEQ(sessionID),
			stageexecution.StatusIn(
				stageexecution.StatusPending,
				stageexecution.StatusActive,
				stageexecution.StatusPaused,
			),
		).
		SetStatus(stageexecution.StatusFailed).
		SetCompletedAtUs(time.Now().UnixMicro())

	if errorMsg != "" {
		update = update.SetErrorMessage(errorMsg)
	}

	count, err := update.Save(writeCtx)
	if err != nil {
		return 0, fmt.Errorf("failed to fail active executions: %w", err)
	}

	return count, nil
}
