package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sipsyai/agentflow/internal/app/dto"
	"github.com/sipsyai/agentflow/internal/core/flow"
	"github.com/sipsyai/agentflow/internal/infrastructure/metrics"
)

// FlowExecutor walks a flow's node chain from the entry node, dispatches
// each node through the handler registry, and merges handler output into
// the run's execution context. Execution is strictly sequential within
// a run; concurrency exists only across runs, each with its own context.
type FlowExecutor struct {
	flows    FlowRepository
	registry *HandlerRegistry
	logger   *slog.Logger

	mu         sync.RWMutex
	executions map[string]*runState
}

// runState tracks one in-flight execution for the monitor/cancel
// surface.
type runState struct {
	execCtx   *dto.ExecutionContext
	cancel    context.CancelFunc
	status    dto.ExecutionStatus
	startTime time.Time
	cancelled bool
}

// NewFlowExecutor creates the execution engine.
func NewFlowExecutor(flows FlowRepository, registry *HandlerRegistry, logger *slog.Logger) *FlowExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FlowExecutor{
		flows:      flows,
		registry:   registry,
		logger:     logger,
		executions: make(map[string]*runState),
	}
}

// Execute runs a flow to completion and returns its terminal result.
// The returned error is reserved for request/lookup failures; node
// failures are reported on the result itself.
func (e *FlowExecutor) Execute(ctx context.Context, req *dto.ExecutionRequest) (*dto.ExecutionResult, error) {
	return e.run(ctx, req, nil)
}

// ExecuteStream runs a flow and streams status events while nodes
// execute, terminated by exactly one result or error event. The channel
// closes when the run ends.
func (e *FlowExecutor) ExecuteStream(ctx context.Context, req *dto.ExecutionRequest) (<-chan dto.ExecutionEvent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	events := make(chan dto.ExecutionEvent, 16)
	go func() {
		defer close(events)
		result, err := e.run(ctx, req, events)
		if err != nil {
			events <- dto.ExecutionEvent{
				Type:      dto.EventError,
				Message:   err.Error(),
				Timestamp: time.Now(),
			}
			return
		}
		events <- dto.ExecutionEvent{
			Type:        dto.EventResult,
			ExecutionID: result.ExecutionID,
			Status:      result.Status,
			Result:      result,
			Timestamp:   time.Now(),
		}
	}()
	return events, nil
}

// Cancel aborts an in-flight execution. The active agent session is
// told to stop through context cancellation and the run unwinds with a
// cancelled result.
func (e *FlowExecutor) Cancel(executionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	state, ok := e.executions[executionID]
	if !ok {
		return dto.ErrExecutionNotFound
	}
	state.cancelled = true
	state.cancel()
	return nil
}

// Status returns a snapshot of an in-flight execution.
func (e *FlowExecutor) Status(executionID string) (*dto.ExecutionResult, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	state, ok := e.executions[executionID]
	if !ok {
		return nil, dto.ErrExecutionNotFound
	}
	return &dto.ExecutionResult{
		ExecutionID: executionID,
		FlowID:      state.execCtx.FlowID,
		Status:      state.status,
		StartTime:   state.startTime,
	}, nil
}

// Running lists the IDs of in-flight executions.
func (e *FlowExecutor) Running() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.executions))
	for id := range e.executions {
		ids = append(ids, id)
	}
	return ids
}

func (e *FlowExecutor) run(ctx context.Context, req *dto.ExecutionRequest, events chan<- dto.ExecutionEvent) (*dto.ExecutionResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	f, err := e.flows.Get(ctx, req.FlowID)
	if err != nil {
		return nil, &dto.NotFoundError{Kind: "flow", ID: req.FlowID}
	}
	entry := f.EntryNode()
	if entry == nil {
		return nil, flow.ErrNoEntryPoint
	}

	executionID := uuid.NewString()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	input := req.Input
	if input == nil {
		input = map[string]any{}
	}
	execCtx := dto.NewExecutionContext(executionID, f.ID, input, e.logger)
	if req.TriggeredBy != "" {
		execCtx.Data["triggeredBy"] = req.TriggeredBy
	}
	if req.TriggerData != nil {
		execCtx.Data["triggerData"] = req.TriggerData
	}

	state := &runState{
		execCtx:   execCtx,
		cancel:    cancel,
		status:    dto.ExecutionStatusRunning,
		startTime: time.Now(),
	}
	e.mu.Lock()
	e.executions[executionID] = state
	e.mu.Unlock()
	metrics.ExecutionStarted()
	defer func() {
		e.mu.Lock()
		delete(e.executions, executionID)
		e.mu.Unlock()
	}()

	result := &dto.ExecutionResult{
		ExecutionID: executionID,
		FlowID:      f.ID,
		Status:      dto.ExecutionStatusRunning,
		StartTime:   state.startTime,
	}

	e.walk(runCtx, f, entry, execCtx, result, events, state)

	result.EndTime = time.Now()
	result.ExecutionTime = result.EndTime.Sub(result.StartTime)
	metrics.ExecutionFinished(string(result.Status), result.TokensUsed, result.Cost)
	return result, nil
}

// walk executes the chain node by node, applying the agent retry policy
// and stopping on the first failure, an explicit halt, or cancellation.
func (e *FlowExecutor) walk(
	ctx context.Context,
	f *flow.Flow,
	entry *flow.Node,
	execCtx *dto.ExecutionContext,
	result *dto.ExecutionResult,
	events chan<- dto.ExecutionEvent,
	state *runState,
) {
	visited := make(map[string]bool, len(f.Nodes))
	node := entry
	for node != nil {
		if e.isCancelled(ctx, state) {
			e.finishCancelled(result, state)
			return
		}
		if visited[node.NodeID] {
			e.finishFailed(result, state, node.NodeID, "node chain revisits "+node.NodeID, "")
			return
		}
		visited[node.NodeID] = true

		e.emit(events, dto.ExecutionEvent{
			Type:        dto.EventStatus,
			ExecutionID: execCtx.ExecutionID,
			NodeID:      node.NodeID,
			Status:      dto.ExecutionStatusRunning,
			Message:     fmt.Sprintf("executing node %s", node.Name),
			Timestamp:   time.Now(),
		})

		rec, res := e.executeNode(ctx, node, execCtx, state)
		result.NodeExecutions = append(result.NodeExecutions, *rec)
		metrics.NodeExecuted(string(node.Type), rec.Status == dto.ExecutionStatusCompleted)

		if rec.Status == dto.ExecutionStatusCancelled {
			e.finishCancelled(result, state)
			return
		}
		if !res.Success {
			e.finishFailed(result, state, node.NodeID, res.Error, "")
			return
		}

		execCtx.MergeData(res.Data)
		result.Output = res.Output
		result.TokensUsed += res.TokensUsed
		result.Cost += res.Cost

		if res.Halt {
			break
		}
		if node.NextNodeID == "" {
			break
		}
		next := f.NodeByID(node.NextNodeID)
		if next == nil {
			e.finishFailed(result, state, node.NodeID, fmt.Sprintf("next node %q not found", node.NextNodeID), "")
			return
		}
		node = next
	}

	result.Success = true
	result.Status = dto.ExecutionStatusCompleted
	e.setStatus(state, dto.ExecutionStatusCompleted)
}

// executeNode dispatches one node through the registry, retrying agent
// nodes per their declared policy. Other node types never retry.
func (e *FlowExecutor) executeNode(ctx context.Context, node *flow.Node, execCtx *dto.ExecutionContext, state *runState) (*dto.NodeExecution, *dto.NodeResult) {
	rec := &dto.NodeExecution{
		NodeID:    node.NodeID,
		NodeType:  string(node.Type),
		StartTime: time.Now(),
	}

	handler, ok := e.registry.Get(node.Type)
	if !ok {
		res := &dto.NodeResult{Success: false, Error: fmt.Sprintf("%v: %s", dto.ErrHandlerNotFound, node.Type)}
		e.recordNode(rec, res, 1)
		return rec, res
	}

	attempts := 1
	if node.Type == flow.NodeTypeAgent && node.Agent != nil && node.Agent.RetryOnError && node.Agent.MaxRetries > 0 {
		attempts += node.Agent.MaxRetries
	}

	var res *dto.NodeResult
	attempt := 0
	for attempt < attempts {
		attempt++
		if e.isCancelled(ctx, state) {
			res = &dto.NodeResult{Success: false, Error: "execution cancelled"}
			e.recordNode(rec, res, attempt)
			rec.Status = dto.ExecutionStatusCancelled
			return rec, res
		}

		var err error
		res, err = handler.Execute(ctx, node, execCtx)
		if err != nil {
			res = &dto.NodeResult{Success: false, Error: err.Error()}
		}
		if res.Success {
			break
		}
		if e.isCancelled(ctx, state) {
			e.recordNode(rec, res, attempt)
			rec.Status = dto.ExecutionStatusCancelled
			return rec, res
		}
		if attempt < attempts {
			execCtx.Log(slog.LevelWarn, "node failed, retrying", node.NodeID, map[string]any{
				"attempt": attempt,
				"error":   res.Error,
			})
		}
	}

	e.recordNode(rec, res, attempt)
	return rec, res
}

func (e *FlowExecutor) recordNode(rec *dto.NodeExecution, res *dto.NodeResult, attempts int) {
	rec.EndTime = time.Now()
	rec.Duration = rec.EndTime.Sub(rec.StartTime)
	rec.Attempts = attempts
	rec.Output = res.Output
	rec.TokensUsed = res.TokensUsed
	rec.Cost = res.Cost
	if res.Success {
		rec.Status = dto.ExecutionStatusCompleted
	} else {
		rec.Status = dto.ExecutionStatusFailed
		rec.Error = res.Error
	}
}

func (e *FlowExecutor) isCancelled(ctx context.Context, state *runState) bool {
	if ctx.Err() != nil {
		return true
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return state.cancelled
}

func (e *FlowExecutor) finishFailed(result *dto.ExecutionResult, state *runState, nodeID, msg, detail string) {
	result.Success = false
	result.Status = dto.ExecutionStatusFailed
	result.Error = msg
	result.ErrorNodeID = nodeID
	result.ErrorDetail = detail
	e.setStatus(state, dto.ExecutionStatusFailed)
}

func (e *FlowExecutor) finishCancelled(result *dto.ExecutionResult, state *runState) {
	result.Success = false
	result.Status = dto.ExecutionStatusCancelled
	result.Error = "execution cancelled"
	e.setStatus(state, dto.ExecutionStatusCancelled)
}

func (e *FlowExecutor) setStatus(state *runState, status dto.ExecutionStatus) {
	e.mu.Lock()
	state.status = status
	e.mu.Unlock()
}

func (e *FlowExecutor) emit(events chan<- dto.ExecutionEvent, ev dto.ExecutionEvent) {
	if events == nil {
		return
	}
	select {
	case events <- ev:
	default:
		// A slow consumer drops status updates, never the terminal
		// result event (sent by the ExecuteStream goroutine after the
		// run loop returns).
	}
}
