package usecases

import (
	"context"
	"strings"
	"sync"
	"time"
)

// sessionState models the lifecycle of one runtime session as an
// explicit state machine so teardown happens exactly once on every
// path.
type sessionState int

const (
	stateStarting sessionState = iota
	stateStreaming
	stateClosed
	stateErrored
	stateTimedOut
	stateCancelled
)

// sessionOutcome is the collected result of a graceful session.
type sessionOutcome struct {
	Result string
	Usage  Usage
}

// errTimeout and errCancelled let the agent handler distinguish the
// terminal states without string matching.
type sessionError struct {
	state  sessionState
	reason string
}

func (e *sessionError) Error() string { return e.reason }

// collectSession drives a session to a terminal state: it accumulates
// streamed text fragments, captures usage from the terminal
// usage-bearing event, and races a wall-clock timeout against the
// stream. The session is told to stop on every exit path.
func collectSession(ctx context.Context, sess Session, timeout time.Duration) (*sessionOutcome, error) {
	var (
		text     strings.Builder
		usage    Usage
		state    = stateStarting
		stopOnce sync.Once
	)
	stop := func() {
		stopOnce.Do(func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = sess.Stop(stopCtx)
		})
	}
	defer stop()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			state = stateCancelled
			return nil, &sessionError{state: state, reason: "session cancelled"}
		case <-timer.C:
			state = stateTimedOut
			return nil, &sessionError{state: state, reason: "session deadline exceeded"}
		case ev, ok := <-sess.Events():
			if !ok {
				// Channel closed without an explicit close event;
				// treat as graceful.
				state = stateClosed
				return &sessionOutcome{Result: text.String(), Usage: usage}, nil
			}
			switch ev.Type {
			case SessionEventText:
				state = stateStreaming
				text.WriteString(ev.Text)
			case SessionEventResult:
				if ev.Usage != nil {
					usage = *ev.Usage
					if usage.TotalTokens == 0 {
						usage.TotalTokens = usage.InputTokens + usage.OutputTokens
					}
				}
			case SessionEventClosed:
				state = stateClosed
				return &sessionOutcome{Result: text.String(), Usage: usage}, nil
			case SessionEventError:
				state = stateErrored
				reason := "session error"
				if ev.Err != nil {
					reason = ev.Err.Error()
				}
				return nil, &sessionError{state: state, reason: reason}
			}
		}
	}
}
