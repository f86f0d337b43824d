package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/store"
)

// Runner orchestrates one check pass: snapshot the directories, evaluate
// every user, aggregate fired reminders.
type Runner struct {
	store   store.Store
	eval    *Evaluator
	workers int
	logger  *slog.Logger
}

// NewRunner creates a Runner. workers < 1 falls back to sequential.
func NewRunner(st store.Store, eval *Evaluator, workers int, logger *slog.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{store: st, eval: eval, workers: workers, logger: logger}
}

// Run executes one pass at "now". The user and pairing directories are
// fetched concurrently, once, at the start; a failure of either aborts the
// whole run. Individual user failures are isolated, logged and counted but
// never fail the run.
func (r *Runner) Run(ctx context.Context, now time.Time) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{
		RunID:    uuid.NewString(),
		Notified: []Notified{},
	}

	var (
		users    []store.User
		pairs    map[string]store.Pair
		usersErr error
		pairsErr error
		wg       sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		users, usersErr = r.store.ListUsers(ctx)
	}()
	go func() {
		defer wg.Done()
		pairs, pairsErr = r.store.ListPairs(ctx)
	}()
	wg.Wait()

	if usersErr != nil {
		return nil, fmt.Errorf("load user directory: %w", usersErr)
	}
	if pairsErr != nil {
		return nil, fmt.Errorf("load pairing directory: %w", pairsErr)
	}

	result.Users = len(users)
	if len(users) == 0 {
		result.Duration = time.Since(start)
		r.logger.Info("check run: no users", "run_id", result.RunID)
		return result, nil
	}

	snap := newSnapshot(users, pairs)

	// Worker pool over users. Distinct users share only the read-only
	// snapshot; dedup checks and writes go through the store, so parallel
	// evaluation is safe. Ordering across users is irrelevant.
	workers := r.workers
	if workers > len(users) {
		workers = len(users)
	}

	ch := make(chan store.User, len(users))
	for _, u := range users {
		ch <- u
	}
	close(ch)

	var mu sync.Mutex
	var pool sync.WaitGroup

	for i := 0; i < workers; i++ {
		pool.Add(1)
		go func() {
			defer pool.Done()
			for u := range ch {
				fired, err := r.evaluate(ctx, u, now, snap)

				mu.Lock()
				if err != nil {
					result.Failed++
				}
				result.Notified = append(result.Notified, fired...)
				mu.Unlock()
			}
		}()
	}

	pool.Wait()
	result.Duration = time.Since(start)

	r.logger.Info("check run complete",
		"run_id", result.RunID,
		"users", result.Users,
		"notified", len(result.Notified),
		"failed", result.Failed,
		"duration", result.Duration.Round(time.Millisecond))
	return result, nil
}

// evaluate isolates one user's evaluation: a panic or error is logged and
// reported to the aggregator without stopping the batch.
func (r *Runner) evaluate(ctx context.Context, u store.User, now time.Time, snap *Snapshot) (fired []Notified, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
			r.logger.Error("user evaluation panicked", "uid", u.ID, "panic", p)
		}
	}()
	return r.eval.EvaluateUser(ctx, u, now, snap), nil
}
