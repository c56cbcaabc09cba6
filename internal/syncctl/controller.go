package syncctl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"mangaeditor/internal/config"
	"mangaeditor/internal/logging"
	"mangaeditor/internal/rows"
)

// State is the controller's position in the startup sync lifecycle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	// StateReadyStale means the fetch failed and the table still holds the
	// cached or seed rows.
	StateReadyStale
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateReadyStale:
		return "ready-stale"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether the controller has finished.
func (s State) Terminal() bool {
	return s == StateReady || s == StateReadyStale
}

// Source lists rows from the row service. *rowclient.Client satisfies it.
type Source interface {
	ListRows(ctx context.Context) ([]rows.Record, error)
}

// Target is the table a fetched snapshot is applied to. *rowstore.Store satisfies it.
type Target interface {
	Replace(snapshot []rows.Row) error
	ReplaceIfUnchanged(snapshot []rows.Row, generation uint64) (bool, error)
	Generation() uint64
}

// Status summarises the outcome of the sync.
type Status struct {
	State State
	// Applied is true when the fetched rows replaced the table.
	Applied   bool
	RowCount  int
	LastError string
}

// Controller runs the startup sync for one session.
type Controller struct {
	source Source
	target Target
	policy string
	logger *slog.Logger

	startOnce sync.Once
	done      chan struct{}

	mu      sync.Mutex
	state   State
	closed  bool
	applied bool
	fetched int
	lastErr error
}

// New builds a controller. An empty policy means config.PolicyReplace.
func New(source Source, target Target, policy string, logger *slog.Logger) (*Controller, error) {
	if source == nil {
		return nil, errors.New("syncctl: source is required")
	}
	if target == nil {
		return nil, errors.New("syncctl: target is required")
	}
	switch policy {
	case "":
		policy = config.PolicyReplace
	case config.PolicyReplace, config.PolicyPreserveEdits:
	default:
		return nil, fmt.Errorf("syncctl: unsupported reconcile policy %q", policy)
	}
	return &Controller{
		source: source,
		target: target,
		policy: policy,
		logger: logging.NewComponentLogger(logger, "syncctl"),
		done:   make(chan struct{}),
	}, nil
}

// Start issues the list call in the background. Calls after the first do
// nothing. Cancelling ctx does not abort the fetch; the source's own timeout
// bounds it.
func (c *Controller) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			close(c.done)
			return
		}
		c.state = StateLoading
		c.mu.Unlock()

		generation := c.target.Generation()
		fetchCtx := context.WithoutCancel(ctx)
		go c.run(fetchCtx, generation)
	})
}

func (c *Controller) run(ctx context.Context, generation uint64) {
	defer close(c.done)

	logger := logging.WithContext(ctx, c.logger)
	records, err := c.source.ListRows(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		logger.Debug("sync result discarded after close")
		return
	}
	if err != nil {
		c.fail(logger, fmt.Errorf("list rows: %w", err))
		return
	}
	snapshot, err := rows.FromRecords(records)
	if err != nil {
		c.fail(logger, err)
		return
	}
	c.fetched = len(snapshot)
	if len(snapshot) == 0 {
		c.state = StateReady
		logger.Info("row service is empty; keeping local table")
		return
	}

	switch c.policy {
	case config.PolicyPreserveEdits:
		replaced, err := c.target.ReplaceIfUnchanged(snapshot, generation)
		c.applied = replaced
		if err != nil {
			c.warnCacheWrite(logger, err)
		}
		if !replaced && err == nil {
			logging.WarnWithContext(logger, "local edits made during sync; fetched rows not applied", "sync_skipped",
				logging.Int(logging.FieldRowCount, len(snapshot)),
				logging.String(logging.FieldErrorHint, "restart the session to load the service rows"),
				logging.String(logging.FieldImpact, "table keeps the local edits"),
			)
		}
	default:
		err := c.target.Replace(snapshot)
		c.applied = err == nil
		if err != nil {
			c.warnCacheWrite(logger, err)
		}
	}
	c.state = StateReady
	if c.applied {
		logger.Info("startup sync applied", logging.Int(logging.FieldRowCount, len(snapshot)))
	}
}

func (c *Controller) fail(logger *slog.Logger, err error) {
	c.state = StateReadyStale
	c.lastErr = err
	logging.WarnWithContext(logger, "startup sync failed; keeping local table", "sync_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check that the row service is running and editor.server_url"),
		logging.String(logging.FieldImpact, "table shows cached or seed rows"),
	)
}

func (c *Controller) warnCacheWrite(logger *slog.Logger, err error) {
	c.lastErr = err
	logging.WarnWithContext(logger, "fetched rows not fully persisted", "cache_write_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check cache directory permissions"),
		logging.String(logging.FieldImpact, "cache may hold an older table"),
	)
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Status returns the current state and outcome details.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	status := Status{State: c.state, Applied: c.applied, RowCount: c.fetched}
	if c.lastErr != nil {
		status.LastError = c.lastErr.Error()
	}
	return status
}

// Wait blocks until the fetch has been handled or ctx ends. It returns the
// state at that point.
func (c *Controller) Wait(ctx context.Context) (State, error) {
	select {
	case <-c.done:
		return c.State(), nil
	case <-ctx.Done():
		return c.State(), ctx.Err()
	}
}

// Close ends the session. A fetch that resolves afterwards is discarded.
// Close does not wait for the fetch.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}
