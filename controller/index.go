package controller

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/meghashyamc/wheresthat-client/api"
	"github.com/meghashyamc/wheresthat-client/logger"
	"github.com/meghashyamc/wheresthat-client/validation"
)

const (
	ProgressStatusComplete = 100

	DefaultPollInterval = 3 * time.Second
)

type JobState int

const (
	JobIdle JobState = iota
	JobPending
	JobPolling
	JobSucceeded
	JobFailed
)

func (s JobState) String() string {
	switch s {
	case JobIdle:
		return "idle"
	case JobPending:
		return "pending"
	case JobPolling:
		return "polling"
	case JobSucceeded:
		return "succeeded"
	case JobFailed:
		return "failed"
	default:
		return fmt.Sprintf("JobState(%d)", int(s))
	}
}

func (s JobState) Active() bool {
	return s == JobPending || s == JobPolling
}

// IndexJob is a snapshot of the controller's current or most recent job.
// RequestID is only set while the job is being polled.
type IndexJob struct {
	RequestID  string
	TargetPath string
	Progress   int
	State      JobState
	LastError  string
}

type IndexClient interface {
	SubmitIndex(ctx context.Context, request api.IndexRequest) (*api.IndexSubmission, error)
	GetIndexStatus(ctx context.Context, requestID string) (*api.IndexStatus, error)
}

// IndexJobController submits index requests and, when the backend indexes in
// the background, polls the job until it finishes. At most one job is active
// at a time.
type IndexJobController struct {
	logger       logger.Logger
	client       IndexClient
	validator    *validation.Validator
	history      HistoryRecorder
	observer     IndexObserver
	pollInterval time.Duration

	// mu guards the job and is held while events are delivered, so no event
	// for a job can be observed once Cancel has returned.
	mu         sync.Mutex
	job        IndexJob
	generation uint64
	cancelJob  context.CancelFunc
	loopDone   chan struct{}
}

func NewIndexJobController(logger logger.Logger, client IndexClient, validator *validation.Validator, history HistoryRecorder, observer IndexObserver, pollInterval time.Duration) *IndexJobController {
	if observer == nil {
		observer = noopObserver{}
	}
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &IndexJobController{
		logger:       logger,
		client:       client,
		validator:    validator,
		history:      history,
		observer:     observer,
		pollInterval: pollInterval,
	}
}

// Start submits path for indexing. It returns an error only when the job could
// not be started; everything after submission is reported to the observer.
// ctx bounds the whole job, including polling.
func (c *IndexJobController) Start(ctx context.Context, path string, excludeFolders ...string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return api.ErrEmptyPath
	}

	request := api.IndexRequest{
		Path:           path,
		ExcludeFolders: trimAll(excludeFolders),
	}
	if err := c.validator.Validate(request); err != nil {
		return toValidationError(err)
	}
	if err := validateExcludeFolders(request.Path, request.ExcludeFolders); err != nil {
		c.logger.Warn("could not validate 'exclude folders'", "err", err.Error())
		return err
	}

	jobCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if c.job.State.Active() {
		c.mu.Unlock()
		cancel()
		c.logger.Warn("request to index while indexing is already in progress", "path", path)
		return &api.BusyError{Operation: "indexing"}
	}
	c.generation++
	generation := c.generation
	c.job = IndexJob{TargetPath: path, State: JobPending}
	c.cancelJob = cancel
	c.loopDone = nil
	c.emitLocked(IndexEvent{Kind: EventStarted, Path: path})
	c.mu.Unlock()

	c.logger.Info("submitting index request", "path", path, "exclude_folders", request.ExcludeFolders)
	submission, err := c.client.SubmitIndex(jobCtx, request)
	if err != nil {
		if jobCtx.Err() != nil {
			c.abandon(generation, jobCtx.Err())
			return nil
		}
		c.fail(generation, err)
		return nil
	}

	if !submission.Async() {
		c.complete(generation)
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return nil
	}
	c.job.RequestID = submission.RequestID
	c.job.State = JobPolling
	done := make(chan struct{})
	c.loopDone = done
	c.logger.Info("index job accepted, polling for status", "path", path, "request_id", submission.RequestID, "interval", c.pollInterval.String())

	go c.poll(jobCtx, generation, submission.RequestID, done)

	return nil
}

// Cancel stops the active job without a terminal event and reports whether
// there was one. A new job may be started as soon as it returns.
func (c *IndexJobController) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.job.State.Active() {
		return false
	}

	c.logger.Info("cancelling index job", "path", c.job.TargetPath, "request_id", c.job.RequestID)
	c.resetLocked()
	return true
}

// Wait blocks until the active poll loop, if any, has exited.
func (c *IndexJobController) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.loopDone
	c.mu.Unlock()

	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *IndexJobController) Job() IndexJob {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.job
}

func (c *IndexJobController) Busy() bool {
	return c.Job().State.Active()
}

// poll runs with fixed-delay semantics: the next tick is scheduled only once the
// previous answer has been handled.
func (c *IndexJobController) poll(ctx context.Context, generation uint64, requestID string, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(c.pollInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			c.abandon(generation, ctx.Err())
			return
		case <-timer.C:
		}
		if ctx.Err() != nil {
			c.abandon(generation, ctx.Err())
			return
		}

		status, err := c.client.GetIndexStatus(ctx, requestID)
		if ctx.Err() != nil {
			c.abandon(generation, ctx.Err())
			return
		}
		if err != nil {
			c.fail(generation, err)
			return
		}

		c.logger.Debug("polled index status", "request_id", requestID, "status", status.Progress)
		switch {
		case status.Progress < 0:
			c.fail(generation, &api.RequestFailedError{
				StatusCode: http.StatusOK,
				Messages:   []string{fmt.Sprintf("indexing reported invalid progress %d", status.Progress)},
			})
			return
		case status.Progress >= ProgressStatusComplete:
			c.complete(generation)
			return
		}

		if !c.progress(generation, status.Progress) {
			return
		}
		timer.Reset(c.pollInterval)
	}
}

func (c *IndexJobController) progress(generation uint64, percent int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return false
	}
	c.job.Progress = percent
	c.emitLocked(IndexEvent{Kind: EventProgress, Path: c.job.TargetPath, RequestID: c.job.RequestID, Progress: percent})
	return true
}

func (c *IndexJobController) complete(generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return
	}
	path, requestID := c.job.TargetPath, c.job.RequestID
	c.finishLocked(JobSucceeded, "")
	c.job.Progress = ProgressStatusComplete
	c.logger.Info("index job completed", "path", path, "request_id", requestID)

	if err := c.history.Record(path); err != nil {
		c.logger.Warn("could not record path in history", "path", path, "err", err.Error())
	}
	c.emitLocked(IndexEvent{Kind: EventCompleted, Path: path, RequestID: requestID, Progress: ProgressStatusComplete})
}

func (c *IndexJobController) fail(generation uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return
	}
	path, requestID, progress := c.job.TargetPath, c.job.RequestID, c.job.Progress
	c.finishLocked(JobFailed, err.Error())
	c.logger.Error("index job failed", "path", path, "request_id", requestID, "err", err.Error())

	c.emitLocked(IndexEvent{Kind: EventFailed, Path: path, RequestID: requestID, Progress: progress, Err: err})
}

// abandon handles the job context ending underneath the controller, either
// through Cancel or through the caller's context.
func (c *IndexJobController) abandon(generation uint64, reason error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return
	}
	c.logger.Info("index job abandoned", "path", c.job.TargetPath, "reason", reason)
	c.resetLocked()
}

func (c *IndexJobController) finishLocked(state JobState, lastError string) {
	c.job.State = state
	c.job.RequestID = ""
	c.job.LastError = lastError
	c.releaseLocked()
}

func (c *IndexJobController) resetLocked() {
	c.generation++
	c.job.State = JobIdle
	c.job.RequestID = ""
	c.releaseLocked()
}

func (c *IndexJobController) releaseLocked() {
	if c.cancelJob != nil {
		c.cancelJob()
		c.cancelJob = nil
	}
}

func (c *IndexJobController) emitLocked(event IndexEvent) {
	c.observer.OnIndexEvent(event)
}
