// Package poller keeps a local view of one remote shortlisting job in sync
// by polling its status on a fixed interval.
//
// A Coordinator owns at most one session at a time. Every request a session
// issues is tagged with it, and a response is only applied while its session
// is still the current one, so nothing from a retired or superseded session
// ever reaches a listener.
package poller

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	apperrors "shortlist-monitor/internal/errors"
	"shortlist-monitor/internal/models"
	"shortlist-monitor/internal/timeline"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	DefaultInterval       = 3 * time.Second
	DefaultRequestTimeout = 10 * time.Second
)

type Option func(*Coordinator)

func WithInterval(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithRequestTimeout bounds every status and results request.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.requestTimeout = d
		}
	}
}

func WithClock(clock Clock) Option {
	return func(c *Coordinator) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithFetchOnActivate polls once right after activation instead of waiting
// for the first tick.
func WithFetchOnActivate(enabled bool) Option {
	return func(c *Coordinator) {
		c.fetchOnActivate = enabled
	}
}

type Coordinator struct {
	source          Source
	listener        Listener
	clock           Clock
	interval        time.Duration
	requestTimeout  time.Duration
	fetchOnActivate bool

	// mu guards current. Publishing happens under the read lock, retiring a
	// session under the write lock.
	mu         sync.RWMutex
	current    *session
	generation uint64

	wg sync.WaitGroup
}

type session struct {
	id         uuid.UUID
	generation uint64
	jobID      string
	ctx        context.Context
	ticker     Ticker
	stop       chan struct{}

	inFlight       atomic.Bool
	resultsFetched atomic.Bool
}

func New(source Source, listener Listener, opts ...Option) *Coordinator {

	if listener == nil {
		listener = Listeners{}
	}

	c := &Coordinator{
		source:         source,
		listener:       listener,
		clock:          RealClock{},
		interval:       DefaultInterval,
		requestTimeout: DefaultRequestTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Activate retires the current session, if any, and starts polling jobID.
// Activating the job that is already being watched restarts it with a fresh
// results latch. The session also ends when ctx is cancelled.
func (c *Coordinator) Activate(ctx context.Context, jobID string) (uuid.UUID, error) {

	jobID = strings.TrimSpace(jobID)

	if jobID == "" {
		return uuid.Nil, fmt.Errorf("cannot watch an empty job id: %w", apperrors.ErrInvalidJobID)
	}

	sessionID, err := uuid.NewV7()

	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create session id: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.retireLocked()

	c.generation++

	s := &session{
		id:         sessionID,
		generation: c.generation,
		jobID:      jobID,
		ctx:        ctx,
		ticker:     c.clock.NewTicker(c.interval),
		stop:       make(chan struct{}),
	}

	c.current = s

	c.wg.Add(1)
	go c.loop(s)

	log.Info().
		Str("component", "poller").
		Str("job_id", jobID).
		Str("session_id", sessionID.String()).
		Dur("interval", c.interval).
		Msg("Watching job")

	return sessionID, nil
}

// Deactivate stops the current session. No tick is scheduled for it after
// Deactivate returns, and responses still in flight are dropped on arrival.
func (c *Coordinator) Deactivate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.retireLocked()
}

// Close deactivates and waits for every goroutine the coordinator started.
func (c *Coordinator) Close() {
	c.Deactivate()
	c.wg.Wait()
}

// Current returns the job being watched and its session id.
func (c *Coordinator) Current() (string, uuid.UUID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.current == nil {
		return "", uuid.Nil, false
	}

	return c.current.jobID, c.current.id, true
}

func (c *Coordinator) retireLocked() {

	s := c.current

	if s == nil {
		return
	}

	s.ticker.Stop()
	close(s.stop)
	c.current = nil

	log.Info().
		Str("component", "poller").
		Str("job_id", s.jobID).
		Str("session_id", s.id.String()).
		Msg("Stopped watching job")
}

func (c *Coordinator) retire(s *session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == s {
		c.retireLocked()
	}
}

func (c *Coordinator) isCurrent(s *session) bool {
	return c.current != nil && c.current == s && c.current.generation == s.generation
}

func (c *Coordinator) loop(s *session) {
	defer c.wg.Done()

	if c.fetchOnActivate {
		c.tick(s)
	}

	for {
		select {
		case <-s.stop:
			return

		case <-s.ctx.Done():
			c.retire(s)
			return

		case <-s.ticker.C():
			c.tick(s)
		}
	}
}

// tick starts a poll unless the session is gone or its previous request has
// not come back yet.
func (c *Coordinator) tick(s *session) {

	c.mu.RLock()
	current := c.isCurrent(s)
	c.mu.RUnlock()

	if !current {
		return
	}

	if !s.inFlight.CompareAndSwap(false, true) {
		log.Debug().
			Str("component", "poller").
			Str("job_id", s.jobID).
			Msg("Previous poll still in flight, skipping tick")
		return
	}

	c.wg.Add(1)
	go c.poll(s)
}

func (c *Coordinator) poll(s *session) {
	defer c.wg.Done()
	defer s.inFlight.Store(false)

	ctx, cancel := context.WithTimeout(s.ctx, c.requestTimeout)
	snapshot, err := c.source.GetStatus(ctx, s.jobID)
	cancel()

	if !c.applyStatus(s, snapshot, err) {
		return
	}

	ctx, cancel = context.WithTimeout(s.ctx, c.requestTimeout)
	defer cancel()

	candidates, err := c.source.GetResults(ctx, s.jobID)

	c.applyResults(s, candidates, err)
}

// applyStatus publishes a status response and reports whether this poll has
// claimed the results fetch for its session.
func (c *Coordinator) applyStatus(s *session, snapshot *models.JobStatus, err error) bool {

	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.isCurrent(s) {
		log.Debug().
			Str("component", "poller").
			Str("job_id", s.jobID).
			Str("session_id", s.id.String()).
			Msg("Dropping status response from retired session")
		return false
	}

	if err == nil && snapshot == nil {
		err = fmt.Errorf("empty status report: %w", apperrors.ErrMalformedSnapshot)
	}

	if err != nil {
		c.fail(s, StageStatus, err)
		return false
	}

	job := *snapshot
	if job.JobID == "" {
		job.JobID = s.jobID
	}

	c.listener.OnUpdate(Update{
		SessionID: s.id,
		JobID:     s.jobID,
		Snapshot:  job,
		Timeline:  timeline.Derive(job),
	})

	if job.Status == models.StatusError {
		log.Warn().
			Str("component", "poller").
			Str("job_id", s.jobID).
			Msg("Job reported a processing error")
	}

	if !job.Terminal() {
		return false
	}

	return s.resultsFetched.CompareAndSwap(false, true)
}

func (c *Coordinator) applyResults(s *session, candidates []models.Candidate, err error) {

	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.isCurrent(s) {
		log.Debug().
			Str("component", "poller").
			Str("job_id", s.jobID).
			Str("session_id", s.id.String()).
			Msg("Dropping results from retired session")
		return
	}

	if err != nil {
		c.fail(s, StageResults, err)
		return
	}

	if candidates == nil {
		candidates = []models.Candidate{}
	}

	log.Info().
		Str("component", "poller").
		Str("job_id", s.jobID).
		Int("candidates", len(candidates)).
		Msg("Fetched shortlisted candidates")

	c.listener.OnResults(Results{
		SessionID:  s.id,
		JobID:      s.jobID,
		Candidates: candidates,
	})
}

func (c *Coordinator) fail(s *session, stage Stage, err error) {

	event := log.Warn()
	if !apperrors.Transient(err) {
		event = log.Error()
	}

	kind := apperrors.KindOf(err)

	event.
		Err(err).
		Str("component", "poller").
		Str("job_id", s.jobID).
		Str("stage", string(stage)).
		Str("kind", string(kind)).
		Msg("Poll failed")

	c.listener.OnFailure(Failure{
		SessionID: s.id,
		JobID:     s.jobID,
		Stage:     stage,
		Kind:      kind,
		Err:       err,
	})
}
