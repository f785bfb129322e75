package sentinel

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/fleetwatch/api/schemas"
	"github.com/xkilldash9x/fleetwatch/internal/observability"
)

// Authenticator opens the game session.
type Authenticator interface {
	Login(ctx context.Context, email, password string) error
}

// Fetcher scrapes the tracked planets and the pending fleet events.
type Fetcher interface {
	EmpireOverview(ctx context.Context, planets []schemas.PlanetID) (*schemas.EmpireOverview, error)
}

// Client is everything the loop needs from the game.
type Client interface {
	Authenticator
	Fetcher
	Relocator
}

// Recorder persists cycle history. Failures are logged and never stop the loop.
type Recorder interface {
	RecordCycle(ctx context.Context, rec schemas.CycleRecord) error
	RecordFleetSave(ctx context.Context, rec schemas.FleetSaveRecord) error
}

// Rand is the uniform source used for the wake jitter.
type Rand interface {
	Float64() float64
}

// Config holds what the loop needs from the application configuration.
type Config struct {
	Email         string
	Password      string
	Planets       []schemas.PlanetID
	RefreshPeriod time.Duration
}

// Option customizes a Sentinel.
type Option func(*Sentinel)

// WithRecorder enables cycle history.
func WithRecorder(r Recorder) Option {
	return func(s *Sentinel) { s.recorder = r }
}

// WithRand replaces the jitter source.
func WithRand(r Rand) Option {
	return func(s *Sentinel) { s.rand = r }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Sentinel) { s.now = now }
}

// WithSleep replaces the context-aware sleep between cycles.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Sentinel) { s.sleep = sleep }
}

// Sentinel watches the empire and reacts to incoming attacks until stopped.
// It runs on the caller's goroutine and keeps nothing between cycles.
type Sentinel struct {
	cfg      Config
	client   Client
	reactor  *Reactor
	recorder Recorder
	rand     Rand
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	logger   *zap.Logger
}

// New builds a Sentinel around a game client.
func New(cfg Config, client Client, logger *zap.Logger, opts ...Option) *Sentinel {
	if cfg.RefreshPeriod <= 0 {
		cfg.RefreshPeriod = DefaultRefreshPeriod
	}
	s := &Sentinel{
		cfg:    cfg,
		client: client,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
		sleep:  sleepContext,
		logger: logger.Named("sentinel"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reactor = NewReactor(client, s.logger, s.now)
	return s
}

// Run logs in once and then cycles until ctx is done or a cycle fails.
// It only returns with an error: the cycle error, or ctx.Err() on shutdown.
func (s *Sentinel) Run(ctx context.Context) error {
	s.logger.Info("Logging in.", observability.Account(s.cfg.Email), zap.Int("tracked_planets", len(s.cfg.Planets)))
	if err := s.client.Login(ctx, s.cfg.Email, s.cfg.Password); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		wake, err := s.RunCycle(ctx)
		if err != nil {
			return err
		}

		if err := s.sleep(ctx, untilWake(s.now(), wake)); err != nil {
			return err
		}
	}
}

// RunCycle performs one refresh: schedule, fetch, react, record. It returns
// the time the next cycle should start.
func (s *Sentinel) RunCycle(ctx context.Context) (time.Time, error) {
	started := s.now()
	cycleID := uuid.New()
	log := s.logger.With(zap.String("cycle_id", cycleID.String()))
	log.Info("Cycle started.", zap.Time("at", started))

	wake, err := NextWake(started, s.cfg.RefreshPeriod, s.rand.Float64())
	if err != nil {
		return time.Time{}, err
	}

	overview, err := s.client.EmpireOverview(ctx, s.cfg.Planets)
	if err != nil {
		return time.Time{}, fmt.Errorf("fetch empire overview: %w", err)
	}
	s.logSummary(log, overview)

	outcome, reactErr := s.reactor.React(ctx, overview)
	s.record(ctx, log, cycleID, started, wake, overview, outcome)
	if reactErr != nil {
		return time.Time{}, reactErr
	}

	log.Info(fmt.Sprintf("next refresh time: %s", wake.Format("2006-01-02 15:04:05")),
		zap.Time("next_wake", wake),
		zap.Int("attacks", outcome.Attacks),
		zap.Int("fleet_saves", len(outcome.FleetSaves)))
	return wake, nil
}

func (s *Sentinel) logSummary(log *zap.Logger, overview *schemas.EmpireOverview) {
	for _, p := range overview.Planets {
		fields := []zap.Field{
			zap.String("planet_id", p.ID),
			zap.String("location", p.Location),
			zap.Int("ships", p.Fleet.Total()),
			zap.String("metal", p.Resources.Metal),
			zap.String("crystal", p.Resources.Crystal),
			zap.String("deuterium", p.Resources.Deuterium),
		}
		if p.Lunar != nil {
			fields = append(fields, zap.String("lunar_id", p.Lunar.ID), zap.Int("lunar_ships", p.Lunar.Fleet.Total()))
		}
		log.Info("Planet overview.", fields...)
	}
	log.Info("Empire overview fetched.",
		zap.Int("planets", len(overview.Planets)),
		zap.Int("events", len(overview.Events)))
}

// record persists the cycle. Saves are written even when the reactor failed
// part way, since those fleets really were sent.
func (s *Sentinel) record(ctx context.Context, log *zap.Logger, id uuid.UUID, started, wake time.Time, overview *schemas.EmpireOverview, outcome Outcome) {
	if s.recorder == nil {
		return
	}
	// Recording must still happen when ctx was cancelled mid-reaction.
	rctx := context.WithoutCancel(ctx)

	err := s.recorder.RecordCycle(rctx, schemas.CycleRecord{
		ID:         id,
		StartedAt:  started,
		NextWake:   wake,
		Overview:   overview,
		FleetSaves: len(outcome.FleetSaves),
	})
	if err != nil {
		log.Error("Failed to record cycle.", zap.Error(err))
		return
	}

	for _, save := range outcome.FleetSaves {
		save.CycleID = id
		if err := s.recorder.RecordFleetSave(rctx, save); err != nil {
			log.Error("Failed to record fleet save.", zap.String("planet_id", save.PlanetID), zap.Error(err))
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsShutdown reports whether err only means the loop was asked to stop.
func IsShutdown(err error) bool {
	return errors.Is(err, context.Canceled)
}
