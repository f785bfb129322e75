package sentinel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/fleetwatch/api/schemas"
	"github.com/xkilldash9x/fleetwatch/internal/mocks"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixedRand float64

func (r fixedRand) Float64() float64 { return float64(r) }

// fakeClock advances only when the loop sleeps or when a step is added.
type fakeClock struct {
	now    time.Time
	step   time.Duration
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return ctx.Err()
}

var testPlanets = []schemas.PlanetID{{PlanetID: "33620", LunarID: "33701"}, {PlanetID: "33655"}}

func newTestSentinel(t *testing.T, client *mocks.MockGameClient, clock *fakeClock, opts ...Option) (*Sentinel, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	opts = append([]Option{
		WithRand(fixedRand(0.2)),
		WithClock(clock.Now),
		WithSleep(clock.Sleep),
	}, opts...)
	s := New(Config{
		Email:         "player@example.com",
		Password:      "hunter2",
		Planets:       testPlanets,
		RefreshPeriod: 15 * time.Minute,
	}, client, zap.New(core), opts...)
	return s, logs
}

func TestRun_LoginFailureStopsBeforeFirstCycle(t *testing.T) {
	client := new(mocks.MockGameClient)
	clock := &fakeClock{now: fixedNow}
	s, _ := newTestSentinel(t, client, clock)

	boom := errors.New("lobby unreachable")
	client.On("Login", mock.Anything, "player@example.com", "hunter2").Return(boom).Once()

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	client.AssertNotCalled(t, "EmpireOverview", mock.Anything, mock.Anything)
}

func TestRun_CyclesUntilCancelled(t *testing.T) {
	client := new(mocks.MockGameClient)
	clock := &fakeClock{now: fixedNow}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cycles := 0
	client.On("Login", mock.Anything, "player@example.com", "hunter2").Return(nil).Once()
	client.On("EmpireOverview", mock.Anything, testPlanets).
		Run(func(mock.Arguments) {
			cycles++
			if cycles == 3 {
				cancel()
			}
		}).
		Return(twoPlanets(0, 0), nil)

	s, logs := newTestSentinel(t, client, clock)
	err := s.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, IsShutdown(err))
	assert.Equal(t, 3, cycles)
	client.AssertNumberOfCalls(t, "Login", 1)
	// Two full sleeps of 810s, the third returns the cancellation.
	assert.Equal(t, []time.Duration{810 * time.Second, 810 * time.Second, 810 * time.Second}, clock.sleeps)
	assert.Equal(t, 3, logs.FilterMessage("Cycle started.").Len())
}

func TestRun_SleepIsMeasuredFromCycleStart(t *testing.T) {
	client := new(mocks.MockGameClient)
	// every clock read costs a minute, so the scrape "takes" time
	clock := &fakeClock{now: fixedNow, step: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	client.On("EmpireOverview", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(twoPlanets(0, 0), nil)

	s, _ := newTestSentinel(t, client, clock)
	err := s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	require.Len(t, clock.sleeps, 1)
	assert.Less(t, clock.sleeps[0], 810*time.Second)
}

func TestRun_OverrunCycleSleepsZero(t *testing.T) {
	client := new(mocks.MockGameClient)
	clock := &fakeClock{now: fixedNow, step: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	client.On("EmpireOverview", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(twoPlanets(0, 0), nil)

	s, _ := newTestSentinel(t, client, clock)
	_ = s.Run(ctx)

	require.Len(t, clock.sleeps, 1)
	assert.Equal(t, time.Duration(0), clock.sleeps[0])
}

func TestRun_FetchErrorStopsLoop(t *testing.T) {
	client := new(mocks.MockGameClient)
	clock := &fakeClock{now: fixedNow}
	boom := errors.New("element #positionContentField not found")

	client.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	client.On("EmpireOverview", mock.Anything, mock.Anything).Return(nil, boom).Once()

	s, _ := newTestSentinel(t, client, clock)
	err := s.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, clock.sleeps)
	client.AssertNotCalled(t, "FleetSave", mock.Anything, mock.Anything)
}

func TestRun_ReactorErrorStopsLoop(t *testing.T) {
	client := new(mocks.MockGameClient)
	clock := &fakeClock{now: fixedNow}
	ov := twoPlanets(1, 1)
	ov.Events = []schemas.FleetEvent{attack("[8:8:8]", "[3:300:3]")}

	client.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	client.On("EmpireOverview", mock.Anything, mock.Anything).Return(ov, nil).Once()

	s, _ := newTestSentinel(t, client, clock)
	err := s.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoMatchingLocation)
	assert.Empty(t, clock.sleeps)
}

func TestRunCycle_FleetSavesAndRecords(t *testing.T) {
	client := new(mocks.MockGameClient)
	recorder := new(mocks.MockRecorder)
	clock := &fakeClock{now: fixedNow}

	ov := twoPlanets(0, 5)
	ov.Events = []schemas.FleetEvent{attack("[2:200:9]", "[3:300:3]")}
	client.On("EmpireOverview", mock.Anything, testPlanets).Return(ov, nil).Once()
	client.On("FleetSave", mock.Anything, "33655").Return(nil).Once()

	var cycle schemas.CycleRecord
	recorder.On("RecordCycle", mock.Anything, mock.AnythingOfType("schemas.CycleRecord")).
		Run(func(args mock.Arguments) { cycle = args.Get(1).(schemas.CycleRecord) }).
		Return(nil).Once()
	recorder.On("RecordFleetSave", mock.Anything, mock.MatchedBy(func(rec schemas.FleetSaveRecord) bool {
		return rec.PlanetID == "33655" && rec.CycleID == cycle.ID && rec.Ships == 5
	})).Return(nil).Once()

	s, logs := newTestSentinel(t, client, clock, WithRecorder(recorder))
	wake, err := s.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, fixedNow.Add(810*time.Second), wake)
	assert.Equal(t, fixedNow, cycle.StartedAt)
	assert.Equal(t, wake, cycle.NextWake)
	assert.Equal(t, 1, cycle.FleetSaves)
	assert.Same(t, ov, cycle.Overview)
	client.AssertExpectations(t)
	recorder.AssertExpectations(t)

	assert.Equal(t, 2, logs.FilterMessage("Planet overview.").Len())
	assert.Equal(t, 1, logs.FilterMessageSnippet("next refresh time").Len())
}

func TestRunCycle_RecorderFailureIsNotFatal(t *testing.T) {
	client := new(mocks.MockGameClient)
	recorder := new(mocks.MockRecorder)
	clock := &fakeClock{now: fixedNow}

	client.On("EmpireOverview", mock.Anything, mock.Anything).Return(twoPlanets(1, 0), nil)
	recorder.On("RecordCycle", mock.Anything, mock.Anything).Return(errors.New("connection refused")).Once()

	core, logs := observer.New(zapcore.ErrorLevel)
	s := New(Config{Planets: testPlanets}, client, zap.New(core),
		WithRecorder(recorder), WithRand(fixedRand(0.8)), WithClock(clock.Now), WithSleep(clock.Sleep))

	wake, err := s.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(1260*time.Second), wake, "zero period falls back to the default")
	assert.Equal(t, 1, logs.FilterMessage("Failed to record cycle.").Len())
	recorder.AssertNotCalled(t, "RecordFleetSave", mock.Anything, mock.Anything)
}

func TestRunCycle_SavesAreRecordedEvenWhenReactorFails(t *testing.T) {
	client := new(mocks.MockGameClient)
	recorder := new(mocks.MockRecorder)
	clock := &fakeClock{now: fixedNow}

	ov := twoPlanets(4, 0)
	ov.Events = []schemas.FleetEvent{
		attack("[1:100:8]", "[3:300:3]"),
		{MissionLabel: "not a label"},
	}
	client.On("EmpireOverview", mock.Anything, mock.Anything).Return(ov, nil)
	client.On("FleetSave", mock.Anything, "33620").Return(nil).Once()
	recorder.On("RecordCycle", mock.Anything, mock.Anything).Return(nil).Once()
	recorder.On("RecordFleetSave", mock.Anything, mock.Anything).Return(nil).Once()

	s, _ := newTestSentinel(t, client, clock, WithRecorder(recorder))
	_, err := s.RunCycle(context.Background())
	assert.ErrorIs(t, err, schemas.ErrUnknownMission)
	recorder.AssertExpectations(t)
}

func TestRunCycle_TimeOverflow(t *testing.T) {
	client := new(mocks.MockGameClient)
	clock := &fakeClock{now: time.UnixMilli(1<<63 - 1)}

	s, _ := newTestSentinel(t, client, clock)
	_, err := s.RunCycle(context.Background())
	assert.ErrorIs(t, err, ErrTimeComputation)
	client.AssertNotCalled(t, "EmpireOverview", mock.Anything, mock.Anything)
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
	assert.NoError(t, sleepContext(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, sleepContext(ctx, 0), context.Canceled)
}
