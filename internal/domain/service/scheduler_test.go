package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diegoclair/checkin-scheduler/internal/domain"
	"github.com/diegoclair/checkin-scheduler/internal/domain/contract"
	"github.com/diegoclair/checkin-scheduler/internal/domain/entity"
	"github.com/diegoclair/checkin-scheduler/internal/rules"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestScheduler(cfg SchedulerConfig, table []entity.TriggerRule, notifier contract.Notifier,
	recorder contract.Recorder, sink *countingSink) (*scheduler, *fakeClock) {

	s := newScheduler(cfg, table, notifier, recorder, sink, zerolog.Nop())
	clock := &fakeClock{}
	s.clock = clock.Now
	return s, clock
}

func at(year int, month time.Month, day, hour, minute, sec int) time.Time {
	return time.Date(year, month, day, hour, minute, sec, 0, utcMinus5)
}

func Test_newScheduler(t *testing.T) {
	table := []entity.TriggerRule{fixedRule("a", 9, 0, 0)}

	s := newScheduler(SchedulerConfig{}, table, nil, nil, nil, zerolog.Nop())

	require.NotNil(t, s)
	assert.Equal(t, domain.DefaultPollInterval, s.cfg.PollInterval)
	assert.Equal(t, domain.DefaultSendTimeout, s.cfg.SendTimeout)
	assert.Equal(t, time.UTC, s.cfg.Location)
	assert.NotNil(t, s.metrics)
	assert.NotNil(t, s.state)
	assert.False(t, s.running)

	table[0].Name = "changed"
	assert.Equal(t, "a", s.Rules()[0].Name)
}

func Test_scheduler_dayOfYearModulus(t *testing.T) {
	m, ctrl := newServiceTestMock(t)
	defer ctrl.Finish()

	table := rules.Default()
	var dailyCheckin, bodyCheck string
	for _, r := range table {
		switch r.Name {
		case "daily-checkin":
			dailyCheckin = r.Message
		case "body-check":
			bodyCheck = r.Message
		}
	}

	m.mockNotifier.EXPECT().Ready().Return(true).AnyTimes()
	m.mockRecorder.EXPECT().Append(gomock.Any(), "123456", domain.RoleAssistant, gomock.Any(), "telegram_scheduler").Return(nil).AnyTimes()

	// day 9 is a multiple of 3: both morning rules fire
	m.mockNotifier.EXPECT().Send(gomock.Any(), "123456", dailyCheckin).Return(nil).Times(2)
	m.mockNotifier.EXPECT().Send(gomock.Any(), "123456", bodyCheck).Return(nil).Times(1)

	s, clock := newTestScheduler(testConfig(), table, m.mockNotifier, m.mockRecorder, newCountingSink())

	clock.Set(at(2025, time.January, 9, 9, 0, 5))
	assert.Equal(t, 2, s.runCycle(context.Background()))

	// day 10 is not
	clock.Set(at(2025, time.January, 10, 9, 0, 5))
	assert.Equal(t, 1, s.runCycle(context.Background()))
}

func Test_scheduler_samplesInConfiguredZone(t *testing.T) {
	m, ctrl := newServiceTestMock(t)
	defer ctrl.Finish()

	m.mockNotifier.EXPECT().Ready().Return(true).AnyTimes()
	m.mockNotifier.EXPECT().Send(gomock.Any(), "123456", "morning message").Return(nil).Times(1)

	s, clock := newTestScheduler(testConfig(), []entity.TriggerRule{fixedRule("morning", 9, 0, 0)}, m.mockNotifier, nil, newCountingSink())

	// 14:00 UTC is 09:00 at UTC-5
	clock.Set(time.Date(2025, time.January, 9, 14, 0, 0, 0, time.UTC))
	assert.Equal(t, 1, s.runCycle(context.Background()))
}

func Test_scheduler_periodicInterval(t *testing.T) {
	m, ctrl := newServiceTestMock(t)
	defer ctrl.Finish()

	m.mockNotifier.EXPECT().Ready().Return(true).AnyTimes()
	m.mockNotifier.EXPECT().Send(gomock.Any(), "123456", "stretch message").Return(nil).Times(2)

	s, clock := newTestScheduler(testConfig(), []entity.TriggerRule{periodicRule("stretch", 10, 24, 90)}, m.mockNotifier, nil, newCountingSink())

	tests := []struct {
		name  string
		now   time.Time
		fired int
	}{
		{name: "first sample in window fires", now: at(2025, time.March, 3, 10, 0, 0), fired: 1},
		{name: "60 minutes later does not fire", now: at(2025, time.March, 3, 11, 0, 0), fired: 0},
		{name: "91 minutes later fires", now: at(2025, time.March, 3, 11, 31, 0), fired: 1},
		{name: "30 minutes after that does not fire", now: at(2025, time.March, 3, 12, 1, 0), fired: 0},
	}
	for _, tt := range tests {
		clock.Set(tt.now)
		assert.Equal(t, tt.fired, s.runCycle(context.Background()), tt.name)
	}
}

func Test_scheduler_periodicSlotsIgnoreSubMinuteJitter(t *testing.T) {
	m, ctrl := newServiceTestMock(t)
	defer ctrl.Finish()

	m.mockNotifier.EXPECT().Ready().Return(true).AnyTimes()
	m.mockNotifier.EXPECT().Send(gomock.Any(), "123456", "stretch message").Return(nil).Times(3)

	s, clock := newTestScheduler(testConfig(), []entity.TriggerRule{periodicRule("stretch", 10, 24, 90)}, m.mockNotifier, nil, newCountingSink())

	jittered := func(hour, minute int, ms int) time.Time {
		return time.Date(2025, time.March, 3, hour, minute, 0, ms*int(time.Millisecond), utcMinus5)
	}

	clock.Set(jittered(10, 0, 500))
	assert.Equal(t, 1, s.runCycle(context.Background()), "10:00 slot")

	clock.Set(jittered(11, 30, 100))
	assert.Equal(t, 1, s.runCycle(context.Background()), "11:30 slot")

	clock.Set(jittered(12, 59, 900))
	assert.Equal(t, 0, s.runCycle(context.Background()), "89 minutes after 11:30")

	clock.Set(jittered(13, 0, 50))
	assert.Equal(t, 1, s.runCycle(context.Background()), "13:00 slot")
}

func Test_scheduler_periodicWindowBounds(t *testing.T) {
	m, ctrl := newServiceTestMock(t)
	defer ctrl.Finish()

	m.mockNotifier.EXPECT().Ready().Return(true).AnyTimes()
	m.mockNotifier.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

	s, clock := newTestScheduler(testConfig(), []entity.TriggerRule{periodicRule("stretch", 10, 24, 90)}, m.mockNotifier, nil, newCountingSink())

	clock.Set(at(2025, time.March, 3, 9, 59, 0))
	assert.Equal(t, 0, s.runCycle(context.Background()), "before window start")

	clock.Set(at(2025, time.March, 3, 23, 59, 0))
	assert.Equal(t, 1, s.runCycle(context.Background()), "last minute of window")

	clock.Set(at(2025, time.March, 4, 0, 0, 0))
	assert.Equal(t, 0, s.runCycle(context.Background()), "window end is exclusive")

	clock.Set(at(2025, time.March, 4, 10, 0, 0))
	assert.Equal(t, 1, s.runCycle(context.Background()), "next day window start")
}

func Test_scheduler_sameMinuteIsEvaluatedOnce(t *testing.T) {
	m, ctrl := newServiceTestMock(t)
	defer ctrl.Finish()

	m.mockNotifier.EXPECT().Ready().Return(true).AnyTimes()
	m.mockNotifier.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

	table := []entity.TriggerRule{
		fixedRule("morning", 9, 0, 0),
		periodicRule("ping", 0, 24, 1),
	}
	sink := newCountingSink()
	s, clock := newTestScheduler(testConfig(), table, m.mockNotifier, nil, sink)

	clock.Set(at(2025, time.March, 3, 9, 0, 5))
	assert.Equal(t, 2, s.runCycle(context.Background()))

	clock.Set(at(2025, time.March, 3, 9, 0, 55))
	assert.Equal(t, 0, s.runCycle(context.Background()))

	assert.Equal(t, 2, sink.started)
	assert.Equal(t, 1, sink.skipped)
}

func Test_scheduler_fixedRuleOncePerDay(t *testing.T) {
	m, ctrl := newServiceTestMock(t)
	defer ctrl.Finish()

	m.mockNotifier.EXPECT().Ready().Return(true).AnyTimes()
	m.mockNotifier.EXPECT().Send(gomock.Any(), gomock.Any(), "morning message").Return(nil).Times(2)

	s, clock := newTestScheduler(testConfig(), []entity.TriggerRule{fixedRule("morning", 9, 0, 0)}, m.mockNotifier, nil, newCountingSink())

	clock.Set(at(2025, time.March, 3, 9, 0, 0))
	assert.Equal(t, 1, s.runCycle(context.Background()))

	clock.Set(at(2025, time.March, 3, 9, 1, 0))
	assert.Equal(t, 0, s.runCycle(context.Background()))

	// the same minute sampled again after another cycle ran in between
	clock.Set(at(2025, time.March, 3, 9, 0, 30))
	assert.Equal(t, 0, s.runCycle(context.Background()))

	clock.Set(at(2025, time.March, 4, 9, 0, 0))
	assert.Equal(t, 1, s.runCycle(context.Background()))
}

func Test_scheduler_failingNotifierDoesNotBlockOtherRules(t *testing.T) {
	m, ctrl := newServiceTestMock(t)
	defer ctrl.Finish()

	table := []entity.TriggerRule{
		fixedRule("first", 9, 0, 0),
		fixedRule("second", 9, 0, 0),
	}

	m.mockNotifier.EXPECT().Ready().Return(true).AnyTimes()
	m.mockNotifier.EXPECT().Send(gomock.Any(), "123456", "first message").Return(errors.New("network down"))
	m.mockNotifier.EXPECT().Send(gomock.Any(), "123456", "second message").Return(nil)
	m.mockRecorder.EXPECT().Append(gomock.Any(), "123456", domain.RoleAssistant, "first message", "telegram_scheduler").Return(nil)
	m.mockRecorder.EXPECT().Append(gomock.Any(), "123456", domain.RoleAssistant, "second message", "telegram_scheduler").Return(nil)

	sink := newCountingSink()
	s, clock := newTestScheduler(testConfig(), table, m.mockNotifier, m.mockRecorder, sink)

	clock.Set(at(2025, time.March, 3, 9, 0, 0))
	assert.Equal(t, 2, s.runCycle(context.Background()))

	assert.Equal(t, 1, sink.delivery[domain.OutcomeFailed])
	assert.Equal(t, 1, sink.delivery[domain.OutcomeSuccess])
	assert.Equal(t, 2, sink.record[domain.OutcomeSuccess])

	// the failed rule is not retried for the same day
	clock.Set(at(2025, time.March, 3, 9, 0, 30))
	assert.Equal(t, 0, s.runCycle(context.Background()))
}

func Test_scheduler_fire(t *testing.T) {
	rule := fixedRule("morning", 9, 0, 0)
	errSend := errors.New("send failed")
	errInit := errors.New("bad token")
	errRecord := errors.New("disk full")

	tests := []struct {
		name      string
		setup     func(m allMocks)
		recipient string
		noNotify  bool
		noRecord  bool
		check     func(t *testing.T, res FireResult)
	}{
		{
			name: "Should send and record when notifier is ready",
			setup: func(m allMocks) {
				m.mockNotifier.EXPECT().Ready().Return(true)
				m.mockNotifier.EXPECT().Send(gomock.Any(), "123456", "morning message").Return(nil)
				m.mockRecorder.EXPECT().Append(gomock.Any(), "123456", domain.RoleAssistant, "morning message", "telegram_scheduler").Return(nil)
			},
			check: func(t *testing.T, res FireResult) {
				assert.True(t, res.Delivered)
				assert.False(t, res.Skipped)
				assert.NoError(t, res.DeliveryErr)
				assert.NoError(t, res.RecordErr)
			},
		},
		{
			name: "Should initialize the notifier on first use",
			setup: func(m allMocks) {
				gomock.InOrder(
					m.mockNotifier.EXPECT().Ready().Return(false),
					m.mockNotifier.EXPECT().Init(gomock.Any()).Return(nil),
					m.mockNotifier.EXPECT().Send(gomock.Any(), "123456", "morning message").Return(nil),
				)
				m.mockRecorder.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, res FireResult) {
				assert.True(t, res.Delivered)
			},
		},
		{
			name: "Should contain init failure and skip send",
			setup: func(m allMocks) {
				m.mockNotifier.EXPECT().Ready().Return(false)
				m.mockNotifier.EXPECT().Init(gomock.Any()).Return(errInit)
				m.mockRecorder.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, res FireResult) {
				assert.False(t, res.Delivered)
				assert.ErrorIs(t, res.DeliveryErr, errInit)
				assert.NoError(t, res.RecordErr)
			},
		},
		{
			name: "Should still record when send fails",
			setup: func(m allMocks) {
				m.mockNotifier.EXPECT().Ready().Return(true)
				m.mockNotifier.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(errSend)
				m.mockRecorder.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, res FireResult) {
				assert.False(t, res.Delivered)
				assert.ErrorIs(t, res.DeliveryErr, errSend)
				assert.NoError(t, res.RecordErr)
			},
		},
		{
			name: "Should report record failure without affecting delivery",
			setup: func(m allMocks) {
				m.mockNotifier.EXPECT().Ready().Return(true)
				m.mockNotifier.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				m.mockRecorder.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errRecord)
			},
			check: func(t *testing.T, res FireResult) {
				assert.True(t, res.Delivered)
				assert.ErrorIs(t, res.RecordErr, errRecord)
			},
		},
		{
			name: "Should contain a panicking notifier",
			setup: func(m allMocks) {
				m.mockNotifier.EXPECT().Ready().Return(true)
				m.mockNotifier.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
					func(context.Context, string, string) error { panic("boom") },
				)
				m.mockRecorder.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, res FireResult) {
				assert.False(t, res.Delivered)
				assert.ErrorIs(t, res.DeliveryErr, errPanic)
			},
		},
		{
			name:     "Should send without recording when no recorder is configured",
			noRecord: true,
			setup: func(m allMocks) {
				m.mockNotifier.EXPECT().Ready().Return(true)
				m.mockNotifier.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, res FireResult) {
				assert.True(t, res.Delivered)
			},
		},
		{
			name:      "Should skip when no recipient is configured",
			recipient: "-",
			setup:     func(m allMocks) {},
			check: func(t *testing.T, res FireResult) {
				assert.True(t, res.Skipped)
				assert.False(t, res.Delivered)
				assert.NoError(t, res.DeliveryErr)
			},
		},
		{
			name:     "Should skip when no notifier is configured",
			noNotify: true,
			setup:    func(m allMocks) {},
			check: func(t *testing.T, res FireResult) {
				assert.True(t, res.Skipped)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ctrl := newServiceTestMock(t)
			defer ctrl.Finish()

			tt.setup(m)

			cfg := testConfig()
			if tt.recipient == "-" {
				cfg.RecipientID = ""
			}
			var notifier contract.Notifier = m.mockNotifier
			if tt.noNotify {
				notifier = nil
			}
			var recorder contract.Recorder = m.mockRecorder
			if tt.noRecord {
				recorder = nil
			}

			s := newScheduler(cfg, nil, notifier, recorder, newCountingSink(), zerolog.Nop())
			res := s.fire(context.Background(), rule)

			assert.Equal(t, "morning", res.Rule)
			tt.check(t, res)
		})
	}
}

func Test_scheduler_softSkipStillAdvancesState(t *testing.T) {
	cfg := testConfig()
	cfg.RecipientID = ""
	sink := newCountingSink()

	s, clock := newTestScheduler(cfg, []entity.TriggerRule{fixedRule("morning", 9, 0, 0)}, nil, nil, sink)

	clock.Set(at(2025, time.March, 3, 9, 0, 0))
	assert.Equal(t, 1, s.runCycle(context.Background()))
	assert.Equal(t, 1, sink.delivery[domain.OutcomeSkipped])
	assert.Empty(t, sink.fired)

	clock.Set(at(2025, time.March, 3, 9, 1, 0))
	assert.Equal(t, 0, s.runCycle(context.Background()))

	clock.Set(at(2025, time.March, 3, 9, 0, 40))
	assert.Equal(t, 0, s.runCycle(context.Background()))
}

func Test_scheduler_Status(t *testing.T) {
	cfg := testConfig()
	cfg.RecipientID = ""
	table := []entity.TriggerRule{
		fixedRule("morning", 9, 0, 0),
		periodicRule("stretch", 10, 24, 90),
	}

	s, clock := newTestScheduler(cfg, table, nil, nil, newCountingSink())

	now := at(2025, time.March, 3, 9, 0, 0)
	clock.Set(now)
	s.runCycle(context.Background())

	status := s.Status()
	require.Len(t, status, 2)

	assert.Equal(t, "morning", status[0].Name)
	assert.Equal(t, "2025-03-03", status[0].LastOccurrence)
	require.NotNil(t, status[0].LastFiredAt)
	assert.True(t, now.Equal(*status[0].LastFiredAt))

	assert.Equal(t, "stretch", status[1].Name)
	assert.Equal(t, entity.KindPeriodic, status[1].Kind)
	assert.Empty(t, status[1].LastOccurrence)
	assert.Nil(t, status[1].LastFiredAt)
}

func Test_scheduler_RunStopsOnCancel(t *testing.T) {
	cfg := testConfig()
	cfg.PollInterval = 5 * time.Millisecond

	s := newScheduler(cfg, nil, nil, nil, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func Test_scheduler_StartStop(t *testing.T) {
	m, ctrl := newServiceTestMock(t)
	defer ctrl.Finish()

	sent := make(chan struct{}, 1)
	m.mockNotifier.EXPECT().Ready().Return(true).AnyTimes()
	m.mockNotifier.EXPECT().Send(gomock.Any(), "123456", "ping message").DoAndReturn(
		func(context.Context, string, string) error {
			select {
			case sent <- struct{}{}:
			default:
			}
			return nil
		},
	).MinTimes(1)

	cfg := testConfig()
	cfg.PollInterval = 5 * time.Millisecond
	s, clock := newTestScheduler(cfg, []entity.TriggerRule{periodicRule("ping", 0, 24, 1)}, m.mockNotifier, nil, newCountingSink())
	clock.Set(at(2025, time.March, 3, 12, 0, 0))

	s.Start()
	s.Start()
	assert.True(t, s.running)

	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not fire")
	}

	s.Stop()
	s.Stop()
	assert.False(t, s.running)
}
