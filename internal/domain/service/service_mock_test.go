package service

import (
	"sync"
	"testing"
	"time"

	"github.com/diegoclair/checkin-scheduler/internal/domain/entity"
	"github.com/diegoclair/checkin-scheduler/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type allMocks struct {
	mockNotifier    *mocks.MockNotifier
	mockRecorder    *mocks.MockRecorder
	mockDataManager *mocks.MockDataManager
	mockMessageRepo *mocks.MockMessageRepo
}

func newServiceTestMock(t *testing.T) (m allMocks, ctrl *gomock.Controller) {
	t.Helper()

	ctrl = gomock.NewController(t)

	dm := mocks.NewMockDataManager(ctrl)

	messageRepo := mocks.NewMockMessageRepo(ctrl)
	dm.EXPECT().Message().Return(messageRepo).AnyTimes()

	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().Name().Return("telegram").AnyTimes()

	m = allMocks{
		mockNotifier:    notifier,
		mockRecorder:    mocks.NewMockRecorder(ctrl),
		mockDataManager: dm,
		mockMessageRepo: messageRepo,
	}

	// validate service creation
	instance := NewInstance(testConfig(), nil, dm, notifier, nil, zerolog.Nop())
	require.NotNil(t, instance)
	require.NotNil(t, instance.Scheduler)

	return
}

var utcMinus5 = time.FixedZone("UTC-5", -5*60*60)

func testConfig() SchedulerConfig {
	return SchedulerConfig{
		PollInterval: time.Minute,
		Location:     utcMinus5,
		RecipientID:  "123456",
		ChannelTag:   "telegram_scheduler",
		SendTimeout:  time.Second,
	}
}

// fakeClock is a settable clock for driving cycles by hand
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// countingSink counts what the scheduler reports
type countingSink struct {
	mu       sync.Mutex
	started  int
	skipped  int
	fired    map[string]int
	delivery map[string]int
	record   map[string]int
}

func newCountingSink() *countingSink {
	return &countingSink{
		fired:    make(map[string]int),
		delivery: make(map[string]int),
		record:   make(map[string]int),
	}
}

func (c *countingSink) CycleStarted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started++
}

func (c *countingSink) CycleSkipped() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skipped++
}

func (c *countingSink) CycleCompleted(time.Duration, int) {}

func (c *countingSink) RuleFired(rule string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fired[rule]++
}

func (c *countingSink) DeliveryOutcome(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delivery[outcome]++
}

func (c *countingSink) RecordOutcome(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record[outcome]++
}

func fixedRule(name string, hour, minute, nth int) entity.TriggerRule {
	return entity.TriggerRule{
		Name:        name,
		Kind:        entity.KindFixedTime,
		Message:     name + " message",
		Hour:        hour,
		Minute:      minute,
		EveryNthDay: nth,
	}
}

func periodicRule(name string, start, end, interval int) entity.TriggerRule {
	return entity.TriggerRule{
		Name:            name,
		Kind:            entity.KindPeriodic,
		Message:         name + " message",
		StartHour:       start,
		EndHour:         end,
		IntervalMinutes: interval,
	}
}
