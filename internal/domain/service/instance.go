package service

import (
	"github.com/diegoclair/checkin-scheduler/internal/domain/contract"
	"github.com/diegoclair/checkin-scheduler/internal/domain/entity"
	"github.com/diegoclair/checkin-scheduler/internal/metrics"
	"github.com/rs/zerolog"
)

type Instance struct {
	Recorder  *messageRecorder
	Scheduler *scheduler
}

// NewInstance wires the scheduler. A nil notifier or DataManager puts the
// corresponding step of every firing into skip mode.
func NewInstance(cfg SchedulerConfig, table []entity.TriggerRule, dm contract.DataManager,
	notifier contract.Notifier, sink metrics.Sink, log zerolog.Logger) *Instance {

	var (
		messageRecorder *messageRecorder
		recorder        contract.Recorder
	)
	if dm != nil {
		messageRecorder = newMessageRecorder(dm)
		recorder = messageRecorder
	}

	return &Instance{
		Recorder:  messageRecorder,
		Scheduler: newScheduler(cfg, table, notifier, recorder, sink, log),
	}
}
