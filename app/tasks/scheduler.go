package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const runTimeout = 5 * time.Minute

// Scheduler triggers a check cycle on a fixed wall-clock interval. The
// cron chain's SkipIfStillRunning wrapper is the overlap guard: a tick that
// arrives while a cycle is in flight is skipped outright, not queued.
type Scheduler struct {
	c       *cron.Cron
	entryID cron.EntryID
	newTask func() *CheckTask
	status  *Status
}

func NewScheduler(newTask func() *CheckTask, status *Status, intervalHours int) (*Scheduler, error) {
	s := &Scheduler{
		newTask: newTask,
		status:  status,
	}

	logger := cronLogger{}
	s.c = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(logger),
		cron.Recover(logger),
	))

	entryID, err := s.c.AddFunc(fmt.Sprintf("@every %dh", intervalHours), s.runOnce)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule check task: %w", err)
	}
	s.entryID = entryID

	return s, nil
}

// Start begins the interval schedule and kicks off an immediate first run
// through the same wrapped job, so the overlap guard covers it too.
func (s *Scheduler) Start() {
	s.c.Start()
	go s.c.Entry(s.entryID).WrappedJob.Run()
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	<-s.c.Stop().Done()
}

func (s *Scheduler) runOnce() {
	task := s.newTask()
	task.Start()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	err := task.Execute(ctx)
	s.status.RecordRun(time.Now().UTC(), err)

	if err != nil {
		slog.Error("Check cycle failed", "id", task.GetID(), "duration", task.GetDuration(), "error", err)
	}
}

// cronLogger adapts the cron logging interface onto slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error(msg, append(keysAndValues, "error", err)...)
}
