package daemon

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type NotifyFunc func(data any)

// TaskFunc represents a runnable task.
type TaskFunc func() error

// Scheduler runs Task on a cron schedule. Runs never overlap: a run that
// takes longer than the interval delays the next one.
type Scheduler struct {
	Task    TaskFunc   // task callback
	OnError NotifyFunc // called on task error

	parser cron.Parser

	schedule cron.Schedule
	nextRun  time.Time

	mu      sync.Mutex
	running bool

	controlCh chan controlMsg
	stopCh    chan struct{}
}

// internal control kinds (not user visible events)
type controlKind int

const (
	ctrlRecalculate controlKind = iota // schedule changed or cleared
	ctrlSkip                           // next run skipped
)

type controlMsg struct {
	kind controlKind
	data any
}

func newCronParser() cron.Parser {
	return cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
}

func NewScheduler(task TaskFunc, onError NotifyFunc) *Scheduler {
	if task == nil {
		panic("task function cannot be nil")
	}

	return &Scheduler{
		Task:      task,
		OnError:   onError,
		parser:    newCronParser(),
		controlCh: make(chan controlMsg, 4),
		stopCh:    make(chan struct{}),
	}
}

func (s *Scheduler) Stop() {
	select {
	case <-s.stopCh: // already closed
	default:
		close(s.stopCh)
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	go s.runScheduled()
}

// Schedule replaces the current schedule with cronExpr. An empty expression
// clears it.
func (s *Scheduler) Schedule(cronExpr string) error {
	var sh cron.Schedule
	if cronExpr != "" {
		var err error
		sh, err = s.parser.Parse(cronExpr)
		if err != nil {
			return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
		}
	}

	s.mu.Lock()
	s.setScheduleLocked(sh)
	running := s.running
	s.mu.Unlock()

	if running {
		s.trySendControl(ctrlRecalculate, sh)
	}
	return nil
}

// Skip skips the next scheduled run.
func (s *Scheduler) Skip() error {
	s.mu.Lock()
	if s.schedule == nil || s.nextRun.IsZero() {
		s.mu.Unlock()
		return fmt.Errorf("no active schedule to skip")
	}
	s.nextRun = s.schedule.Next(s.nextRun)
	running := s.running
	s.mu.Unlock()

	if running {
		s.trySendControl(ctrlSkip, nil)
	}
	return nil
}

func (s *Scheduler) Status() (nextRun time.Time, running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nextRun = s.nextRun
	running = s.running
	return
}

func (s *Scheduler) setScheduleLocked(sh cron.Schedule) {
	s.schedule = sh
	if sh == nil {
		s.nextRun = time.Time{}
		return
	}
	s.nextRun = sh.Next(time.Now())
}

func (s *Scheduler) runScheduled() {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		logrus.Debug("scheduler stopped")
	}()

	logrus.Debug("scheduler started")

	for {
		schedule, nextRun := s.snapshot()

		// A nil channel never fires, so an empty schedule just waits for
		// control messages.
		var timer *time.Timer
		var fire <-chan time.Time
		if schedule != nil && !nextRun.IsZero() {
			wait := time.Until(nextRun)
			if wait < 0 {
				wait = 0
			}
			timer = time.NewTimer(wait)
			fire = timer.C
		}

		select {
		case <-fire:
			logrus.Debugf("running scheduled task at %s", nextRun.Format(time.DateTime))
			if err := s.Task(); err != nil {
				s.sendError(fmt.Errorf("task failed: %w", err))
			}
			s.advanceNextRun()
		case <-s.stopCh:
			stopTimer(timer)
			return
		case msg := <-s.controlCh:
			stopTimer(timer)
			logrus.WithFields(logrus.Fields{
				"kind": msg.kind,
				"data": msg.data,
			}).Debug("received control msg")
		}
	}
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}

func (s *Scheduler) snapshot() (cron.Schedule, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedule, s.nextRun
}

// advanceNextRun moves to the first slot after now, so runs missed while the
// machine was asleep are not replayed back to back.
func (s *Scheduler) advanceNextRun() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schedule == nil {
		return
	}
	s.nextRun = s.schedule.Next(time.Now())
}

func (s *Scheduler) sendError(err error) {
	if s.OnError == nil {
		return
	}

	go s.OnError(err)
}

func (s *Scheduler) trySendControl(kind controlKind, data any) {
	select {
	case s.controlCh <- controlMsg{kind: kind, data: data}:
	default:
	}
}
