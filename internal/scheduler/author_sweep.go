// Package scheduler runs periodic catalog maintenance on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/catalog/internal/tasks"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule validates a five-field cron schedule string.
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// NextRunTime returns the first activation of schedule after from.
func NextRunTime(schedule string, from time.Time) (time.Time, error) {
	sched, err := cronParser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// TaskEnqueuer hands the sweep to the task queue.
type TaskEnqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

// AuthorSweepScheduler periodically removes authors that no book links to.
// With a task queue available the sweep is enqueued; otherwise it runs
// inline on the cron goroutine.
type AuthorSweepScheduler struct {
	schedule string
	cleaner  tasks.OrphanAuthorsCleaner
	enqueuer TaskEnqueuer

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewAuthorSweepScheduler creates a scheduler. enqueuer may be nil.
func NewAuthorSweepScheduler(schedule string, cleaner tasks.OrphanAuthorsCleaner, enqueuer TaskEnqueuer) *AuthorSweepScheduler {
	return &AuthorSweepScheduler{
		schedule: schedule,
		cleaner:  cleaner,
		enqueuer: enqueuer,
		cron:     cron.New(cron.WithParser(cronParser)),
	}
}

// Start validates the schedule and begins running the sweep. The scheduler
// stops when ctx is cancelled.
func (s *AuthorSweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.RunNow(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule author sweep: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRunTime(s.schedule, time.Now())
	log.Printf("Author sweep scheduler: started with schedule '%s'. Next run: %v", s.schedule, nextRun)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *AuthorSweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Author sweep scheduler: stopped")
}

// IsRunning returns whether the scheduler is active.
func (s *AuthorSweepScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next sweep will occur.
func (s *AuthorSweepScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// RunNow performs one sweep immediately.
func (s *AuthorSweepScheduler) RunNow(ctx context.Context) {
	if s.enqueuer != nil {
		id, err := s.enqueuer.Enqueue(tasks.CleanupOrphanAuthorsTask{})
		if err != nil {
			log.Printf("Author sweep: failed to enqueue: %v", err)
			return
		}
		log.Printf("Author sweep: enqueued task %s", id)
		return
	}

	deleted, err := s.cleaner.DeleteOrphans(ctx)
	if err != nil {
		log.Printf("Author sweep: failed: %v", err)
		return
	}
	log.Printf("Author sweep: deleted %d orphaned authors", deleted)
}
