package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"StockLens/internal/pipeline"
)

// Scheduler runs the batch pipeline on a cron schedule. Runs never overlap:
// a tick that fires while the previous run is busy is skipped.
type Scheduler struct {
	Cron     *cron.Cron
	Pipeline *pipeline.Pipeline
	Params   pipeline.Params
	Ctx      context.Context

	mu   sync.Mutex
	runs int
}

// NewScheduler creates a scheduler using 6-field (seconds first) cron specs.
func NewScheduler(ctx context.Context, p *pipeline.Pipeline, params pipeline.Params) *Scheduler {
	logger := cron.PrintfLogger(log.Default())
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))),
		Pipeline: p,
		Params:   params,
		Ctx:      ctx,
	}
}

// Register adds the batch task for spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.batchTask); err != nil {
		return fmt.Errorf("register batch task %q: %w", spec, err)
	}
	log.Printf("[INFO] batch task registered: %s", spec)
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the scheduler and waits for a running batch to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the batch task immediately.
func (s *Scheduler) RunNow() {
	s.batchTask()
}

// Runs returns the number of batch runs started so far.
func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

func (s *Scheduler) batchTask() {
	if s.Ctx.Err() != nil {
		return
	}
	s.mu.Lock()
	s.runs++
	n := s.runs
	s.mu.Unlock()

	log.Printf("[INFO] === scheduled batch #%d ===", n)
	rep, err := s.Pipeline.Run(s.Ctx, s.Params)
	if err != nil {
		log.Printf("[ERROR] scheduled batch #%d failed: %v", n, err)
		return
	}
	log.Printf("[INFO] scheduled batch #%d done: %d succeeded, %d failed", n, len(rep.Succeeded), len(rep.Failed))
}
