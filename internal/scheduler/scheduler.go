// Package scheduler wires up the cron job that publishes a pending
// applications digest for every employer.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"jobmate/board-service/internal/domain"
	"jobmate/board-service/internal/events"
)

// EmployerLister lists the employers to include in a digest run.
type EmployerLister interface {
	ListEmployerIDs(ctx context.Context) ([]string, error)
}

// PendingCounter is satisfied by *workflow.Engine.
type PendingCounter interface {
	PendingCount(ctx context.Context, scope domain.Scope) (int, error)
}

// Scheduler wraps robfig/cron and manages the digest loop.
type Scheduler struct {
	cron      *cron.Cron
	employers EmployerLister
	counter   PendingCounter
	pub       events.Publisher
	spec      string // cron spec, e.g. "@daily"
}

// New creates a Scheduler firing on spec.
func New(employers EmployerLister, counter PendingCounter, pub events.Publisher, spec string) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLogger(cron.DefaultLogger)),
		employers: employers,
		counter:   counter,
		pub:       pub,
		spec:      spec,
	}
}

// Start registers the job and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.RunDigest(ctx); err != nil {
			log.Printf("[scheduler] Digest error: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)
	return nil
}

// Stop waits for a running digest to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("[scheduler] Cron stopped")
}

// RunDigest publishes one message per employer with pending applications and
// returns how many were sent. A failure for one employer does not stop the run.
func (s *Scheduler) RunDigest(ctx context.Context) (int, error) {
	ids, err := s.employers.ListEmployerIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list employers: %w", err)
	}

	sent := 0
	at := time.Now().UTC().Format(time.RFC3339)
	for _, id := range ids {
		pending, err := s.counter.PendingCount(ctx, domain.EmployerScope(id))
		if err != nil {
			log.Printf("[scheduler] Pending count for employer %s: %v — continuing", id, err)
			continue
		}
		if pending == 0 {
			continue
		}
		err = s.pub.Publish(ctx, events.ChannelPendingDigest, map[string]any{
			"type":       events.ChannelPendingDigest,
			"employerId": id,
			"pending":    pending,
			"at":         at,
		})
		if err != nil {
			log.Printf("[scheduler] Publish digest for employer %s: %v — continuing", id, err)
			continue
		}
		sent++
	}

	log.Printf("[scheduler] Digest complete — employers=%d sent=%d", len(ids), sent)
	return sent, nil
}
