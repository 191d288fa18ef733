package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/veonhoon/bible-reader-sub000/internal/domain"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/contract"
)

// scheduler runs the notification pipeline once per trigger. Triggers that
// arrive while a run is in flight collapse into a single follow-up run.
type scheduler struct {
	runner      contract.NotificationService
	cron        *cron.Cron
	cronSpec    string
	runTimeout  time.Duration
	triggers    chan struct{}
	stopChan    chan struct{}
	done        chan struct{}
	unsubscribe []func()
	log         *logrus.Entry

	mu      sync.Mutex
	running bool
}

func newScheduler(runner contract.NotificationService, cronSpec string, loc *time.Location, log *logrus.Entry) *scheduler {
	if loc == nil {
		loc = time.Local
	}

	return &scheduler{
		runner:     runner,
		cron:       cron.New(cron.WithLocation(loc)),
		cronSpec:   cronSpec,
		runTimeout: 2 * time.Minute,
		triggers:   make(chan struct{}, 1),
		stopChan:   make(chan struct{}),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Start registers the refresh cron job, starts the loop and queues the
// initial run.
func (s *scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if s.cronSpec != "" {
		if _, err := s.cron.AddFunc(s.cronSpec, s.Trigger); err != nil {
			return fmt.Errorf("invalid refresh cron spec %q: %w", s.cronSpec, err)
		}
	}

	s.running = true
	s.log.WithField("cron", s.cronSpec).Info("scheduler starting")

	s.cron.Start()
	go s.mainLoop()
	s.Trigger()

	return nil
}

// Subscribe re-runs the pipeline whenever one of the collections changes
func (s *scheduler) Subscribe(ctx context.Context, docs contract.DocumentReader, collections ...string) error {
	for _, collection := range collections {
		unsubscribe, err := docs.Subscribe(ctx, collection, s.Trigger)
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", collection, err)
		}

		s.mu.Lock()
		s.unsubscribe = append(s.unsubscribe, unsubscribe)
		s.mu.Unlock()
	}

	return nil
}

func (s *scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	s.log.Info("scheduler stopping")

	for _, fn := range unsubscribe {
		fn()
	}
	<-s.cron.Stop().Done()

	close(s.stopChan)
	<-s.done
}

// Trigger queues a run. It never blocks.
func (s *scheduler) Trigger() {
	select {
	case s.triggers <- struct{}{}:
	default:
		// a run is already queued
	}
}

func (s *scheduler) mainLoop() {
	defer close(s.done)

	for {
		select {
		case <-s.triggers:
			s.runOnce()
		case <-s.stopChan:
			return
		}
	}
}

func (s *scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.runner.Run(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrRunInProgress) {
			// a run started from elsewhere; ours would only repeat it
			s.log.Debug("run already in progress, skipping")
			return
		}
		s.log.WithError(err).Error("scheduling run failed")
		return
	}

	s.log.WithFields(logrus.Fields{
		"status":    result.Status,
		"scheduled": result.Scheduled,
		"took":      time.Since(start).String(),
	}).Info("scheduling run finished")
}
