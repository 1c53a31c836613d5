package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"practicescout/config"
	"practicescout/models"
	"practicescout/scraper"
	"practicescout/storage"
)

// Triggerable allows workers to be triggered manually.
type Triggerable interface {
	Trigger()
}

// Scheduler fires crawls on a cron or interval schedule and polls the
// command queue so external tooling can drive the daemon through SQLite.
type Scheduler struct {
	cfg          *config.Config
	orchestrator *scraper.Orchestrator
	store        *storage.SQLiteStore
	cron         *cron.Cron
	ticker       *time.Ticker
	stopCh       chan struct{}

	healthcheckWorker Triggerable
}

func New(cfg *config.Config, orchestrator *scraper.Orchestrator, store *storage.SQLiteStore) *Scheduler {
	return &Scheduler{
		cfg:          cfg,
		orchestrator: orchestrator,
		store:        store,
		cron:         cron.New(),
		stopCh:       make(chan struct{}),
	}
}

// SetHealthcheckWorker registers the dead-URL sweeper for manual triggering.
func (s *Scheduler) SetHealthcheckWorker(w Triggerable) {
	s.healthcheckWorker = w
}

func (s *Scheduler) Start(ctx context.Context) error {
	go s.pollCommands(ctx)

	if s.cfg.Scheduler.Cron != "" {
		log.Printf("Starting scheduler with cron: %s", s.cfg.Scheduler.Cron)
		_, err := s.cron.AddFunc(s.cfg.Scheduler.Cron, func() {
			if _, _, err := s.orchestrator.RunAll(ctx); err != nil {
				log.Printf("Scheduled run error: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
	} else if s.cfg.Scheduler.Interval > 0 {
		log.Printf("Starting scheduler with interval: %s", s.cfg.Scheduler.Interval)
		s.ticker = time.NewTicker(s.cfg.Scheduler.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					if _, _, err := s.orchestrator.RunAll(ctx); err != nil {
						log.Printf("Scheduled run error: %v", err)
					}
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	} else {
		log.Println("No schedule configured, daemon will only respond to commands")
	}

	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}

func (s *Scheduler) TriggerNow(ctx context.Context) error {
	_, _, err := s.orchestrator.RunAll(ctx)
	return err
}

func (s *Scheduler) pollCommands(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cmds, err := s.store.GetPendingCommands()
			if err != nil {
				log.Printf("Error getting commands: %v", err)
				continue
			}

			for _, cmd := range cmds {
				log.Printf("Processing command: %s", cmd.Command)
				if err := s.handleCommand(ctx, &cmd); err != nil {
					log.Printf("Command error: %v", err)
				}
				if err := s.store.MarkCommandProcessed(cmd.ID); err != nil {
					log.Printf("Error marking command processed: %v", err)
				}
			}
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) handleCommand(ctx context.Context, cmd *models.Command) error {
	switch cmd.Command {
	case models.CmdRunNow:
		_, _, err := s.orchestrator.RunAll(ctx)
		return err
	case models.CmdRunBroker:
		params, err := s.store.ParseCommandParams(cmd)
		if err != nil {
			return fmt.Errorf("parse command params: %w", err)
		}
		if params.Broker == "" {
			return fmt.Errorf("run_broker command without broker param")
		}
		_, _, err = s.orchestrator.RunBroker(ctx, params.Broker)
		return err
	case models.CmdPause:
		s.orchestrator.Pause()
		log.Println("Crawler paused")
		return nil
	case models.CmdResume:
		s.orchestrator.Resume()
		log.Println("Crawler resumed")
		return nil
	case models.CmdRunHealthcheck:
		if s.healthcheckWorker != nil {
			s.healthcheckWorker.Trigger()
			log.Println("Healthcheck worker triggered via command")
		}
		return nil
	default:
		return fmt.Errorf("unknown command: %s", cmd.Command)
	}
}
