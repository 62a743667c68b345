package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/microgreens/internal/config"
	"github.com/mamadbah2/microgreens/internal/domain/models"
	"github.com/mamadbah2/microgreens/internal/service/planning"
	"github.com/mamadbah2/microgreens/internal/service/reporting"
)

const jobTimeout = 2 * time.Minute

// StateSource exposes the application state to the jobs.
type StateSource interface {
	Snapshot() models.AppData
	Now() time.Time
}

// PlanGenerator produces the intelligent sowing plan.
type PlanGenerator interface {
	Generate(ctx context.Context, in planning.IntelligentPlanInput) models.IntelligentSowingPlan
}

// Notifier delivers a text to a WhatsApp number; an empty to means the farm manager.
type Notifier interface {
	Notify(ctx context.Context, to, msg string) error
}

// RowAppender appends rows to a spreadsheet range.
type RowAppender interface {
	AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error
}

// WeeklyReporter builds and stores the weekly summary.
type WeeklyReporter interface {
	WeeklySummary(ctx context.Context) (models.WeeklySummary, error)
}

// Backuper uploads a snapshot and returns where it was stored.
type Backuper interface {
	Upload(ctx context.Context, data models.AppData) (string, error)
}

// Deps are the collaborators of the scheduled jobs. Nil optional fields disable the part of
// a job that needs them.
type Deps struct {
	State    StateSource
	Planner  PlanGenerator
	Notifier Notifier
	Sheet    RowAppender
	Reporter WeeklyReporter
	Backup   Backuper
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron   *cron.Cron
	cfg    config.SchedulerConfig
	sheets config.SheetsConfig
	deps   Deps
	logger *zap.Logger
}

// NewScheduler creates a new scheduler whose expressions are evaluated in loc.
func NewScheduler(cfg config.Config, loc *time.Location, deps Deps, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		cfg:    cfg.Scheduler,
		sheets: cfg.Sheets,
		deps:   deps,
		logger: logger,
	}
}

// Start registers every configured job and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler")

	jobs := []struct {
		name string
		spec string
		run  func(context.Context) error
	}{
		{"daily plan", s.cfg.DailyPlanCron, s.RunDailyPlan},
		{"weekly summary", s.cfg.WeeklySummaryCron, s.RunWeeklySummary},
		{"backup", s.cfg.BackupCron, s.RunBackup},
	}

	for _, job := range jobs {
		if job.spec == "" {
			s.logger.Info("job disabled", zap.String("job", job.name))
			continue
		}
		if _, err := s.cron.AddFunc(job.spec, func() { s.run(job.name, job.run) }); err != nil {
			return fmt.Errorf("schedule %s %q: %w", job.name, job.spec, err)
		}
		s.logger.Info("job scheduled", zap.String("job", job.name), zap.String("spec", job.spec))
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) run(name string, job func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	started := time.Now()
	if err := job(ctx); err != nil {
		s.logger.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
		return
	}
	s.logger.Info("scheduled job finished", zap.String("job", name), zap.Duration("duration", time.Since(started)))
}

// RunDailyPlan sends today's sowing digest to the manager and appends the plan to the sheet.
func (s *Scheduler) RunDailyPlan(ctx context.Context) error {
	if s.deps.Planner == nil {
		return errors.New("no planner configured")
	}
	data := s.deps.State.Snapshot()
	today := s.deps.State.Now()

	plan := s.deps.Planner.Generate(ctx, planning.IntelligentPlanInput{
		Orders:        data.Orders,
		Varieties:     data.MicrogreenVarieties,
		Log:           data.HarvestingLog,
		SeedInventory: data.SeedInventory,
	})

	var errs []error
	if s.deps.Notifier != nil {
		if err := s.deps.Notifier.Notify(ctx, "", planning.FormatDigest(plan, today)); err != nil {
			errs = append(errs, fmt.Errorf("send plan digest: %w", err))
		}
	}
	if s.deps.Sheet != nil {
		if err := s.deps.Sheet.AppendRows(ctx, s.sheets.PlanRange, planning.SheetRows(plan, today)); err != nil {
			errs = append(errs, fmt.Errorf("export plan rows: %w", err))
		}
	}
	return errors.Join(errs...)
}

// RunWeeklySummary stores last week's summary and sends it to the manager.
func (s *Scheduler) RunWeeklySummary(ctx context.Context) error {
	if s.deps.Reporter == nil {
		return errors.New("no reporter configured")
	}
	// A storage failure still yields a summary worth sending.
	summary, storeErr := s.deps.Reporter.WeeklySummary(ctx)
	if storeErr != nil && summary.WeekStart == "" {
		return fmt.Errorf("build weekly summary: %w", storeErr)
	}
	var sendErr error
	if s.deps.Notifier != nil {
		if err := s.deps.Notifier.Notify(ctx, "", reporting.FormatWeeklySummary(summary)); err != nil {
			sendErr = fmt.Errorf("send weekly summary: %w", err)
		}
	}
	return errors.Join(storeErr, sendErr)
}

// RunBackup uploads the current snapshot.
func (s *Scheduler) RunBackup(ctx context.Context) error {
	if s.deps.Backup == nil {
		return errors.New("no backup destination configured")
	}
	key, err := s.deps.Backup.Upload(ctx, s.deps.State.Snapshot())
	if err != nil {
		return err
	}
	s.logger.Debug("backup stored", zap.String("key", key))
	return nil
}
