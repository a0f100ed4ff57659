package scheduler

import (
	"context"
	"time"

	"fasting_tracker_backend/internal/domain/report"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReportSender performs one recurring report send. Implemented by
// app.ReportService; the dispatcher owns claiming and rescheduling.
type ReportSender interface {
	SendScheduledReport(ctx context.Context, rec *report.ScheduledReport) error
}

// Config tunes the dispatcher sweep.
type Config struct {
	CronSpec        string        // Sweep cadence, cron format
	BatchLimit      int           // Max due schedules per sweep
	ClaimStaleAfter time.Duration // Claims older than this are reclaimable
	MaxSendAttempts int           // Consecutive failures before disabling
	SendTimeout     time.Duration // Budget for a single send
}

// ReportDispatcher periodically finds due, enabled schedules, claims each,
// sends the report and advances or releases it. Multiple dispatcher
// instances may share the store; the claim guard keeps sends exclusive.
type ReportDispatcher struct {
	cronEngine *cron.Cron
	reportRepo report.Repository
	sender     ReportSender
	cfg        Config
	logger     *logrus.Entry
	now        func() time.Time
}

func NewReportDispatcher(rr report.Repository, sender ReportSender, cfg Config, logger *logrus.Entry) *ReportDispatcher {
	if cfg.CronSpec == "" {
		cfg.CronSpec = "* * * * *"
	}
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = 50
	}
	if cfg.ClaimStaleAfter <= 0 {
		cfg.ClaimStaleAfter = 10 * time.Minute
	}
	if cfg.MaxSendAttempts <= 0 {
		cfg.MaxSendAttempts = 5
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	return &ReportDispatcher{
		cronEngine: cron.New(cron.WithLocation(time.UTC)),
		reportRepo: rr,
		sender:     sender,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

func (d *ReportDispatcher) Start() error {
	_, err := d.cronEngine.AddFunc(d.cfg.CronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		d.Sweep(ctx)
	})
	if err != nil {
		return err
	}
	d.cronEngine.Start()
	d.logger.Infof("Report dispatcher started, sweeping on spec %q.", d.cfg.CronSpec)
	return nil
}

func (d *ReportDispatcher) Stop() {
	d.logger.Info("Stopping report dispatcher...")
	ctx := d.cronEngine.Stop() // Waits for a running sweep to finish.
	<-ctx.Done()
	d.logger.Info("Report dispatcher stopped.")
}

// Sweep handles one pass over the due schedules. Records are independent;
// a failure on one never aborts the rest.
func (d *ReportDispatcher) Sweep(ctx context.Context) {
	now := d.now()
	staleBefore := now.Add(-d.cfg.ClaimStaleAfter)

	due, err := d.reportRepo.ListDue(ctx, now, staleBefore, d.cfg.BatchLimit)
	if err != nil {
		d.logger.Errorf("Failed to list due schedules: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}
	d.logger.Debugf("Sweep found %d due schedule(s).", len(due))

	for _, rec := range due {
		d.dispatch(ctx, rec)
	}
}

func (d *ReportDispatcher) dispatch(ctx context.Context, rec *report.ScheduledReport) {
	now := d.now()
	claimed, err := d.reportRepo.TryClaim(ctx, rec.ID, now, now.Add(-d.cfg.ClaimStaleAfter))
	if err != nil {
		d.logger.Errorf("Failed to claim schedule %s: %v", rec.ID, err)
		return
	}
	if !claimed {
		// Another worker holds a live claim, or the schedule was disabled
		// after the due query. Not an error.
		d.logger.Debugf("Schedule %s already claimed elsewhere. Skipping.", rec.ID)
		return
	}

	if len(rec.Recipients) == 0 {
		// Committed state never pairs enabled with empty recipients; a row
		// like this is corrupt and must not reach the mailer.
		d.logger.Warnf("Schedule %s is enabled with no recipients. Disabling.", rec.ID)
		if err := d.reportRepo.DisableByID(ctx, rec.ID); err != nil {
			d.logger.Errorf("Failed to disable recipient-less schedule %s: %v", rec.ID, err)
		}
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	sendErr := d.sender.SendScheduledReport(sendCtx, rec)
	cancel()

	if sendErr != nil {
		d.logger.Warnf("Send failed for schedule %s (user %s): %v", rec.ID, rec.UserID, sendErr)
		attempts, err := d.reportRepo.ReleaseClaim(ctx, rec.ID)
		if err != nil {
			d.logger.Errorf("Failed to release claim on schedule %s: %v", rec.ID, err)
			return
		}
		if attempts >= d.cfg.MaxSendAttempts {
			d.logger.Errorf("Schedule %s failed %d consecutive sends. Disabling.", rec.ID, attempts)
			if err := d.reportRepo.DisableByID(ctx, rec.ID); err != nil {
				d.logger.Errorf("Failed to disable schedule %s after repeated failures: %v", rec.ID, err)
			}
		}
		return
	}

	nextSendAt, err := report.ComputeNextSend(rec.StartTime, d.now(), rec.IntervalHours)
	if err != nil {
		// Stored intervals are validated on write, so this means the record
		// was corrupted out of band. Release so the row is not stuck.
		d.logger.Errorf("Cannot compute next send for schedule %s: %v", rec.ID, err)
		if _, rerr := d.reportRepo.ReleaseClaim(ctx, rec.ID); rerr != nil {
			d.logger.Errorf("Failed to release claim on schedule %s: %v", rec.ID, rerr)
		}
		return
	}

	if err := d.reportRepo.CompleteSend(ctx, rec.ID, nextSendAt); err != nil {
		d.logger.Errorf("Failed to record completed send for schedule %s: %v", rec.ID, err)
		return
	}
	d.logger.Infof("Report sent for schedule %s (user %s). Next send at %s.", rec.ID, rec.UserID, nextSendAt.Format(time.RFC3339))
}
