/*
scheduler.go - Month-close export scheduler

PURPOSE:
  Periodically checks whether the previous calendar month has a completed
  export and, if not, builds the monthly CSV report and writes it to the
  export directory.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Only the month before the current one is considered
  - Skips months that already have a completed run
  - Records runs (running, completed, failed) for audit and the runs endpoint
  - A failed run is retried on the next check

CONFIGURATION:
  - ExportDir: Where files are written (scheduler disabled when empty)
  - CheckInterval: How often to check (default: 1 hour)

USAGE:
  scheduler := NewMonthCloseScheduler(store, handler.Reporter, "/exports", logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: DownloadMonthlyReport (on-demand export)
  - export/csv.go: File format
*/
package api

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/warp/timekeeper/attendance"
	"github.com/warp/timekeeper/calendar"
	"github.com/warp/timekeeper/export"
	"github.com/warp/timekeeper/metrics"
	"github.com/warp/timekeeper/store/sqlite"
)

// MonthCloseScheduler writes the previous month's report once it has closed.
type MonthCloseScheduler struct {
	Runs          ReportRuns
	Reporter      *attendance.Reporter
	ExportDir     string
	CheckInterval time.Duration
	Enabled       bool
	Logger        *logrus.Logger

	now    func() time.Time
	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewMonthCloseScheduler creates a new scheduler. It is disabled when exportDir is empty.
func NewMonthCloseScheduler(runs ReportRuns, reporter *attendance.Reporter, exportDir string, logger *logrus.Logger) *MonthCloseScheduler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &MonthCloseScheduler{
		Runs:          runs,
		Reporter:      reporter,
		ExportDir:     exportDir,
		CheckInterval: 1 * time.Hour,
		Enabled:       exportDir != "",
		Logger:        logger,
		now:           time.Now,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (ms *MonthCloseScheduler) Start() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if !ms.Enabled {
		ms.Logger.Info("[Scheduler] Disabled, not starting")
		return
	}

	ms.ticker = time.NewTicker(ms.CheckInterval)
	ms.wg.Add(1)

	go ms.run()

	ms.Logger.WithField("interval", ms.CheckInterval.String()).Info("[Scheduler] Started")
}

// Stop stops the scheduler and waits for a running check to finish.
func (ms *MonthCloseScheduler) Stop() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.ticker != nil {
		ms.ticker.Stop()
		close(ms.stop)
		ms.wg.Wait()
		ms.ticker = nil
		ms.Logger.Info("[Scheduler] Stopped")
	}
}

func (ms *MonthCloseScheduler) run() {
	defer ms.wg.Done()

	// Run immediately on start
	ms.checkAndProcess()

	for {
		select {
		case <-ms.ticker.C:
			ms.checkAndProcess()
		case <-ms.stop:
			return
		}
	}
}

// RunNow triggers an immediate check (for testing/admin).
func (ms *MonthCloseScheduler) RunNow() {
	ms.checkAndProcess()
}

func (ms *MonthCloseScheduler) checkAndProcess() {
	ctx := context.Background()
	closed := calendar.PreviousMonth(calendar.DateOf(ms.now())).Start
	year, month := closed.Year(), closed.Month()
	log := ms.Logger.WithField("month", export.SheetName(year, month))

	done, err := ms.Runs.IsReportComplete(ctx, year, month)
	if err != nil {
		log.WithError(err).Error("[Scheduler] Error checking report status")
		metrics.IncSchedulerRun(metrics.ResultError)
		return
	}
	if done {
		log.Debug("[Scheduler] Already exported, skipping")
		return
	}

	path, err := ms.process(ctx, year, month)
	metrics.IncSchedulerRun(metrics.Result(err))
	if err != nil {
		log.WithError(err).Error("[Scheduler] Month-close export failed")
		return
	}
	log.WithField("file", path).Info("[Scheduler] Month-close export written")
}

func (ms *MonthCloseScheduler) process(ctx context.Context, year int, month time.Month) (string, error) {
	run := sqlite.ReportRun{
		Year:      year,
		Month:     month,
		Status:    sqlite.RunRunning,
		StartedAt: ms.now(),
	}
	if err := ms.Runs.SaveReportRun(ctx, run); err != nil {
		return "", fmt.Errorf("failed to save run record: %w", err)
	}

	fail := func(err error) (string, error) {
		run.Status = sqlite.RunFailed
		run.Error = err.Error()
		if saveErr := ms.Runs.SaveReportRun(ctx, run); saveErr != nil {
			ms.Logger.WithError(saveErr).Error("[Scheduler] Failed to record failed run")
		}
		return "", err
	}

	start := time.Now()
	rows, err := ms.Reporter.MonthlyReport(ctx, year, month)
	metrics.ObserveReport(metrics.Result(err), len(rows), time.Since(start))
	if err != nil {
		return fail(err)
	}

	body, err := export.BuildCSV(rows)
	if err != nil {
		return fail(err)
	}

	if err := os.MkdirAll(ms.ExportDir, 0o755); err != nil {
		return fail(err)
	}
	path := filepath.Join(ms.ExportDir, export.FileName(year, month, export.FormatCSV))
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fail(err)
	}

	completed := ms.now()
	run.Status = sqlite.RunCompleted
	run.FilePath = path
	run.Rows = len(rows)
	run.CompletedAt = &completed
	if err := ms.Runs.SaveReportRun(ctx, run); err != nil {
		return "", fmt.Errorf("failed to update run record: %w", err)
	}
	return path, nil
}
