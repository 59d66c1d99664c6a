package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/neoleocvxs-lang/attendance-bot/internal/checker"
	"github.com/neoleocvxs-lang/attendance-bot/pkg/dateutil"
	"github.com/neoleocvxs-lang/attendance-bot/pkg/timeutil"
	"go.uber.org/zap"
)

// Daemon represents the daemon process. It wakes up at the configured
// checkpoint times and runs one attendance verification pass per
// checkpoint per day.
type Daemon struct {
	checker      *checker.Checker
	checkpoints  []int // Run times as minutes since midnight, local timezone
	systemTray   bool  // Show system tray icon
	logger       *zap.Logger
	ctx          context.Context
	cancel       context.CancelFunc
	trayApp      *TrayApp
	mu           sync.Mutex      // Protect against concurrent runs
	checkRunning bool            // Flag to prevent concurrent check operations
	completed    map[string]bool // date+checkpoint keys already run
	lastOutcome  *checker.Outcome
	lastRunTime  time.Time
}

// NewDaemon creates a new daemon instance
func NewDaemon(chk *checker.Checker, checkpoints []int, systemTray bool, logger *zap.Logger) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		checker:     chk,
		checkpoints: checkpoints,
		systemTray:  systemTray,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		completed:   make(map[string]bool),
	}
}

// Start starts the daemon
func (d *Daemon) Start() error {
	// Initialize system tray if enabled (Windows only)
	if d.systemTray {
		d.logger.Info("Initializing system tray")
		trayApp, err := NewTrayApp(d, d.logger)
		if err != nil {
			d.logger.Warn("Failed to initialize system tray", zap.Error(err))
			// Fall back to non-tray mode
			d.runLoop()
			return nil
		}
		d.trayApp = trayApp
		// Run tray (blocks until Quit)
		d.trayApp.Run()
		return nil
	}

	d.logger.Info("Running without system tray")
	d.runLoop()
	return nil
}

// runLoop runs the checkpoint schedule (called from tray or standalone)
func (d *Daemon) runLoop() {
	labels := make([]string, len(d.checkpoints))
	for i, cp := range d.checkpoints {
		labels[i] = timeutil.FromMinutes(cp)
	}
	d.logger.Info("Daemon checkpoint schedule started",
		zap.Strings("checkpoints", labels))

	// Catch up on a checkpoint that already passed today, so a late
	// start still produces today's report
	now := time.Now()
	if cp, ok := d.dueCheckpoint(now); ok {
		d.logger.Info("Checkpoint already passed today, running now",
			zap.String("checkpoint", timeutil.FromMinutes(cp)))
		d.runCheckpoint(now, cp)
	}

	d.logger.Info("Next checkpoint scheduled",
		zap.Time("next_run", d.nextCheckpoint(time.Now())))

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Check every minute if a checkpoint is due
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			d.logger.Info("Daemon stopped")
			if d.trayApp != nil {
				d.trayApp.Stop()
			}
			return

		case sig := <-sigChan:
			d.logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			if d.trayApp != nil {
				d.trayApp.Stop()
			}
			d.Stop()
			return

		case now := <-ticker.C:
			// A due-but-incomplete lookup instead of an exact minute match,
			// so a tick lost to sleep/suspend or a failed run is picked up
			// by the next tick
			if cp, ok := d.dueCheckpoint(now); ok {
				d.runCheckpoint(now, cp)
				d.logger.Info("Next checkpoint scheduled",
					zap.Time("next_run", d.nextCheckpoint(now)))
			}
		}
	}
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	d.cancel()
}

// runCheckpoint performs the verification pass for one checkpoint.
// Protected with a mutex and a per-day completion map so a checkpoint
// never pushes twice for the same date.
func (d *Daemon) runCheckpoint(now time.Time, checkpoint int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.checkRunning {
		d.logger.Warn("Check already running, skipping concurrent execution")
		return
	}

	key := fmt.Sprintf("%s@%s", now.Format("2006-01-02"), timeutil.FromMinutes(checkpoint))
	if d.completed[key] {
		d.logger.Debug("Checkpoint already completed today, skipping",
			zap.String("key", key))
		return
	}

	d.checkRunning = true
	defer func() {
		d.checkRunning = false
	}()

	d.logger.Info("Running checkpoint",
		zap.String("checkpoint", timeutil.FromMinutes(checkpoint)))

	outcome, err := d.checker.Run(d.ctx, now, false)
	if err != nil {
		d.logger.Error("Checkpoint failed", zap.Error(err))
		if d.trayApp != nil {
			d.trayApp.ShowNotification("Check Failed", fmt.Sprintf("Error: %v", err))
		}
		// Failed checkpoints stay incomplete so the next tick can retry
		return
	}

	d.completed[key] = true
	d.lastOutcome = outcome
	d.lastRunTime = time.Now()

	d.logger.Info("Checkpoint completed",
		zap.String("key", key),
		zap.Bool("suppressed", outcome.Suppressed))
	if d.trayApp != nil {
		d.trayApp.ShowNotification("Check Completed",
			fmt.Sprintf("Attendance verified for %s", dateutil.FormatLabel(outcome.TargetDate)))
	}
}

// CheckNow triggers an immediate verification pass (called from tray menu).
// Manual runs bypass the per-day completion map.
func (d *Daemon) CheckNow() {
	d.logger.Info("Manual check triggered from tray")

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.checkRunning {
		d.logger.Warn("Check already running, skipping manual run")
		return
	}
	d.checkRunning = true
	defer func() {
		d.checkRunning = false
	}()

	outcome, err := d.checker.Run(d.ctx, time.Now(), false)
	if err != nil {
		d.logger.Error("Manual check failed", zap.Error(err))
		if d.trayApp != nil {
			d.trayApp.ShowNotification("Check Failed", fmt.Sprintf("Error: %v", err))
		}
		return
	}

	d.lastOutcome = outcome
	d.lastRunTime = time.Now()
	d.logger.Info("Manual check completed",
		zap.Bool("suppressed", outcome.Suppressed))
	if d.trayApp != nil {
		d.trayApp.ShowNotification("Check Completed",
			fmt.Sprintf("Attendance verified for %s", dateutil.FormatLabel(outcome.TargetDate)))
	}
}

// GetStatus returns daemon status
func (d *Daemon) GetStatus() map[string]interface{} {
	d.mu.Lock()
	defer d.mu.Unlock()

	status := map[string]interface{}{
		"running":  true,
		"next_run": d.nextCheckpoint(time.Now()).Format("15:04"),
	}

	if d.lastOutcome != nil {
		status["last_check"] = map[string]interface{}{
			"target_date": dateutil.FormatLabel(d.lastOutcome.TargetDate),
			"shift":       d.lastOutcome.Shift.Kind.String(),
			"in":          d.lastOutcome.Result.In,
			"out":         d.lastOutcome.Result.Out,
			"suppressed":  d.lastOutcome.Suppressed,
			"run_time":    d.lastRunTime.Format("15:04:05"),
		}
	}

	return status
}

// dueCheckpoint returns the latest checkpoint at or before now that has not
// completed today.
func (d *Daemon) dueCheckpoint(now time.Time) (int, bool) {
	minute := now.Hour()*60 + now.Minute()

	best := -1
	for _, cp := range d.checkpoints {
		if cp <= minute && cp > best {
			key := fmt.Sprintf("%s@%s", now.Format("2006-01-02"), timeutil.FromMinutes(cp))
			if !d.completed[key] {
				best = cp
			}
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// nextCheckpoint returns the wall-clock time of the next scheduled run
func (d *Daemon) nextCheckpoint(now time.Time) time.Time {
	minute := now.Hour()*60 + now.Minute()

	best := -1
	for _, cp := range d.checkpoints {
		if cp > minute && (best < 0 || cp < best) {
			best = cp
		}
	}

	day := now
	if best < 0 {
		// All of today's checkpoints have passed, wrap to tomorrow
		day = now.AddDate(0, 0, 1)
		for _, cp := range d.checkpoints {
			if best < 0 || cp < best {
				best = cp
			}
		}
	}
	if best < 0 {
		best = 0
	}

	return time.Date(day.Year(), day.Month(), day.Day(), best/60, best%60, 0, 0, day.Location())
}
