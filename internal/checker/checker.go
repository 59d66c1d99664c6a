package checker

import (
	"context"
	"fmt"
	"time"

	"github.com/neoleocvxs-lang/attendance-bot/internal/attendance"
	"github.com/neoleocvxs-lang/attendance-bot/internal/config"
	"github.com/neoleocvxs-lang/attendance-bot/internal/notify"
	"github.com/neoleocvxs-lang/attendance-bot/internal/portal"
	"github.com/neoleocvxs-lang/attendance-bot/internal/report"
	"github.com/neoleocvxs-lang/attendance-bot/internal/schedule"
	"github.com/neoleocvxs-lang/attendance-bot/pkg/dateutil"
	"go.uber.org/zap"
)

// Checker runs one attendance verification pass: resolve the shift for
// the target date, pull scan records, classify clock-in/out, decide
// overtime and push the composed report to the chat channel.
type Checker struct {
	config   *config.Config
	resolver *schedule.Resolver
	source   portal.Source
	sink     notify.Sink
	logger   *zap.Logger
}

// Outcome captures everything a single verification pass decided
type Outcome struct {
	TargetDate time.Time
	Shift      schedule.ShiftInfo
	Result     attendance.Result
	Late       attendance.LateStatus
	Overtime   attendance.OvertimeStatus
	Message    string
	Suppressed bool
	Reason     string
}

// NewChecker creates a new attendance checker
func NewChecker(
	cfg *config.Config,
	source portal.Source,
	sink notify.Sink,
	logger *zap.Logger,
) *Checker {
	resolver := schedule.NewResolver(source, cfg.Portal.GetMaxWeekNavigations(), logger)
	return &Checker{
		config:   cfg,
		resolver: resolver,
		source:   source,
		sink:     sink,
		logger:   logger,
	}
}

// Run performs one verification pass for the date implied by now.
// Acquisition failures are reported to the chat channel before the
// error is returned, so the user learns about broken runs too.
func (c *Checker) Run(ctx context.Context, now time.Time, dryRun bool) (*Outcome, error) {
	outcome, err := c.run(ctx, now, dryRun)
	if err != nil && !dryRun {
		if pushErr := c.sink.Push(ctx, notify.FailureMessage(err)); pushErr != nil {
			c.logger.Error("Failed to deliver failure diagnostic",
				zap.Error(pushErr))
		}
	}
	return outcome, err
}

func (c *Checker) run(ctx context.Context, now time.Time, dryRun bool) (*Outcome, error) {
	windows := c.config.Rules.Windows.GetWindows()

	// 1. Determine the target date (runs before the cutoff hour look
	// at yesterday's attendance)
	target := dateutil.TargetFor(now, c.config.Rules.GetCutoffHour())
	c.logger.Info("Starting attendance check",
		zap.String("target_date", dateutil.FormatLabel(target)),
		zap.Int("run_hour", now.Hour()),
		zap.Bool("dry_run", dryRun))

	// 2. Resolve the shift scheduled for the target date
	shift, err := c.resolver.Resolve(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve shift: %w", err)
	}
	c.logger.Info("Shift resolved",
		zap.String("kind", shift.Kind.String()),
		zap.String("descriptor", shift.Descriptor),
		zap.Bool("holiday", shift.Holiday))

	// 3. Pull scan records covering the target date and the morning after
	// (night shifts clock out on the following day)
	next := target.AddDate(0, 0, 1)
	scans, err := c.source.ScanRecords(ctx, target, next)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scan records: %w", err)
	}
	c.logger.Info("Scan records fetched", zap.Int("count", len(scans)))

	// 4. Classify clock-in and clock-out
	targetLabel := dateutil.FormatLabel(target)
	nextLabel := dateutil.FormatLabel(next)
	result := attendance.Classify(shift.Kind, scans, targetLabel, nextLabel, windows)
	late := attendance.Lateness(shift.Kind, shift.Holiday, result.In, windows)
	c.logger.Info("Attendance classified",
		zap.String("in", result.In),
		zap.String("out", result.Out),
		zap.Int("late", int(late)))

	// 5. Decide overtime when the clock-out suggests extra hours
	overtime := attendance.OvertimeNotApplicable
	if attendance.OvertimeApplicable(shift.Kind, result.Out, windows) {
		records, err := c.source.OvertimeRecords(ctx, target.AddDate(0, 0, -2), target.AddDate(0, 0, 2))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch overtime records: %w", err)
		}
		overtime = attendance.DecideOvertime(true, records, targetLabel, c.config.Rules.GetOvertimeMatch())
		c.logger.Info("Overtime decided",
			zap.Int("records", len(records)),
			zap.Int("status", int(overtime)))
	}

	// 6. Compose the report message
	message := report.Compose(target, shift, result, late, overtime, c.config.Rules.GetPaydayReminderDay())

	outcome := &Outcome{
		TargetDate: target,
		Shift:      shift,
		Result:     result,
		Late:       late,
		Overtime:   overtime,
		Message:    message,
	}

	// 7. Check the suppression table for this checkpoint
	rules := c.config.GetSuppressionRules()
	suppressed, reason := report.ShouldSuppress(rules, shift.Kind, shift.Holiday, now.Hour(), result.Out, windows)
	if suppressed {
		c.logger.Info("Notification suppressed", zap.String("reason", reason))
		outcome.Suppressed = true
		outcome.Reason = reason
		return outcome, nil
	}

	// 8. Push the report
	if dryRun {
		c.logger.Info("Dry run, not pushing notification",
			zap.String("message", message))
		return outcome, nil
	}
	if err := c.sink.Push(ctx, message); err != nil {
		// Delivery failure is non-fatal: the classification stands and the
		// sink already retried internally. Returning an error here would
		// only trigger a diagnostic push through the same broken sink.
		c.logger.Error("Failed to deliver notification", zap.Error(err))
		return outcome, nil
	}
	c.logger.Info("Notification delivered")

	return outcome, nil
}
