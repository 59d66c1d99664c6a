package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/neoleocvxs-lang/attendance-bot/internal/portal"
	"go.uber.org/zap"
)

const defaultMaxNavigations = 15

// Navigator is the slice of the data-acquisition collaborator the resolver
// needs: the current week label, week navigation, and per-day descriptors.
type Navigator interface {
	WeekLabel(ctx context.Context) (string, error)
	Navigate(ctx context.Context, dir portal.Direction) error
	DayShiftText(ctx context.Context, weekday time.Weekday) (string, error)
}

// Resolver locates the schedule week containing a target date and extracts
// that date's shift descriptor.
type Resolver struct {
	source         Navigator
	maxNavigations int
	logger         *zap.Logger
}

// NewResolver creates a new shift resolver
func NewResolver(source Navigator, maxNavigations int, logger *zap.Logger) *Resolver {
	if maxNavigations <= 0 {
		maxNavigations = defaultMaxNavigations
	}

	return &Resolver{
		source:         source,
		maxNavigations: maxNavigations,
		logger:         logger,
	}
}

// Resolve navigates to the week containing target and returns its shift info.
//
// The navigation loop is bounded: the schedule view may lag or render an
// unparsable label, and an unparsable label defaults to navigating backward.
// Exhausting the bound is not fatal — the resolver degrades to whatever week
// is displayed and extracts the descriptor from there.
func (r *Resolver) Resolve(ctx context.Context, target time.Time) (ShiftInfo, error) {
	resolved := false

	for attempt := 1; attempt <= r.maxNavigations; attempt++ {
		label, err := r.source.WeekLabel(ctx)
		if err != nil {
			return ShiftInfo{}, fmt.Errorf("failed to read week label: %w", err)
		}

		week, ok := ParseWeekRange(label)
		if !ok {
			r.logger.Debug("Week label not parsable, navigating back",
				zap.String("label", label),
				zap.Int("attempt", attempt))
			if err := r.source.Navigate(ctx, portal.DirectionPrev); err != nil {
				return ShiftInfo{}, fmt.Errorf("failed to navigate week: %w", err)
			}
			continue
		}

		if week.Contains(target) {
			r.logger.Info("Target week resolved",
				zap.Time("target", target),
				zap.Time("week_start", week.Start),
				zap.Time("week_end", week.End),
				zap.Int("attempts", attempt))
			resolved = true
			break
		}

		dir := portal.DirectionNext
		if target.Before(week.Start) {
			dir = portal.DirectionPrev
		}

		r.logger.Debug("Target outside displayed week, navigating",
			zap.Time("target", target),
			zap.Time("week_start", week.Start),
			zap.Time("week_end", week.End),
			zap.String("direction", dir.String()))

		if err := r.source.Navigate(ctx, dir); err != nil {
			return ShiftInfo{}, fmt.Errorf("failed to navigate week: %w", err)
		}
	}

	if !resolved {
		r.logger.Warn("Week navigation exhausted, using last displayed week",
			zap.Time("target", target),
			zap.Int("max_navigations", r.maxNavigations))
	}

	descriptor, err := r.source.DayShiftText(ctx, target.Weekday())
	if err != nil {
		return ShiftInfo{}, fmt.Errorf("failed to read shift descriptor: %w", err)
	}

	info := ShiftInfo{
		Descriptor: descriptor,
		Kind:       ClassifyShift(descriptor),
		Holiday:    IsHolidayText(descriptor) || !HasTimeToken(descriptor),
	}

	// A rest day still needs a shift-type context: borrow the first timed
	// descriptor from the same week so scan windows match the employee's
	// actual rotation.
	if info.Kind == ShiftNonWorking {
		if borrowed, ok := r.borrowWeekShift(ctx); ok {
			info.Kind = ClassifyShift(borrowed)
			r.logger.Info("Non-working day, borrowed week shift for window selection",
				zap.String("descriptor", descriptor),
				zap.String("borrowed", borrowed),
				zap.String("kind", info.Kind.String()))
		}
	}

	r.logger.Info("Shift resolved",
		zap.Time("target", target),
		zap.String("descriptor", info.Descriptor),
		zap.String("kind", info.Kind.String()),
		zap.Bool("holiday", info.Holiday))

	return info, nil
}

// borrowWeekShift returns the first descriptor in the displayed week that
// contains a time token.
func (r *Resolver) borrowWeekShift(ctx context.Context) (string, bool) {
	weekdays := []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}

	for _, wd := range weekdays {
		text, err := r.source.DayShiftText(ctx, wd)
		if err != nil {
			r.logger.Warn("Failed to read weekday descriptor while borrowing",
				zap.String("weekday", wd.String()),
				zap.Error(err))
			continue
		}
		if HasTimeToken(text) {
			return text, true
		}
	}

	return "", false
}
