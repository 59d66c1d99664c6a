package config

import (
	"fmt"
	"os"
	"time"

	"github.com/neoleocvxs-lang/attendance-bot/internal/attendance"
	"github.com/neoleocvxs-lang/attendance-bot/internal/report"
	"github.com/neoleocvxs-lang/attendance-bot/internal/schedule"
	"github.com/neoleocvxs-lang/attendance-bot/pkg/timeutil"
	"github.com/spf13/viper"
)

// Config represents application configuration
type Config struct {
	Portal      PortalConfig      `mapstructure:"portal"`
	Line        LineConfig        `mapstructure:"line"`
	Rules       RulesConfig       `mapstructure:"rules"`
	Suppression []SuppressionRule `mapstructure:"suppression"`
	Daemon      DaemonConfig      `mapstructure:"daemon"`
}

// PortalConfig represents the attendance terminal connection
type PortalConfig struct {
	BaseURL            string `mapstructure:"base_url"`
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	SessionLifetime    string `mapstructure:"session_lifetime"`
	MaxWeekNavigations int    `mapstructure:"max_week_navigations"`
}

// LineConfig represents the LINE Messaging API push channel
type LineConfig struct {
	APIEndpoint string `mapstructure:"api_endpoint"`
	AccessToken string `mapstructure:"access_token"`
	UserID      string `mapstructure:"user_id"`
}

// RulesConfig represents the attendance inference rules
type RulesConfig struct {
	CutoffHour        int           `mapstructure:"cutoff_hour"`
	OvertimeMatch     string        `mapstructure:"overtime_match"` // "row" or "column"
	PaydayReminderDay int           `mapstructure:"payday_reminder_day"`
	Windows           WindowsConfig `mapstructure:"windows"`
}

// WindowsConfig represents classification windows as "HH:MM" clock times.
// Empty fields fall back to the canonical thresholds.
type WindowsConfig struct {
	NightInAfter string `mapstructure:"night_in_after"`
	NightOutFrom string `mapstructure:"night_out_from"`
	NightOutTo   string `mapstructure:"night_out_to"`
	DayInFrom    string `mapstructure:"day_in_from"`
	DayInTo      string `mapstructure:"day_in_to"`
	DayOutAfter  string `mapstructure:"day_out_after"`
	LateAfter    string `mapstructure:"late_after"`

	DayOvertimeHour    int `mapstructure:"day_overtime_hour"`
	NightOvertimeEarly int `mapstructure:"night_overtime_early"`
	NightOvertimeLate  int `mapstructure:"night_overtime_late"`
}

// SuppressionRule represents one row of the notification suppression table
type SuppressionRule struct {
	Hour      int      `mapstructure:"hour"`
	Shifts    []string `mapstructure:"shifts"`    // "day", "night", "non-working"
	Condition string   `mapstructure:"condition"` // "always", "no_checkout", "checkout_in_window"
}

// DaemonConfig represents daemon mode configuration
type DaemonConfig struct {
	Checkpoints []string `mapstructure:"checkpoints"` // "HH:MM" run times, local timezone
	LogFile     string   `mapstructure:"log_file"`
	LogLevel    string   `mapstructure:"log_level"`
	SystemTray  bool     `mapstructure:"system_tray"` // Show system tray icon (Windows only)
}

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.attendance-bot")
		v.AddConfigPath("/etc/attendance-bot")
	}

	// Read environment variables
	v.AutomaticEnv()

	// Defaulted here rather than in the accessor so an explicit
	// cutoff_hour of 0 ("always evaluate today") survives
	v.SetDefault("rules.cutoff_hour", 12)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Portal.BaseURL == "" {
		return fmt.Errorf("portal.base_url is required")
	}
	if c.Portal.Username == "" {
		return fmt.Errorf("portal.username is required")
	}
	if c.Portal.Password == "" {
		return fmt.Errorf("portal.password is required")
	}

	if c.Line.AccessToken == "" {
		return fmt.Errorf("line.access_token is required")
	}
	if c.Line.UserID == "" {
		return fmt.Errorf("line.user_id is required")
	}

	if c.Rules.CutoffHour < 0 || c.Rules.CutoffHour > 23 {
		return fmt.Errorf("rules.cutoff_hour must be between 0 and 23")
	}

	switch c.Rules.OvertimeMatch {
	case "", "row", "column":
	default:
		return fmt.Errorf("rules.overtime_match must be 'row' or 'column', got '%s'", c.Rules.OvertimeMatch)
	}

	for i, rule := range c.Suppression {
		if rule.Hour < 0 || rule.Hour > 23 {
			return fmt.Errorf("suppression[%d].hour must be between 0 and 23", i)
		}
		switch rule.Condition {
		case "always", "no_checkout", "checkout_in_window":
		default:
			return fmt.Errorf("suppression[%d].condition '%s' is unknown", i, rule.Condition)
		}
		for _, shift := range rule.Shifts {
			if _, ok := shiftKindByName(shift); !ok {
				return fmt.Errorf("suppression[%d] references unknown shift '%s'", i, shift)
			}
		}
	}

	for _, cp := range c.Daemon.Checkpoints {
		if _, ok := timeutil.ToMinutes(cp); !ok {
			return fmt.Errorf("daemon.checkpoints entry '%s' is not a valid HH:MM time", cp)
		}
	}

	return nil
}

// GetSessionLifetime returns the portal session lifetime duration
func (c *PortalConfig) GetSessionLifetime() time.Duration {
	if c.SessionLifetime == "" {
		return 30 * time.Minute
	}
	duration, err := time.ParseDuration(c.SessionLifetime)
	if err != nil {
		return 30 * time.Minute
	}
	return duration
}

// GetMaxWeekNavigations returns the week navigation bound. Default: 15
func (c *PortalConfig) GetMaxWeekNavigations() int {
	if c.MaxWeekNavigations <= 0 {
		return 15
	}
	return c.MaxWeekNavigations
}

// GetCutoffHour returns the target-date cutoff hour. Load defaults it to 12
// (runs before noon evaluate yesterday); 0 is a valid configured value and
// means every run evaluates today.
func (c *RulesConfig) GetCutoffHour() int {
	return c.CutoffHour
}

// GetOvertimeMatch returns the overtime date-matching mode. Default: row
// (the whole listing row is searched, matching the terminal's historic
// behaviour)
func (c *RulesConfig) GetOvertimeMatch() attendance.OvertimeMatchMode {
	if c.OvertimeMatch == "column" {
		return attendance.MatchColumn
	}
	return attendance.MatchRow
}

// GetPaydayReminderDay returns the day of month that triggers the payday
// note. Default: 17. Negative disables the reminder.
func (c *RulesConfig) GetPaydayReminderDay() int {
	if c.PaydayReminderDay == 0 {
		return 17
	}
	if c.PaydayReminderDay < 0 {
		return 0
	}
	return c.PaydayReminderDay
}

// GetWindows returns the classification windows, falling back to the
// canonical thresholds for any field left empty or malformed
func (c *WindowsConfig) GetWindows() attendance.Windows {
	w := attendance.DefaultWindows()

	w.NightInAfter = minutesOr(c.NightInAfter, w.NightInAfter)
	w.NightOutFrom = minutesOr(c.NightOutFrom, w.NightOutFrom)
	w.NightOutTo = minutesOr(c.NightOutTo, w.NightOutTo)
	w.DayInFrom = minutesOr(c.DayInFrom, w.DayInFrom)
	w.DayInTo = minutesOr(c.DayInTo, w.DayInTo)
	w.DayOutAfter = minutesOr(c.DayOutAfter, w.DayOutAfter)
	w.LateAfter = minutesOr(c.LateAfter, w.LateAfter)

	if c.DayOvertimeHour > 0 {
		w.DayOvertimeHour = c.DayOvertimeHour
	}
	if c.NightOvertimeEarly > 0 {
		w.NightOvertimeEarly = c.NightOvertimeEarly
	}
	if c.NightOvertimeLate > 0 {
		w.NightOvertimeLate = c.NightOvertimeLate
	}

	return w
}

// GetSuppressionRules converts the configured table to typed rules.
// An empty table falls back to the standard run schedule.
func (c *Config) GetSuppressionRules() []report.Rule {
	if len(c.Suppression) == 0 {
		return report.DefaultRules()
	}

	rules := make([]report.Rule, 0, len(c.Suppression))
	for _, raw := range c.Suppression {
		rule := report.Rule{
			Hour:      raw.Hour,
			Condition: report.Condition(raw.Condition),
		}
		for _, name := range raw.Shifts {
			if kind, ok := shiftKindByName(name); ok {
				rule.Shifts = append(rule.Shifts, kind)
			}
		}
		rules = append(rules, rule)
	}

	return rules
}

// GetCheckpoints returns the daemon run times as minutes since midnight.
// Default: morning wrap-up at 08:30 plus live checks at 19:00 and 22:00.
func (c *DaemonConfig) GetCheckpoints() []int {
	if len(c.Checkpoints) == 0 {
		return []int{8*60 + 30, 19 * 60, 22 * 60}
	}

	checkpoints := make([]int, 0, len(c.Checkpoints))
	for _, cp := range c.Checkpoints {
		if minutes, ok := timeutil.ToMinutes(cp); ok {
			checkpoints = append(checkpoints, minutes)
		}
	}
	return checkpoints
}

// ExpandEnvVars expands environment variables in config strings
func (c *Config) ExpandEnvVars() {
	c.Portal.Username = os.ExpandEnv(c.Portal.Username)
	c.Portal.Password = os.ExpandEnv(c.Portal.Password)
	c.Line.AccessToken = os.ExpandEnv(c.Line.AccessToken)
	c.Line.UserID = os.ExpandEnv(c.Line.UserID)
}

func minutesOr(s string, fallback int) int {
	if minutes, ok := timeutil.ToMinutes(s); ok {
		return minutes
	}
	return fallback
}

func shiftKindByName(name string) (schedule.ShiftKind, bool) {
	switch name {
	case "day":
		return schedule.ShiftDay, true
	case "night":
		return schedule.ShiftNight, true
	case "non-working":
		return schedule.ShiftNonWorking, true
	default:
		return 0, false
	}
}
