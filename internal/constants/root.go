package constants

import "time"

// SessionState represents the current view of the TUI application
type SessionState int

const (
	AppName            = "grind"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/grind"
	DefaultDatabase    = "~/.config/grind/grind.db"
	DefaultConfigFile  = "~/.config/grind/config.yaml"
	EnvPrefix          = "GRIND"
	Version            = "v0.3.0"

	// DateFormat is the canonical calendar-day format used for storage and display (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Celebration constants
	DefaultCelebrationSeconds = 5
	DefaultCelebrationWindow  = DefaultCelebrationSeconds * time.Second

	// History grid constants
	DefaultHistoryDays = 14
	MaxHistoryDays     = 90

	// HTTP constants
	DefaultHTTPAddr = "127.0.0.1:8080"

	// Consistency thresholds
	EliteProgressThreshold = 80
)

// Session States
const (
	StateToday SessionState = iota
	StateHistory
	StateMilestones
	StateArchived
	StateAddHabit
	StateAddMilestone
	StateConfirmDelete
)
