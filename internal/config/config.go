package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Matching MatchingConfig `mapstructure:"matching" validate:"required"`
	Task     TaskConfig     `mapstructure:"task"     validate:"required"`
}

// ServerConfig contains process-level configuration settings.
type ServerConfig struct {
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`

	// MaxOpenConns bounds the connection pool; zero means the driver default.
	MaxOpenConns int `mapstructure:"max_open_conns" validate:"gte=0"`
}

// MatchingConfig contains the matching algorithm settings. The five
// component weights must each lie in [0, 1]; together they determine how
// ranking, grades, statement quality, location and work mode contribute to
// a match score.
type MatchingConfig struct {
	MaxRounds       int     `mapstructure:"max_rounds"       validate:"required,gt=0"`
	RankingWeight   float64 `mapstructure:"ranking_weight"   validate:"gte=0,lte=1"`
	GradesWeight    float64 `mapstructure:"grades_weight"    validate:"gte=0,lte=1"`
	StatementWeight float64 `mapstructure:"statement_weight" validate:"gte=0,lte=1"`
	LocationWeight  float64 `mapstructure:"location_weight"  validate:"gte=0,lte=1"`
	WorkModeWeight  float64 `mapstructure:"work_mode_weight" validate:"gte=0,lte=1"`
}

// TaskConfig contains the background task runner settings.
type TaskConfig struct {
	WorkerCount           int `mapstructure:"worker_count"             validate:"required,gt=0"`
	QueueSize             int `mapstructure:"queue_size"               validate:"required,gt=0"`
	StuckTaskAgeMinutes   int `mapstructure:"stuck_task_age_minutes"   validate:"required,gt=0"`
	StuckTaskCheckMinutes int `mapstructure:"stuck_task_check_minutes" validate:"required,gt=0"`
}
