package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultPort         = 3318
	DefaultCredits      = 100
	DefaultKafkaTopic   = "schelling-point.events"
	DefaultSQLitePath   = "schelling-point.db"
	defaultEnvFile      = ".env"
	defaultDatabaseType = "sqlite"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	BaseURL      string

	OrganizerKeySalt string
	EventSlugSalt    string
	// CardHashSalt keys attendance card hashes; empty falls back to
	// EventSlugSalt. See CardSalt.
	CardHashSalt string

	DefaultVoteCredits       int
	DefaultAttendanceCredits int

	LogLevel  string
	LogFormat string

	SeedFile     string
	KafkaBrokers []string
	KafkaTopic   string
}

// ParseFlags reads flags, then the dotenv file, then the environment.
// Flags win over the environment, which wins over defaults.
func ParseFlags(args []string) (Config, error) {
	var (
		cfg     Config
		brokers string
		envFile string
	)

	fset := flag.NewFlagSet("schelling-point", flag.ContinueOnError)

	fset.IntVar(&cfg.Port, "p", 0, "Server port")
	fset.StringVar(&cfg.DatabaseURL, "d", "", "Database URL or SQLite path")
	fset.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fset.StringVar(&cfg.BaseURL, "base-url", "", "Public base URL used in event links")

	// Secrets (prefer env variables, but allow CLI for dev)
	fset.StringVar(&cfg.OrganizerKeySalt, "organizer-salt", "", "Organizer key salt (prefer env)")
	fset.StringVar(&cfg.EventSlugSalt, "slug-salt", "", "Event slug salt (prefer env)")
	fset.StringVar(&cfg.CardHashSalt, "card-salt", "", "Attendance card hash salt (prefer env, defaults to the slug salt)")

	fset.IntVar(&cfg.DefaultVoteCredits, "credits", 0, "Default pre-event vote credits per participant")
	fset.IntVar(&cfg.DefaultAttendanceCredits, "attendance-credits", 0, "Default attendance vote credits per card")
	fset.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fset.StringVar(&cfg.LogFormat, "log-format", "", "Log format (text or json)")
	fset.StringVar(&cfg.SeedFile, "seed", "", "YAML file to seed at startup")
	fset.StringVar(&brokers, "kafka-brokers", "", "Comma-separated Kafka brokers")
	fset.StringVar(&cfg.KafkaTopic, "kafka-topic", "", "Kafka topic for domain events")
	fset.StringVar(&envFile, "env-file", "", "Dotenv file to load (default .env if present)")

	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	var err error
	if cfg.Port, err = intSetting(cfg.Port, "PORT", DefaultPort); err != nil {
		return Config{}, err
	}
	if cfg.DefaultVoteCredits, err = intSetting(cfg.DefaultVoteCredits, "DEFAULT_VOTE_CREDITS", DefaultCredits); err != nil {
		return Config{}, err
	}
	if cfg.DefaultAttendanceCredits, err = intSetting(cfg.DefaultAttendanceCredits, "DEFAULT_ATTENDANCE_CREDITS", DefaultCredits); err != nil {
		return Config{}, err
	}

	cfg.DatabaseType = stringSetting(cfg.DatabaseType, "DATABASE_TYPE", defaultDatabaseType)
	cfg.DatabaseURL = stringSetting(cfg.DatabaseURL, "DATABASE_URL", "")
	cfg.LogLevel = strings.ToLower(stringSetting(cfg.LogLevel, "LOG_LEVEL", "info"))
	cfg.LogFormat = strings.ToLower(stringSetting(cfg.LogFormat, "LOG_FORMAT", "text"))
	cfg.SeedFile = stringSetting(cfg.SeedFile, "SEED_FILE", "")
	cfg.KafkaTopic = stringSetting(cfg.KafkaTopic, "KAFKA_TOPIC", DefaultKafkaTopic)
	cfg.KafkaBrokers = splitList(stringSetting(brokers, "KAFKA_BROKERS", ""))
	cfg.BaseURL = strings.TrimRight(stringSetting(cfg.BaseURL, "BASE_URL", fmt.Sprintf("http://localhost:%d", cfg.Port)), "/")
	cfg.OrganizerKeySalt = stringSetting(cfg.OrganizerKeySalt, "ORGANIZER_KEY_SALT", "")
	cfg.EventSlugSalt = stringSetting(cfg.EventSlugSalt, "EVENT_SLUG_SALT", "")
	cfg.CardHashSalt = stringSetting(cfg.CardHashSalt, "CARD_HASH_SALT", "")

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DatabaseType {
	case "sqlite":
		if c.DatabaseURL == "" {
			c.DatabaseURL = DefaultSQLitePath
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("database URL required for postgres (use -d or DATABASE_URL env)")
		}
	default:
		return fmt.Errorf("unsupported database type %q (use sqlite or postgres)", c.DatabaseType)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DefaultVoteCredits <= 0 {
		return errors.New("vote credits must be positive")
	}
	if c.DefaultAttendanceCredits <= 0 {
		return errors.New("attendance credits must be positive")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}

	// Secrets - MUST be provided
	if c.OrganizerKeySalt == "" {
		return errors.New("ORGANIZER_KEY_SALT required")
	}
	if c.EventSlugSalt == "" {
		return errors.New("EVENT_SLUG_SALT required")
	}

	return nil
}

// CardSalt returns the key for hashing attendance card ids at one event.
// It never involves OrganizerKeySalt, and the same card hashes differently
// at different events.
func (c Config) CardSalt(eventID string) string {
	salt := c.CardHashSalt
	if salt == "" {
		salt = c.EventSlugSalt
	}
	return salt + ":" + eventID
}

// loadEnvFile never overrides variables already set in the environment.
// A missing default file is fine; a missing explicit one is not.
func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = os.Getenv("ENV_FILE")
		explicit = path != ""
	}
	if !explicit {
		path = defaultEnvFile
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load env file %s: %w", path, err)
}

func intSetting(flagValue int, env string, def int) (int, error) {
	if flagValue != 0 {
		return flagValue, nil
	}
	raw := os.Getenv(env)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %w", env, err)
	}
	return v, nil
}

func stringSetting(flagValue, env, def string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
