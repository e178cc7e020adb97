// Package config loads the deployment configuration from environment
// variables so main stays lean. Every behavioral knob the service exposes —
// the attendance window, the absence outcome policy, the roster table — lives
// here rather than in code.
package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"rollcall/internal/absence"
	"rollcall/internal/attendance"
	"rollcall/internal/roster"
	"rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
)

// Config is the full service configuration.
type Config struct {
	Addr     string `env:"ROLLCALL_ADDR" envDefault:":8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Timezone is the fixed civil timezone all gating and stamping uses.
	Timezone string `env:"ROLLCALL_TIMEZONE" envDefault:"Asia/Seoul"`

	// AttendanceWindow bounds the time of day a join may stamp the first
	// arrival, e.g. "06:00-10:00" or "05:00-24:00".
	AttendanceWindow attendance.Window `env:"ATTENDANCE_WINDOW" envDefault:"06:00-10:00"`

	// CommandToken is the absence command prefix.
	CommandToken string `env:"DAYOFF_COMMAND" envDefault:"/dayoff"`

	// CommandChannels lists the channel IDs where the command is honored.
	CommandChannels []string `env:"DAYOFF_CHANNEL_IDS" envSeparator:","`

	// AbsencePolicy picks the caller-visible contract for range writes:
	// best_effort or all_or_nothing.
	AbsencePolicy absence.Policy `env:"ABSENCE_POLICY" envDefault:"best_effort"`

	// Roster holds name=memberID=username triplets, comma separated.
	Roster []string `env:"ROSTER" envSeparator:","`

	// StoreBackend selects the ledger/presence persistence: memory, redis,
	// or postgres.
	StoreBackend string `env:"STORE_BACKEND" envDefault:"memory"`

	Redis RedisConfig `envPrefix:"REDIS_"`

	// PostgresDSN is used when StoreBackend is postgres.
	PostgresDSN string `env:"POSTGRES_DSN"`

	Kafka KafkaConfig `envPrefix:"KAFKA_"`

	// AuditBuffer is the audit publisher channel capacity.
	AuditBuffer int `env:"AUDIT_BUFFER" envDefault:"64"`
}

// RedisConfig captures Redis connection settings.
type RedisConfig struct {
	URL          string        `env:"URL"`
	PoolSize     int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
}

// KafkaConfig captures the optional audit event stream settings. An empty
// broker list disables the Kafka sink.
type KafkaConfig struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"rollcall.audit"`
}

// Load builds a Config from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "parse env")
	}
	return cfg, nil
}

// RosterEntries parses the ROSTER triplets into roster entries.
func (c Config) RosterEntries() ([]roster.Entry, error) {
	entries := make([]roster.Entry, 0, len(c.Roster))
	for _, triplet := range c.Roster {
		triplet = strings.TrimSpace(triplet)
		if triplet == "" {
			continue
		}
		parts := strings.Split(triplet, "=")
		if len(parts) != 3 {
			return nil, dErrors.Newf(dErrors.CodeInvalidInput, "roster entry %q must be name=memberID=username", triplet)
		}
		id, err := domain.ParseMemberID(parts[1])
		if err != nil {
			return nil, err
		}
		entries = append(entries, roster.Entry{
			DisplayName: parts[0],
			ID:          id,
			Username:    domain.Username(parts[2]),
		})
	}
	return entries, nil
}

// AllowedChannels returns the command channel filter as a set.
func (c Config) AllowedChannels() map[domain.ChannelID]bool {
	set := make(map[domain.ChannelID]bool, len(c.CommandChannels))
	for _, ch := range c.CommandChannels {
		if ch = strings.TrimSpace(ch); ch != "" {
			set[domain.ChannelID(ch)] = true
		}
	}
	return set
}
