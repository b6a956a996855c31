package config

import (
	"errors"
	"fmt"
	"os"

	"bjorkvang/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Mail       MailConfig       `yaml:"mail"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Booking    BookingConfig    `yaml:"booking"`
	Auth       AuthConfig       `yaml:"auth"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Spaces     []models.Space   `yaml:"spaces"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	BaseURL     string `yaml:"base_url"`
	AllowOrigin string `yaml:"allow_origin"`
}

type DatabaseConfig struct {
	// Path to the sqlite file. Empty selects the in-memory store.
	Path string `yaml:"path"`
	// StateFile backs the in-memory store with a serialized booking
	// array, rewritten after every successful mutation.
	StateFile string `yaml:"state_file"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type MailConfig struct {
	Enabled bool       `yaml:"enabled"`
	SMTP    SMTPConfig `yaml:"smtp"`
	From    string     `yaml:"from"`
	ReplyTo string     `yaml:"reply_to"`
	BoardTo []string   `yaml:"board_to"`
	Cc      []string   `yaml:"cc"`
	Bcc     []string   `yaml:"bcc"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type BookingConfig struct {
	// Policy selects the status engine mode: "board" or "heuristic".
	Policy               string  `yaml:"policy"`
	RichForm             bool    `yaml:"rich_form"`
	DefaultDurationHours float64 `yaml:"default_duration_hours"`
	AutoConfirmHours     float64 `yaml:"auto_confirm_hours"`
	FullVenueSpace       string  `yaml:"full_venue_space"`
	MaxBookingDays       int     `yaml:"max_booking_days"`
	RateLimitSubmissions int     `yaml:"rate_limit_submissions"`
	RateLimitWindow      int     `yaml:"rate_limit_window"`
	CalendarCacheTTL     int     `yaml:"calendar_cache_ttl"`
}

type AuthConfig struct {
	Enabled      bool        `yaml:"enabled"`
	HeaderAPIKey string      `yaml:"header_api_key"`
	APIKeys      []ClientKey `yaml:"api_keys"`
}

type ClientKey struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; environment wins either way
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Expand environment variables before parsing the YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Booking.Policy != models.PolicyBoard && c.Booking.Policy != models.PolicyHeuristic {
		return fmt.Errorf("booking.policy must be %q or %q", models.PolicyBoard, models.PolicyHeuristic)
	}

	if c.Mail.Enabled {
		if c.Mail.From == "" {
			return errors.New("mail.from is required when mail is enabled")
		}
		if c.Booking.Policy == models.PolicyBoard && len(c.Mail.BoardTo) == 0 {
			return errors.New("mail.board_to is required for the board policy")
		}
	}

	return ValidateSpaces(c.Spaces)
}

func ValidateSpaces(spaces []models.Space) error {
	// Check for duplicate space IDs and names
	ids := make(map[int64]bool)
	names := make(map[string]bool)
	for _, space := range spaces {
		if space.ID == 0 {
			return fmt.Errorf("space '%s' has invalid ID 0", space.Name)
		}
		if ids[space.ID] {
			return fmt.Errorf("duplicate space ID found: %d", space.ID)
		}
		if names[space.Name] {
			return fmt.Errorf("duplicate space name found: %s", space.Name)
		}
		ids[space.ID] = true
		names[space.Name] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.AllowOrigin == "" {
		c.Server.AllowOrigin = "*"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Auth.HeaderAPIKey == "" {
		c.Auth.HeaderAPIKey = "x-api-key"
	}

	// Booking defaults
	if c.Booking.Policy == "" {
		c.Booking.Policy = models.PolicyBoard
	}
	if c.Booking.DefaultDurationHours == 0 {
		c.Booking.DefaultDurationHours = models.DefaultDurationHours
	}
	if c.Booking.AutoConfirmHours == 0 {
		c.Booking.AutoConfirmHours = models.AutoConfirmHours
	}
	if c.Booking.FullVenueSpace == "" {
		c.Booking.FullVenueSpace = models.FullVenueSpace
	}
	if c.Booking.MaxBookingDays == 0 {
		c.Booking.MaxBookingDays = models.DefaultMaxBookingDays
	}
	if c.Booking.RateLimitSubmissions == 0 {
		c.Booking.RateLimitSubmissions = models.RateLimitSubmissions
	}
	if c.Booking.RateLimitWindow == 0 {
		c.Booking.RateLimitWindow = models.RateLimitWindow
	}
	if c.Booking.CalendarCacheTTL == 0 {
		c.Booking.CalendarCacheTTL = models.DefaultCalendarCacheTTL
	}
}
