package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"Mansoor88-6/activity-agent/internal/models"
)

type Config struct {
	Env         string     `yaml:"env" env:"AGENT_ENV" env-default:"local"`
	StoragePath string     `yaml:"storage_path" env:"AGENT_STORAGE_PATH" env-default:"./activity-agent.db"`
	Log         Log        `yaml:"log"`
	Device      Device     `yaml:"device"`
	Daemon      Daemon     `yaml:"daemon"`
	Buckets     Buckets    `yaml:"buckets"`
	Backend     Backend    `yaml:"backend"`
	Collection  Collection `yaml:"collection"`
	Server      Server     `yaml:"server"`
	Review      Review     `yaml:"review"`
	Tray        Tray       `yaml:"tray"`
}

type Log struct {
	Level  string `yaml:"level" env:"AGENT_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"AGENT_LOG_FORMAT" env-default:"console"`
}

// Device overrides the detected machine id when set
type Device struct {
	ID string `yaml:"id" env:"AGENT_DEVICE_ID"`
}

// Daemon points at the local activity-tracking daemon
type Daemon struct {
	BaseURL string `yaml:"base_url" env:"AGENT_DAEMON_URL" env-default:"http://localhost:5600"`
	Timeout int    `yaml:"timeout" env-default:"10"` // seconds
	// Enabled is the initial state of the connection health toggle
	Enabled bool `yaml:"enabled" env:"AGENT_DAEMON_ENABLED"`
}

// Buckets holds the daemon bucket name configured for each activity kind.
// "{hostname}" is replaced with the workstation host name.
type Buckets struct {
	AFK     string `yaml:"afk" env-default:"aw-watcher-afk_{hostname}"`
	Window  string `yaml:"window" env-default:"aw-watcher-window_{hostname}"`
	Chrome  string `yaml:"chrome" env-default:"aw-watcher-web-chrome"`
	Firefox string `yaml:"firefox" env-default:"aw-watcher-web-firefox"`
	Edge    string `yaml:"edge" env-default:"aw-watcher-web-edge"`
}

type Backend struct {
	BaseURL        string `yaml:"base_url" env:"AGENT_BACKEND_URL" env-default:"http://localhost:3000"`
	APIKey         string `yaml:"api_key" env:"AGENT_BACKEND_API_KEY"`
	Timeout        int    `yaml:"timeout" env-default:"30"` // seconds
	OrganizationID string `yaml:"organization_id" env:"AGENT_ORGANIZATION_ID"`
}

type Collection struct {
	Interval           int `yaml:"interval" env-default:"60"` // seconds
	BatchSize          int `yaml:"batch_size" env-default:"20"`
	BatchFlushInterval int `yaml:"batch_flush_interval" env-default:"30"` // seconds
	RetryInterval      int `yaml:"retry_interval" env-default:"60"`       // seconds
}

type Server struct {
	Enabled bool `yaml:"enabled" env:"AGENT_SERVER_ENABLED"`
	Port    int  `yaml:"port" env:"AGENT_SERVER_PORT" env-default:"8765"`
}

type Review struct {
	Timezone string `yaml:"timezone" env:"AGENT_REVIEW_TZ" env-default:"Local"`
}

type Tray struct {
	Enabled bool `yaml:"enabled" env:"AGENT_TRAY_ENABLED"`
}

// LoadConfig reads the YAML file at path, applies env overrides and defaults
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %q: %w", path, err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Collection.Interval <= 0 {
		return fmt.Errorf("collection.interval must be positive")
	}
	if c.Collection.BatchSize <= 0 {
		return fmt.Errorf("collection.batch_size must be positive")
	}
	if c.Collection.BatchFlushInterval <= 0 || c.Collection.RetryInterval <= 0 {
		return fmt.Errorf("collection flush and retry intervals must be positive")
	}
	if c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// BucketNames returns the daemon bucket name for every activity kind
func (c *Config) BucketNames(hostname string) map[models.ActivityKind]string {
	expand := func(name string) string {
		return strings.ReplaceAll(name, "{hostname}", hostname)
	}
	return map[models.ActivityKind]string{
		models.KindAFK:     expand(c.Buckets.AFK),
		models.KindWindow:  expand(c.Buckets.Window),
		models.KindChrome:  expand(c.Buckets.Chrome),
		models.KindFirefox: expand(c.Buckets.Firefox),
		models.KindEdge:    expand(c.Buckets.Edge),
	}
}

// Location resolves the review timezone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Review.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid review.timezone %q: %w", c.Review.Timezone, err)
	}
	return loc, nil
}

func (d Daemon) TimeoutDuration() time.Duration {
	return time.Duration(d.Timeout) * time.Second
}

func (b Backend) TimeoutDuration() time.Duration {
	return time.Duration(b.Timeout) * time.Second
}
