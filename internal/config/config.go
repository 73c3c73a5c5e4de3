package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultConfigPath      = "config.toml"
	DefaultHTTPAddr        = ":8080"
	DefaultImagesDir       = "images"
	DefaultMaxImageBytes   = 50 * 1024 * 1024
	DefaultNameCacheTTL    = "24h"
	DefaultDedupTTL        = "10m"
	DefaultSweepInterval   = "10m"
	DefaultExternalTimeout = "30s"
	DefaultInboundWorkers  = 4
	DefaultInboundQueue    = 256
	DefaultRedisKeyPrefix  = "imgkeeper:"
)

type Config struct {
	Log     LogConfig     `toml:"log"`
	Server  ServerConfig  `toml:"server"`
	Line    LineConfig    `toml:"line"`
	Storage StorageConfig `toml:"storage"`
	Cache   CacheConfig   `toml:"cache"`
	Dedup   DedupConfig   `toml:"dedup"`
	Policy  PolicyConfig  `toml:"policy"`
	Inbound InboundConfig `toml:"inbound"`
	Redis   RedisConfig   `toml:"redis"`
}

type LogConfig struct {
	Level  string `toml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `toml:"format" validate:"omitempty,oneof=text json"`
}

type ServerConfig struct {
	Addr string `toml:"addr" validate:"required"`
	// ViewToken gates GET /images/*. Empty serves images unauthenticated.
	ViewToken string `toml:"view_token"`
}

type LineConfig struct {
	ChannelAccessToken string `toml:"channel_access_token" validate:"required"`
	ChannelSecret      string `toml:"channel_secret" validate:"required"`
	AdminUserID        string `toml:"admin_user_id"`
	ExternalTimeout    string `toml:"external_timeout" validate:"duration"`
}

type StorageConfig struct {
	ImagesDir     string `toml:"images_dir" validate:"required"`
	MaxImageBytes int64  `toml:"max_image_bytes" validate:"gt=0"`
}

type CacheConfig struct {
	// Backend is "memory" or "redis".
	Backend       string `toml:"backend" validate:"oneof=memory redis"`
	TTL           string `toml:"ttl" validate:"duration"`
	SweepInterval string `toml:"sweep_interval" validate:"duration"`
}

type DedupConfig struct {
	Enabled bool   `toml:"enabled"`
	Backend string `toml:"backend" validate:"oneof=memory redis"`
	TTL     string `toml:"ttl" validate:"duration"`
}

// PolicyConfig consolidates the per-deployment notification switches.
type PolicyConfig struct {
	ReplyOnPrivate     bool `toml:"reply_on_private"`
	NotifyAdminAlways  bool `toml:"notify_admin_always"`
	NotifyAdminOnError bool `toml:"notify_admin_on_error"`
	ResolveRoomNames   bool `toml:"resolve_room_names"`
	FallbackShortID    bool `toml:"fallback_short_id"`
}

type InboundConfig struct {
	Workers   int `toml:"workers" validate:"gt=0"`
	QueueSize int `toml:"queue_size" validate:"gt=0"`
}

type RedisConfig struct {
	URL       string `toml:"url"`
	KeyPrefix string `toml:"key_prefix"`
}

// UsesRedis reports whether any component is configured with the redis backend.
func (c Config) UsesRedis() bool {
	return c.Cache.Backend == "redis" || (c.Dedup.Enabled && c.Dedup.Backend == "redis")
}

func (c CacheConfig) TTLDuration() time.Duration {
	return mustDuration(c.TTL, DefaultNameCacheTTL)
}

func (c CacheConfig) SweepDuration() time.Duration {
	return mustDuration(c.SweepInterval, DefaultSweepInterval)
}

func (c DedupConfig) TTLDuration() time.Duration {
	return mustDuration(c.TTL, DefaultDedupTTL)
}

func (c LineConfig) Timeout() time.Duration {
	return mustDuration(c.ExternalTimeout, DefaultExternalTimeout)
}

func mustDuration(value, fallback string) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(fallback)
	return d
}

// Defaults returns a Config populated with built-in defaults.
func Defaults() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Line: LineConfig{
			ExternalTimeout: DefaultExternalTimeout,
		},
		Storage: StorageConfig{
			ImagesDir:     DefaultImagesDir,
			MaxImageBytes: DefaultMaxImageBytes,
		},
		Cache: CacheConfig{
			Backend:       "memory",
			TTL:           DefaultNameCacheTTL,
			SweepInterval: DefaultSweepInterval,
		},
		Dedup: DedupConfig{
			Enabled: true,
			Backend: "memory",
			TTL:     DefaultDedupTTL,
		},
		Policy: PolicyConfig{
			ReplyOnPrivate:     true,
			NotifyAdminOnError: true,
			ResolveRoomNames:   false,
		},
		Inbound: InboundConfig{
			Workers:   DefaultInboundWorkers,
			QueueSize: DefaultInboundQueue,
		},
		Redis: RedisConfig{
			KeyPrefix: DefaultRedisKeyPrefix,
		},
	}
}

// Load reads the TOML file at path (a missing file is not an error), then
// applies environment overrides. It does not validate; call Validate.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return cfg, err
		}
	} else if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("LINE_CHANNEL_ACCESS_TOKEN", &cfg.Line.ChannelAccessToken)
	str("LINE_CHANNEL_SECRET", &cfg.Line.ChannelSecret)
	str("ADMIN_USER_ID", &cfg.Line.AdminUserID)
	str("VIEW_TOKEN", &cfg.Server.ViewToken)
	str("IMAGES_DIR", &cfg.Storage.ImagesDir)
	str("REDIS_URL", &cfg.Redis.URL)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)

	if v, ok := lookup("PORT"); ok && strings.TrimSpace(v) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Server.Addr = ":" + strconv.Itoa(port)
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		raw := strings.TrimSpace(fl.Field().String())
		if raw == "" {
			return true
		}
		d, err := time.ParseDuration(raw)
		return err == nil && d > 0
	})
	return v
}

// Validate reports missing credentials and malformed settings.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.UsesRedis() && strings.TrimSpace(c.Redis.URL) == "" {
		return errors.New("invalid config: redis.url is required when a redis backend is selected")
	}
	return nil
}
