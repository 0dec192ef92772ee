// Package config builds the immutable runtime configuration from the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is constructed once at startup and passed by reference to every
// component that reads it.
type Config struct {
	BotToken string
	Debug    bool

	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	// Admins always pass authorization; AuthUsers empty means unrestricted;
	// AuthChannel empty disables the subscription requirement.
	Admins      []int64
	AuthUsers   []int64
	AuthChannel string

	// Channels are the source channels whose media is indexed.
	Channels []int64

	UseCaptionFilter bool
	MaxPageSize      int
	CacheTime        int

	RateLimitMax    int
	RateLimitWindow time.Duration

	StateFile    string
	SaveInterval time.Duration

	ListenAddr   string
	SynonymsFile string
	LogFile      string
}

// Load reads the environment and applies defaults. Call Validate before use.
func Load() *Config {
	return &Config{
		BotToken:         os.Getenv("BOT_TOKEN"),
		Debug:            envBool("DEBUG", false),
		MongoURI:         os.Getenv("DATABASE_URI"),
		MongoDatabase:    envString("DATABASE_NAME", "MediaSearchBot"),
		MongoCollection:  envString("COLLECTION_NAME", "telegram_files"),
		Admins:           parseIDList(os.Getenv("ADMINS")),
		AuthUsers:        parseIDList(os.Getenv("AUTH_USERS")),
		AuthChannel:      os.Getenv("AUTH_CHANNEL"),
		Channels:         parseIDList(os.Getenv("CHANNELS")),
		UseCaptionFilter: envBool("USE_CAPTION_FILTER", true),
		MaxPageSize:      envInt("MAX_PAGE_SIZE", 10),
		CacheTime:        envInt("CACHE_TIME", 300),
		RateLimitMax:     envInt("RATE_LIMIT_MAX", 20),
		RateLimitWindow:  envDuration("RATE_LIMIT_WINDOW", time.Minute),
		StateFile:        envString("STATE_FILE", "bot_state.json"),
		SaveInterval:     envDuration("SAVE_INTERVAL", 5*time.Minute),
		ListenAddr:       envString("LISTEN_ADDR", ":5000"),
		SynonymsFile:     os.Getenv("SYNONYMS_FILE"),
		LogFile:          envString("LOG_FILE", "bot.log"),
	}
}

// Validate collects every configuration error instead of stopping at the
// first one.
func (c *Config) Validate() error {
	var errs []string
	if c.BotToken == "" {
		errs = append(errs, "BOT_TOKEN is required")
	}
	if c.MongoURI == "" {
		errs = append(errs, "DATABASE_URI is required")
	}
	if len(c.Admins) == 0 {
		errs = append(errs, "at least one ADMIN is required")
	}
	if c.MaxPageSize <= 0 || c.MaxPageSize > 50 {
		errs = append(errs, "MAX_PAGE_SIZE must be between 1 and 50")
	}
	if c.RateLimitMax <= 0 {
		errs = append(errs, "RATE_LIMIT_MAX must be positive")
	}
	if c.RateLimitWindow <= 0 {
		errs = append(errs, "RATE_LIMIT_WINDOW must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// IsAdmin reports whether id is a configured admin.
func (c *Config) IsAdmin(id int64) bool {
	for _, admin := range c.Admins {
		if admin == id {
			return true
		}
	}
	return false
}

// IsSourceChannel reports whether id is one of the indexed channels.
func (c *Config) IsSourceChannel(id int64) bool {
	for _, ch := range c.Channels {
		if ch == id {
			return true
		}
	}
	return false
}

// parseIDList parses a comma-separated id list. Large positive values are
// assumed to be channel ids missing their -100 prefix and are normalized.
func parseIDList(value string) []int64 {
	var out []int64
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		n, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			continue
		}
		if n > 0 && len(item) > 10 {
			n, err = strconv.ParseInt("-100"+item, 10, 64)
			if err != nil {
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return strings.EqualFold(v, "true") || v == "1"
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// envDuration accepts either a Go duration string or a bare number of
// seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
