package config

import (
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMissingCredential marks a required credential that is absent.
	ErrMissingCredential = errors.New("missing required credential")
	// ErrInvalidValue marks a setting that failed to parse or validate.
	ErrInvalidValue = errors.New("invalid value")
)

// Error is returned by Load when configuration cannot be used.
type Error struct {
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %v", e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Config is loaded once at start-up and passed by value from then on.
type Config struct {
	AI      AI
	Search  Search
	Server  Server
	Discord Discord
	MCP     MCP
}

// Server holds the HTTP presentation settings.
type Server struct {
	Port               string
	RateLimitPerMinute int
	RedisURL           string
	// TrustedProxies are the IPs or CIDRs whose X-Forwarded-For is believed.
	// Empty means the client address is always the TCP peer.
	TrustedProxies []string
}

// Discord holds the bot credentials; only the discord command needs them.
type Discord struct {
	Token   string
	GuildID string
}

// MCP holds the settings for serving the check_claim tool over HTTP.
// An empty ListenAddr means stdio.
type MCP struct {
	ListenAddr string
	AuthToken  string
}

// Load reads the process environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom builds a Config from getenv. Nothing besides getenv is consulted.
func LoadFrom(getenv func(string) string) (Config, error) {
	env := reader{getenv: getenv}

	ai, err := loadAI(env)
	if err != nil {
		return Config{}, err
	}
	search, err := loadSearch(env)
	if err != nil {
		return Config{}, err
	}

	rate, err := env.integer("RATE_LIMIT_PER_MINUTE", 10, 0)
	if err != nil {
		return Config{}, err
	}

	proxies, err := env.addresses("TRUSTED_PROXIES")
	if err != nil {
		return Config{}, err
	}

	return Config{
		AI:     ai,
		Search: search,
		Server: Server{
			Port:               env.str("PORT", "8080"),
			RateLimitPerMinute: rate,
			RedisURL:           env.str("REDIS_URL", ""),
			TrustedProxies:     proxies,
		},
		Discord: Discord{
			Token:   env.str("DISCORD_TOKEN", ""),
			GuildID: env.str("GUILD_ID", ""),
		},
		MCP: MCP{
			ListenAddr: env.str("MCP_LISTEN_ADDR", ""),
			AuthToken:  env.str("MCP_AUTH_TOKEN", ""),
		},
	}, nil
}

type reader struct {
	getenv func(string) string
}

func (r reader) str(key, def string) string {
	if v := strings.TrimSpace(r.getenv(key)); v != "" {
		return v
	}
	return def
}

func (r reader) integer(key string, def, min int) (int, error) {
	raw := r.str(key, "")
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &Error{Key: key, Err: fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, raw)}
	}
	if v < min {
		return 0, &Error{Key: key, Err: fmt.Errorf("%w: must be >= %d", ErrInvalidValue, min)}
	}
	return v, nil
}

func (r reader) number(key string, def, min, max float64) (float64, error) {
	raw := r.str(key, "")
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		return 0, &Error{Key: key, Err: fmt.Errorf("%w: %q is not a number", ErrInvalidValue, raw)}
	}
	if v < min || v > max {
		return 0, &Error{Key: key, Err: fmt.Errorf("%w: must be within [%g, %g]", ErrInvalidValue, min, max)}
	}
	return v, nil
}

// addresses reads a comma-separated list of IPs or CIDRs.
func (r reader) addresses(key string) ([]string, error) {
	raw := r.str(key, "")
	if raw == "" {
		return nil, nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if net.ParseIP(part) == nil {
			if _, _, err := net.ParseCIDR(part); err != nil {
				return nil, &Error{Key: key, Err: fmt.Errorf("%w: %q is not an IP or CIDR", ErrInvalidValue, part)}
			}
		}
		out = append(out, part)
	}
	return out, nil
}

// seconds accepts plain seconds ("10", "2.5") or a Go duration ("1500ms").
func (r reader) seconds(key string, def time.Duration) (time.Duration, error) {
	raw := r.str(key, "")
	if raw == "" {
		return def, nil
	}
	var d time.Duration
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		d = time.Duration(secs * float64(time.Second))
	} else if parsed, perr := time.ParseDuration(raw); perr == nil {
		d = parsed
	} else {
		return 0, &Error{Key: key, Err: fmt.Errorf("%w: %q is not a duration", ErrInvalidValue, raw)}
	}
	if d <= 0 {
		return 0, &Error{Key: key, Err: fmt.Errorf("%w: must be > 0", ErrInvalidValue)}
	}
	return d, nil
}
