package main

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mcoot/aliasgame/internal/factory"
)

// Config holds the server's flag values
type Config struct {
	bind        string
	port        int
	storeURL    string
	storeKey    string
	apiKey      string
	corsOrigins []string
	hubCleanup  time.Duration
	rateLimit   float64
	rateBurst   int
	verbose     bool
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	u, err := url.Parse(c.storeURL)
	if err != nil {
		return fmt.Errorf("invalid --store-url: %w", err)
	}
	switch u.Scheme {
	case factory.SchemeMemory, factory.SchemeRedis, factory.SchemeRedisTLS, factory.SchemePostgres, factory.SchemePostgreSQL:
	default:
		return fmt.Errorf("--store-url must be memory://, redis://, rediss:// or postgres://, got %q", c.storeURL)
	}
	if c.rateLimit < 0 || c.rateBurst < 1 {
		return fmt.Errorf("--rate-limit cannot be negative and --rate-burst must be at least 1")
	}
	if c.hubCleanup <= 0 {
		return fmt.Errorf("--hub-cleanup must be positive, got %s", c.hubCleanup)
	}
	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("ALIAS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "alias-server",
		Short: "Room and player backend for online Alias games.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: ALIAS_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: ALIAS_PORT)")
	fs.StringVar(&cfg.storeURL, "store-url", "memory://", "storage backend: memory://, redis:// or postgres:// URL (env: ALIAS_STORE_URL)")
	fs.StringVar(&cfg.storeKey, "store-key", "", "storage password, used for redis (env: ALIAS_STORE_KEY)")
	fs.StringVar(&cfg.apiKey, "api-key", "", "anon key clients must send in the apikey header (env: ALIAS_API_KEY)")
	fs.StringSliceVar(&cfg.corsOrigins, "cors-origin", nil, "browser origins allowed to call the API (env: ALIAS_CORS_ORIGIN)")
	fs.Float64Var(&cfg.rateLimit, "rate-limit", 0, "room requests per second across all clients, 0 for no limit (env: ALIAS_RATE_LIMIT)")
	fs.IntVar(&cfg.rateBurst, "rate-burst", 20, "requests allowed in a burst above the rate limit (env: ALIAS_RATE_BURST)")
	fs.DurationVar(&cfg.hubCleanup, "hub-cleanup", time.Minute, "how often idle event hubs are removed (env: ALIAS_HUB_CLEANUP)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: ALIAS_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
