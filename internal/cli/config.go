package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mcoot/aliasgame/internal/factory"
	"github.com/mcoot/aliasgame/internal/model"
)

// EnvPrefix is prepended to every flag's environment variable
const EnvPrefix = "ALIAS"

// Config holds CLI configuration
type Config struct {
	BackendURL string
	BackendKey string
	WordsPath  string
	Output     string
	Verbose    bool

	Timer       int
	Difficulty  string
	Teams       int
	TargetScore int
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	defaults := model.DefaultGameSettings()
	return &Config{
		Output:      "text",
		Timer:       defaults.TimerSeconds,
		Difficulty:  string(defaults.Difficulty),
		Teams:       defaults.NumTeams,
		TargetScore: defaults.TargetScore,
	}
}

// OnlineEnabled reports whether both backend credentials are present
func (c *Config) OnlineEnabled() bool {
	return c.BackendURL != "" && c.BackendKey != ""
}

// Settings returns the game settings selected by flags
func (c *Config) Settings() model.GameSettings {
	return model.GameSettings{
		TimerSeconds: c.Timer,
		Difficulty:   model.Difficulty(strings.ToLower(c.Difficulty)),
		NumTeams:     c.Teams,
		TargetScore:  c.TargetScore,
	}
}

// FactoryConfig returns the app configuration. The backend is left out
// unless both credentials are set, so local play never dials it.
func (c *Config) FactoryConfig(logger *slog.Logger) factory.Config {
	fc := factory.Config{
		WordsPath: c.WordsPath,
		Logger:    logger,
	}
	if c.OnlineEnabled() {
		fc.BackendURL = c.BackendURL
		fc.BackendKey = c.BackendKey
	}
	return fc
}

// bindEnv lets every flag in fs be set from ALIAS_<FLAG> as well.
// Flags given on the command line still win.
func bindEnv(fs *pflag.FlagSet) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}
