// Package config loads Nayru's runtime configuration via viper, the way
// the teacher's config package does for StoryNest, expanded to the
// fields SPEC_FULL.md's Config needs.
package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"nayru/internal/engine"
)

// SetDefaults registers every config default before the config file and
// environment are layered on top, mirroring the teacher's setDefaults.
func SetDefaults() {
	viper.SetDefault("provider", "openai")
	viper.SetDefault("kokoro_url", "http://localhost:8880")
	viper.SetDefault("api_key", "")
	viper.SetDefault("voice", "af_heart")
	viper.SetDefault("speed", 1.0)
	viper.SetDefault("http_addr", "127.0.0.1:7890")
	viper.SetDefault("port", "")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("google_credentials", "")
}

// serveFlagBindings maps a `serve` pflag name to the viper key it feeds,
// the way the teacher's cmd/main.go layers flags over config-file/env
// values via viper.BindPFlag.
var serveFlagBindings = map[string]string{
	"port":       "port",
	"voice":      "voice",
	"kokoro-url": "kokoro_url",
	"speed":      "speed",
}

// BindServeFlags binds the `serve` subcommand's --port/--voice/
// --kokoro-url/--speed flags into viper so an explicitly-passed flag
// wins over the config file and env vars, matching SPEC_FULL.md's
// "flags bound into viper with viper.BindPFlag".
func BindServeFlags(flags *pflag.FlagSet) error {
	for flag, key := range serveFlagBindings {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}

// Load wires viper's config file search path and environment variable
// overrides (NAYRU_* via AutomaticEnv), mirroring the teacher's init().
func Load() {
	viper.SetConfigName("nayru")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.nayru")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("nayru")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	SetDefaults()
	_ = viper.ReadInConfig() // absence of a config file is not fatal
}

// EngineConfig builds an engine.Config from the loaded viper state.
func EngineConfig() engine.Config {
	return engine.Config{
		Provider:   viper.GetString("provider"),
		KokoroURL:  viper.GetString("kokoro_url"),
		APIKey:     viper.GetString("api_key"),
		Voice:      viper.GetString("voice"),
		Speed:      float32(viper.GetFloat64("speed")),
		HTTPAddr:   httpAddr(),
		LogLevel:   viper.GetString("log_level"),
		GoogleCred: viper.GetString("google_credentials"),
	}
}

// httpAddr layers the --port flag (bound to the "port" key) over the
// host:port pair in "http_addr", keeping the configured host.
func httpAddr() string {
	addr := viper.GetString("http_addr")
	port := viper.GetString("port")
	if port == "" {
		return addr
	}
	host := addr
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		host = addr[:i]
	}
	return host + ":" + port
}
