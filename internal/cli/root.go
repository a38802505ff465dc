// Package cli implements the offerchat command line.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tOgg1/offerchat/internal/config"
	"github.com/tOgg1/offerchat/internal/logging"
)

// flagKeys maps persistent flags onto config keys. A flag only overrides the
// loaded config when it was set explicitly.
var flagKeys = map[string]string{
	"base-url":      "api.base_url",
	"log-level":     "logging.level",
	"log-format":    "logging.format",
	"log-file":      "logging.file",
	"poll-interval": "chat.poll_interval",
	"max-length":    "chat.max_message_length",
	"theme":         "tui.theme",
}

// runtime is the state shared by every subcommand once the root has loaded
// configuration.
type runtime struct {
	configFile string
	envFile    string

	cfg       *config.Config
	settings  map[string]interface{}
	logCloser io.Closer
}

// Execute runs the offerchat CLI.
func Execute(version string) error {
	return newRootCmd(version).Execute()
}

func newRootCmd(version string) *cobra.Command {
	rt := &runtime{}
	cmd := &cobra.Command{
		Use:           "offerchat",
		Short:         "Offer conversations in the terminal",
		Long:          "offerchat opens the message thread attached to an offer and keeps it refreshed while it is open.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.load(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return rt.release()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&rt.configFile, "config", "", "config file (default: ~/.config/offerchat/offerchat.yaml)")
	flags.StringVar(&rt.envFile, "env-file", ".env", "dotenv file loaded before environment bindings")
	flags.String("base-url", "", "messages API base URL")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (json, console)")
	flags.String("log-file", "", "write logs to this file")
	flags.Duration("poll-interval", 0, "refresh interval for the open conversation")
	flags.Int("max-length", 0, "maximum message length in characters")
	flags.String("theme", "", "terminal theme (default, high-contrast)")

	cmd.AddCommand(
		newOpenCmd(rt),
		newTranscriptCmd(rt),
		newDevServerCmd(rt),
		newContextCmd(rt),
		newConfigCmd(rt),
	)

	return cmd
}

func (rt *runtime) load(cmd *cobra.Command) error {
	loader := config.NewLoader()
	loader.SetConfigFile(strings.TrimSpace(rt.configFile))
	loader.SetEnvFile(strings.TrimSpace(rt.envFile))
	applyFlagOverrides(loader, cmd.Flags())

	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	closer, err := logging.Open(cfg.LogConfig())
	if err != nil {
		return err
	}
	rt.cfg = cfg
	rt.settings = logging.RedactMap(loader.Viper().AllSettings())
	rt.logCloser = closer

	log := logging.Component("cli")
	if used := loader.ConfigFileUsed(); used != "" {
		log.Debug().Str("path", used).Msg("loaded config file")
	}
	log.Debug().Interface("settings", rt.settings).Msg("effective configuration")
	cmd.SetContext(logging.WithContext(cmd.Context(), log))
	return nil
}

func (rt *runtime) release() error {
	if rt.logCloser == nil {
		return nil
	}
	err := rt.logCloser.Close()
	rt.logCloser = nil
	return err
}

func applyFlagOverrides(loader *config.Loader, flags *pflag.FlagSet) {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		loader.Set(key, flag.Value.String())
	}
}

func (rt *runtime) config() (*config.Config, error) {
	if rt.cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return rt.cfg, nil
}

func (rt *runtime) contextStore() *config.ContextStore {
	if rt.cfg == nil {
		return config.NewContextStore("")
	}
	return config.NewContextStore(rt.cfg.ContextPath())
}
