package cmd

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mhenniges/mail-rotator/internal/rotator"
)

var rootCmd = &cobra.Command{
	Use:   "mail-rotator",
	Short: "Forward unread mailbox messages to a rotating recipient list",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// Setup logger after flag parsing and config load
		setupLogger()
	},
}

func init() {
	// Add persistent flag to enable verbose logging
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose (debug) logging")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	cobra.OnInitialize(initConfig)

	// Register subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(initCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	rotator.SetDefaults(viper.GetViper())

	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("No config.yaml found in current directory.",
				"hint", "Run `mail-rotator init` to create one interactively.")
		} else {
			slog.Error("Failed to read config", "error", err)
		}
	} else {
		// Validate config after successful load
		validateConfig()
	}
}

func validateConfig() {
	if !viper.InConfig("token") {
		slog.Warn("No token settings configured - API access will not work")
	}

	recipients := viper.Get("forward_to")
	if recipients == nil {
		slog.Warn("No forward_to recipients configured - forwarding will not work")
	}

	// Auto-reply exclusion matching is case-insensitive, but flag mixed-case
	// entries anyway so the config stays consistent.
	exclusions := viper.GetStringSlice("auto_reply.exclusions")
	for _, email := range exclusions {
		if email != strings.ToLower(email) {
			slog.Warn("Auto-reply exclusion contains uppercase letters",
				"configured_email", email,
				"hint", "Matching is case-insensitive, consider using lowercase for consistency")
			break
		}
	}
}

func setupLogger() {
	var level slog.Level
	switch {
	case viper.GetBool("verbose"):
		level = slog.LevelDebug
	default:
		switch strings.ToLower(viper.GetString("log.level")) {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}
	}

	var out io.Writer = os.Stdout
	if path := viper.GetString("log.file"); path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			slog.Error("Failed to open log file, falling back to stdout", "path", path, "error", err)
		} else {
			out = file
		}
	}

	var handler slog.Handler
	if strings.EqualFold(viper.GetString("log.format"), "text") {
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	}

	slog.SetDefault(slog.New(handler))
}
