package cmd

import (
	"github.com/spf13/cobra"
	"vincit.fi/photo-frame/common/config"
	"vincit.fi/photo-frame/common/logger"
)

var (
	cfgFile        string
	logLevel       string
	storageBackend string

	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "photoframe",
		Short: "Digital photo frame",
		Long: `Photoframe downloads photos from a feed, tags them in JSON files or
an SQLite database and shows them in a slideshow, optionally on a Chromecast.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg = loaded
			logger.Initialize(logger.StringToLogLevel(cfg.LogLevel))
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigFile, "config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: error, warn, info, debug or trace")
	rootCmd.PersistentFlags().StringVar(&storageBackend, "backend", "", "category backend: json or sql")

	rootCmd.AddCommand(runCmd, downloadCmd, syncCmd, labelsCmd, listCmd)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	loaded, err := config.Load(cfgFile, cmd.Flags().Changed("config"))
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		loaded.LogLevel = logLevel
	}
	if storageBackend != "" {
		loaded.Storage.Backend = storageBackend
		if err := loaded.Validate(); err != nil {
			return nil, err
		}
	}
	return loaded, nil
}

// Execute executes the root command.
func Execute() error {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	return rootCmd.Execute()
}
