package cmd

import (
	"context"
	"github.com/spf13/cobra"
	"os"
	"os/signal"
	"syscall"
	"vincit.fi/photo-frame/backend"
	"vincit.fi/photo-frame/common/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the slideshow",
	Long: `Run shows the photos of the configured categories until interrupted.
The feed is refreshed on the configured interval.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		brokers := backend.InitializeEventBrokers(backend.DefaultEventBusQueueSize)
		services, err := backend.InitializeServices(ctx, cfg, brokers)
		if err != nil {
			logger.Error.Fatal("Could not start photo frame: ", err)
		}
		return services.Run(ctx)
	},
}
