package cli

import (
	"github.com/spf13/cobra"

	"github.com/beam-cloud/mailtriage/pkg/gateway"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort > 0 {
			config.Gateway.HTTP.Port = servePort
		}

		gw, err := gateway.NewGatewayWithConfig(config)
		if err != nil {
			return err
		}
		return gw.Start()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port (default from config)")
}
