package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/beam-cloud/mailtriage/pkg/common"
	"github.com/beam-cloud/mailtriage/pkg/gateway"
	"github.com/beam-cloud/mailtriage/pkg/types"
)

// Build information (injected at compile time via ldflags)
var Version = "dev"

const defaultTokenFile = "token.json"

var (
	configPath string
	tokenPath  string
)

var helpTemplate = `{{with .Long}}{{. | trim}}

{{end}}{{if .HasAvailableSubCommands}}` + `{{.CommandPath}}` + ` ` + `<command>` + `

{{end}}{{if .HasAvailableSubCommands}}Commands:
{{range .Commands}}{{if .IsAvailableCommand}}  {{rpad .Name .NamePadding }}  {{.Short}}
{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}
Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}
`

var rootCmd = &cobra.Command{
	Use:   "mailtriage",
	Short: "Classify Gmail messages with an LLM and export them as CSV",
	Long: lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true).Render("mailtriage") + ` - Gmail classification to CSV

Fetch the messages received in a date range, ask a language model for a
category, tags and a short summary of each, and write the result as CSV.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetHelpTemplate(helpTemplate)
	rootCmd.SetVersionTemplate(fmt.Sprintf("  %s version %s\n", BrandStyle.Render("mailtriage"), Version))

	rootCmd.PersistentFlags().StringVar(&configPath, "config", getEnv("CONFIG_PATH", ""), "Config file (yaml or json)")
	rootCmd.PersistentFlags().StringVar(&tokenPath, "token", getEnv("MAILTRIAGE_TOKEN", defaultTokenFile), "Saved Gmail token file")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the CLI
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		PrintError(err)
	}
	return err
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// loadConfig reads configuration the same way the gateway does, honoring --config
func loadConfig() (types.AppConfig, error) {
	if configPath != "" {
		os.Setenv("CONFIG_PATH", configPath)
	}

	cm, err := common.NewConfigManager[types.AppConfig]()
	if err != nil {
		return types.AppConfig{}, err
	}
	config := cm.GetConfig()
	gateway.SetupLogging(config)

	return config, nil
}
