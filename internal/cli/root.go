package cli

import (
	"github.com/spf13/cobra"
	"github.com/terraincognita07/cyclecore/internal/config"
)

const defaultConfigPath = "cyclecore.yaml"

type rootOptions struct {
	configPath string
}

func (options *rootOptions) loadConfig() (*config.Config, error) {
	return config.Load(options.configPath)
}

// NewRootCommand builds the cyclecore command tree.
func NewRootCommand() *cobra.Command {
	options := &rootOptions{}
	root := &cobra.Command{
		Use:   "cyclecore",
		Short: "Cycle prediction and recommendation engine",
		Long: `cyclecore predicts menstrual cycle phases, keeps per-user cycle
statistics and ranks self-care tips from a bilingual knowledge base.

Configuration is read from a YAML file and then from the environment
(PORT, DB_PATH, SECRET_KEY, TZ, DEFAULT_LANGUAGE, KB_DIR, LOG_MODE).`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&options.configPath, "config", defaultConfigPath, "path to the YAML config file")

	root.AddCommand(newServeCommand(options))
	root.AddCommand(newTokenCommand(options))
	root.AddCommand(newSyntheticCommand())
	root.AddCommand(newSelfTestCommand())
	return root
}

func Execute() error {
	return NewRootCommand().Execute()
}
