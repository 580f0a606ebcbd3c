package cli

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/goto/salt/cmdx"
	"github.com/spf13/cobra"
)

func New(cfg *Config) *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:           "spotlight <command> <subcommand> [flags]",
		Short:         "Police misconduct records search service",
		Long:          "Search service over officer, agency and employment records.",
		SilenceErrors: true,
		SilenceUsage:  false,
		Example: heredoc.Doc(`
		$ spotlight server start
		$ spotlight server migrate
		$ spotlight config init
		`),
		Annotations: map[string]string{
			"group": "core",
			"help:learn": heredoc.Doc(`
				Use 'spotlight <command> --help' for info about a command.
			`),
		},
	}

	rootCmd.AddCommand(
		serverCmd(cfg),
		configCommand(cfg),
		versionCmd(),
	)

	// Help topics
	rootCmd.AddCommand(cmdx.SetCompletionCmd("spotlight"))
	rootCmd.AddCommand(cmdx.SetRefCmd(rootCmd))
	cmdx.SetHelp(rootCmd)

	rootCmd.PersistentFlags().StringP(configFlag, "c", "", "Override config file")

	return rootCmd
}
