package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/yaklabco/textanalyzer/internal/logging"
)

func newVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash and build date of textanalyzer.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			logging.New(cmd.OutOrStdout(), "info").Info("textanalyzer",
				logging.FieldVersion, info.Version,
				logging.FieldCommit, info.Commit,
				logging.FieldBuilt, info.Date,
				"go", runtime.Version(),
				"os", runtime.GOOS+"/"+runtime.GOARCH,
			)
		},
	}
}
