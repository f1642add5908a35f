package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hsliu/cnstock/internal/common"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Displays the version and commit hash of cnstock.`,
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func runVersion(cmd *cobra.Command, args []string) error {
	if flagJSON {
		output := map[string]interface{}{
			"version": common.GetVersion(),
			"commit":  common.GetGitCommit(),
		}
		return outputJSON(output)
	}

	fmt.Printf("cnstock version %s\n", common.GetFullVersion())
	return nil
}
