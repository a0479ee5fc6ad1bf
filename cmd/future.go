package cmd

import (
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var futureCMD = &cobra.Command{
	Use:   "future",
	Short: "Derivative code operations",
	RunE:  requireSubcommand,
}

var futureCodesCMD = &cobra.Command{
	Use:          "codes",
	Short:        "Rebuild the stock future code cross-reference",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(db *gorm.DB) error {
			return newSyncer(db).UpdateFutureCodes()
		})
	},
}

func init() {
	futureCMD.AddCommand(futureCodesCMD)
	rootCMD.AddCommand(futureCMD)
}
