package cmd

import (
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var twseCMD = &cobra.Command{
	Use:   "twse",
	Short: "TWSE index history operations",
	RunE:  requireSubcommand,
}

var twseUpdateCMD = &cobra.Command{
	Use:          "update",
	Short:        "Backfill the TWSE weighted index history through today",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(db *gorm.DB) error {
			return newSyncer(db).UpdateIndexHistory()
		})
	},
}

func init() {
	twseCMD.AddCommand(twseUpdateCMD)
	rootCMD.AddCommand(twseCMD)
}
