package cmd

import (
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var quotesCMD = &cobra.Command{
	Use:   "quotes",
	Short: "Daily quote operations",
	RunE:  requireSubcommand,
}

var quotesUpdateCMD = &cobra.Command{
	Use:          "update",
	Short:        "Continue synchronizing daily quotes through today",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(db *gorm.DB) error {
			return newSyncer(db).Continue()
		})
	},
}

func init() {
	quotesCMD.AddCommand(quotesUpdateCMD)
	rootCMD.AddCommand(quotesCMD)
}
