package cmd

import (
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var updateCMD = &cobra.Command{
	Use:          "update",
	Short:        "Run the full refresh: future codes, daily quotes, index history",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(db *gorm.DB) error {
			s := newSyncer(db)
			if err := s.UpdateFutureCodes(); err != nil {
				return err
			}
			if err := s.Continue(); err != nil {
				return err
			}
			return s.UpdateIndexHistory()
		})
	},
}

func init() {
	rootCMD.AddCommand(updateCMD)
}
