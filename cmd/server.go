package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/jihghong/tw-stock-daily/api"
)

var serverCMD = &cobra.Command{
	Use:          "server",
	Short:        "Start the read-only query API",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(db *gorm.DB) error {
			r := api.SetupRoutes(db)
			addr := ":8080"
			logrus.WithField("addr", addr).Info("starting server")
			return r.Run(addr)
		})
	},
}

func init() {
	rootCMD.AddCommand(serverCMD)
}
