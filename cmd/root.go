package cmd

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/jihghong/tw-stock-daily/database"
	"github.com/jihghong/tw-stock-daily/fetch"
	"github.com/jihghong/tw-stock-daily/ingest"
)

// Errors are logged centrally in Execute, so cobra's own error printing
// stays silenced. Usage printing stays on for the root and the bare
// group commands: any invocation that is not a listed subcommand shows
// usage and exits non-zero. Working subcommands silence usage
// individually so runtime failures do not dump help text.
var rootCMD = &cobra.Command{
	Use:   "tw-stock-daily",
	Short: "Taiwan stock market daily quote synchronizer",
	Long: `Incrementally synchronizes TWSE and OTC daily trading reports into a
local SQLite store, maintaining an append-only time series per security
along with futures contract codes and TWSE index history.

The store location comes from the TW_STOCK_DB_PATH environment variable.`,
	SilenceErrors: true,
	RunE:          requireSubcommand,
}

func requireSubcommand(cmd *cobra.Command, args []string) error {
	return errors.New("a subcommand is required")
}

func Execute() {
	// Optional .env in the working directory; the only required setting
	// is TW_STOCK_DB_PATH.
	_ = godotenv.Load()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := rootCMD.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

// withDatabase opens the store from the environment, runs fn, and closes
// the handle on every exit path.
func withDatabase(fn func(db *gorm.DB) error) error {
	db, err := database.OpenFromEnv()
	if err != nil {
		return err
	}
	defer database.Close(db)
	return fn(db)
}

func newSyncer(db *gorm.DB) *ingest.Syncer {
	return ingest.NewSyncer(db, fetch.NewClient(fetch.DefaultTimeout))
}
