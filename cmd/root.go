package cmd

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hearthhq/hearth/config"
)

// ConfigFileLocation is of the config to load
var ConfigFileLocation string

// TopLevelLogger is the logger all loggers come from
var TopLevelLogger *zap.Logger

// LoadedConfig is the currently loaded configuration after initial bootstrapping
var LoadedConfig *config.Configuration

// EmailTemplates holds the embedded email template folder
var EmailTemplates fs.FS

var rootCommand = cobra.Command{
	Use:   "hearth",
	Short: "hearth family membership service",
	Long: `hearth is the family membership and invitation backend,
	For more information visit https://github.com/hearthhq/hearth`,
	Run: func(cmd *cobra.Command, args []string) {
		serveCommand.Run(cmd, args)
	},
}

func Execute() {
	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {

	rootCommand.PersistentFlags().
		StringVar(&ConfigFileLocation, "config", "", "config file to be used")

	verifyCommand.AddCommand(&sendTestMailCommand)

	familyCommand.AddCommand(&createFamilyCommand)
	familyCommand.AddCommand(&listFamiliesCommand)

	inviteCommand.AddCommand(&listInvitesCommand)

	promoCommand.AddCommand(&createPromoCommand)
	promoCommand.AddCommand(&listPromoCommand)

	rootCommand.AddCommand(&verifyCommand)
	rootCommand.AddCommand(&familyCommand)
	rootCommand.AddCommand(&inviteCommand)
	rootCommand.AddCommand(&promoCommand)
	rootCommand.AddCommand(&serveCommand)
}
