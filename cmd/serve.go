package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hearthhq/hearth/api"
	"github.com/hearthhq/hearth/family"
	"github.com/hearthhq/hearth/manage"
	"github.com/hearthhq/hearth/promo"
)

var serveCommand = cobra.Command{
	Use:   "serve",
	Short: "starts the http server",
	Long:  `Starts a http server and serves the service`,
	Run: func(cmd *cobra.Command, args []string) {
		//this is our composite root

		//setup datastore
		dataStore := mustResolveUsableDataStore()

		//setup mailer
		mailer := mustResolveMailer()

		//events dispatcher
		dispatcher := bootstrapDispatcher(dataStore.Auditor())

		//setup business services
		familyService := family.New(dataStore, TopLevelLogger.Named("family_service"), LoadedConfig, mailer, dispatcher)
		promoService := promo.New(dataStore, TopLevelLogger.Named("promo_service"), dispatcher)

		//setup management services
		familyManager := manage.NewFamilyService(dataStore, TopLevelLogger.Named("family_manager"))
		inviteManager := manage.NewInviteService(dataStore, TopLevelLogger.Named("invite_manager"))
		promoManager := manage.NewPromoService(dataStore, TopLevelLogger.Named("promo_manager"), promoService)

		server, err := api.NewServer(LoadedConfig, TopLevelLogger.Named("server"),
			familyService,
			promoService,
			familyManager,
			inviteManager,
			promoManager,
		)
		if err != nil {
			TopLevelLogger.Fatal("Failed to create server", zap.Error(err))
		}
		if err := server.Start(); err != nil {
			TopLevelLogger.Fatal("Server stopped with error", zap.Error(err))
		}
		TopLevelLogger.Info("Shutdown complete")
	},
}

func init() {
	viper.SetDefault("port", "3000")
	viper.SetDefault("log_level", "debug")
}
