package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hearthhq/hearth/family"
	"github.com/hearthhq/hearth/mailing"
)

var createFamilyCommand = cobra.Command{
	Use:   "create",
	Short: "creates a family",
	Long:  `this command creates a family with the given name owned by the given user id`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 2 {
			return errors.New("requires a family name and a creator user id")
		}
		if _, err := uuid.Parse(args[1]); err != nil {
			return errors.New("creator user id has to be a valid uuid")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		dataStore := mustResolveUsableDataStore()
		dispatcher := bootstrapDispatcher(dataStore.Auditor())
		service := family.New(
			dataStore,
			TopLevelLogger.Named("family_service"),
			LoadedConfig,
			mailing.NewNoOpMailer(TopLevelLogger.Named("mailer"), LoadedConfig),
			dispatcher,
		)
		creator := uuid.MustParse(args[1])
		created, err := service.CreateFamily(context.Background(), creator, args[0])
		if err != nil {
			fmt.Printf("Unable to create family: %s\r\n", err)
			os.Exit(1)
			return
		}
		fmt.Printf("Family %s created with id %s, join code %s\r\n",
			created.Name, created.ID, created.JoinCode)
	},
}
