package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hearthhq/hearth/promo"
)

var promoExpiry string

var createPromoCommand = cobra.Command{
	Use:   "create",
	Short: "creates a promo code",
	Long:  `this command creates a promo code with the given code, description and max uses`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 3 {
			return errors.New("requires a code, a description and a max use count")
		}
		if _, err := strconv.Atoi(args[2]); err != nil {
			return errors.New("max use count has to be a number")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		dataStore := mustResolveUsableDataStore()
		dispatcher := bootstrapDispatcher(dataStore.Auditor())
		service := promo.New(dataStore, TopLevelLogger.Named("promo_service"), dispatcher)

		maxUses, _ := strconv.Atoi(args[2])
		var expiresAt *time.Time
		if promoExpiry != "" {
			d, err := time.ParseDuration(promoExpiry)
			if err != nil {
				fmt.Printf("Unable to parse expiry duration: %s\r\n", err)
				os.Exit(1)
				return
			}
			t := time.Now().UTC().Add(d)
			expiresAt = &t
		}
		err := service.CreateCode(context.Background(), args[0], args[1], maxUses, expiresAt)
		if err != nil {
			fmt.Printf("Unable to create promo code: %s\r\n", err)
			os.Exit(1)
			return
		}
		fmt.Printf("Promo code %s created\r\n", args[0])
	},
}

func init() {
	createPromoCommand.Flags().
		StringVar(&promoExpiry, "expires-in", "", "duration until the code expires, for example 720h")
}
