package cmd

import (
	"github.com/spf13/cobra"
)

var promoCommand = cobra.Command{
	Use:   "promo",
	Short: "promo code commands",
	Long:  `commands to manage promo codes from the command line`,
}
