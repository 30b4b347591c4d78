package cmd

import (
	"github.com/spf13/cobra"
)

var familyCommand = cobra.Command{
	Use:   "family",
	Short: "family commands",
	Long:  `commands to manage families from the command line`,
}
