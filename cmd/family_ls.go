package cmd

import (
	"context"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hearthhq/hearth/db"
)

var listFamiliesCommand = cobra.Command{
	Use:   "ls",
	Short: "Lists all families",
	Long:  `This will list all families`,
	Run: func(cmd *cobra.Command, args []string) {
		//setup datastore
		dataStore := mustResolveUsableDataStore()
		entries, total, err := dataStore.Families(context.Background(), db.ListOptions{
			Page:     1,
			PageSize: math.MaxInt,
		})
		if err != nil {
			fmt.Printf("Unable to load families: %s", err)
			os.Exit(1)
			return
		}
		w := tabwriter.NewWriter(os.Stdout, 1, 1, 1, ' ', 0)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s \r\n", "ID", "Name", "JoinCode", "CreatedBy", "CreatedAt")
		for _, v := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s \r\n",
				v.ID, v.Name, v.JoinCode, v.CreatedBy, v.CreatedAt.Format(time.RFC3339))
		}
		fmt.Fprintf(w, "------------------------------------------------- \r\n")
		fmt.Fprintf(w, "%d entries loaded", total)
		w.Flush()
	},
}
