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

var listPromoCommand = cobra.Command{
	Use:   "ls",
	Short: "Lists all promo codes",
	Long:  `This will list all promo codes`,
	Run: func(cmd *cobra.Command, args []string) {
		//setup datastore
		dataStore := mustResolveUsableDataStore()
		entries, total, err := dataStore.PromoCodes(context.Background(), db.ListOptions{
			Page:     1,
			PageSize: math.MaxInt,
		})
		if err != nil {
			fmt.Printf("Unable to load promo codes: %s", err)
			os.Exit(1)
			return
		}
		w := tabwriter.NewWriter(os.Stdout, 1, 1, 1, ' ', 0)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s \r\n", "ID", "Code", "Uses", "MaxUses", "ExpiresAt")
		formatDt := func(t *time.Time) string {
			if t != nil {
				return t.Format("2006-02-01")
			}
			return "-"
		}
		for _, v := range entries {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s \r\n",
				v.ID, v.Code, v.CurrentUses, v.MaxUses, formatDt(v.ExpiresAt))
		}
		fmt.Fprintf(w, "------------------------------------------------- \r\n")
		fmt.Fprintf(w, "%d entries loaded", total)
		w.Flush()
	},
}
