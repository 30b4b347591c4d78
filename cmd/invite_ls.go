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

var inviteCommand = cobra.Command{
	Use:   "invite",
	Short: "invite commands",
	Long:  `commands to inspect family invitations`,
}

var listInvitesCommand = cobra.Command{
	Use:   "ls",
	Short: "Lists all invites",
	Long:  `This will list all invites`,
	Run: func(cmd *cobra.Command, args []string) {
		//setup datastore
		dataStore := mustResolveUsableDataStore()
		entries, total, err := dataStore.Invitations(context.Background(), db.ListOptions{
			Page:     1,
			PageSize: math.MaxInt,
		})
		if err != nil {
			fmt.Printf("Unable to load invites: %s", err)
			os.Exit(1)
			return
		}
		w := tabwriter.NewWriter(os.Stdout, 1, 1, 1, ' ', 0)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s \r\n",
			"ID", "Family", "Email", "Role", "Status", "ExpiresAt", "SentAt")
		formatDt := func(t *time.Time) string {
			if t != nil {
				return t.Format("2006-02-01")
			}
			return "-"
		}
		for _, v := range entries {
			e := ""
			if v.InviteeEmail != nil {
				e = *v.InviteeEmail
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s \r\n",
				v.ID, v.FamilyID, e, v.Role, v.Status, formatDt(&v.ExpiresAt), formatDt(v.SentAt))
		}
		fmt.Fprintf(w, "------------------------------------------------- \r\n")
		fmt.Fprintf(w, "%d entries loaded", total)
		w.Flush()
	},
}
