package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the available selector profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return eris.Wrap(err, "load profiles")
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tHOSTS\tPAGINATION\tPER PAGE")
		for _, p := range reg.Profiles() {
			hosts := strings.Join(p.Hosts, ",")
			if hosts == "" {
				hosts = "(any)"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", p.Name, hosts, p.PaginationParam, p.ItemsPerPage)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}
