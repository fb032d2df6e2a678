package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/access"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the route-permission table",
	Long:  `Prints every guarded route with its method and the role it requires.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		guard, err := access.NewGuard(access.DefaultRoutes)
		if err != nil {
			return fmt.Errorf("load route table: %w", err)
		}
		return printRoutes(cmd.OutOrStdout(), guard.Routes())
	},
}

func printRoutes(out io.Writer, routes []access.Route) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATTERN\tMETHOD\tREQUIRES")
	for _, rt := range routes {
		method := rt.Method
		if method == "" {
			method = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", rt.Pattern, method, rt.Requirement)
	}
	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(routesCmd)
}
