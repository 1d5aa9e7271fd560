package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/farewatch/farewatch/cmd/farewatch/commands"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:           "farewatch",
		Short:         "Scheduled flight-fare watcher",
		Long:          "Searches the Amadeus flight-offers API for a fixed travel plan, ranks the offers that pass the rule set and reports the best candidates and price alerts.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(commands.RunCmd())
	root.AddCommand(commands.PlanCmd())
	root.AddCommand(versionCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print farewatch version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("farewatch " + version)
		},
	}
}
