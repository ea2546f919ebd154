// entitysql generates SQL statement methods for marked Go types.
//
//	go run github.com/syssam/entitysql/cmd/entitysql generate ./...
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syssam/entitysql/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "entitysql",
		Short: "Generate SQL statements for Go entity types",
		Long: `entitysql scans Go packages for types marked with

	//entitysql:generate <EntityType> "<Table>"

and writes SelectAll, SelectById, Insert, UpdateById and DeleteById
methods for each of them into <type>_entitysql.go next to the type.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(cli.GenerateCmd())
	rootCmd.AddCommand(cli.SnapshotCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
