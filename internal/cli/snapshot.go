package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syssam/entitysql/compiler"
	"github.com/syssam/entitysql/compiler/gen"
	"github.com/syssam/entitysql/compiler/load"
)

// SnapshotCmd returns the snapshot command.
func SnapshotCmd() *cobra.Command {
	var (
		output  string
		dir     string
		tags    []string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "snapshot [packages]",
		Short: "Dump the declarations of Go packages",
		Long: `Load the Go packages matching the patterns (default ".") and write the
declarations and markers they contain. The format follows the extension of
the output file: .json, .yaml, .yml, .msgpack or .mpk. Without --output the
snapshot is written to stdout as JSON.

A snapshot can be fed back with "entitysql generate --snapshot".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []gen.Option{gen.WithLogger(newLogger(cmd.ErrOrStderr(), verbose))}
			if dir != "" {
				opts = append(opts, gen.WithDir(dir))
			}
			if len(tags) > 0 {
				opts = append(opts, gen.WithBuildFlags("-tags="+strings.Join(tags, ",")))
			}
			snap, _, err := compiler.Load(cmd.Context(), args, opts...)
			if err != nil {
				return err
			}
			if output == "" {
				return load.Encode(cmd.OutOrStdout(), load.FormatJSON, snap)
			}
			format, err := load.FormatFromPath(output)
			if err != nil {
				return err
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			bw := bufio.NewWriter(f)
			if err := load.Encode(bw, format, snap); err != nil {
				f.Close()
				return err
			}
			if err := bw.Flush(); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d declarations to %s\n", successColor.Sprint("✓ wrote"), snap.Len(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	cmd.Flags().StringVarP(&dir, "dir", "C", "", "resolve package patterns in `dir`")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "build tags used when loading packages")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
	return cmd
}
