package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/mx-space/landing/internal/database"
	"github.com/mx-space/landing/internal/modules/content/section"
	"github.com/spf13/cobra"
)

func newTemplatesCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the section templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			templates := section.ListTemplates()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(templates)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LAYOUT\tNAME\tDESCRIPTION")
			for _, t := range templates {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Layout, t.Name, t.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print templates with their default fields as JSON")
	return cmd
}

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the section collection as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, closeFn, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			blob, err := store.Export(ctx)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(append(blob, '\n'))
				return err
			}
			if err := os.WriteFile(out, blob, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, stdout when empty")
	return cmd
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the section collection with a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				blob []byte
				err  error
			)
			if args[0] == "-" {
				blob, err = io.ReadAll(cmd.InOrStdin())
			} else {
				blob, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, closeFn, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := store.Import(ctx, blob)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d sections\n", n)
			return nil
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := database.EnsureSchema(cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}
