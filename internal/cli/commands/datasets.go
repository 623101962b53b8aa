package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlplay/internal/cli/output"
)

// NewDatasetsCommand creates the datasets command and its subcommands.
func NewDatasetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "datasets",
		Aliases: []string{"ls"},
		Short:   "List the datasets you can query",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return cc.Renderer.Datasets(cc.Engine.Datasets())
		},
	}

	cmd.AddCommand(newDatasetShowCommand())
	cmd.AddCommand(newDatasetUploadCommand())
	return cmd
}

func newDatasetShowCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Describe a dataset and preview its first rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			preview, err := cc.Engine.Preview(cmd.Context(), args[0], limit)
			if err != nil {
				return friendly(err)
			}

			r := cc.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(preview)
			}

			ds := preview.Dataset
			r.Header(1, ds.Name)
			if ds.Description != "" {
				r.Println(ds.Description)
			}
			r.Println(output.FormatKeyValue("Table", ds.TableName))
			r.Println(output.FormatKeyValue("Rows", fmt.Sprint(ds.RowCount)))
			if len(ds.LearningGoals) > 0 {
				r.Println("")
				r.Header(2, "What you can practise")
				for _, goal := range ds.LearningGoals {
					r.Println("- " + goal)
				}
			}
			if len(ds.ExampleQueries) > 0 {
				r.Println("")
				r.Header(2, "Try")
				for _, q := range ds.ExampleQueries {
					r.Println(r.Styles().Code.Render(q))
				}
			}
			r.Println("")
			return r.Rows(preview.Columns, preview.Rows, false)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of rows to preview (default 10, max 100)")
	return cmd
}

func newDatasetUploadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file.csv>",
		Short: "Load a CSV file as a new dataset",
		Long: `Load a CSV file as a new queryable table.

Every column is stored as text. The dataset is recorded in the state
database so it is available again the next time sqlplay starts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer func() { _ = f.Close() }()

			res, err := cc.Engine.Upload(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return friendly(err)
			}

			if cc.Renderer.EffectiveMode() == output.ModeJSON {
				return cc.Renderer.JSON(res)
			}
			cc.Renderer.Success(res.Message)
			cc.Renderer.Println(output.FormatKeyValue("Table", res.TableName))
			cc.Renderer.Println(output.FormatKeyValue("Rows", fmt.Sprint(res.RowCount)))
			cc.Renderer.Println(output.FormatKeyValue("Columns", strings.Join(res.Columns, ", ")))
			return nil
		},
	}
}
