package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlplay/internal/cli/output"
	"github.com/leapstack-labs/sqlplay/internal/engine"
)

// QueryOptions holds options shared by commands that take SQL.
type QueryOptions struct {
	File string
}

// readSQL joins args into one statement. "-" or --file read it instead.
func readSQL(cmd *cobra.Command, args []string, opts *QueryOptions) (string, error) {
	var src io.Reader
	switch {
	case opts.File == "-" || (len(args) == 1 && args[0] == "-"):
		src = cmd.InOrStdin()
	case opts.File != "":
		f, err := os.Open(opts.File)
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", opts.File, err)
		}
		defer func() { _ = f.Close() }()
		src = f
	default:
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("failed to read query: %w", err)
	}
	return string(data), nil
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "run [SQL]",
		Short: "Run a read-only query against the sample datasets",
		Long: `Run a SQL query against the playground database.

Queries that modify data (DROP, DELETE, UPDATE, ALTER, INSERT, TRUNCATE)
are refused before they reach the database. When the database reports an
error, sqlplay explains what it means and how to fix it.`,
		Example: `  # Query a sample dataset
  sqlplay run "SELECT name, marks FROM students WHERE marks > 80"

  # Read the query from a file or stdin
  sqlplay run --file query.sql
  echo "SELECT * FROM employees" | sqlplay run -

  # Machine-readable output
  sqlplay run -o json "SELECT * FROM students"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Read the query from a file (- for stdin)")
	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	query, err := readSQL(cmd, args, opts)
	if err != nil {
		return err
	}

	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return renderRun(cmd, cc.Engine, cc.Renderer, query)
}

// renderRun runs query and prints rows or the explained error.
func renderRun(cmd *cobra.Command, eng *engine.Engine, r *output.Renderer, query string) error {
	res, err := eng.Run(cmd.Context(), query)
	if err != nil {
		return friendly(err)
	}
	if res.Failed() {
		if err := r.Explanation(*res.Error, res.Source, res.RawError); err != nil {
			return err
		}
		return ErrQueryFailed
	}
	return r.Rows(res.Columns, res.Rows, res.Truncated)
}

// friendly trims the input sentinel prefix from user-facing messages.
func friendly(err error) error {
	if errors.Is(err, engine.ErrInvalidInput) {
		return errors.New(strings.TrimPrefix(err.Error(), engine.ErrInvalidInput.Error()+": "))
	}
	return err
}

// NewExplainCommand creates the explain command.
func NewExplainCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:     "explain [SQL]",
		Short:   "Explain a query step by step in plain language",
		Example: `  sqlplay explain "SELECT department, COUNT(*) FROM employees GROUP BY department"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := readSQL(cmd, args, opts)
			if err != nil {
				return err
			}

			cc := NewCommandContextWithoutEngine(cmd)
			eng := engine.New(nil, engine.Options{Tutor: NewTutor(cc.Cfg, cc.Logger), Logger: cc.Logger})

			res, err := eng.Explain(cmd.Context(), query)
			if err != nil {
				return friendly(err)
			}
			return cc.Renderer.Steps(res.Steps, res.Source)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Read the query from a file (- for stdin)")
	return cmd
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate <error message>",
		Short: "Translate a database error message into plain language",
		Example: `  sqlplay translate "no such column: nme"
  sqlplay translate 'near "FORM": syntax error'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.TrimSpace(strings.Join(args, " "))
			if message == "" {
				return errors.New("error message must not be empty")
			}

			cc := NewCommandContextWithoutEngine(cmd)
			eng := engine.New(nil, engine.Options{Tutor: NewTutor(cc.Cfg, cc.Logger), Logger: cc.Logger})

			exp, source := eng.TranslateError(cmd.Context(), message)
			return cc.Renderer.Explanation(exp, source, "")
		},
	}
	return cmd
}
