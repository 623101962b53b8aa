package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlplay/internal/cli/output"
	"github.com/leapstack-labs/sqlplay/internal/engine"
)

const (
	replPrompt     = "sqlplay> "
	replContPrompt = "    ...> "
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive SQL prompt over the playground datasets",
		Long: `Start an interactive SQL prompt.

Statements end with a semicolon and may span several lines. Lines starting
with a dot are playground commands; type .help to list them.`,
		RunE: runREPL,
	}
}

func runREPL(cmd *cobra.Command, _ []string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	session := newREPLSession(cmd, cc.Engine, cc.Renderer)

	historyFile := ""
	if cc.Cfg.StatePath != "" && cc.Cfg.StatePath != ":memory:" {
		historyFile = filepath.Join(filepath.Dir(cc.Cfg.StatePath), "repl_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    session.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sqlplay REPL (%s)\n", cc.Engine.Dialect())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			session.reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if session.handle(cmd.Context(), line) {
			return nil
		}
		rl.SetPrompt(session.prompt())
	}
}

// replSession holds the statement buffer between lines.
type replSession struct {
	engine *engine.Engine
	r      *output.Renderer
	errOut io.Writer
	buf    strings.Builder
}

func newREPLSession(cmd *cobra.Command, eng *engine.Engine, r *output.Renderer) *replSession {
	return &replSession{engine: eng, r: r, errOut: cmd.ErrOrStderr()}
}

func (s *replSession) reset() { s.buf.Reset() }

func (s *replSession) prompt() string {
	if s.buf.Len() > 0 {
		return replContPrompt
	}
	return replPrompt
}

// handle processes one input line and reports whether the session ended.
func (s *replSession) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if s.buf.Len() == 0 && strings.HasPrefix(line, ".") {
		return s.dotCommand(ctx, line)
	}

	// Accumulate multi-line SQL until semicolon
	s.buf.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		s.buf.WriteString(" ")
		return false
	}
	query := strings.TrimSuffix(s.buf.String(), ";")
	s.buf.Reset()

	s.run(ctx, query)
	s.r.Println("")
	return false
}

func (s *replSession) run(ctx context.Context, query string) {
	res, err := s.engine.Run(ctx, query)
	if err != nil {
		s.r.Error(friendly(err).Error())
		return
	}
	if res.Failed() {
		_ = s.r.Explanation(*res.Error, res.Source, res.RawError)
		return
	}
	_ = s.r.Rows(res.Columns, res.Rows, res.Truncated)
}

func (s *replSession) dotCommand(ctx context.Context, line string) bool {
	command, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(command) {
	case ".quit", ".exit":
		return true

	case ".help":
		s.printHelp()

	case ".tables", ".datasets":
		_ = s.r.Datasets(s.engine.Datasets())

	case ".explain":
		res, err := s.engine.Explain(ctx, strings.TrimSuffix(rest, ";"))
		if err != nil {
			s.r.Error(friendly(err).Error())
			break
		}
		_ = s.r.Steps(res.Steps, res.Source)

	case ".translate":
		if rest == "" {
			s.r.Error("usage: .translate <error message>")
			break
		}
		exp, source := s.engine.TranslateError(ctx, rest)
		_ = s.r.Explanation(exp, source, "")

	default:
		s.r.Error(fmt.Sprintf("unknown command %s (type .help)", command))
	}
	return false
}

func (s *replSession) printHelp() {
	s.r.Println(`Commands:
  .help              Show this help
  .tables            List datasets and their tables
  .explain <SQL>     Explain a query step by step
  .translate <msg>   Explain a database error message
  .quit              Exit the REPL

End SQL statements with ; to run them.`)
}

// completer offers dot-commands, SQL keywords and table names.
func (s *replSession) completer() readline.AutoCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".explain"),
		readline.PcItem(".translate"),
		readline.PcItem(".quit"),
	}
	for _, kw := range []string{"SELECT", "FROM", "WHERE", "GROUP BY", "ORDER BY", "LIMIT"} {
		items = append(items, readline.PcItem(kw))
	}
	for _, ds := range s.engine.Datasets() {
		items = append(items, readline.PcItem(ds.TableName))
	}
	return readline.NewPrefixCompleter(items...)
}
