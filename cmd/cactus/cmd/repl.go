package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/cactus-lang/cactus/internal/value"
	"github.com/cactus-lang/cactus/pkg/cactus"
	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:     "repl",
	Short:   "Start an interactive CactUScript session",
	Aliases: []string{"i"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return startRepl(cmd)
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
	runCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "enter the REPL instead of running a file")
}

var (
	promptColor = color.New(color.FgBlue)
	resultColor = color.New(color.FgYellow)
	errorColor  = color.New(color.FgRed)
	eventColor  = color.New(color.FgCyan)
)

// replSession holds the mutable state a REPL command can affect — the
// backend toggle and display toggles named in spec.md §6's meta-command
// list, plus the shared cactus.ReplState carrying the live environment.
type replSession struct {
	out        io.Writer
	state      *cactus.ReplState
	showTokens bool
	showAST    bool
}

func startRepl(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	backend := cactus.TreeWalk
	if !cmd.Flags().Changed("vm") && appConf.GetBool("vm") {
		backend = cactus.VM
	}

	sess := &replSession{out: out, state: cactus.NewReplState(backend, &eventColorWriter{out: out})}

	historyFile := appConf.GetString("history_file")
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      ">>> ",
		HistoryFile: historyFile,
	})
	if err != nil {
		return fmt.Errorf("failed to start readline: %w", err)
	}
	defer rl.Close()

	printBanner(out)

	var buffered strings.Builder
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF (Ctrl-D) or readline.ErrInterrupt (Ctrl-C)
			fmt.Fprintln(out, "bye")
			return nil
		}

		if buffered.Len() == 0 {
			trimmed := strings.TrimSpace(line)
			handled, quit := sess.handleMetaCommand(trimmed)
			if quit {
				return nil
			}
			if handled {
				continue
			}
		}

		buffered.WriteString(line)
		buffered.WriteString("\n")

		if cactus.BraceDepth(buffered.String()) > 0 {
			rl.SetPrompt("... ")
			continue
		}
		rl.SetPrompt(">>> ")

		src := buffered.String()
		buffered.Reset()
		sess.evalLine(src)
	}
}

// eventColorWriter colorizes `[EVENT] ...` lines emitted by the
// interpreter/VM (SPEC_FULL.md §4.1f) while passing everything else
// (println/print output) through unchanged.
type eventColorWriter struct {
	out io.Writer
}

func (w *eventColorWriter) Write(p []byte) (int, error) {
	n := len(p)
	for _, line := range strings.SplitAfter(string(p), "\n") {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[EVENT]") {
			eventColor.Fprint(w.out, line)
		} else {
			fmt.Fprint(w.out, line)
		}
	}
	return n, nil
}

func printBanner(out io.Writer) {
	promptColor.Fprintln(out, "CactUScript REPL — type 'help' for commands, 'exit' to quit")
}

// handleMetaCommand implements spec.md §6's top-level-only meta-commands,
// case-insensitively. handled reports whether line was a recognized
// meta-command (and so should not be parsed as CactUScript source); quit
// reports whether the REPL loop should stop.
func (s *replSession) handleMetaCommand(line string) (handled, quit bool) {
	switch strings.ToLower(line) {
	case "":
		return true, false
	case "help":
		s.printHelp()
		return true, false
	case "exit", "quit":
		fmt.Fprintln(s.out, "bye")
		return true, true
	case "clear":
		fmt.Fprint(s.out, "\033[H\033[2J")
		return true, false
	case "reset":
		s.state.Reset()
		fmt.Fprintln(s.out, "environment reset")
		return true, false
	case "tokens":
		s.showTokens = !s.showTokens
		fmt.Fprintf(s.out, "token display: %v\n", s.showTokens)
		return true, false
	case "ast":
		s.showAST = !s.showAST
		fmt.Fprintf(s.out, "ast display: %v\n", s.showAST)
		return true, false
	case "vm":
		s.state.Backend = cactus.VM
		fmt.Fprintln(s.out, "backend: vm")
		return true, false
	case "interp":
		s.state.Backend = cactus.TreeWalk
		fmt.Fprintln(s.out, "backend: tree-walk")
		return true, false
	default:
		return false, false
	}
}

func (s *replSession) printHelp() {
	fmt.Fprintln(s.out, "meta-commands: help, exit, quit, clear, reset, tokens, ast, vm, interp")
}

func (s *replSession) evalLine(src string) {
	defer func() {
		if r := recover(); r != nil {
			errorColor.Fprintf(s.out, "panic: %v\n", r)
		}
	}()

	if s.showTokens {
		if toks, diag := cactus.Tokenize(src); diag == nil {
			for _, t := range toks {
				fmt.Fprintf(s.out, "  %s\n", t.String())
			}
		}
	}
	if s.showAST {
		if prog, diag := cactus.Parse(src); diag == nil {
			fmt.Fprintf(s.out, "  %d statement(s)\n", len(prog.Statements))
		}
	}

	result, diag, state := cactus.Step(src, s.state)
	s.state = state
	if diag != nil {
		errorColor.Fprintln(s.out, diag.Error())
		return
	}
	if _, isNone := result.(value.None); !isNone && result != nil {
		resultColor.Fprintf(s.out, "=> %s\n", result.String())
	}
}
