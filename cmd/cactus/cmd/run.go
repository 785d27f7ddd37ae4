package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/cactus-lang/cactus/internal/ast"
	"github.com/cactus-lang/cactus/internal/bytecode"
	"github.com/cactus-lang/cactus/internal/token"
	"github.com/cactus-lang/cactus/pkg/cactus"
	"github.com/spf13/cobra"
)

var (
	evalExpr     string
	useVM        bool
	showTokens   bool
	showAST      bool
	showBytecode bool
	interactive  bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a CactUScript file or expression",
	Long: `Execute a CactUScript program from a file or an inline expression.

Examples:
  cactus run script.cact
  cactus run -e 'println(1 + 2 * 3)'
  cactus run --vm --bytecode script.cact`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline source instead of reading a file")
	runCmd.Flags().BoolVar(&useVM, "vm", false, "use the bytecode backend instead of the tree-walking evaluator")
	runCmd.Flags().BoolVar(&showTokens, "tokens", false, "print the token stream before running")
	runCmd.Flags().BoolVar(&showAST, "ast", false, "print the parsed syntax tree before running")
	runCmd.Flags().BoolVar(&showBytecode, "bytecode", false, "print compiled instructions before running (requires --vm)")
}

// sourceSuffixes are the conventional CactUScript file extensions
// (spec.md §6). A missing suffix is a warning, not a failure.
var sourceSuffixes = []string{".cact", ".cactus", ".cus"}

func runScript(cmd *cobra.Command, args []string) error {
	if !cmd.Flags().Changed("vm") {
		useVM = appConf.GetBool("vm")
	}
	if !cmd.Flags().Changed("bytecode") && appConf.IsSet("bytecode") {
		showBytecode = appConf.GetBool("bytecode")
	}
	if showBytecode && !useVM {
		return fmt.Errorf("--bytecode requires --vm")
	}

	if interactive {
		return startRepl(cmd)
	}

	var source, name string
	if evalExpr != "" {
		source = evalExpr
		name = "<eval>"
	} else if len(args) == 1 {
		name = args[0]
		if !hasKnownSuffix(name) {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s has no conventional CactUScript suffix (%s)\n",
				name, strings.Join(sourceSuffixes, ", "))
		}
		content, err := os.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		source = string(content)
	} else {
		return startRepl(cmd)
	}

	logger.Debugw("running script", "name", name, "vm", useVM)

	opts := cactus.Options{Output: &eventColorWriter{out: cmd.OutOrStdout()}}
	if useVM {
		opts.Backend = cactus.VM
	}
	if showTokens {
		opts.Tokens = func(toks []token.Token) { printTokens(cmd, toks) }
	}
	if showAST {
		opts.AST = func(p *ast.Program) { printAST(cmd, p) }
	}
	if showBytecode {
		opts.Bytecode = func(c *bytecode.Chunk) {
			fmt.Fprintln(cmd.OutOrStdout(), bytecode.Disassemble(c, name))
		}
	}

	_, diag := cactus.Run(source, opts)
	if diag != nil {
		errorColor.Fprintln(cmd.ErrOrStderr(), diag.Error())
		return fmt.Errorf("execution failed")
	}
	return nil
}

func hasKnownSuffix(name string) bool {
	for _, s := range sourceSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

func printTokens(cmd *cobra.Command, toks []token.Token) {
	fmt.Fprintln(cmd.OutOrStdout(), "tokens:")
	for _, t := range toks {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", t.String())
	}
}

func printAST(cmd *cobra.Command, prog *ast.Program) {
	fmt.Fprintf(cmd.OutOrStdout(), "ast: %d top-level statement(s)\n", len(prog.Statements))
	for i, stmt := range prog.Statements {
		fmt.Fprintf(cmd.OutOrStdout(), "  [%d] %T @ %s\n", i, stmt, stmt.Pos())
	}
}
