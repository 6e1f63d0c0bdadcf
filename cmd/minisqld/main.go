// Command minisqld is the CLI entry point for the minisql engine: run one
// statement against a data directory, batch-run a .sql script, or print
// the version. The subcommand tree is built with github.com/spf13/cobra,
// matching the rest of the example corpus's database-tooling convention
// (Pieczasz-smf, sqldef-sqldef) rather than the teacher's stdlib flag
// parsing — the teacher's own cmd/sqlparser/main.go banner/Printf texture
// is kept for result rendering, since the engine package itself never
// logs (see pkg/dberr, pkg/executor).
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minisql/minisql/pkg/catalog"
	"github.com/minisql/minisql/pkg/dberr"
	"github.com/minisql/minisql/pkg/executor"
	"github.com/minisql/minisql/pkg/parser"
	"github.com/minisql/minisql/pkg/seed"
)

const banner = `
 ███╗   ███╗██╗███╗   ██╗██╗███████╗ ██████╗ ██╗
 ████╗ ████║██║████╗  ██║██║██╔════╝██╔═══██╗██║
 ██╔████╔██║██║██╔██╗ ██║██║███████╗██║   ██║██║
 ██║╚██╔╝██║██║██║╚██╗██║██║╚════██║██║▄▄ ██║██║
 ██║ ╚═╝ ██║██║██║ ╚████║██║███████║╚██████╔╝███████╗
 ╚═╝     ╚═╝╚═╝╚═╝  ╚═══╝╚═╝╚══════╝ ╚══▀▀═╝ ╚══════╝

 minisql — a small single-process relational engine
`

// version is the CLI's own version string, independent of the engine's
// catalog schema version (pkg/catalog's catalogSchemaVersion).
const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "minisqld",
		Short: "minisql database engine CLI",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print(banner)
			cmd.Help()
		},
	}
	root.AddCommand(newExecCmd())
	root.AddCommand(newShellCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("minisqld %s\n", version)
			return nil
		},
	}
}

func newExecCmd() *cobra.Command {
	var (
		dataDir  string
		sqlText  string
		seedFile string
	)
	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Run one SQL statement against a data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sqlText == "" {
				return fmt.Errorf("--sql is required")
			}
			eng, err := open(dataDir, seedFile)
			if err != nil {
				return err
			}
			return runOne(eng, sqlText)
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Catalog data directory")
	cmd.Flags().StringVar(&sqlText, "sql", "", "SQL statement to execute")
	cmd.Flags().StringVar(&seedFile, "seed", "", "Optional YAML seed file to bootstrap the catalog before running")
	return cmd
}

func newShellCmd() *cobra.Command {
	var (
		dataDir  string
		script   string
		seedFile string
	)
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Batch-run a .sql script, one statement per semicolon",
		RunE: func(cmd *cobra.Command, args []string) error {
			if script == "" {
				return fmt.Errorf("--file is required")
			}
			eng, err := open(dataDir, seedFile)
			if err != nil {
				return err
			}
			return runScript(eng, script)
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Catalog data directory")
	cmd.Flags().StringVar(&script, "file", "", "Path to a .sql script file")
	cmd.Flags().StringVar(&seedFile, "seed", "", "Optional YAML seed file to bootstrap the catalog before running")
	return cmd
}

// open loads (or freshly creates) a catalog at dataDir, applies an
// optional seed file, and returns an Executor bound to it.
func open(dataDir, seedFile string) (*executor.Executor, error) {
	cat := catalog.New(dataDir)
	if err := cat.Load(); err != nil {
		return nil, err
	}
	exec := executor.New(cat)
	if seedFile != "" {
		spec, err := seed.LoadFile(seedFile)
		if err != nil {
			return nil, err
		}
		if err := seed.Apply(spec, exec); err != nil {
			return nil, err
		}
	}
	return exec, nil
}

// runOne parses and executes a single statement, printing its result or
// error the way the teacher's cmd/sqlparser/main.go prints banners and
// results: plain fmt.Printf, no structured logging.
func runOne(exec *executor.Executor, sql string) error {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return printErr(err)
	}
	res, err := exec.Execute(stmt)
	if err != nil {
		return printErr(err)
	}
	printResult(res)
	return nil
}

// runScript splits a script file into individual statements on ";" and
// runs each in turn, stopping at the first failure.
func runScript(exec *executor.Executor, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading script %q: %w", path, err)
	}
	for i, stmt := range splitStatements(string(data)) {
		fmt.Printf("-- [%d] %s\n", i+1, stmt)
		if err := runOne(exec, stmt); err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}
	return nil
}

// splitStatements breaks a script into statements line by line, dropping
// blank lines and lines that start with "--". A statement ends at a line
// whose trimmed text ends with ';'; a semicolon elsewhere on a line does
// not split it, and any text left after the last such line is returned as
// a final statement.
func splitStatements(script string) []string {
	var out []string
	scanner := bufio.NewScanner(strings.NewReader(script))
	var cur strings.Builder
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		cur.WriteString(line)
		cur.WriteByte(' ')
		if strings.HasSuffix(line, ";") {
			stmt := strings.TrimSpace(cur.String())
			if stmt != "" {
				out = append(out, stmt)
			}
			cur.Reset()
		}
	}
	if rest := strings.TrimSpace(cur.String()); rest != "" {
		out = append(out, rest)
	}
	return out
}

func printErr(err error) error {
	if e, ok := err.(*dberr.Error); ok {
		fmt.Printf("Error [%s]: %s\n", e.KindOf(), e.Error())
	} else {
		fmt.Printf("Error: %s\n", err)
	}
	return err
}

func printResult(res *executor.Result) {
	switch res.Kind {
	case executor.KindMessage:
		fmt.Println(res.Message)
	case executor.KindAffected:
		fmt.Printf("Affected: %d\n", res.Affected)
	case executor.KindRows:
		printTable(res.Columns, res.Rows)
	}
}

func printTable(columns []string, rows []executor.Row) {
	fmt.Println(strings.Join(columns, " | "))
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = row[col].String()
		}
		fmt.Println(strings.Join(cells, " | "))
	}
	fmt.Printf("(%d row(s))\n", len(rows))
}
