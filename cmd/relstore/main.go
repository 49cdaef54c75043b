package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/relstore/relstore/internal/config"
	"github.com/relstore/relstore/internal/logging"
	"github.com/relstore/relstore/pkg/catalog"
	"github.com/relstore/relstore/pkg/executor"
	"github.com/relstore/relstore/pkg/parser"
	"github.com/relstore/relstore/pkg/stats"
	"github.com/relstore/relstore/pkg/value"
)

const banner = `
 ██████╗ ███████╗██╗      ███████╗████████╗ ██████╗ ██████╗ ███████╗
 ██╔══██╗██╔════╝██║      ██╔════╝╚══██╔══╝██╔═══██╗██╔══██╗██╔════╝
 ██████╔╝█████╗  ██║      ███████╗   ██║   ██║   ██║██████╔╝█████╗
 ██╔══██╗██╔══╝  ██║      ╚════██║   ██║   ██║   ██║██╔══██╗██╔══╝
 ██║  ██║███████╗███████╗ ███████║   ██║   ╚██████╔╝██║  ██║███████╗
 ╚═╝  ╚═╝╚══════╝╚══════╝ ╚══════╝   ╚═╝    ╚═════╝ ╚═╝  ╚═╝╚══════╝

 An in-memory relational database. Type 'exit;' to quit.
`

func main() {
	var (
		sqlText       = flag.String("sql", "", "SQL statement to run, then exit")
		sqlFile       = flag.String("file", "", "File of SQL statements to run, then exit")
		configFile    = flag.String("config", "", "YAML configuration file path")
		logLevel      = flag.String("log-level", "", "Override the configured log level")
		dumpSchema    = flag.String("dump-schema", "", "Write the current catalog's schema as YAML to this path, then exit")
		loadSchema    = flag.String("load-schema", "", "Recreate tables from a YAML schema document before starting")
		showHelp      = flag.Bool("help", false, "Show usage")
		slowThreshold = flag.Int64("slow-ms", 0, "Override the configured slow-statement threshold in milliseconds")
	)
	flag.Parse()

	if *showHelp {
		fmt.Print(banner)
		flag.Usage()
		return
	}

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not load config: %v\n", err)
		} else {
			cfg = loaded
		}
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *slowThreshold > 0 {
		cfg.SlowStatementMS = *slowThreshold
	}

	logger := logging.New(cfg.LogLevel, nil)

	alerts := stats.NewAlertManager()
	alerts.AddRule(&stats.SlowStatementRule{Threshold: time.Duration(cfg.SlowStatementMS) * time.Millisecond})
	alerts.AddRule(&stats.ExecutionErrorRule{})
	alerts.AddHandler(func(a *stats.Alert) {
		logger.WithFields(map[string]interface{}{
			"type": a.Type,
			"sql":  a.Record.Text,
		}).Warn(a.Message)
	})
	recorder := stats.NewRecorder(alerts)

	db := catalog.New(logger)

	if *loadSchema != "" {
		doc, err := LoadSchemaFile(*loadSchema)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := ApplySchema(db, doc); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	if *dumpSchema != "" {
		if err := WriteSchemaFile(*dumpSchema, DumpSchema(db)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	exec := executor.New(db, logger)

	switch {
	case *sqlText != "":
		runOne(exec, recorder, *sqlText)
	case *sqlFile != "":
		data, err := os.ReadFile(*sqlFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		for _, stmt := range splitStatements(string(data)) {
			runOne(exec, recorder, stmt)
		}
	default:
		repl(exec, recorder, cfg.Prompt)
	}
}

// splitStatements breaks a SQL file into individual statements on `;`.
// The parser itself treats the trailing semicolon as optional, so this is
// purely a batching convenience for -file.
func splitStatements(text string) []string {
	var out []string
	for _, raw := range strings.Split(text, ";") {
		s := strings.TrimSpace(raw)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func repl(exec *executor.Executor, recorder *stats.Recorder, prompt string) {
	fmt.Print(banner)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(prompt)
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "exit;") {
			fmt.Println("Goodbye!")
			return
		}
		runOne(exec, recorder, line)
	}
}

func runOne(exec *executor.Executor, recorder *stats.Recorder, sql string) {
	start := time.Now()
	result, err := execute(exec, sql)
	recorder.Record(stats.StatementRecord{Text: sql, Duration: time.Since(start), Err: err, Timestamp: start})

	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	printResult(result)
}

func execute(exec *executor.Executor, sql string) (*executor.Result, error) {
	p, err := parser.New(sql)
	if err != nil {
		return nil, err
	}
	stmt, err := p.ParseStatement()
	if err != nil {
		return nil, err
	}
	return exec.Execute(stmt)
}

func printResult(result *executor.Result) {
	switch {
	case result.Plan != nil:
		fmt.Print(result.Plan.String())
	case result.Rows != nil:
		printRows(result.Columns, result.Rows)
	default:
		fmt.Println(result.Message)
	}
}

// printRows renders rows as a simple pipe-delimited table, mirroring the
// original REPL's header/separator/row-join-by-" | " presentation.
func printRows(columns []string, rows []map[string]value.Value) {
	cols := columns
	if len(cols) == 0 {
		seen := make(map[string]bool)
		for _, row := range rows {
			for k := range row {
				if !seen[k] {
					seen[k] = true
					cols = append(cols, k)
				}
			}
		}
		sort.Strings(cols)
	}

	fmt.Println(strings.Join(cols, " | "))
	sepParts := make([]string, len(cols))
	for i, c := range cols {
		sepParts[i] = strings.Repeat("-", len(c))
	}
	fmt.Println(strings.Join(sepParts, "-+-"))

	for _, row := range rows {
		parts := make([]string, len(cols))
		for i, c := range cols {
			v, ok := row[c]
			if !ok {
				parts[i] = ""
				continue
			}
			parts[i] = v.String()
		}
		fmt.Println(strings.Join(parts, " | "))
	}
	fmt.Printf("(%d row(s))\n", len(rows))
}
