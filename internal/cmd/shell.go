package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/TWRT/task-analyzer/internal/client"
	"github.com/TWRT/task-analyzer/internal/client/analysis"
	"github.com/TWRT/task-analyzer/internal/logging"
	"github.com/TWRT/task-analyzer/internal/ranking"
	"github.com/TWRT/task-analyzer/internal/render"
	"github.com/TWRT/task-analyzer/internal/service"
	"github.com/TWRT/task-analyzer/internal/tasklist"
)

const shellHelp = `Commands:
  add <key=value;...>   add a task (keys: id, title, due, hours, importance, deps)
  list                  show the tasks added so far
  clear                 remove all added tasks
  json <file>           use the JSON array in <file> as pasted tasks
  paste                 type or paste a JSON array, end with a line holding only "."
  json clear            drop the pasted JSON
  strategy [name]       show or set the ordering (smart, fastest, impact, deadline)
  analyze               send the tasks for analysis in the background
  status                show list size, strategy and whether an analysis is running
  help                  show this help
  quit                  leave the shell`

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Build a task list interactively and analyze it",
	Long: `Start an interactive session. Tasks added with "add" stay in the list
until "clear"; "analyze" merges them with any pasted JSON array and shows the
ranked result. Only one analysis runs at a time: a second "analyze" while one
is running is ignored.

` + shellHelp,
	Args: cobra.NoArgs,
	RunE: runShellCmd,
}

func init() {
	rootCmd.AddCommand(shellCmd)
	shellCmd.Flags().StringP("strategy", "s", "", "initial ordering (default from config)")
}

func runShellCmd(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer logger.Close()

	strategyName, _ := cmd.Flags().GetString("strategy")
	if strategyName == "" {
		strategyName = cfg.Client.DefaultStrategy
	}

	c := analysis.NewClient(cfg.Client.BaseURL, cfg.Client.Timeout(), logger)
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	return runShell(cmd.Context(), c, logger, cmd.InOrStdin(), cmd.OutOrStdout(), strategyName, interactive)
}

// syncWriter serializes writes from the prompt loop and background analyses.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

type shell struct {
	session     *service.Session
	out         *syncWriter
	renderer    *render.Renderer
	strategy    ranking.Strategy
	jsonText    string
	interactive bool
	wg          sync.WaitGroup
}

func runShell(ctx context.Context, analyzer client.Analyzer, logger *logging.Logger, in io.Reader, out io.Writer, strategyName string, interactive bool) error {
	sh := &shell{
		session:     service.NewSession(analyzer, logger),
		out:         &syncWriter{w: out},
		renderer:    render.New(out),
		interactive: interactive,
	}
	sh.strategy = resolveStrategy(sh.out, strategyName)

	// wait for background analyses so their output is not lost
	defer sh.wg.Wait()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var pasting bool
	var pasted []string

	sh.prompt()
	for scanner.Scan() {
		line := scanner.Text()

		if pasting {
			if strings.TrimSpace(line) == "." {
				pasting = false
				sh.jsonText = strings.Join(pasted, "\n")
				pasted = nil
				sh.printf("Pasted JSON set (%d bytes)\n", len(sh.jsonText))
			} else {
				pasted = append(pasted, line)
			}
			sh.prompt()
			continue
		}

		command, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
		rest = strings.TrimSpace(rest)

		switch strings.ToLower(command) {
		case "":
		case "add":
			sh.add(rest)
		case "list":
			sh.printf("%s", sh.renderer.Preview(sh.session.Accumulator().Tasks()))
		case "clear":
			sh.session.Accumulator().Clear()
			sh.printf("%s\n", sh.session.Accumulator().Summary())
		case "json":
			sh.loadJSON(rest)
		case "paste":
			pasting = true
			sh.printf("Paste the JSON array, then a line with a single \".\"\n")
		case "strategy":
			if rest == "" {
				sh.printf("Strategy: %s (%s)\n", sh.strategy, sh.strategy.Label())
			} else {
				sh.strategy = resolveStrategy(sh.out, rest)
				sh.printf("Strategy: %s\n", sh.strategy.Label())
			}
		case "analyze":
			sh.analyze(ctx)
		case "status":
			sh.status()
		case "help", "?":
			sh.printf("%s\n", shellHelp)
		case "quit", "exit":
			return nil
		default:
			sh.printf("Unknown command %q. Type \"help\" for the list of commands.\n", command)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		sh.prompt()
	}

	return scanner.Err()
}

func (sh *shell) printf(format string, args ...any) {
	fmt.Fprintf(sh.out, format, args...)
}

func (sh *shell) prompt() {
	if sh.interactive {
		sh.printf("> ")
	}
}

func (sh *shell) add(pairs string) {
	fields, err := tasklist.ParseFields(pairs)
	if err != nil {
		sh.printf("Error: %v\n", err)
		return
	}
	task, err := sh.session.Accumulator().Append(&fields)
	if err != nil {
		sh.printf("Error: %s\n", service.UserMessage(err))
		return
	}
	sh.printf("Added %q. %s\n", task.Title, sh.session.Accumulator().Summary())
}

func (sh *shell) loadJSON(arg string) {
	switch arg {
	case "":
		sh.printf("Usage: json <file> | json clear\n")
	case "clear":
		sh.jsonText = ""
		sh.printf("Pasted JSON cleared\n")
	case "-":
		sh.printf("Use \"paste\" to enter JSON by hand\n")
	default:
		text, err := readJSONInput(nil, arg)
		if err != nil {
			sh.printf("Error: %v\n", err)
			return
		}
		sh.jsonText = text
		sh.printf("Pasted JSON set from %s (%d bytes)\n", arg, len(text))
	}
}

// analyze runs one analysis in the background. Triggers while one is in
// flight are reported and dropped by the session guard.
func (sh *shell) analyze(ctx context.Context) {
	jsonText, strategy := sh.jsonText, sh.strategy

	if sh.session.Busy() {
		sh.printf("Analysis already running, ignored.\n")
		return
	}

	sh.printf("Analyzing…\n")
	sh.wg.Add(1)
	go func() {
		defer sh.wg.Done()

		report, accepted, err := sh.session.Analyze(ctx, jsonText, strategy)
		switch {
		case !accepted:
			sh.printf("Analysis already running, ignored.\n")
		case err != nil:
			sh.printf("Error: %s\n", service.UserMessage(err))
		default:
			sh.printf("%s", sh.renderer.Report(report))
		}
	}()
}

func (sh *shell) status() {
	state := "idle"
	if sh.session.Busy() {
		state = "analyzing"
	}
	pasted := "none"
	if strings.TrimSpace(sh.jsonText) != "" {
		pasted = fmt.Sprintf("%d bytes", len(sh.jsonText))
	}
	sh.printf("%s. Pasted JSON: %s. Strategy: %s. State: %s.\n",
		sh.session.Accumulator().Summary(), pasted, sh.strategy.Label(), state)
}
