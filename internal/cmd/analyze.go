package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/TWRT/task-analyzer/internal/client/analysis"
	"github.com/TWRT/task-analyzer/internal/ranking"
	"github.com/TWRT/task-analyzer/internal/render"
	"github.com/TWRT/task-analyzer/internal/service"
	"github.com/TWRT/task-analyzer/internal/tasklist"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze tasks given as flags and/or a JSON array",
	Long: `Analyze a list of tasks in one shot.

Tasks given with --task come first, followed by the elements of the JSON
array read with --json. Each --task is a list of key=value pairs separated
by semicolons:

  task-analyzer analyze --task "title=Write report;hours=2;importance=8;deps=a,b"
  task-analyzer analyze --json tasks.json --strategy deadline
  cat tasks.json | task-analyzer analyze --json -

Keys: id, title, due (YYYY-MM-DD), hours, importance, deps.`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringArrayP("task", "t", nil, "task as key=value pairs separated by ';' (repeatable)")
	analyzeCmd.Flags().StringP("json", "j", "", "file with a JSON array of tasks, or - for stdin")
	analyzeCmd.Flags().StringP("strategy", "s", "", "ordering: smart, fastest, impact or deadline (default from config)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer logger.Close()

	taskFlags, _ := cmd.Flags().GetStringArray("task")
	jsonPath, _ := cmd.Flags().GetString("json")
	strategyName, _ := cmd.Flags().GetString("strategy")
	if strategyName == "" {
		strategyName = cfg.Client.DefaultStrategy
	}
	strategy := resolveStrategy(cmd.ErrOrStderr(), strategyName)

	client := analysis.NewClient(cfg.Client.BaseURL, cfg.Client.Timeout(), logger)
	session := service.NewSession(client, logger)

	for _, pairs := range taskFlags {
		fields, err := tasklist.ParseFields(pairs)
		if err != nil {
			return fmt.Errorf("--task %q: %w", pairs, err)
		}
		if _, err := session.Accumulator().Append(&fields); err != nil {
			return errors.New(service.UserMessage(err))
		}
	}

	jsonText, err := readJSONInput(cmd.InOrStdin(), jsonPath)
	if err != nil {
		return err
	}

	report, _, err := session.Analyze(cmd.Context(), jsonText, strategy)
	if err != nil {
		return errors.New(service.UserMessage(err))
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, render.New(out).Report(report))
	return nil
}

// readJSONInput returns the pasted JSON text: the named file, stdin for
// "-", or nothing for an empty path.
func readJSONInput(stdin io.Reader, path string) (string, error) {
	switch path {
	case "":
		return "", nil
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read JSON from stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read JSON file: %w", err)
		}
		return string(data), nil
	}
}

// resolveStrategy maps a name to a Strategy, warning on w when the name is
// unknown and the service order is kept instead.
func resolveStrategy(w io.Writer, name string) ranking.Strategy {
	strategy, ok := ranking.ParseStrategy(name)
	if !ok {
		fmt.Fprintf(w, "warning: unknown strategy %q, keeping the service order\n", name)
	}
	return strategy
}
