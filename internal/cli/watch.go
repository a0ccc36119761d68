package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// defaultDebounce groups the bursts of events editors emit on save.
const defaultDebounce = 150 * time.Millisecond

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		start    string
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [tour.json|tour.yaml]",
		Short: "Re-analyze a tour every time the file changes",
		Long: `Print the analysis summary of a tour and print it again every time the
document is saved. Documents that cannot be read are reported and watching
continues. Stop with Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), cmd.OutOrStdout(), args[0], start, debounce)
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "start scene id (overrides the document setting)")
	cmd.Flags().DurationVar(&debounce, "debounce", defaultDebounce, "wait this long after a change before re-analyzing")
	return cmd
}

// runWatch analyzes path once and again after every change until ctx is
// done. The parent directory is watched so that editors replacing the file
// on save are followed.
func (c *CLI) runWatch(ctx context.Context, out io.Writer, path, start string, debounce time.Duration) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	analyze := func() {
		res, err := runner.AnalyzeFile(ctx, path, pipelineOptions(c, start))
		if err != nil {
			logger.Warn("analysis failed", "path", path, "error", err)
			return
		}
		fmt.Fprintf(out, "%s\n%s\n", StyleDim.Render("updated "+time.Now().Format("15:04:05")), renderSummary(res.Report))
	}
	analyze()

	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if isDocumentChange(ev, target) {
				logger.Debug("document changed", "path", ev.Name, "op", ev.Op.String())
				timer = time.After(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		case <-timer:
			timer = nil
			analyze()
		}
	}
}

// isDocumentChange reports whether ev wrote or recreated the watched file.
// Removes and renames are followed by a Create when an editor saves.
func isDocumentChange(ev fsnotify.Event, target string) bool {
	if filepath.Clean(ev.Name) != target {
		return false
	}
	return ev.Op&(fsnotify.Write|fsnotify.Create) != 0
}
