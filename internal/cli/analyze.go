package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	pio "github.com/matzehuels/panotour/pkg/io"
	"github.com/matzehuels/panotour/pkg/pipeline"
)

type analyzeOpts struct {
	format   string
	output   string
	start    string
	layout   bool
	detailed bool
	noCache  bool
	refresh  bool
}

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var opts analyzeOpts

	cmd := &cobra.Command{
		Use:   "analyze [tour.json|tour.yaml]",
		Short: "Report structural problems and statistics of a tour",
		Long: `Analyze a panorama tour document.

The report lists records the loader had to reject, broken hotspot links,
scenes that cannot be reached from the start scene, dead ends, scenes with
no way back, and per-floor statistics.

Problems inside the tour do not fail the command. It exits non-zero only when
the document itself cannot be read.

Output formats:
  text  terminal summary (default)
  json  full report
  yaml  full report
  dot   Graphviz graph of the scenes, grouped by floor`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				opts.format = c.Config.Format
			}
			if !cmd.Flags().Changed("layout") {
				opts.layout = c.Config.Layout
			}
			if err := pipeline.ValidateFormat(opts.format); err != nil {
				return err
			}
			return c.runAnalyze(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", pipeline.DefaultFormat, "output format: text, json, yaml, dot")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&opts.start, "start", "", "start scene id (overrides the document setting)")
	cmd.Flags().BoolVar(&opts.layout, "layout", false, "attach Graphviz positions to the graph view")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include scene titles in DOT labels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached reports")

	return cmd
}

func (c *CLI) runAnalyze(ctx context.Context, stdout io.Writer, path string, opts analyzeOpts) error {
	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	var sp *spinner
	if opts.layout {
		sp = startSpinner(ctx, c.errOut, "Computing layout...")
	}

	res, err := runner.AnalyzeFile(ctx, path, pipeline.Options{
		Start:    opts.start,
		Layout:   opts.layout,
		Refresh:  opts.refresh,
		CacheTTL: c.Config.Cache.TTL.Std(),
		Logger:   c.Logger,
	})
	if err != nil {
		if sp != nil {
			sp.stop()
		}
		return err
	}
	if sp != nil {
		sp.succeed("Layout computed")
	}
	prog.done("analyzed", "scenes", res.Stats.SceneCount, "cached", res.CacheInfo.Hit)

	out, err := openOutput(opts.output, stdout)
	if err != nil {
		return err
	}
	if err := writeResult(out, res, opts); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if opts.output != "" {
		st := c.status()
		st.ok("Analysis complete")
		st.counts(res.Stats.SceneCount, res.Stats.EdgeCount, res.Stats.IssueCount, res.CacheInfo.Hit)
		st.file(opts.output)
		if opts.format != pipeline.FormatDOT {
			st.next("Graph", "panotour analyze -f dot "+path)
		}
	}
	return nil
}

func writeResult(w io.Writer, res *pipeline.Result, opts analyzeOpts) error {
	switch opts.format {
	case pipeline.FormatJSON:
		return res.Report.Write(w, pio.FormatJSON)
	case pipeline.FormatYAML:
		return res.Report.Write(w, pio.FormatYAML)
	case pipeline.FormatDOT:
		_, err := io.WriteString(w, res.DOT(opts.detailed))
		return err
	}
	_, err := io.WriteString(w, renderSummary(res.Report))
	return err
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns stdout for an empty path, otherwise it creates the file.
func openOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{stdout}, nil
	}
	return os.Create(path)
}
