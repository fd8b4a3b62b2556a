package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	perrors "github.com/helloworldx64/craftpacker/pkg/errors"
	pkgio "github.com/helloworldx64/craftpacker/pkg/io"
	"github.com/helloworldx64/craftpacker/pkg/pipeline"
)

// downloadOpts holds the command-line flags for the download command.
type downloadOpts struct {
	searchOpts
	selectMods bool   // choose matches interactively instead of taking all
	plan       string // download a plan written by resolve --json
}

// errDownloadsFailed is returned when at least one file could not be fetched.
type errDownloadsFailed struct{ failed, total int }

func (e errDownloadsFailed) Error() string {
	return fmt.Sprintf("%d of %d downloads failed", e.failed, e.total)
}

// downloadCommand creates the download command.
func (c *CLI) downloadCommand() *cobra.Command {
	var opts downloadOpts

	cmd := &cobra.Command{
		Use:   "download [name...]",
		Short: "Search mods and download them with their required dependencies",
		Long: `Search the named mods, resolve their required dependencies and download
every file into the destination folder. Each project is fetched once even
when several mods require it.

Examples:
  craftpacker download Sodium Lithium -d ./mods
  craftpacker download -f mods.txt --select
  craftpacker download --plan plan.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.plan != "" {
				if len(args) > 0 || opts.file != "" || opts.selectMods {
					return perrors.New(perrors.ErrCodeInvalidInput, "--plan cannot be combined with names, --file or --select")
				}
				return c.runDownloadPlan(cmd.Context(), opts.plan)
			}
			names, err := opts.names(args)
			if err != nil {
				return err
			}
			return c.runDownload(cmd.Context(), names, &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.selectMods, "select", false, "pick which found mods to download")
	cmd.Flags().StringVar(&opts.plan, "plan", "", "download a plan written by resolve --json")

	return cmd
}

func (c *CLI) runDownload(ctx context.Context, names []string, opts *downloadOpts) error {
	sink := newSwitchSink(&lineSink{})
	runner, closeRunner, err := c.newRunner(ctx, sink)
	if err != nil {
		return err
	}
	defer closeRunner()

	if _, err := c.search(ctx, runner, names, opts.retry); err != nil {
		return err
	}
	c.printSearchReport(runner)
	if runner.Session.Len() == 0 {
		return fmt.Errorf("%w: none of the mods were found", pipeline.ErrNothingSelected)
	}

	var keys []string // nil downloads everything found
	if opts.selectMods {
		keys, err = pickResults(runner.Session.Results())
		if err != nil {
			return err
		}
	}

	printNewline()
	return c.transfer(sink, func(dopts pipeline.Options) (*pipeline.DownloadResult, error) {
		return runner.Download(ctx, keys, dopts)
	})
}

func (c *CLI) runDownloadPlan(ctx context.Context, path string) error {
	plan, err := pkgio.ImportPlan(path)
	if err != nil {
		return err
	}
	sink := newSwitchSink(&lineSink{})
	runner, closeRunner, err := c.newRunner(ctx, sink)
	if err != nil {
		return err
	}
	defer closeRunner()

	printInfo("Loaded plan with %d files from %s", plan.Len(), path)
	if plan.Len() > 0 {
		fmt.Fprintln(stdout, renderPlan(plan, planRoots(plan)))
	}
	printNewline()
	return c.transfer(sink, func(dopts pipeline.Options) (*pipeline.DownloadResult, error) {
		return runner.DownloadPlan(ctx, plan, dopts)
	})
}

// transfer runs fetch with progress bars behind the runner's sink and
// prints the outcome.
func (c *CLI) transfer(sink *switchSink, fetch func(pipeline.Options) (*pipeline.DownloadResult, error)) error {
	opts := c.options()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	sw := newStopwatch(c.Logger)
	bars := newTransferSink(os.Stderr)
	prev := sink.Set(bars)
	bars.Start()
	res, err := fetch(opts)
	bars.Stop()
	sink.Set(prev)
	if err != nil {
		return err
	}

	c.printDownloadReport(res, opts.Destination)
	sw.done("download finished", "batch", res.Report.BatchID, "files", len(res.Report.Completed), "bytes", res.Report.Bytes)
	if !res.Report.OK() {
		return errDownloadsFailed{failed: len(res.Report.Failed), total: res.Plan.Len()}
	}
	return nil
}

func (c *CLI) printDownloadReport(res *pipeline.DownloadResult, dest string) {
	report := res.Report
	if res.Plan.Len() == 0 {
		printInfo("No new mods or dependencies to download.")
		return
	}
	printNewline()
	if len(report.Completed) > 0 {
		printSuccess("Downloaded %d files", len(report.Completed))
		printKeyValue("Destination", dest)
	}
	if len(report.Skipped) > 0 {
		printDetail("%d duplicates skipped", len(report.Skipped))
	}
	if len(report.Failed) > 0 {
		keys := make([]string, 0, len(report.Failed))
		for k := range report.Failed {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			printError("%s: %s", k, report.Failed[k])
		}
	}
	for _, g := range res.Plan.Gaps {
		printWarning("%s requires a dependency with no compatible file (%s)", g.FromName, g.ProjectID)
	}
}
