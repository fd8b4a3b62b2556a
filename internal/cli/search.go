package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	perrors "github.com/helloworldx64/craftpacker/pkg/errors"
	"github.com/helloworldx64/craftpacker/pkg/pipeline"
	"github.com/helloworldx64/craftpacker/pkg/source/local"
)

// searchOpts holds the flags shared by every command that starts from a
// list of mod names.
type searchOpts struct {
	file  string // newline-delimited name list, "-" for stdin
	retry int    // extra passes over the unmatched names
}

func (o *searchOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.file, "file", "f", "", "read mod names from a file, one per line (- for stdin)")
	cmd.Flags().IntVar(&o.retry, "retry", 0, "search the names that were not found again, up to N times")
}

// names collects candidate names from args and --file, dropping
// duplicates. With neither, names are read from piped stdin.
func (o *searchOpts) names(args []string) ([]string, error) {
	var all []string
	all = append(all, args...)

	file := o.file
	if file == "" && len(args) == 0 && stdinPiped() {
		file = "-"
	}
	if file != "" {
		list, err := local.ReadListFile(file)
		if err != nil {
			return nil, err
		}
		all = append(all, list...)
	}

	seen := make(map[string]bool, len(all))
	out := all[:0]
	for _, n := range all {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "no mod names given (pass names, --file or pipe a list)")
	}
	return out, nil
}

func stdinPiped() bool {
	fi, err := os.Stdin.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice == 0
}

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var opts searchOpts

	cmd := &cobra.Command{
		Use:   "search [name...]",
		Short: "Find mods on Modrinth for a loader and game version",
		Long: `Find each named mod on Modrinth.

Every name is tried as a direct search, then without trailing digits, then
as a guessed project slug (name, name-fabric, name-forge).

Examples:
  craftpacker search Sodium Lithium "Xaero's Minimap"
  craftpacker search -f mods.txt -l forge -g 1.19.2
  craftpacker import ~/.minecraft/mods | craftpacker search --retry 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := opts.names(args)
			if err != nil {
				return err
			}
			sink := newSwitchSink(&lineSink{})
			runner, closeRunner, err := c.newRunner(cmd.Context(), sink)
			if err != nil {
				return err
			}
			defer closeRunner()

			if _, err := c.search(cmd.Context(), runner, names, opts.retry); err != nil {
				return err
			}
			c.printSearchReport(runner)
			if runner.Session.Len() > 0 {
				printNewline()
				printNextStep("Download them", "craftpacker download -f <list>")
			}
			return nil
		},
	}

	opts.register(cmd)
	return cmd
}

// search runs one search pass and up to retry passes over the names left
// unmatched.
func (c *CLI) search(ctx context.Context, runner *pipeline.Runner, names []string, retry int) (*pipeline.SearchResult, error) {
	sw := newStopwatch(c.Logger)
	opts := c.options()
	printInfo("Searching %d mods for %s %s", len(names), opts.Loader, opts.GameVersion)

	res, err := runner.Search(ctx, names, opts)
	if err != nil {
		return nil, err
	}
	for i := 0; i < retry && len(runner.Session.Unmatched()) > 0; i++ {
		printInfo("Retrying %d mods that were not found (%d/%d)", len(runner.Session.Unmatched()), i+1, retry)
		if _, err := runner.RetryUnmatched(ctx, opts); err != nil {
			if errors.Is(err, pipeline.ErrNothingSelected) {
				break
			}
			return nil, err
		}
	}
	sw.done("search finished", "found", runner.Session.Len(), "total", len(names))
	return res, nil
}

// printSearchReport prints the session's matches and what stayed unmatched.
func (c *CLI) printSearchReport(runner *pipeline.Runner) {
	results := runner.Session.Results()
	if len(results) > 0 {
		printNewline()
		fmt.Fprintln(stdout, renderResults(results))
	}
	unmatched := runner.Session.Unmatched()
	if len(unmatched) > 0 {
		printNewline()
		printWarning("%d mods were not found:", len(unmatched))
		for _, n := range unmatched {
			printDetail("%s", n)
		}
	}
}
