package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helloworldx64/craftpacker/pkg/deps"
	"github.com/helloworldx64/craftpacker/pkg/pipeline"
)

// resolveOpts holds the command-line flags for the resolve command.
type resolveOpts struct {
	searchOpts
	graph    string // graph output path; format from extension (.svg, .dot)
	json     string // plan output path, re-readable with download --plan
	detailed bool   // version and file details in graph nodes
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var opts resolveOpts

	cmd := &cobra.Command{
		Use:   "resolve [name...]",
		Short: "Search mods and show everything a download would fetch",
		Long: `Search the named mods, resolve their required dependencies and print the
download plan without fetching anything.

Examples:
  craftpacker resolve Sodium Iris
  craftpacker resolve -f mods.txt --graph plan.svg --json plan.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.graph != "" {
				if _, err := pipeline.FormatFromPath(opts.graph); err != nil {
					return err
				}
			}
			names, err := opts.names(args)
			if err != nil {
				return err
			}
			return c.runResolve(cmd.Context(), names, &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.graph, "graph", "", "write the dependency graph (.svg or .dot)")
	cmd.Flags().StringVar(&opts.json, "json", "", "write the plan as JSON for download --plan")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show versions and files in graph nodes")

	return cmd
}

func (c *CLI) runResolve(ctx context.Context, names []string, opts *resolveOpts) error {
	lines := &lineSink{}
	runner, closeRunner, err := c.newRunner(ctx, newSwitchSink(lines))
	if err != nil {
		return err
	}
	defer closeRunner()

	if _, err := c.search(ctx, runner, names, opts.retry); err != nil {
		return err
	}
	c.printSearchReport(runner)
	printNewline()

	plan, err := c.resolveWithSpinner(ctx, runner, lines)
	if err != nil {
		return err
	}
	printPlan(plan, inSession(runner))

	if err := writePlanOutputs(plan, opts.graph, opts.json, opts.detailed); err != nil {
		return err
	}
	if opts.json != "" {
		printNewline()
		printNextStep("Download this plan", "craftpacker download --plan "+opts.json)
	}
	return nil
}

// resolveWithSpinner resolves every session match while a spinner shows the
// runner's status lines.
func (c *CLI) resolveWithSpinner(ctx context.Context, runner *pipeline.Runner, lines *lineSink) (*deps.Plan, error) {
	sp := newSpinnerWithContext(ctx, "Resolving dependencies...")
	lines.attach(sp)
	sp.Start()
	plan, err := runner.Resolve(ctx, nil, c.options())
	lines.detach()
	if err != nil {
		sp.StopWithError("Resolution failed")
		return nil, err
	}
	sp.StopWithSuccess(fmt.Sprintf("Resolved %d files", plan.Len()))
	return plan, nil
}

// printPlan prints the plan table, its counts and any unresolved
// dependencies. selected tells user-chosen mods from pulled-in ones.
func printPlan(plan *deps.Plan, selected func(projectID string) bool) {
	roots := 0
	for _, p := range plan.Packages {
		if selected(p.ProjectID) {
			roots++
		}
	}
	if plan.Len() > 0 {
		fmt.Fprintln(stdout, renderPlan(plan, selected))
	}
	printPlanStats(plan, roots)
	for _, g := range plan.Gaps {
		ref := g.ProjectID
		if ref == "" {
			ref = "version " + g.VersionID
		}
		printWarning("%s requires %s, which has no compatible file", g.FromName, ref)
	}
}

// inSession reports whether a project was matched by name in the session.
func inSession(runner *pipeline.Runner) func(string) bool {
	return func(id string) bool {
		_, ok := runner.Session.KeyForProject(id)
		return ok
	}
}

// planRoots reports whether a project has no dependents in the plan. It
// stands in for the session when a plan is read from disk.
func planRoots(plan *deps.Plan) func(string) bool {
	required := make(map[string]bool, len(plan.Edges))
	for _, e := range plan.Edges {
		required[e.To] = true
	}
	return func(id string) bool { return !required[id] }
}

// writePlanOutputs renders the requested plan exports to disk.
func writePlanOutputs(plan *deps.Plan, graphPath, jsonPath string, detailed bool) error {
	outputs := map[string]string{} // format -> path
	if graphPath != "" {
		f, err := pipeline.FormatFromPath(graphPath)
		if err != nil {
			return err
		}
		outputs[f] = graphPath
	}
	if jsonPath != "" {
		outputs[pipeline.FormatJSON] = jsonPath
	}
	if len(outputs) == 0 {
		return nil
	}

	formats := make([]string, 0, len(outputs))
	for f := range outputs {
		formats = append(formats, f)
	}
	rendered, err := pipeline.Render(plan, formats, detailed)
	if err != nil {
		return err
	}

	printNewline()
	printSuccess("Wrote plan outputs")
	for _, f := range []string{pipeline.FormatSVG, pipeline.FormatDOT, pipeline.FormatJSON} {
		path, ok := outputs[f]
		if !ok {
			continue
		}
		if err := os.WriteFile(path, rendered[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}
