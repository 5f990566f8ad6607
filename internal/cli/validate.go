package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/eventgraph/pkg/eventgraph"
	"github.com/randalmurphal/eventgraph/pkg/eventgraph/actions"
	"github.com/randalmurphal/eventgraph/pkg/eventgraph/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a graph definition without running it",
		Long: `Load a graph definition, build it, and bake it.

Reports format errors, unknown kinds, bad params and structural problems
(missing start or done node, dangling edges, done unreachable).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	return cmd
}

func runValidate(rootOpts *RootOptions, path string, out, errOut io.Writer) error {
	def, err := config.LoadDefinition(path)
	if err != nil {
		return WrapExitError(ExitFailure, "invalid definition", err)
	}

	logger := rootOpts.newLogger(errOut)
	bindings := actions.NewBindings()
	graph, err := actions.Build(def, nil, bindings)
	if err != nil {
		return WrapExitError(ExitFailure, "invalid definition", err)
	}
	bindConsole(bindings, def, graph.Parameters().Snapshot(), logger)

	proc := eventgraph.NewProcessor(graph, eventgraph.NewScheduler(),
		eventgraph.WithRuntime(eventgraph.NewRuntime()),
		eventgraph.WithLogger(logger),
	)
	if err := proc.Bake(); err != nil {
		return WrapExitError(ExitFailure, "invalid definition", err)
	}

	fmt.Fprintf(out, "graph %s is valid: %d nodes, %d parameters\n",
		graph.Name(), len(graph.NodeIDs()), len(graph.Parameters().Names()))
	return nil
}
