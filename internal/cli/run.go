package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/eventgraph/pkg/eventgraph"
	"github.com/randalmurphal/eventgraph/pkg/eventgraph/actions"
	"github.com/randalmurphal/eventgraph/pkg/eventgraph/config"
	"github.com/randalmurphal/eventgraph/pkg/eventgraph/history"
)

const shutdownTimeout = 5 * time.Second

// RunOptions holds flags for the run command.
type RunOptions struct {
	Params       []string
	Step         time.Duration
	MaxSteps     int
	TimeScale    float64
	DB           string
	OTLPEndpoint string
	Realtime     bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Run a graph definition",
		Long: `Bake a graph definition and run it to completion.

The scheduler is stepped with a fixed frame delta until the run completes,
aborts, or reaches the step limit. With --realtime the frames follow the
wall clock instead. Host effects named by the definition (fade and
configure targets, blocks) are bound to loggers.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runGraph(ctx, rootOpts, opts, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	env := rootOpts.Env
	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "override a graph parameter (name=value, repeatable)")
	cmd.Flags().DurationVar(&opts.Step, "step", env.Step, "frame delta")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", env.MaxSteps, "abort the run after this many frames")
	cmd.Flags().Float64Var(&opts.TimeScale, "time-scale", env.TimeScale, "scheduler time scale")
	cmd.Flags().StringVar(&opts.DB, "db", env.DB, "record the run in this SQLite history database")
	cmd.Flags().StringVar(&opts.OTLPEndpoint, "otlp-endpoint", env.OTLPEndpoint, "export run spans to this OTLP/HTTP endpoint")
	cmd.Flags().BoolVar(&opts.Realtime, "realtime", false, "step on a wall-clock ticker")

	return cmd
}

// runResult summarizes one run for output.
type runResult struct {
	Graph  string
	RunID  string
	State  eventgraph.State
	Reason string
	Nodes  int
	Steps  int
	Time   time.Duration
}

func runGraph(ctx context.Context, rootOpts *RootOptions, opts *RunOptions, path string, out, errOut io.Writer) error {
	if opts.Step <= 0 {
		return NewExitError(ExitCommandError, "--step must be positive")
	}

	def, err := config.LoadDefinition(path)
	if err != nil {
		return WrapExitError(ExitFailure, "load definition", err)
	}

	logger := rootOpts.newLogger(errOut)
	bindings := actions.NewBindings()
	graph, err := actions.Build(def, nil, bindings)
	if err != nil {
		return WrapExitError(ExitFailure, "build graph", err)
	}

	overrides, err := parseOverrides(graph, opts.Params)
	if err != nil {
		return WrapExitError(ExitCommandError, "parse params", err)
	}
	bindConsole(bindings, def, overrides.Values(), logger)

	procOpts := []eventgraph.ProcessorOption{
		eventgraph.WithRuntime(eventgraph.NewRuntime()),
		eventgraph.WithLogger(logger),
	}

	if opts.DB != "" {
		store, err := history.NewSQLiteStore(opts.DB)
		if err != nil {
			return WrapExitError(ExitCommandError, "open history", err)
		}
		defer store.Close()
		procOpts = append(procOpts, eventgraph.WithHistory(store))
	}

	if opts.OTLPEndpoint != "" {
		shutdown, err := setupTracing(ctx, opts.OTLPEndpoint)
		if err != nil {
			return WrapExitError(ExitCommandError, "setup tracing", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.Warn("tracer shutdown failed", "error", err)
			}
		}()
		procOpts = append(procOpts, eventgraph.WithTracing(true))
	}

	sched := eventgraph.NewScheduler()
	sched.SetTimeScale(opts.TimeScale)
	proc := eventgraph.NewProcessor(graph, sched, procOpts...)
	if err := proc.BakeWithOverrides(overrides); err != nil {
		return WrapExitError(ExitFailure, "bake graph", err)
	}

	if err := proc.Run(ctx); err != nil {
		return WrapExitError(ExitCommandError, "start run", err)
	}

	if opts.Realtime {
		stepRealtime(ctx, proc, sched, opts.Step)
	} else {
		stepFixed(ctx, proc, sched, opts.Step, opts.MaxSteps)
	}

	res := runResult{
		Graph:  graph.Name(),
		RunID:  proc.RunID(),
		State:  proc.State(),
		Reason: proc.AbortReason(),
		Nodes:  proc.NodesInvoked(),
		Steps:  sched.Steps(),
		Time:   sched.Now(),
	}
	printResult(out, res)

	if res.State == eventgraph.StateAborted {
		return NewExitError(ExitFailure, "run aborted: "+res.Reason)
	}
	return nil
}

// stepFixed steps sched with a fixed delta until the run ends.
func stepFixed(ctx context.Context, proc *eventgraph.Processor, sched *eventgraph.Scheduler, step time.Duration, maxSteps int) {
	for n := 0; proc.State() == eventgraph.StateRunning; n++ {
		if ctx.Err() != nil {
			proc.Abort("interrupted", nil)
			return
		}
		if maxSteps > 0 && n >= maxSteps {
			proc.Abort(fmt.Sprintf("step limit %d reached", maxSteps), nil)
			return
		}
		sched.Step(step)
	}
}

// stepRealtime steps sched from a wall-clock ticker until the run ends.
func stepRealtime(ctx context.Context, proc *eventgraph.Processor, sched *eventgraph.Scheduler, interval time.Duration) {
	if proc.State() != eventgraph.StateRunning {
		return
	}
	tickCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	block := proc.Block()
	block.PlugCallbacks(nil, cancel)
	defer block.UnplugCallbacks()

	_ = sched.Run(tickCtx, interval)
	if proc.State() == eventgraph.StateRunning {
		proc.Abort("interrupted", nil)
	}
}

func printResult(w io.Writer, res runResult) {
	fmt.Fprintf(w, "graph %s %s\n", res.Graph, res.State)
	fmt.Fprintf(w, "  run:    %s\n", res.RunID)
	if res.Reason != "" {
		fmt.Fprintf(w, "  reason: %s\n", res.Reason)
	}
	fmt.Fprintf(w, "  nodes:  %d\n", res.Nodes)
	fmt.Fprintf(w, "  steps:  %d\n", res.Steps)
	fmt.Fprintf(w, "  time:   %s\n", res.Time)
}

// parseOverrides turns name=value pairs into parameter overrides. Values
// are decoded as YAML scalars, so numbers and booleans keep their type.
func parseOverrides(graph *eventgraph.Graph, pairs []string) (*eventgraph.Overrides, error) {
	overrides := eventgraph.NewOverrides(graph.Parameters())
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("param %q: want name=value", pair)
		}
		var value any = raw
		var decoded any
		if err := yaml.Unmarshal([]byte(raw), &decoded); err == nil && decoded != nil {
			value = decoded
		}
		if err := overrides.Set(name, value); err != nil {
			return nil, err
		}
	}
	return overrides, nil
}

// bindConsole binds every fade target, configure target and block the
// definition names to a logger, so any definition can run from the
// command line. Names are resolved against vars, the parameter values
// the run is baked with.
func bindConsole(b *actions.Bindings, def config.Definition, vars map[string]any, logger *slog.Logger) {
	for _, n := range def.Nodes {
		params := config.New(n.Params).WithVars(vars)
		switch n.Kind {
		case "fade":
			name := params.String("target", "")
			b.BindLevel(name, actions.LevelFunc(func(v float64) {
				logger.Debug("level set", "target", name, "value", v)
			}))
		case "configure":
			name := params.String("target", "")
			b.BindTarget(name, actions.TargetFunc(func(values map[string]any) error {
				logger.Info("target configured", "target", name, "values", values)
				return nil
			}))
		case "block":
			name := params.String("binding", "")
			b.BindBlock(name, func(config.Config) *eventgraph.Block {
				logger.Info("block skipped", "binding", name)
				return nil
			})
		}
	}
}
