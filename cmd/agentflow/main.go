// Package main provides the AgentFlow CLI: validate, lay out, and run
// flow definitions from the command line.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sipsyai/agentflow/internal/adapters/runtime/openai"
	"github.com/sipsyai/agentflow/internal/core/flow"
	"github.com/sipsyai/agentflow/internal/core/graph"
	"github.com/sipsyai/agentflow/internal/infrastructure/config"
	"github.com/sipsyai/agentflow/pkg/agentflow"
)

// Version information set during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "agentflow",
		Short:         "Run and inspect agent flow definitions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newVersionCmd(), newValidateCmd(), newLayoutCmd(), newRunCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "AgentFlow %s (commit: %s, built: %s)\n", Version, Commit, BuildTime)
		},
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <flow.json>",
		Short: "Validate a flow definition file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readFlow(args[0])
			if err != nil {
				return err
			}
			if err := f.Validate(); err != nil {
				return fmt.Errorf("flow %q is invalid: %w", f.ID, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "flow %q is valid (%d nodes)\n", f.ID, len(f.Nodes))
			return nil
		},
	}
}

func newLayoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layout <flow.json>",
		Short: "Compute editor positions for a flow's nodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readFlow(args[0])
			if err != nil {
				return err
			}
			nodes, edges := graph.ToGraph(f)
			placed := graph.AutoLayout(nodes, edges)
			return printJSON(cmd, map[string]any{"nodes": placed, "edges": edges})
		},
	}
}

func newRunCmd() *cobra.Command {
	var (
		inputJSON   string
		contentPath string
		stream      bool
	)
	cmd := &cobra.Command{
		Use:   "run <flow.json>",
		Short: "Execute a flow definition against the configured runtime",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readFlow(args[0])
			if err != nil {
				return err
			}

			var input map[string]any
			if inputJSON != "" {
				if err := json.Unmarshal([]byte(inputJSON), &input); err != nil {
					return fmt.Errorf("parsing --input: %w", err)
				}
			}

			cfg, err := config.Load(os.Getenv("AGENTFLOW_CONFIG"))
			if err != nil {
				return err
			}
			rt := agentflow.NewRuntime(newCLIRuntime(cfg.Runtime), agentflow.Options{
				DefaultModel: cfg.Runtime.DefaultModel,
			})
			if contentPath != "" {
				agents, skills, err := readContent(contentPath)
				if err != nil {
					return err
				}
				for _, a := range agents {
					rt.RegisterAgent(a)
				}
				for _, s := range skills {
					rt.RegisterSkill(s)
				}
			}

			ctx := cmd.Context()
			if !stream {
				result, err := rt.RunSimple(ctx, f, input)
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			}

			if err := rt.SaveFlow(ctx, f); err != nil {
				return err
			}
			events, err := rt.ExecuteStream(ctx, f.ID, input)
			if err != nil {
				return err
			}
			for ev := range events {
				if err := printJSON(cmd, ev); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&inputJSON, "input", "", "flow input as a JSON object")
	cmd.Flags().StringVar(&contentPath, "content", "", "YAML file with agent and skill definitions")
	cmd.Flags().BoolVar(&stream, "stream", false, "print status events while the flow runs")
	return cmd
}

func newCLIRuntime(rc config.RuntimeConfig) *openai.Runtime {
	opts := []openai.Option{openai.WithTemperature(float32(rc.Temperature))}
	if rc.BaseURL != "" {
		return openai.NewRuntimeWithBaseURL(rc.APIKey, rc.BaseURL, rc.DefaultModel, opts...)
	}
	return openai.NewRuntime(rc.APIKey, rc.DefaultModel, opts...)
}

func readFlow(path string) (*flow.Flow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading flow file: %w", err)
	}
	var f flow.Flow
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing flow file: %w", err)
	}
	return &f, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
