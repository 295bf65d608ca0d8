// Command agentcrew runs a crew of agents declared in a YAML file.
//
//	agentcrew -config crew.yaml
//	agentcrew -config crew.yaml -dot > crew.dot
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hupe1980/agentcrew/config"
	"github.com/hupe1980/agentcrew/crew"
	"github.com/hupe1980/agentcrew/logging"
	"github.com/hupe1980/agentcrew/model"
	"github.com/hupe1980/agentcrew/model/anthropic"
	"github.com/hupe1980/agentcrew/model/openai"
	"github.com/hupe1980/agentcrew/tool"
	"github.com/hupe1980/agentcrew/tool/builtin"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, nil); err != nil {
		slog.Error("agentcrew failed", "error", err)
		os.Exit(1)
	}
}

// run parses args, builds the crew and either prints its DOT graph or runs
// it. A nil llm selects the provider named in the configuration.
func run(ctx context.Context, args []string, stdout io.Writer, llm model.Model) error {
	fs := flag.NewFlagSet("agentcrew", flag.ContinueOnError)
	configPath := fs.String("config", "crew.yaml", "path to the crew definition")
	envFile := fs.String("env", ".env", "dotenv file loaded before the configuration")
	dot := fs.Bool("dot", false, "print the dependency graph in DOT format and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := config.LoadEnv(*envFile); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	logger := logging.NewSlogLogger(level, cfg.Log.Format).WithComponent("agentcrew")

	if llm == nil {
		if llm, err = newModel(cfg); err != nil {
			return err
		}
	}

	c, err := buildCrew(cfg, llm, logger)
	if err != nil {
		return err
	}

	if *dot {
		return c.WriteDOT(stdout)
	}

	results, err := c.Run(ctx)
	for _, r := range results {
		fmt.Fprintf(stdout, "=== %s (%s) ===\n%s\n\n", r.Agent, r.Duration.Round(time.Millisecond), r.Output)
	}

	return err
}

// newModel creates the completion client for the configured provider.
func newModel(cfg *config.Config) (model.Model, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s is required for provider %s", cfg.APIKeyEnv(), cfg.Provider)
	}

	switch cfg.Provider {
	case config.ProviderGroq:
		return openai.NewGroqModel(cfg.APIKey, func(o *openai.Options) {
			if cfg.BaseURL != "" {
				o.BaseURL = cfg.BaseURL
			}
		}), nil
	case config.ProviderOpenAI:
		return openai.NewModel(func(o *openai.Options) {
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.BaseURL
		}), nil
	case config.ProviderAnthropic:
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.BaseURL
			o.Model = anthropicsdk.Model(cfg.Model)
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// buildCrew declares every configured agent inside an active crew scope and
// links the declared dependencies.
func buildCrew(cfg *config.Config, llm model.Model, logger logging.Logger) (*crew.Crew, error) {
	c := crew.New(func(o *crew.Options) {
		o.Logger = logger
	})

	err := c.Scope(func(c *crew.Crew) error {
		byName := make(map[string]*crew.Agent, len(cfg.Agents))

		for _, ac := range cfg.Agents {
			tools, err := resolveTools(ac.Tools)
			if err != nil {
				return fmt.Errorf("agent %s: %w", ac.Name, err)
			}

			modelID := ac.Model
			if modelID == "" {
				modelID = cfg.Model
			}

			a, err := crew.NewAgent(c, ac.Name, llm, func(o *crew.AgentOptions) {
				o.Backstory = ac.Backstory
				o.TaskDescription = ac.Task
				o.ExpectedOutput = ac.ExpectedOutput
				o.Tools = tools
				o.Model = modelID
				o.MaxIterations = cfg.MaxIterations
				o.CompletionTimeout = cfg.CompletionTimeout
			})
			if err != nil {
				return err
			}

			byName[ac.Name] = a
		}

		for _, ac := range cfg.Agents {
			for _, dep := range ac.DependsOn {
				if err := byName[ac.Name].AddDependency(byName[dep]); err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return c, nil
}

func resolveTools(names []string) ([]tool.Tool, error) {
	tools := make([]tool.Tool, 0, len(names))
	for _, name := range names {
		t, ok := builtin.ByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown tool %q (available: %s)", name, strings.Join(builtin.Names(), ", "))
		}
		tools = append(tools, t)
	}
	return tools, nil
}
