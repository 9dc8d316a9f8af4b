// Command skillmesh is the interactive front-end for the agent: it wires
// storage, skills and the task engine from configuration and exposes task
// execution, history and session management as subcommands.
package main

import (
	"fmt"
	"os"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hupe1980/skillmesh"
	"github.com/hupe1980/skillmesh/config"
	"github.com/hupe1980/skillmesh/logging"
	"github.com/hupe1980/skillmesh/model"
	"github.com/hupe1980/skillmesh/model/anthropic"
	"github.com/hupe1980/skillmesh/model/openai"
	"github.com/hupe1980/skillmesh/skills/chat"
	"github.com/hupe1980/skillmesh/skills/github"
	"github.com/hupe1980/skillmesh/skills/shell"
)

var (
	headline = color.New(color.FgCyan, color.Bold)
	success  = color.New(color.FgGreen)
	failure  = color.New(color.FgRed)
	dim      = color.New(color.Faint)
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		failure.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	cfg   config.Config
	agent *skillmesh.Agent
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath string
		a       app
	)

	cmd := &cobra.Command{
		Use:           "skillmesh",
		Short:         "Skill-based task execution agent",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Secrets like GITHUB_TOKEN commonly live in a local .env.
			_ = godotenv.Load()

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			logger := logging.New(&logging.Config{
				Level:  logging.ParseLevel(cfg.Logging.Level),
				Format: cfg.Logging.Format,
				Output: os.Stderr,
			})

			agent, err := skillmesh.NewFromConfig(cfg, logger)
			if err != nil {
				return err
			}
			registerSkills(agent, cfg)

			a = app{cfg: cfg, agent: agent}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default: skillmesh.yaml, $HOME/.config/skillmesh)")

	cmd.AddCommand(
		newSkillsCmd(&a),
		newSkillInfoCmd(&a),
		newRunCmd(&a),
		newBatchCmd(&a),
		newHistoryCmd(&a),
		newActiveCmd(&a),
		newCancelCmd(&a),
		newSessionCmd(&a),
	)
	return cmd
}

// registerSkills wires the built-in skills. The chat skill is only available
// when a model provider is configured.
func registerSkills(agent *skillmesh.Agent, cfg config.Config) {
	agent.RegisterSkill(shell.New())
	agent.RegisterSkill(github.New())
	if m := buildModel(cfg.Model); m != nil {
		agent.RegisterSkill(chat.New(m))
	}
}

func buildModel(mc config.ModelConfig) model.Model {
	switch mc.Provider {
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if mc.Name != "" {
				o.Model = anthropicsdk.Model(mc.Name)
			}
		})
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			if mc.Name != "" {
				o.Model = mc.Name
			}
		})
	case "mock":
		return model.NewMock("mock")
	default:
		return nil
	}
}

func printKV(key string, value any) {
	dim.Printf("%-14s", key)
	fmt.Println(value)
}
