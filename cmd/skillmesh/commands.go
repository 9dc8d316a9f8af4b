package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/skillmesh/core"
)

func newSkillsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "skills",
		Short: "List registered skills",
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := a.agent.Registry().List()
			if len(infos) == 0 {
				dim.Println("no skills registered")
				return nil
			}
			for _, info := range infos {
				headline.Printf("%s ", info.Name)
				dim.Printf("v%s (%s)\n", info.Version, info.Author)
				fmt.Printf("  %s\n", info.Description)
			}
			return nil
		},
	}
}

func newSkillInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "skill-info <skill>",
		Short: "Show a skill's metadata and parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok := a.agent.Registry().Get(args[0])
			if !ok {
				return fmt.Errorf("skill %q not registered", args[0])
			}
			headline.Println(s.Name())
			printKV("description", s.Description())
			printKV("version", s.Version())
			printKV("author", s.Author())
			params := s.Parameters()
			if len(params) == 0 {
				return nil
			}
			fmt.Println()
			headline.Println("parameters")
			for name, spec := range params {
				required := ""
				if spec.Required {
					required = " (required)"
				}
				deflt := ""
				if spec.Default != nil {
					deflt = fmt.Sprintf(" default=%v", spec.Default)
				}
				fmt.Printf("  %-12s %s%s%s\n", name, spec.Type, required, deflt)
			}
			return nil
		},
	}
}

func newRunCmd(a *app) *cobra.Command {
	var (
		name       string
		paramPairs []string
		paramsJSON string
	)

	cmd := &cobra.Command{
		Use:   "run <skill>",
		Short: "Execute a single task against a skill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := buildParams(paramsJSON, paramPairs)
			if err != nil {
				return err
			}
			taskName := name
			if taskName == "" {
				taskName = args[0]
			}

			task, result, err := a.agent.Run(cmd.Context(), taskName, args[0], params)
			printTask(task)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "task name (defaults to the skill name)")
	cmd.Flags().StringArrayVarP(&paramPairs, "param", "p", nil, "parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&paramsJSON, "params", "", "parameters as a JSON object")
	return cmd
}

func newBatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "batch <file.json>",
		Short: "Execute a batch of tasks concurrently",
		Long: `Execute a batch of tasks defined in a JSON file of the form
[{"name": "...", "skill": "...", "parameters": {...}}, ...]. Tasks run
concurrently, bounded by engine.max_concurrent_tasks.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var specs []struct {
				Name       string         `json:"name"`
				Skill      string         `json:"skill"`
				Parameters map[string]any `json:"parameters"`
			}
			if err := json.Unmarshal(data, &specs); err != nil {
				return fmt.Errorf("parse batch file: %w", err)
			}

			tasks := make([]*core.Task, len(specs))
			for i, spec := range specs {
				tasks[i] = core.NewTask(spec.Name, spec.Skill, spec.Parameters)
			}

			results := a.agent.RunBatch(cmd.Context(), tasks)
			failed := 0
			for _, res := range results {
				printTask(res.Task)
				if res.Err != nil {
					failed++
					continue
				}
				if err := printJSON(res.Value); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d tasks failed", failed, len(results))
			}
			return nil
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show completed tasks, most recent last",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks := a.agent.Engine().History(limit)
			if len(tasks) == 0 {
				dim.Println("no task history")
				return nil
			}
			for _, task := range tasks {
				printTask(task)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "show only the n most recent tasks")
	return cmd
}

func newActiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "Show currently running tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks := a.agent.Engine().ActiveTasks()
			if len(tasks) == 0 {
				dim.Println("no active tasks")
				return nil
			}
			for _, task := range tasks {
				printTask(task)
			}
			return nil
		},
	}
}

func newCancelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <task-id>",
		Short: "Mark a pending or running task as cancelled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.agent.Engine().CancelTask(args[0]) {
				return fmt.Errorf("task %q not found or already finished", args[0])
			}
			success.Printf("task %s cancelled\n", args[0])
			return nil
		},
	}
}

// buildParams merges --params JSON with --param key=value pairs; pairs win.
// Pair values that parse as JSON keep their type, anything else stays a
// string.
func buildParams(paramsJSON string, pairs []string) (map[string]any, error) {
	params := map[string]any{}
	if paramsJSON != "" {
		if err := json.Unmarshal([]byte(paramsJSON), &params); err != nil {
			return nil, fmt.Errorf("parse --params: %w", err)
		}
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q, expected key=value", pair)
		}
		var parsed any
		if err := json.Unmarshal([]byte(value), &parsed); err != nil {
			parsed = value
		}
		params[key] = parsed
	}
	return params, nil
}

func printTask(task *core.Task) {
	status := dim
	switch task.Status {
	case core.StatusCompleted:
		status = success
	case core.StatusFailed, core.StatusCancelled:
		status = failure
	}
	status.Printf("[%s] ", task.Status)
	fmt.Printf("%s (%s) id=%s", task.Name, task.Skill, task.ID)
	if task.Error != "" {
		failure.Printf(" error=%s", task.Error)
	}
	fmt.Println()
}

func printJSON(v any) error {
	if v == nil {
		return nil
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
