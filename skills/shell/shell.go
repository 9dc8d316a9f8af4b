// Package shell provides the local shell execution skill: controlled
// command execution, file system inspection, process listing and system
// information gathering.
package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/hupe1980/skillmesh/core"
	"github.com/hupe1980/skillmesh/skill"
)

// Name under which the skill registers.
const Name = "local_shell"

// defaultTimeout bounds a command run when the caller passes none.
const defaultTimeout = 30 * time.Second

// Options configures the shell skill's safety rules.
type Options struct {
	// AllowedCommands are the accepted command prefixes. A command whose
	// first word does not match any prefix is refused unless the
	// "shell_unrestricted" flag is set in global context.
	AllowedCommands []string
	// BlockedPatterns refuse a command outright when contained in it,
	// regardless of the allow list.
	BlockedPatterns []string
	// Shell overrides the shell binary; default $SHELL or /bin/sh.
	Shell string
}

// Skill implements core.Skill for local shell automation.
type Skill struct {
	opts Options
}

// New constructs the shell skill with the default safety rules.
func New(optFns ...func(o *Options)) *Skill {
	opts := Options{
		AllowedCommands: []string{
			"ls", "pwd", "echo", "cat", "grep", "find", "wc", "head", "tail",
			"sort", "git", "go", "python", "node", "npm", "curl", "ps", "df",
			"du", "whoami", "date", "which", "sleep",
		},
		BlockedPatterns: []string{
			"rm -rf", "mkfs", "fdisk", "sudo", "su ", "chmod 777", ":(){",
		},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Shell == "" {
		opts.Shell = os.Getenv("SHELL")
		if opts.Shell == "" {
			opts.Shell = "/bin/sh"
		}
	}
	return &Skill{opts: opts}
}

// Name implements core.Skill.
func (s *Skill) Name() string { return Name }

// Description implements core.Skill.
func (s *Skill) Description() string {
	return "Local shell command execution and system automation"
}

// Version implements core.Skill.
func (s *Skill) Version() string { return "0.1.0" }

// Author implements core.Skill.
func (s *Skill) Author() string { return "skillmesh" }

// Parameters implements core.Skill.
func (s *Skill) Parameters() map[string]core.ParameterSpec {
	return map[string]core.ParameterSpec{
		"action":    {Type: "string", Required: true},
		"command":   {Type: "string"},
		"commands":  {Type: "array"},
		"timeout":   {Type: "number", Default: defaultTimeout.Seconds()},
		"cwd":       {Type: "string"},
		"path":      {Type: "string"},
		"operation": {Type: "string"},
		"lines":     {Type: "number"},
		"pattern":   {Type: "string"},
		"recursive": {Type: "boolean"},
	}
}

// Bind implements core.Skill.
func (s *Skill) Bind(sc core.SkillContext) core.Executor {
	return &executor{skill: s, sc: sc}
}

type executor struct {
	skill *Skill
	sc    core.SkillContext
}

// Execute routes to the action handlers. Refused or unknown operations are
// reported in-band as {"error": ...} payloads, matching how callers consume
// shell results; only infrastructure failures (timeouts included) surface on
// the error channel.
func (e *executor) Execute(ctx context.Context, params map[string]any) (any, error) {
	params, err := skill.ApplyParams(Name, e.skill.Parameters(), params)
	if err != nil {
		return nil, err
	}
	action, _ := params["action"].(string)
	switch action {
	case "run":
		return e.runCommand(ctx, params)
	case "system_info":
		return systemInfo(ctx)
	case "list_processes":
		return listProcesses(ctx)
	case "file_operations":
		return e.fileOperations(params)
	case "check_command":
		return checkCommands(params)
	default:
		return map[string]any{"error": fmt.Sprintf("unknown action: %s", action)}, nil
	}
}

// allowed checks a command against the blocked patterns and the allow list.
// The "shell_unrestricted" global context flag bypasses the allow list but
// never the blocked patterns.
func (e *executor) allowed(command string) bool {
	lower := strings.ToLower(command)
	for _, pattern := range e.skill.opts.BlockedPatterns {
		if strings.Contains(lower, pattern) {
			return false
		}
	}
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return false
	}
	base := filepath.Base(fields[0])
	for _, prefix := range e.skill.opts.AllowedCommands {
		if strings.HasPrefix(base, prefix) {
			return true
		}
	}
	if e.sc != nil {
		if v, ok := e.sc.GetContext("shell_unrestricted", core.ScopeGlobal); ok {
			if unrestricted, ok := v.(bool); ok && unrestricted {
				return true
			}
		}
	}
	return false
}

func (e *executor) runCommand(ctx context.Context, params map[string]any) (any, error) {
	command, _ := params["command"].(string)
	if command == "" {
		return map[string]any{"error": "no command provided"}, nil
	}
	if !e.allowed(command) {
		return map[string]any{
			"error":            "command blocked by safety rules",
			"allowed_commands": e.skill.opts.AllowedCommands,
		}, nil
	}

	timeout := defaultTimeout
	if secs, ok := asFloat(params["timeout"]); ok && secs > 0 {
		timeout = time.Duration(secs * float64(time.Second))
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.skill.opts.Shell, "-c", command)
	if cwd, _ := params["cwd"].(string); cwd != "" {
		cmd.Dir = cwd
	}
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		// The process was killed on expiry; partial output is not promised.
		return nil, &skill.SkillError{
			Skill:   Name,
			Message: fmt.Sprintf("command timed out after %s", timeout),
			Code:    skill.CodeTimeout,
			Cause:   core.ErrTimeout,
		}
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return map[string]any{"error": fmt.Sprintf("command execution failed: %v", runErr)}, nil
		}
	}

	return map[string]any{
		"success":    exitCode == 0,
		"returncode": exitCode,
		"stdout":     stdout.String(),
		"stderr":     stderr.String(),
		"command":    command,
	}, nil
}

func checkCommands(params map[string]any) (any, error) {
	names, _ := params["commands"].([]any)
	results := make(map[string]any, len(names))
	for _, n := range names {
		name, ok := n.(string)
		if !ok {
			continue
		}
		path, err := exec.LookPath(name)
		results[name] = map[string]any{
			"available": err == nil,
			"path":      path,
		}
	}
	return map[string]any{"commands": results, "platform": runtime.GOOS}, nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// sortProcessRows orders process listings by CPU usage, busiest first.
func sortProcessRows(rows []map[string]any) {
	sort.Slice(rows, func(i, j int) bool {
		a, _ := rows[i]["cpu_percent"].(float64)
		b, _ := rows[j]["cpu_percent"].(float64)
		return a > b
	})
}
