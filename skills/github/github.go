// Package github provides the repository management and automation skill:
// repository analysis, issue and pull request management against the GitHub
// API. Authentication delegates to the context credential lookup (session
// context, then global context, then the GITHUB_TOKEN environment variable).
package github

import (
	"context"
	"fmt"

	gogithub "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"github.com/hupe1980/skillmesh/core"
	"github.com/hupe1980/skillmesh/skill"
)

// Name under which the skill registers.
const Name = "github_agent"

// credentialKey is the context key consulted before the environment.
const credentialKey = "github_token"

// Skill implements core.Skill for GitHub automation.
type Skill struct {
	// baseURL overrides the API endpoint, for tests against a stub server.
	baseURL string
}

// Options configures the GitHub skill.
type Options struct {
	// BaseURL overrides the GitHub API endpoint (enterprise or test stubs).
	BaseURL string
}

// New constructs the GitHub skill.
func New(optFns ...func(o *Options)) *Skill {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Skill{baseURL: opts.BaseURL}
}

// Name implements core.Skill.
func (s *Skill) Name() string { return Name }

// Description implements core.Skill.
func (s *Skill) Description() string {
	return "GitHub repository management and automation capabilities"
}

// Version implements core.Skill.
func (s *Skill) Version() string { return "0.1.0" }

// Author implements core.Skill.
func (s *Skill) Author() string { return "skillmesh" }

// Parameters implements core.Skill.
func (s *Skill) Parameters() map[string]core.ParameterSpec {
	return map[string]core.ParameterSpec{
		"action": {Type: "string", Required: true},
		"repo":   {Type: "string"},
		"token":  {Type: "string"},
		"state":  {Type: "string", Default: "open"},
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

// client builds an authenticated API client. Token precedence: explicit
// parameter, then context credential lookup, then environment.
func (e *executor) client(ctx context.Context, params map[string]any) (*gogithub.Client, error) {
	token, _ := params["token"].(string)
	if token == "" && e.sc != nil {
		token, _ = e.sc.Credential(credentialKey, "GITHUB_TOKEN")
	}
	if token == "" {
		return nil, skill.NewSkillError(Name, "no GitHub token found", skill.CodeValidation)
	}
	tc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	client := gogithub.NewClient(tc)
	if e.skill.baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(e.skill.baseURL, e.skill.baseURL)
		if err != nil {
			return nil, fmt.Errorf("configure github endpoint: %w", err)
		}
	}
	return client, nil
}

// Execute routes the GitHub actions. Unknown actions and missing
// repositories are reported in-band; API failures are reported in-band as
// well, mirroring how the shell skill surfaces operational errors.
func (e *executor) Execute(ctx context.Context, params map[string]any) (any, error) {
	params, err := skill.ApplyParams(Name, e.skill.Parameters(), params)
	if err != nil {
		return nil, err
	}

	client, err := e.client(ctx, params)
	if err != nil {
		return nil, err
	}

	repo, _ := params["repo"].(string)
	owner, name, ok := splitRepo(repo)
	if !ok {
		return map[string]any{"error": "no repository specified (expected owner/name)"}, nil
	}

	action, _ := params["action"].(string)
	switch action {
	case "analyze":
		return analyzeRepository(ctx, client, owner, name)
	case "list_issues":
		return listIssues(ctx, client, owner, name, stateOf(params))
	case "create_issue":
		return createIssue(ctx, client, owner, name, params)
	case "close_issues":
		return closeIssues(ctx, client, owner, name, params)
	case "list_prs":
		return listPullRequests(ctx, client, owner, name, stateOf(params))
	case "get_stats":
		return repositoryStats(ctx, client, owner, name)
	default:
		return map[string]any{"error": fmt.Sprintf("unknown action: %s", action)}, nil
	}
}

func splitRepo(repo string) (owner, name string, ok bool) {
	for i := 0; i < len(repo); i++ {
		if repo[i] == '/' {
			owner, name = repo[:i], repo[i+1:]
			return owner, name, owner != "" && name != ""
		}
	}
	return "", "", false
}

func stateOf(params map[string]any) string {
	state, _ := params["state"].(string)
	if state == "" {
		state = "open"
	}
	return state
}
