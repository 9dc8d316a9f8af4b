package github

import (
	"context"
	"fmt"

	gogithub "github.com/google/go-github/v68/github"
)

const listPageSize = 30

func analyzeRepository(ctx context.Context, client *gogithub.Client, owner, name string) (any, error) {
	repo, _, err := client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return map[string]any{"error": fmt.Sprintf("get repository: %v", err)}, nil
	}

	langs, _, err := client.Repositories.ListLanguages(ctx, owner, name)
	if err != nil {
		langs = map[string]int{}
	}

	topics := repo.Topics
	if topics == nil {
		topics = []string{}
	}

	return map[string]any{
		"name":        repo.GetFullName(),
		"description": repo.GetDescription(),
		"language":    repo.GetLanguage(),
		"languages":   langs,
		"topics":      topics,
		"stars":       repo.GetStargazersCount(),
		"forks":       repo.GetForksCount(),
		"open_issues": repo.GetOpenIssuesCount(),
		"private":     repo.GetPrivate(),
		"archived":    repo.GetArchived(),
	}, nil
}

func listIssues(ctx context.Context, client *gogithub.Client, owner, name, state string) (any, error) {
	opts := &gogithub.IssueListByRepoOptions{
		State:       state,
		ListOptions: gogithub.ListOptions{PerPage: listPageSize},
	}
	issues, _, err := client.Issues.ListByRepo(ctx, owner, name, opts)
	if err != nil {
		return map[string]any{"error": fmt.Sprintf("list issues: %v", err)}, nil
	}

	rows := make([]map[string]any, 0, len(issues))
	for _, issue := range issues {
		// Pull requests surface through the issues API as well; skip them.
		if issue.IsPullRequest() {
			continue
		}
		rows = append(rows, issueRow(issue))
	}

	return map[string]any{
		"repo":   owner + "/" + name,
		"state":  state,
		"count":  len(rows),
		"issues": rows,
	}, nil
}

func createIssue(ctx context.Context, client *gogithub.Client, owner, name string, params map[string]any) (any, error) {
	title, _ := params["title"].(string)
	if title == "" {
		return map[string]any{"error": "create_issue requires a title"}, nil
	}
	body, _ := params["body"].(string)

	req := &gogithub.IssueRequest{Title: &title}
	if body != "" {
		req.Body = &body
	}
	if labels := stringSlice(params["labels"]); len(labels) > 0 {
		req.Labels = &labels
	}

	issue, _, err := client.Issues.Create(ctx, owner, name, req)
	if err != nil {
		return map[string]any{"error": fmt.Sprintf("create issue: %v", err)}, nil
	}

	return map[string]any{
		"created": true,
		"number":  issue.GetNumber(),
		"title":   issue.GetTitle(),
		"url":     issue.GetHTMLURL(),
	}, nil
}

func closeIssues(ctx context.Context, client *gogithub.Client, owner, name string, params map[string]any) (any, error) {
	numbers := intSlice(params["numbers"])
	if n, ok := asInt(params["number"]); ok {
		numbers = append(numbers, n)
	}
	if len(numbers) == 0 {
		return map[string]any{"error": "close_issues requires issue numbers"}, nil
	}

	closedState := "closed"
	closed := make([]int, 0, len(numbers))
	failures := make([]map[string]any, 0)
	for _, num := range numbers {
		_, _, err := client.Issues.Edit(ctx, owner, name, num, &gogithub.IssueRequest{State: &closedState})
		if err != nil {
			failures = append(failures, map[string]any{
				"number": num,
				"error":  err.Error(),
			})
			continue
		}
		closed = append(closed, num)
	}

	return map[string]any{
		"repo":     owner + "/" + name,
		"closed":   closed,
		"failures": failures,
	}, nil
}

func listPullRequests(ctx context.Context, client *gogithub.Client, owner, name, state string) (any, error) {
	opts := &gogithub.PullRequestListOptions{
		State:       state,
		ListOptions: gogithub.ListOptions{PerPage: listPageSize},
	}
	prs, _, err := client.PullRequests.List(ctx, owner, name, opts)
	if err != nil {
		return map[string]any{"error": fmt.Sprintf("list pull requests: %v", err)}, nil
	}

	rows := make([]map[string]any, 0, len(prs))
	for _, pr := range prs {
		rows = append(rows, map[string]any{
			"number": pr.GetNumber(),
			"title":  pr.GetTitle(),
			"state":  pr.GetState(),
			"user":   pr.GetUser().GetLogin(),
			"draft":  pr.GetDraft(),
			"url":    pr.GetHTMLURL(),
		})
	}

	return map[string]any{
		"repo":          owner + "/" + name,
		"state":         state,
		"count":         len(rows),
		"pull_requests": rows,
	}, nil
}

func repositoryStats(ctx context.Context, client *gogithub.Client, owner, name string) (any, error) {
	repo, _, err := client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return map[string]any{"error": fmt.Sprintf("get repository: %v", err)}, nil
	}

	contributors, _, err := client.Repositories.ListContributors(ctx, owner, name,
		&gogithub.ListContributorsOptions{ListOptions: gogithub.ListOptions{PerPage: listPageSize}})
	if err != nil {
		contributors = nil
	}

	top := make([]map[string]any, 0, len(contributors))
	for _, c := range contributors {
		top = append(top, map[string]any{
			"login":         c.GetLogin(),
			"contributions": c.GetContributions(),
		})
	}

	return map[string]any{
		"repo":           repo.GetFullName(),
		"stars":          repo.GetStargazersCount(),
		"forks":          repo.GetForksCount(),
		"watchers":       repo.GetSubscribersCount(),
		"open_issues":    repo.GetOpenIssuesCount(),
		"size_kb":        repo.GetSize(),
		"default_branch": repo.GetDefaultBranch(),
		"created_at":     repo.GetCreatedAt().Format("2006-01-02"),
		"pushed_at":      repo.GetPushedAt().Format("2006-01-02"),
		"contributors":   top,
	}, nil
}

func issueRow(issue *gogithub.Issue) map[string]any {
	labels := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, l.GetName())
	}
	return map[string]any{
		"number": issue.GetNumber(),
		"title":  issue.GetTitle(),
		"state":  issue.GetState(),
		"user":   issue.GetUser().GetLogin(),
		"labels": labels,
		"url":    issue.GetHTMLURL(),
	}
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func intSlice(v any) []int {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		if n, ok := asInt(item); ok {
			out = append(out, n)
		}
	}
	return out
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
