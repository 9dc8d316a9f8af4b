package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSessionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage conversation sessions",
	}
	cmd.AddCommand(
		newSessionNewCmd(a),
		newSessionListCmd(a),
		newSessionUseCmd(a),
		newSessionShowCmd(a),
		newSessionClearCmd(a),
	)
	return cmd
}

func newSessionNewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "new [id]",
		Short: "Create a session and make it current",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			session, persisted := a.agent.Contexts().CreateSession(id)
			success.Printf("session %s created\n", session.ID)
			if !persisted {
				dim.Println("warning: session not persisted")
			}
			return nil
		},
	}
}

func newSessionListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.agent.Contexts()
			ids := store.SessionIDs()
			if len(ids) == 0 {
				dim.Println("no sessions")
				return nil
			}
			current, _ := store.CurrentSessionID()
			for _, id := range ids {
				marker := " "
				if id == current {
					marker = "*"
				}
				fmt.Printf("%s %s\n", marker, id)
			}
			return nil
		},
	}
}

func newSessionUseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "use <id>",
		Short: "Switch the current session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.agent.Contexts().SetCurrentSession(args[0]) {
				return fmt.Errorf("session %q not found", args[0])
			}
			success.Printf("current session is %s\n", args[0])
			return nil
		},
	}
}

func newSessionShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a session's messages and context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, ok := a.agent.Contexts().GetSession(args[0])
			if !ok {
				return fmt.Errorf("session %q not found", args[0])
			}
			headline.Println(session.ID)
			printKV("started", session.StartedAt.Format("2006-01-02 15:04:05"))
			printKV("active", session.Active)
			printKV("messages", len(session.Messages))
			for _, msg := range session.Messages {
				dim.Printf("%s [%s] ", msg.Timestamp.Format("15:04:05"), msg.Role)
				fmt.Println(msg.Content)
			}
			if len(session.Context) > 0 {
				fmt.Println()
				headline.Println("context")
				if err := printJSON(session.Context); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newSessionClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <id>",
		Short: "Clear a session's messages and context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.agent.Contexts().ClearSession(args[0]) {
				return fmt.Errorf("session %q not found", args[0])
			}
			success.Printf("session %s cleared\n", args[0])
			return nil
		},
	}
}
