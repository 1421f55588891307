package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	githubadapter "github.com/dpfaulkner/redline/internal/adapter/driven/github"
	"github.com/dpfaulkner/redline/internal/application"
	"github.com/dpfaulkner/redline/internal/config"
)

func threadsCommand() *cobra.Command {
	var repo string
	var prNumber int

	cmd := &cobra.Command{
		Use:   "threads",
		Short: "Print the reconciled review threads for a pull request",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.HasGitHubCredentials() {
				return fmt.Errorf("no GitHub credentials configured; set REDLINE_GITHUB_TOKEN and REDLINE_GITHUB_USERNAME")
			}

			client := githubadapter.NewClient(cfg.GitHubToken)
			snap, err := application.LoadSnapshot(cmd.Context(), client, repo, prNumber)
			if err != nil {
				return fmt.Errorf("load snapshot: %w", err)
			}

			me := application.ReviewerIdentity{Login: cfg.GitHubUsername, Aliases: cfg.BotAliases}
			svc := application.NewFeedbackService(snap, client, me, nil, "")

			threads := svc.ListThreads()
			if len(threads) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no review threads")
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "THREAD\tLOCATION\tSTATE\tLAST ACTOR\tLAST ACTIVITY\tSOURCE")
			for _, th := range threads {
				state := "unresolved"
				if th.Resolved {
					state = "resolved"
				}
				if th.Outdated {
					state += " (outdated)"
				}
				side := string(th.Side)
				if side == "" {
					side = "?"
				}
				fmt.Fprintf(w, "%d\t%s:%d %s\t%s\t%s\t%s\t%s\n",
					th.RootCommentID,
					th.Path, th.Line, side,
					state,
					th.LastActor,
					th.LastActivity.Format("2006-01-02 15:04"),
					th.Source,
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "Repository in owner/name form")
	cmd.Flags().IntVar(&prNumber, "pr", 0, "Pull request number")
	_ = cmd.MarkFlagRequired("repo")
	_ = cmd.MarkFlagRequired("pr")

	return cmd
}
