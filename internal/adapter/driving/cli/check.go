package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	githubadapter "github.com/dpfaulkner/redline/internal/adapter/driven/github"
	"github.com/dpfaulkner/redline/internal/config"
)

func checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configured GitHub token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.GitHubToken == "" {
				return fmt.Errorf("no token configured; set REDLINE_GITHUB_TOKEN")
			}

			client := githubadapter.NewClient(cfg.GitHubToken)
			login, err := client.ValidateToken(cmd.Context(), cfg.GitHubToken)
			if err != nil {
				return fmt.Errorf("token validation failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "token valid, authenticated as %s\n", login)
			if cfg.GitHubUsername != "" && login != cfg.GitHubUsername {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: REDLINE_GITHUB_USERNAME is %s but the token authenticates as %s\n",
					cfg.GitHubUsername, login)
			}
			return nil
		},
	}
}
