package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	githubadapter "github.com/dpfaulkner/redline/internal/adapter/driven/github"
	sqliteadapter "github.com/dpfaulkner/redline/internal/adapter/driven/sqlite"
	httphandler "github.com/dpfaulkner/redline/internal/adapter/driving/http"
	mcpadapter "github.com/dpfaulkner/redline/internal/adapter/driving/mcp"
	"github.com/dpfaulkner/redline/internal/application"
	"github.com/dpfaulkner/redline/internal/config"
	"github.com/dpfaulkner/redline/internal/domain/model"
)

func serveCommand(version string) *cobra.Command {
	var repo string
	var prNumber int
	var transport string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load a pull request and serve the review tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			if transport != "stdio" && transport != "http" {
				return fmt.Errorf("unknown transport %q; use stdio or http", transport)
			}
			return runServe(cmd.Context(), repo, prNumber, transport, version)
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "Repository in owner/name form")
	cmd.Flags().IntVar(&prNumber, "pr", 0, "Pull request number")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Serve over stdio (MCP) or http")
	_ = cmd.MarkFlagRequired("repo")
	_ = cmd.MarkFlagRequired("pr")

	return cmd
}

func runServe(ctx context.Context, repo string, prNumber int, transport, version string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.HasGitHubCredentials() {
		return fmt.Errorf("no GitHub credentials configured; set REDLINE_GITHUB_TOKEN and REDLINE_GITHUB_USERNAME")
	}

	client := githubadapter.NewClient(cfg.GitHubToken)

	login, err := client.ValidateToken(ctx, cfg.GitHubToken)
	if err != nil {
		return fmt.Errorf("validate token: %w", err)
	}
	if login != cfg.GitHubUsername {
		slog.Warn("token login differs from configured username",
			"token_login", login,
			"configured", cfg.GitHubUsername,
		)
	}

	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}

	journal := sqliteadapter.NewJournalRepo(db)
	runID := uuid.NewString()
	if err := journal.RecordRun(ctx, model.ReviewRun{
		ID:        runID,
		Repo:      repo,
		PRNumber:  prNumber,
		BotLogin:  login,
		StartedAt: time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	defer func() {
		// The serve context is already cancelled during shutdown.
		if err := journal.FinishRun(context.Background(), runID, time.Now().UTC()); err != nil {
			slog.Error("failed to finish run", "run_id", runID, "error", err)
		}
	}()

	snap, err := application.LoadSnapshot(ctx, client, repo, prNumber)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	me := application.ReviewerIdentity{
		Login:   cfg.GitHubUsername,
		Aliases: cfg.BotAliases,
	}
	svc := application.NewFeedbackService(snap, client, me, journal, runID)

	slog.Info("session started",
		"run_id", runID,
		"repo", repo,
		"pr", prNumber,
		"transport", transport,
		"threads_available", snap.ThreadsAvailable(),
	)

	if transport == "http" {
		return serveHTTP(ctx, svc, journal, cfg.ListenAddr)
	}
	return mcpadapter.NewServer(svc, version).Run(ctx, &sdkmcp.StdioTransport{})
}

func serveHTTP(ctx context.Context, svc *application.FeedbackService, journal *sqliteadapter.JournalRepo, addr string) error {
	handler := httphandler.NewHandler(svc, journal, slog.Default())

	srv := &http.Server{
		Addr:              addr,
		Handler:           httphandler.NewServeMux(handler, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
