package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/naka-gawa/github-contributions/internal/config"
	"github.com/naka-gawa/github-contributions/internal/gateway"
	"github.com/naka-gawa/github-contributions/internal/report"
	"github.com/naka-gawa/github-contributions/internal/usecase"
	"github.com/spf13/cobra"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collects contributions to the tracked repositories and writes them as JSON",
	Long: `Collects the commit count and the lines added and deleted by GITHUB_LOGIN in each
tracked repository, and writes the result to the site's data file.

Contributor statistics are computed by GitHub on demand, so the first request for a
repository may have to be retried until they are ready.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Get the verbose flag from the root command to set up the logger.
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
		if verbose {
			logger.SetOutput(os.Stderr) // If verbose, log to standard error.
		}

		output, _ := cmd.Flags().GetString("output")
		interval, _ := cmd.Flags().GetDuration("stats-interval")
		maxAttempts, _ := cmd.Flags().GetInt("stats-max-attempts")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		cacheDir, _ := cmd.Flags().GetString("http-cache")

		if err := runCollect(cmd.OutOrStdout(), logger, collectOptions{
			output:   output,
			policy:   usecase.RetryPolicy{Interval: interval, MaxAttempts: maxAttempts},
			timeout:  timeout,
			cacheDir: cacheDir,
		}); err != nil {
			color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

type collectOptions struct {
	output   string
	policy   usecase.RetryPolicy
	timeout  time.Duration
	cacheDir string
}

func runCollect(out io.Writer, logger *log.Logger, opts collectOptions) error {
	ctx := context.Background()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	creds, err := config.LoadCredentials()
	if err != nil {
		return err
	}

	cacheDir := opts.cacheDir
	if cacheDir != "" {
		if cacheDir, err = homedir.Expand(cacheDir); err != nil {
			return fmt.Errorf("invalid --http-cache directory: %w", err)
		}
	}

	// Inject dependencies and run the main business logic.
	githubGateway, err := gateway.NewGitHubGateway(creds.Token, cacheDir, logger)
	if err != nil {
		return fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	aggregator := usecase.NewAggregator(githubGateway, opts.policy, out, logger)

	fmt.Fprintln(out, "Obtaining contributions from GitHub...")
	records, err := aggregator.Aggregate(ctx, config.Repositories, creds.Login)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Saving contributions data to %s\n", opts.output)
	if err := report.Write(records, opts.output); err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(out, "Done: %s\n", report.Summarize(records))
	return nil
}

func init() {
	rootCmd.AddCommand(collectCmd)
	defaults := usecase.DefaultRetryPolicy()
	collectCmd.Flags().StringP("output", "o", config.DefaultOutputPath, "Path of the JSON data file to write")
	collectCmd.Flags().Duration("stats-interval", defaults.Interval, "Wait between contributor statistics requests while GitHub computes them")
	collectCmd.Flags().Int("stats-max-attempts", defaults.MaxAttempts, "Maximum contributor statistics requests per repository (0 retries indefinitely)")
	collectCmd.Flags().Duration("timeout", 0, "Overall deadline for the run (0 disables it)")
	collectCmd.Flags().String("http-cache", "", "Directory for an on-disk cache of GitHub responses (disabled when empty)")
}
