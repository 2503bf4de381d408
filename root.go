package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"ewintr.nl/tubedigest/handler"
	"ewintr.nl/tubedigest/process"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

// commandContext lazily builds the config and the service for the command
// that runs.
type commandContext struct {
	logger *slog.Logger
	conf   *Config
}

func (c *commandContext) config() (Config, error) {
	if c.conf != nil {
		return *c.conf, nil
	}
	conf, err := loadConfig()
	if err != nil {
		return Config{}, err
	}
	c.conf = &conf
	return conf, nil
}

func (c *commandContext) withService(ctx context.Context, fn func(*service) error) error {
	conf, err := c.config()
	if err != nil {
		return err
	}
	svc, err := newService(ctx, conf, c.logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	return fn(svc)
}

// run processes the jobs and prints the results. It fails when a job could
// not be completed because of the store.
func (c *commandContext) run(cmd *cobra.Command, window time.Duration, jobs ...process.Job) error {
	conf, err := c.config()
	if err != nil {
		return err
	}
	if window > 0 {
		conf.Pipeline.FreshnessWindow = window
		c.conf = &conf
	}

	return c.withService(cmd.Context(), func(svc *service) error {
		pipeline, err := svc.Pipeline(cmd.Context())
		if err != nil {
			return err
		}
		outcomes := pipeline.Run(cmd.Context(), jobs)
		printOutcomes(cmd.OutOrStdout(), outcomes)
		if n := failed(outcomes); n > 0 {
			return fmt.Errorf("%d of %d jobs failed", n, len(outcomes))
		}
		return cmd.Context().Err()
	})
}

func newRootCommand() *cobra.Command {
	c := &commandContext{
		logger: slog.New(slog.NewTextHandler(os.Stderr)),
	}
	var mode string

	rootCmd := &cobra.Command{
		Use:           "tubedigest <video_id|video_url|channel_url>",
		Short:         "Summarize YouTube videos from their transcripts",
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			m, err := parseMode(mode)
			if err != nil {
				return err
			}
			job := jobFromArg(args[0])
			job.Mode = m
			return c.run(cmd, 0, job)
		},
	}
	rootCmd.Flags().StringVar(&mode, "mode", "", "Enrichment mode, summary or analysis")

	rootCmd.AddCommand(newSearchCommand(c))
	rootCmd.AddCommand(newBatchCommand(c))
	rootCmd.AddCommand(newFeedsCommand(c))
	rootCmd.AddCommand(newServeCommand(c))
	rootCmd.AddCommand(newResetIndexCommand(c))

	return rootCmd
}

func newSearchCommand(c *commandContext) *cobra.Command {
	var maxResults int
	var mode string

	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Analyze the most relevant videos for a keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			m, err := parseMode(mode)
			if err != nil {
				return err
			}
			if maxResults <= 0 {
				return errors.New("--max must be positive")
			}
			return c.run(cmd, 0, process.Job{Kind: process.KindKeyword, Value: args[0], Mode: m, MaxResults: maxResults})
		},
	}
	cmd.Flags().IntVar(&maxResults, "max", process.DefaultMaxResults, "Number of videos to process")
	cmd.Flags().StringVar(&mode, "mode", "", "Enrichment mode, summary or analysis")

	return cmd
}

func newBatchCommand(c *commandContext) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Process the channels, keywords, videos and feeds listed in a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			b, err := readBatch(file)
			if err != nil {
				return err
			}
			return c.run(cmd, b.Window, b.Jobs...)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "batch.yaml", "Batch file")

	return cmd
}

func newFeedsCommand(c *commandContext) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "feeds",
		Short: "Process the unread YouTube entries in Miniflux",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			m, err := parseMode(mode)
			if err != nil {
				return err
			}
			return c.run(cmd, 0, process.Job{Kind: process.KindFeed, Mode: m})
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "Enrichment mode, summary or analysis")

	return cmd
}

func newServeCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the stored summaries over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return c.withService(cmd.Context(), func(svc *service) error {
				srv := &http.Server{
					Addr:    fmt.Sprintf(":%d", svc.conf.APIPort),
					Handler: handler.NewServer(svc.videoDB, c.logger),
				}
				errc := make(chan error, 1)
				go func() {
					errc <- srv.ListenAndServe()
				}()
				c.logger.Info("http server started", slog.Int("port", svc.conf.APIPort))

				select {
				case err := <-errc:
					return err
				case <-cmd.Context().Done():
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return err
				}
				c.logger.Info("service stopped")
				return nil
			})
		},
	}
}

func newResetIndexCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-index",
		Short: "Drop and recreate the Weaviate class for summaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return c.withService(cmd.Context(), func(svc *service) error {
				if svc.weaviate == nil {
					return errors.New("WEAVIATE_HOST is not set")
				}
				if err := svc.weaviate.ResetSchema(cmd.Context()); err != nil {
					return err
				}
				c.logger.Info("index reset")
				return nil
			})
		},
	}
}
