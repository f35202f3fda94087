package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/drewmudry/slideshorts/internal/platform"
	"github.com/drewmudry/slideshorts/models"
	"github.com/drewmudry/slideshorts/processing"
	"github.com/drewmudry/slideshorts/tasks"
	"github.com/drewmudry/slideshorts/worker"
	"github.com/spf13/cobra"
)

type renderFlags struct {
	script     string
	scriptFile string
	duration   int
	background string
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.script, "script", "s", "", "Script text")
	cmd.Flags().StringVarP(&f.scriptFile, "file", "f", "", "Read the script from a file (- for stdin)")
	cmd.Flags().IntVarP(&f.duration, "duration", "d", processing.DefaultDuration, "Target duration in seconds (clamped to 5-30)")
	cmd.Flags().StringVar(&f.background, "background", "", "Background colour as #rrggbb")
}

func (f *renderFlags) request(stdin io.Reader) (models.RenderRequest, error) {
	script := f.script
	if f.scriptFile != "" {
		var data []byte
		var err error
		if f.scriptFile == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(f.scriptFile)
		}
		if err != nil {
			return models.RenderRequest{}, fmt.Errorf("read script: %w", err)
		}
		script = string(data)
	}
	return models.RenderRequest{Script: script, Duration: f.duration, Background: f.background}, nil
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "slideshorts",
		Short:         "Render caption slideshow videos from short scripts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.AddCommand(newRenderCommand())
	rootCmd.AddCommand(newCaptionsCommand())
	rootCmd.AddCommand(newEnqueueCommand())
	return rootCmd
}

func newRenderCommand() *cobra.Command {
	var flags renderFlags
	var output string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a script to a local MP4",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(cmd.InOrStdin())
			if err != nil {
				return err
			}
			cfg, err := platform.LoadConfig()
			if err != nil {
				return err
			}
			if output != "" {
				abs, err := filepath.Abs(output)
				if err != nil {
					return err
				}
				cfg.StoreDir = filepath.Dir(abs)
			}
			if err := cfg.EnsureStoreDir(); err != nil {
				return err
			}

			proc := platform.NewProcessor(cfg, platform.NewLogger("render", cfg.LogLevel), nil)
			jobID := proc.Submit(cmd.Context(), req)
			job, _ := proc.Jobs.Get(jobID)
			if job.Status != models.JobStatusDone {
				return fmt.Errorf("render failed: %s", job.Message)
			}

			path := proc.OutPath(jobID)
			if output != "" {
				if err := os.Rename(path, output); err != nil {
					return err
				}
				path = output
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: <store_dir>/<job_id>.mp4)")
	return cmd
}

func newCaptionsCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "captions",
		Short: "Print the caption timing a script would get",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(cmd.InOrStdin())
			if err != nil {
				return err
			}
			req = processing.NormalizeRequest(req)
			out := cmd.OutOrStdout()
			for i, c := range processing.CaptionsFromScript(req.Script, req.Duration) {
				fmt.Fprintf(out, "%d\t%6.2f\t%6.2f\t%s\n", i+1, c.Start, c.End, c.Text)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newEnqueueCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Queue a script for the render worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(cmd.InOrStdin())
			if err != nil {
				return err
			}
			cfg, err := platform.LoadConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.RedisURL) == "" {
				return fmt.Errorf("REDIS_URL is not set")
			}
			logger := platform.NewLogger("enqueue", cfg.LogLevel)
			rdb, err := platform.NewRedisClient(cfg.RedisURL, logger)
			if err != nil {
				return err
			}
			defer rdb.Close()

			q := worker.NewQueue(rdb, logger)
			return q.Enqueue(cmd.Context(), tasks.QueueVideoRender, tasks.RenderTaskPayload{
				Script:     req.Script,
				Duration:   req.Duration,
				Background: req.Background,
			})
		},
	}
	flags.register(cmd)
	return cmd
}
