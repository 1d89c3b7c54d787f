package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/foxseedlab/matome/internal/summary"
	"github.com/foxseedlab/matome/internal/transcript"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

type summarizeOptions struct {
	videoID    string
	title      string
	language   string
	timestamps bool
	noStream   bool
	noCache    bool
}

func newSummarizeCommand() *cobra.Command {
	opts := &summarizeOptions{}
	cmd := &cobra.Command{
		Use:   "summarize <transcript.json|->",
		Short: "Summarize a transcript file and print the result",
		Long: `Summarize a transcript file and print the result.

The file holds a JSON array of fragments: [{"text": "...", "index": 0}, ...].
Use "-" to read it from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummarize(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.videoID, "video-id", "", "video id used for the cache key")
	cmd.Flags().StringVar(&opts.title, "title", "", "video title")
	cmd.Flags().StringVar(&opts.language, "lang", "", "summary language (default: DEFAULT_SUMMARY_LANGUAGE)")
	cmd.Flags().BoolVar(&opts.timestamps, "timestamps", false, "prefix summary items with timestamps")
	cmd.Flags().BoolVar(&opts.noStream, "no-stream", false, "wait for the whole summary instead of streaming it")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "skip the cache lookup")
	_ = cmd.MarkFlagRequired("video-id")
	return cmd
}

func runSummarize(cmd *cobra.Command, source string, opts *summarizeOptions) error {
	fragments, err := readFragments(source, cmd.InOrStdin())
	if err != nil {
		return err
	}

	_, injector := bootstrap(os.Stderr)
	defer shutdown(injector)

	svc, err := do.Invoke[*summary.Service](injector)
	if err != nil {
		return fmt.Errorf("failed to resolve summary service: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	req := summary.Request{
		VideoID:           opts.videoID,
		Title:             opts.title,
		Fragments:         fragments,
		Language:          opts.language,
		IncludeTimestamps: opts.timestamps,
	}
	out := cmd.OutOrStdout()

	if !opts.noCache {
		cached, found, err := svc.Cached(ctx, req)
		if err != nil {
			slog.Warn("summary cache lookup failed", "error", err)
		}
		if found {
			slog.Info("summary served from cache", "video_id", req.VideoID)
			_, err := fmt.Fprintln(out, cached)
			return err
		}
	}

	if opts.noStream {
		text, err := svc.Summarize(ctx, req)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, text)
		return err
	}

	seq, err := svc.SummarizeStream(ctx, req)
	if err != nil {
		return err
	}
	for delta, err := range seq {
		if err != nil {
			return err
		}
		if _, err := io.WriteString(out, delta); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(out)
	return err
}

func readFragments(source string, stdin io.Reader) ([]transcript.Fragment, error) {
	r := stdin
	if source != "-" {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open transcript: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()
		r = f
	}

	var fragments []transcript.Fragment
	if err := json.NewDecoder(r).Decode(&fragments); err != nil {
		return nil, fmt.Errorf("failed to decode transcript %s: %w", source, err)
	}
	return fragments, nil
}
