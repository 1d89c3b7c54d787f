package summary

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/foxseedlab/matome/internal/cache"
	"github.com/foxseedlab/matome/internal/completion"
	"github.com/foxseedlab/matome/internal/config"
	"github.com/foxseedlab/matome/internal/metrics"
	"github.com/foxseedlab/matome/internal/prompt"
	"github.com/foxseedlab/matome/internal/transcript"
)

var (
	ErrEmptyInput     = errors.New("transcript has no fragments")
	ErrMissingVideoID = errors.New("video id is required")
)

// Sampling parameters sent with every request.
const (
	temperature      = 0.5
	topP             = 1
	frequencyPenalty = 0
	presencePenalty  = 0
	choiceCount      = 1
)

type Request struct {
	VideoID           string
	Title             string
	Fragments         []transcript.Fragment
	Language          string
	IncludeTimestamps bool
}

type Settings struct {
	Model                string
	MaxTokens            int
	PromptVersion        string
	TranscriptByteBudget int
	TitleByteBudget      int
	DefaultLanguage      string
}

func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Model:                cfg.OpenAIModel,
		MaxTokens:            cfg.MaxTokens,
		PromptVersion:        cfg.PromptVersion,
		TranscriptByteBudget: cfg.TranscriptByteBudget,
		TitleByteBudget:      cfg.TitleByteBudget,
		DefaultLanguage:      cfg.DefaultLanguage,
	}
}

// Prepared is a request turned into what is sent to the provider.
type Prepared struct {
	Key       string
	Payload   completion.Payload
	Oversized bool
}

type Service struct {
	settings  Settings
	prompts   *prompt.Builder
	completer completion.Completer
	store     cache.Store
	recorder  metrics.Recorder
}

func NewService(settings Settings, completer completion.Completer, store cache.Store, recorder metrics.Recorder) *Service {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Service{
		settings:  settings,
		prompts:   prompt.NewBuilder(settings.DefaultLanguage),
		completer: completer,
		store:     store,
		recorder:  recorder,
	}
}

func (s *Service) Key(req Request) string {
	return cache.Key(req.VideoID, s.settings.PromptVersion, req.IncludeTimestamps)
}

func (s *Service) Prepare(req Request) (Prepared, error) {
	if strings.TrimSpace(req.VideoID) == "" {
		return Prepared{}, ErrMissingVideoID
	}
	if len(req.Fragments) == 0 {
		return Prepared{}, ErrEmptyInput
	}

	key := s.Key(req)
	selection := transcript.Chunk(req.Fragments, s.settings.TranscriptByteBudget)
	if selection.Oversized {
		// Sent as is; the provider decides whether it can take it.
		slog.Warn("transcript exceeds budget even at its first fragment, sending it unchunked",
			"cache_key", key, "budget", s.settings.TranscriptByteBudget, "bytes", transcript.ByteLen(selection.Text()))
		s.recorder.OversizedTranscript()
	}

	title := transcript.Truncate(req.Title, s.settings.TitleByteBudget)
	p := s.prompts.Build(title, selection.Fragments, prompt.Options{
		Language:          req.Language,
		IncludeTimestamps: req.IncludeTimestamps,
	})

	return Prepared{
		Key: key,
		Payload: completion.Payload{
			Model:            s.settings.Model,
			Messages:         p.Messages(),
			Temperature:      temperature,
			TopP:             topP,
			FrequencyPenalty: frequencyPenalty,
			PresencePenalty:  presencePenalty,
			MaxTokens:        s.settings.MaxTokens,
			N:                choiceCount,
		},
		Oversized: selection.Oversized,
	}, nil
}

// Cached returns a summary stored by an earlier run.
func (s *Service) Cached(ctx context.Context, req Request) (string, bool, error) {
	if strings.TrimSpace(req.VideoID) == "" {
		return "", false, ErrMissingVideoID
	}
	value, found, err := s.store.Get(ctx, s.Key(req))
	if err != nil {
		return "", false, fmt.Errorf("failed to read summary cache: %w", err)
	}
	s.recorder.CacheLookup(found)
	return value, found, nil
}

func (s *Service) Summarize(ctx context.Context, req Request) (string, error) {
	prepared, err := s.Prepare(req)
	if err != nil {
		return "", err
	}

	start := time.Now()
	text, err := s.completer.Complete(ctx, prepared.Key, prepared.Payload)
	s.recorder.ObserveSummary(metrics.ModeComplete, Outcome(err), time.Since(start))
	if err != nil {
		return "", fmt.Errorf("failed to summarize %s: %w", prepared.Key, err)
	}
	return text, nil
}

// SummarizeStream yields the summary as it is generated. A request the
// provider rejects fails here; later failures arrive through the sequence.
func (s *Service) SummarizeStream(ctx context.Context, req Request) (iter.Seq2[string, error], error) {
	prepared, err := s.Prepare(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	seq, err := s.completer.Stream(ctx, prepared.Key, prepared.Payload)
	if err != nil {
		s.recorder.ObserveSummary(metrics.ModeStream, Outcome(err), time.Since(start))
		return nil, fmt.Errorf("failed to summarize %s: %w", prepared.Key, err)
	}

	return func(yield func(string, error) bool) {
		outcome := metrics.OutcomeSuccess
		defer func() {
			s.recorder.ObserveSummary(metrics.ModeStream, outcome, time.Since(start))
		}()
		for delta, err := range seq {
			if err != nil {
				outcome = Outcome(err)
				yield("", err)
				return
			}
			if !yield(delta, nil) {
				outcome = metrics.OutcomeCancelled
				return
			}
		}
	}, nil
}

// Outcome classifies a completion error for metrics.
func Outcome(err error) string {
	var upstreamErr *completion.UpstreamError
	var decodeErr *completion.DecodeError
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.As(err, &upstreamErr):
		return metrics.OutcomeUpstreamError
	case errors.As(err, &decodeErr):
		return metrics.OutcomeDecodeError
	case errors.Is(err, completion.ErrStreamIncomplete):
		return metrics.OutcomeIncomplete
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCancelled
	default:
		return metrics.OutcomeError
	}
}
