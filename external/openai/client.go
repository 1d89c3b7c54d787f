package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/foxseedlab/matome/internal/cache"
	"github.com/foxseedlab/matome/internal/completion"
	"github.com/foxseedlab/matome/internal/sse"
)

const (
	chatCompletionsPath = "/chat/completions"
	readBufferSize      = 4096
	maxErrorBodyBytes   = 64 << 10
)

type Options struct {
	BaseURL string
	APIKey  string
	// ProxyURL routes every provider request through an HTTP proxy when set.
	ProxyURL string
	Timeout  time.Duration
}

// Client talks to an OpenAI-compatible chat completions endpoint and commits
// every finished answer to the cache.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	cache      cache.Store
}

func NewClient(opts Options, store cache.Store) (*Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	if opts.ProxyURL != "" {
		proxyURL, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	return &Client{
		endpoint: strings.TrimRight(opts.BaseURL, "/") + chatCompletionsPath,
		apiKey:   opts.APIKey,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		cache: store,
	}, nil
}

func (c *Client) Complete(ctx context.Context, key string, payload completion.Payload) (string, error) {
	payload.Stream = false
	resp, err := c.post(ctx, payload)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read completion response: %w", err)
	}
	text, err := DecodeResponse(body)
	if err != nil {
		return "", err
	}
	if err := c.store(ctx, key, text, false); err != nil {
		return "", err
	}
	return text, nil
}

// Stream issues a streaming request. A rejected request fails here, before any
// sequence exists. The returned sequence must be ranged exactly once; breaking
// out of the loop closes the connection and skips the cache write. A sequence
// that is never ranged holds the connection until ctx is done.
func (c *Client) Stream(ctx context.Context, key string, payload completion.Payload) (iter.Seq2[string, error], error) {
	payload.Stream = true
	resp, err := c.post(ctx, payload)
	if err != nil {
		return nil, err
	}

	var consumed atomic.Bool
	return func(yield func(string, error) bool) {
		if !consumed.CompareAndSwap(false, true) {
			yield("", completion.ErrStreamConsumed)
			return
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		c.consume(ctx, key, resp.Body, yield)
	}, nil
}

func (c *Client) consume(ctx context.Context, key string, body io.Reader, yield func(string, error) bool) {
	parser := sse.NewParser()
	consumer := completion.NewConsumer(DecodeDelta)
	buf := make([]byte, readBufferSize)

	for {
		n, readErr := body.Read(buf)
		var events []sse.Event
		if n > 0 {
			events = parser.Feed(buf[:n])
		}
		if readErr == io.EOF {
			events = append(events, parser.Flush()...)
		}
		for _, ev := range events {
			step, err := consumer.Handle(ev)
			if err != nil {
				slog.Warn("completion stream failed", "cache_key", key, "state", consumer.State(), "error", err)
				yield("", err)
				return
			}
			if step.Forward && !yield(step.Delta, nil) {
				slog.Debug("completion stream stopped by caller", "cache_key", key)
				return
			}
			if step.Done {
				c.commit(ctx, key, consumer, yield)
				return
			}
		}
		if readErr == io.EOF {
			slog.Warn("completion stream ended without terminator", "cache_key", key)
			yield("", completion.ErrStreamIncomplete)
			return
		}
		if readErr != nil {
			yield("", fmt.Errorf("failed to read completion stream: %w", readErr))
			return
		}
	}
}

func (c *Client) commit(ctx context.Context, key string, consumer *completion.Consumer, yield func(string, error) bool) {
	text, _ := consumer.Result()
	if err := c.store(ctx, key, text, true); err != nil {
		yield("", err)
	}
}

// store writes a finished answer. The write outlives the caller's context:
// once the provider has answered, the result is kept even if the caller left.
func (c *Client) store(ctx context.Context, key, text string, stream bool) error {
	if err := c.cache.Set(context.WithoutCancel(ctx), key, text); err != nil {
		return fmt.Errorf("failed to cache summary: %w", err)
	}
	slog.Info("summary cached", "cache_key", key, "bytes", len(text), "stream", stream)
	return nil
}

func (c *Client) post(ctx context.Context, payload completion.Payload) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode completion request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload.Stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	slog.Debug("completion request", "model", payload.Model, "stream", payload.Stream, "max_tokens", payload.MaxTokens)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	if !isHTTPSuccessStatus(resp.StatusCode) {
		defer func() {
			_ = resp.Body.Close()
		}()
		return nil, upstreamError(resp)
	}
	return resp, nil
}

func isHTTPSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
