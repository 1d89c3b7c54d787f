package openai

import (
	"github.com/foxseedlab/matome/internal/cache"
	"github.com/foxseedlab/matome/internal/completion"
	"github.com/foxseedlab/matome/internal/config"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (completion.Completer, error) {
		cfg := do.MustInvoke[*config.Config](i)
		store := do.MustInvoke[cache.Store](i)
		client, err := NewClient(Options{
			BaseURL:  cfg.OpenAIBaseURL,
			APIKey:   cfg.OpenAIAPIKey,
			ProxyURL: cfg.OpenAIHTTPProxy,
			Timeout:  cfg.OpenAIRequestTimeout,
		}, store)
		if err != nil {
			return nil, err
		}
		return client, nil
	})
}
