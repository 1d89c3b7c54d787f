package summary

import (
	"github.com/foxseedlab/matome/internal/cache"
	"github.com/foxseedlab/matome/internal/completion"
	"github.com/foxseedlab/matome/internal/config"
	"github.com/foxseedlab/matome/internal/metrics"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		completer := do.MustInvoke[completion.Completer](i)
		store := do.MustInvoke[cache.Store](i)
		recorder := do.MustInvoke[metrics.Recorder](i)
		return NewService(SettingsFromConfig(cfg), completer, store, recorder), nil
	})
}
