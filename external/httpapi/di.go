package httpapi

import (
	"net/http"

	metricsimpl "github.com/foxseedlab/matome/external/metrics"
	"github.com/foxseedlab/matome/internal/config"
	"github.com/foxseedlab/matome/internal/summary"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*http.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		svc := do.MustInvoke[*summary.Service](i)
		recorder := do.MustInvoke[*metricsimpl.PrometheusRecorder](i)
		return NewServer(cfg.HTTPAddr, NewRouter(svc, recorder.Handler())), nil
	})
}
