package coursestats

import (
	"go.uber.org/fx"

	"github.com/tomasz-trela/catermetrics/internal/coursestats/service"
)

var Module = fx.Module("coursestats.service",
	fx.Provide(service.NewService),
)
