package deliverystats

import (
	"go.uber.org/fx"

	"github.com/tomasz-trela/catermetrics/internal/deliverystats/service"
)

var Module = fx.Module("deliverystats.service",
	fx.Provide(service.NewService),
)
