package rfm

import (
	"go.uber.org/fx"

	"github.com/tomasz-trela/catermetrics/internal/rfm/service"
)

var Module = fx.Module("rfm.service",
	fx.Provide(service.NewService),
)
