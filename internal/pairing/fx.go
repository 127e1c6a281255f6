package pairing

import (
	"go.uber.org/fx"

	"github.com/tomasz-trela/catermetrics/internal/pairing/service"
)

var Module = fx.Module("pairing.service",
	fx.Provide(service.NewService),
)
