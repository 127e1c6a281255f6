package reconcile

import (
	"go.uber.org/fx"

	"github.com/tomasz-trela/catermetrics/internal/reconcile/service"
)

var Module = fx.Module("reconcile.service",
	fx.Provide(service.NewService),
)
