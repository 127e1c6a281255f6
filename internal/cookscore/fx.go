package cookscore

import (
	"go.uber.org/fx"

	"github.com/tomasz-trela/catermetrics/internal/cookscore/service"
)

var Module = fx.Module("cookscore.service",
	fx.Provide(service.NewService),
)
