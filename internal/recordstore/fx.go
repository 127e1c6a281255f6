package recordstore

import (
	"go.uber.org/fx"

	"github.com/tomasz-trela/catermetrics/internal/recordstore/repository"
)

var Module = fx.Module("recordstore",
	fx.Provide(repository.NewStore),
)
