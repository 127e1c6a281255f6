package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/tomasz-trela/catermetrics/internal/clock"
	"github.com/tomasz-trela/catermetrics/internal/config"
	"github.com/tomasz-trela/catermetrics/internal/cookscore"
	"github.com/tomasz-trela/catermetrics/internal/coursestats"
	"github.com/tomasz-trela/catermetrics/internal/deliverystats"
	"github.com/tomasz-trela/catermetrics/internal/engine"
	"github.com/tomasz-trela/catermetrics/internal/forecast"
	"github.com/tomasz-trela/catermetrics/internal/observability/logger"
	"github.com/tomasz-trela/catermetrics/internal/observability/metrics"
	"github.com/tomasz-trela/catermetrics/internal/pairing"
	"github.com/tomasz-trela/catermetrics/internal/reconcile"
	"github.com/tomasz-trela/catermetrics/internal/recordstore"
	"github.com/tomasz-trela/catermetrics/internal/rfm"
	"github.com/tomasz-trela/catermetrics/internal/server"
	"github.com/tomasz-trela/catermetrics/pkg/db"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		recordstore.Module,
		reconcile.Module,
		rfm.Module,
		cookscore.Module,
		pairing.Module,
		forecast.Module,
		coursestats.Module,
		deliverystats.Module,
		engine.Module,

		fx.Invoke(func(cfg config.Config) {
			metrics.EngineWithConfig(metrics.Config{
				ServiceName: cfg.ServiceName,
				Environment: cfg.Environment,
			})
		}),

		fx.Provide(server.NewEngine),
		fx.Provide(server.NewServer),
		fx.Invoke(func(s *server.Server, e *gin.Engine) {
			s.RegisterAPIRoutes(e)
		}),
		fx.Invoke(server.RunHTTP),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
