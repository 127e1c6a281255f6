package db

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tomasz-trela/catermetrics/internal/config"
)

var Module = fx.Module("db",
	fx.Provide(Open),
)

// Open connects to the record store database. The engine never writes,
// so the connection is treated as read-only regardless of DSN flags.
func Open(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}
	if !cfg.IsProduction() {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Warn)
	}

	conn, err := gorm.Open(sqlite.Open(cfg.DatabaseDSN), gormCfg)
	if err != nil {
		return nil, err
	}
	log.Named("db").Info("record store connected", zap.String("dsn", cfg.DatabaseDSN))
	return conn, nil
}
