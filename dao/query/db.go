package query

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"github.com/ppmlab/atlas/pkg/config"
	"github.com/ppmlab/atlas/pkg/logutils"
	"github.com/ppmlab/atlas/pkg/monitor"
)

var (
	once     sync.Once
	instance *gorm.DB
)

// GetDB returns the singleton instance of the database connection.
func GetDB() *gorm.DB {
	once.Do(func() {
		db, err := Open(config.GetConfig())
		if err != nil {
			panic(err)
		}
		instance = db
		logutils.Log.Info("Postgres init success!")
	})
	return instance
}

func dsn(host, port string, cfg *config.Config) string {
	pg := cfg.Postgres
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		host, pg.User, pg.Password, pg.DBName, port, pg.SSLMode, pg.TimeZone)
}

// Open connects to the primary described by cfg. Replicas, when configured,
// serve plain reads; writes and transactions stay on the primary.
func Open(cfg *config.Config) (*gorm.DB, error) {
	pg := cfg.Postgres
	db, err := gorm.Open(postgres.Open(dsn(pg.Host, pg.Port, cfg)), &gorm.Config{
		Logger:         logutils.NewGormLogger(time.Duration(pg.SlowThresholdMs) * time.Millisecond),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if len(pg.Replicas) > 0 {
		replicas := make([]gorm.Dialector, 0, len(pg.Replicas))
		for _, r := range pg.Replicas {
			replicas = append(replicas, postgres.Open(dsn(r.Host, r.Port, cfg)))
		}
		resolver := dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		}).
			SetMaxIdleConns(pg.MaxIdleConns).
			SetMaxOpenConns(pg.MaxOpenConns).
			SetConnMaxLifetime(time.Hour)
		if err := db.Use(resolver); err != nil {
			return nil, fmt.Errorf("register read replicas: %w", err)
		}
		logutils.Log.Infof("Postgres read replicas registered, count: %d", len(replicas))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(pg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := monitor.InstrumentDB(db); err != nil {
		return nil, err
	}
	return db, nil
}
