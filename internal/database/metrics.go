package database

import (
	"time"

	"chirp/internal/observability"

	"gorm.io/gorm"
)

const queryStartKey = "chirp:query_start"

func startQueryTimer(tx *gorm.DB) {
	tx.InstanceSet(queryStartKey, time.Now())
}

// observeQuery feeds the latency histogram from the start time stashed on the
// statement. Raw SQL carries no model, so its table label falls back to "raw".
func observeQuery(operation string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		v, ok := tx.InstanceGet(queryStartKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		table := tx.Statement.Table
		if table == "" {
			table = "raw"
		}
		observability.DatabaseQueryLatency.
			WithLabelValues(operation, table).
			Observe(time.Since(start).Seconds())
	}
}

// RegisterQueryMetrics wraps every GORM operation in a pair of callbacks that
// time it into observability.DatabaseQueryLatency.
func RegisterQueryMetrics(db *gorm.DB) error {
	cb := db.Callback()
	steps := []func() error{
		func() error {
			return cb.Create().Before("gorm:create").Register("metrics:create_start", startQueryTimer)
		},
		func() error {
			return cb.Create().After("gorm:create").Register("metrics:create_observe", observeQuery("create"))
		},
		func() error {
			return cb.Query().Before("gorm:query").Register("metrics:query_start", startQueryTimer)
		},
		func() error {
			return cb.Query().After("gorm:query").Register("metrics:query_observe", observeQuery("query"))
		},
		func() error {
			return cb.Update().Before("gorm:update").Register("metrics:update_start", startQueryTimer)
		},
		func() error {
			return cb.Update().After("gorm:update").Register("metrics:update_observe", observeQuery("update"))
		},
		func() error {
			return cb.Delete().Before("gorm:delete").Register("metrics:delete_start", startQueryTimer)
		},
		func() error {
			return cb.Delete().After("gorm:delete").Register("metrics:delete_observe", observeQuery("delete"))
		},
		func() error {
			return cb.Row().Before("gorm:row").Register("metrics:row_start", startQueryTimer)
		},
		func() error {
			return cb.Row().After("gorm:row").Register("metrics:row_observe", observeQuery("row"))
		},
		func() error {
			return cb.Raw().Before("gorm:raw").Register("metrics:raw_start", startQueryTimer)
		},
		func() error {
			return cb.Raw().After("gorm:raw").Register("metrics:raw_observe", observeQuery("raw"))
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
