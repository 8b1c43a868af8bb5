package monitor

import (
	"gorm.io/gorm"
)

const callbackPrefix = "atlas:metrics_"

func record(operation string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		table := tx.Statement.Table
		if table == "" {
			table = "raw"
		}
		DBStatements.WithLabelValues(table, operation, result(tx.Error)).Inc()
	}
}

// InstrumentDB registers callbacks counting every statement db executes.
func InstrumentDB(db *gorm.DB) error {
	cb := db.Callback()
	if err := cb.Create().After("gorm:create").Register(callbackPrefix+"create", record("create")); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register(callbackPrefix+"query", record("query")); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register(callbackPrefix+"update", record("update")); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register(callbackPrefix+"delete", record("delete")); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register(callbackPrefix+"row", record("row")); err != nil {
		return err
	}
	return cb.Raw().After("gorm:raw").Register(callbackPrefix+"raw", record("raw"))
}
