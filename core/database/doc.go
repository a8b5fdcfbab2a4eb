// Package database opens the relational store and inspects its schema.
//
// Connect wraps GORM over PostgreSQL, MySQL or SQLite depending on
// Config.Driver. Implicit per-statement transactions are disabled: every
// write of the site runs in an explicit transaction.
//
// # Helpers
//
//   - Truncate empties a table and restarts its id sequence.
//   - GetTableColumns lists the live columns of a table for the schema command.
//   - Day is a calendar date column that travels as "2006-01-02".
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	columns, err := database.GetTableColumns(db, "socials")
package database
