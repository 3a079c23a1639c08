package database

import (
	"database/sql"
	"net/url"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mbolis/survey-desk/config"
	"github.com/pkg/errors"
)

func Open(cfg config.Config) (db *sql.DB, err error) {
	dsn := "file:" + cfg.DBUrl + "?" + url.Values{
		"_foreign_keys": {"on"},
		"_busy_timeout": {"5000"},
		"_journal_mode": {"WAL"},
	}.Encode()

	db, err = sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "db.open")
	}

	// db tuning options
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	err = migrateDB(db)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "db.migrate")
	}

	return
}
