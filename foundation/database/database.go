// Package database provides support for access the database.
package database

import (
	"context"
	"net/url"

	_ "github.com/jackc/pgx/stdlib"
	"github.com/jmoiron/sqlx"
)

// Config is the required properties to use the database.
type Config struct {
	User       string
	Password   string
	Host       string
	Name       string
	DisableTLS bool
	// ApplicationName is reported to postgres for the connection
	ApplicationName string
	// MaxOpenConns is unlimited when zero
	MaxOpenConns int
}

// Open knows how to open a database connection based on the configuration.
func Open(cfg Config) (*sqlx.DB, error) {
	sslMode := "require"
	if cfg.DisableTLS {
		sslMode = "disable"
	}

	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")
	if cfg.ApplicationName != "" {
		q.Set("application_name", cfg.ApplicationName)
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Host,
		Path:     cfg.Name,
		RawQuery: q.Encode(),
	}
	db, err := sqlx.Connect("pgx", u.String())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	return db, nil
}

// StatusCheck returns nil if it can successfully talk to the database.
func StatusCheck(ctx context.Context, db *sqlx.DB) error {
	var ok bool
	return db.QueryRowContext(ctx, "select true").Scan(&ok)
}

// PrepareNamedQueryFromMap wraps boilerplate sqlx to prepare named query from map of parameters
// returns rebound query string and arguments slice
func PrepareNamedQueryFromMap(
	statementString string,
	db *sqlx.DB,
	sqlArgMap map[string]interface{}) (string, []interface{}, error) {

	query, args, err := sqlx.Named(statementString, sqlArgMap)
	if err != nil {
		return query, nil, err
	}
	query, args, err = sqlx.In(query, args...)
	if err != nil {
		return query, nil, err
	}
	return db.Rebind(query), args, nil
}

// PrepareNamedQueryRowsFromMap prepares the named query with PrepareNamedQueryFromMap and executes it
func PrepareNamedQueryRowsFromMap(
	statementString string,
	db *sqlx.DB,
	sqlArgMap map[string]interface{}) (*sqlx.Rows, error) {

	query, args, err := PrepareNamedQueryFromMap(statementString, db, sqlArgMap)
	if err != nil {
		return nil, err
	}
	return db.Queryx(query, args...)
}
