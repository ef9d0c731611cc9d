package database

import (
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/vermillionhq/vermillion/config"
)

// Datasource wraps the postgres connection the ledger and compliance
// stores run on. The backing store must offer transactions, row-level
// locking and durable appends; postgres is the only driver wired in.
type Datasource struct {
	Conn *sql.DB
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := ConnectDB(configuration.DataSource.Dns)
	if err != nil {
		return nil, err
	}
	return Datasource{Conn: con}, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, errors.Wrap(err, "opening postgres connection")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "pinging postgres")
	}
	return db, nil
}
