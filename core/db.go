package core

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type (
	// DBExecutor can run queries; satisfied by *sqlx.DB and *sqlx.Tx.
	// Repositories take an optional trailing DBExecutor so a service can hand
	// them the transaction a multi-step operation runs in.
	DBExecutor interface {
		sqlx.ExtContext
		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	}

	// DB opens transactions. The dummy in-memory store implements it too, which
	// lets services run their transactional paths unchanged in tests.
	DB interface {
		Begin(ctx context.Context) (DBTransactor, error)
	}

	DBTransactor interface {
		DBExecutor

		Commit() error
		Rollback() error
	}
)
