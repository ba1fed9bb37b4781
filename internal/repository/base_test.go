package repository

import "github.com/jackc/pgx/v5/pgconn"

func pgUniqueErr() error {
	return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
}
