package postgres

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrForeignTx = errors.New("このリポジトリで扱えないトランザクションです")
)

const uniqueViolation = "unique_violation"

func isUniqueViolation(err error) bool {
	var pgErr *pq.Error
	return errors.As(err, &pgErr) && pgErr.Code.Name() == uniqueViolation
}
