package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/The127/ioc"
)

// DbService owns the transaction of one request scope. The first repository
// call opens it, the scope middleware commits it on Close.
type DbService interface {
	GetTx() (*sql.Tx, error)
	Close() error
}

type dbService struct {
	tx *sql.Tx
	dp *ioc.DependencyProvider
}

func NewDbService(dp *ioc.DependencyProvider) DbService {
	return &dbService{
		dp: dp,
	}
}

func (s *dbService) GetTx() (*sql.Tx, error) {
	if s.tx != nil {
		return s.tx, nil
	}

	db := ioc.GetDependency[*sql.DB](s.dp)
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	s.tx = tx

	return tx, nil
}

func (s *dbService) Close() error {
	if s.tx == nil {
		return nil
	}

	err := s.tx.Commit()
	switch {
	case errors.Is(err, sql.ErrTxDone):
		return nil
	case err != nil:
		return fmt.Errorf("committing db transaction: %w", err)
	}

	return nil
}
