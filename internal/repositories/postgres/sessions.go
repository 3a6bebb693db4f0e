package postgres

import (
	"Sigil/internal/database"
	"Sigil/internal/logging"
	"Sigil/internal/middlewares"
	"Sigil/internal/repositories"
	"Sigil/utils"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/The127/ioc"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
)

type SessionRepository struct{}

func NewSessionRepository() repositories.SessionRepository {
	return &SessionRepository{}
}

func (r *SessionRepository) selectQuery(filter repositories.SessionFilter) *sqlbuilder.SelectBuilder {
	s := sqlbuilder.Select(
		"id",
		"audit_created_at",
		"audit_updated_at",
		"version",
		"user_id",
		"credential_id",
		"hashed_token",
		"expires_at",
		"last_used_at",
	).From("sessions")

	if filter.HasId() {
		s.Where(s.Equal("id", filter.GetId()))
	}

	if filter.HasUserId() {
		s.Where(s.Equal("user_id", filter.GetUserId()))
	}

	return s
}

func (r *SessionRepository) Single(ctx context.Context, filter repositories.SessionFilter) (*repositories.Session, error) {
	session, err := r.First(ctx, filter)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session: %w", utils.ErrResourceNotFound)
	}
	return session, nil
}

func (r *SessionRepository) First(ctx context.Context, filter repositories.SessionFilter) (*repositories.Session, error) {
	scope := middlewares.GetScope(ctx)
	dbService := ioc.GetDependency[database.DbService](scope)

	tx, err := dbService.GetTx()
	if err != nil {
		return nil, fmt.Errorf("failed to open tx: %w", err)
	}

	s := r.selectQuery(filter)
	s.Limit(1)

	query, args := s.Build()
	logging.Logger.Debug("executing sql: ", query)
	row := tx.QueryRowContext(ctx, query, args...)

	session := repositories.Session{
		ModelBase: repositories.NewModelBase(),
	}
	err = row.Scan(session.GetScanPointers()...)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil

	case err != nil:
		return nil, fmt.Errorf("scanning row: %w", err)
	}

	return &session, nil
}

func (r *SessionRepository) Insert(ctx context.Context, session *repositories.Session) error {
	scope := middlewares.GetScope(ctx)
	dbService := ioc.GetDependency[database.DbService](scope)

	tx, err := dbService.GetTx()
	if err != nil {
		return fmt.Errorf("failed to open tx: %w", err)
	}

	s := sqlbuilder.InsertInto("sessions").
		Cols("user_id", "credential_id", "hashed_token", "expires_at").
		Values(session.UserId(), session.CredentialId(), session.HashedToken(), session.ExpiresAt()).
		Returning("id", "audit_created_at", "audit_updated_at", "version")

	query, args := s.Build()
	logging.Logger.Debug("executing sql: ", query)
	row := tx.QueryRowContext(ctx, query, args...)

	err = row.Scan(session.InsertPointers()...)
	if err != nil {
		return fmt.Errorf("scanning row: %w", err)
	}

	session.ClearChanges()
	return nil
}

func (r *SessionRepository) Update(ctx context.Context, session *repositories.Session) error {
	scope := middlewares.GetScope(ctx)
	dbService := ioc.GetDependency[database.DbService](scope)

	tx, err := dbService.GetTx()
	if err != nil {
		return fmt.Errorf("failed to open tx: %w", err)
	}

	s := sqlbuilder.Update("sessions")
	for fieldName, value := range session.Changes() {
		s.SetMore(s.Assign(fieldName, value))
	}
	s.SetMore(s.Assign("version", session.Version()+1))

	s.Where(s.Equal("id", session.Id()))
	s.Where(s.Equal("version", session.Version()))
	s.Returning("audit_updated_at", "version")

	query, args := s.Build()
	logging.Logger.Debug("executing sql: ", query)
	row := tx.QueryRowContext(ctx, query, args...)

	err = row.Scan(session.UpdatePointers()...)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("updating session: %w", repositories.ErrVersionMismatch)
	case err != nil:
		return fmt.Errorf("scanning row: %w", err)
	}

	session.ClearChanges()
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	scope := middlewares.GetScope(ctx)
	dbService := ioc.GetDependency[database.DbService](scope)

	tx, err := dbService.GetTx()
	if err != nil {
		return fmt.Errorf("failed to open tx: %w", err)
	}

	s := sqlbuilder.DeleteFrom("sessions")
	s.Where(s.Equal("id", id))

	query, args := s.Build()
	logging.Logger.Debug("executing sql: ", query)
	_, err = tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("executing sql: %w", err)
	}

	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	scope := middlewares.GetScope(ctx)
	dbService := ioc.GetDependency[database.DbService](scope)

	tx, err := dbService.GetTx()
	if err != nil {
		return 0, fmt.Errorf("failed to open tx: %w", err)
	}

	s := sqlbuilder.DeleteFrom("sessions")
	s.Where(s.LessThan("expires_at", now))

	query, args := s.Build()
	logging.Logger.Debug("executing sql: ", query)
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("executing sql: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}

	return deleted, nil
}
