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

	"github.com/The127/ioc"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

type CredentialRepository struct{}

func NewCredentialRepository() repositories.CredentialRepository {
	return &CredentialRepository{}
}

func (r *CredentialRepository) selectQuery(filter repositories.CredentialFilter) *sqlbuilder.SelectBuilder {
	s := sqlbuilder.Select(
		"id",
		"audit_created_at",
		"audit_updated_at",
		"version",
		"user_id",
		"credential_id",
		"public_key",
		"public_key_algorithm",
		"sign_count",
		"last_used_at",
	).From("credentials")

	if filter.HasId() {
		s.Where(s.Equal("id", filter.GetId()))
	}

	if filter.HasUserId() {
		s.Where(s.Equal("user_id", filter.GetUserId()))
	}

	if filter.HasCredentialId() {
		s.Where(s.Equal("credential_id", filter.GetCredentialId()))
	}

	return s
}

func (r *CredentialRepository) Single(ctx context.Context, filter repositories.CredentialFilter) (*repositories.Credential, error) {
	credential, err := r.First(ctx, filter)
	if err != nil {
		return nil, err
	}
	if credential == nil {
		return nil, fmt.Errorf("credential: %w", utils.ErrResourceNotFound)
	}
	return credential, nil
}

func (r *CredentialRepository) First(ctx context.Context, filter repositories.CredentialFilter) (*repositories.Credential, error) {
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

	credential := repositories.Credential{
		ModelBase: repositories.NewModelBase(),
	}
	err = row.Scan(credential.GetScanPointers()...)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil

	case err != nil:
		return nil, fmt.Errorf("scanning row: %w", err)
	}

	return &credential, nil
}

func (r *CredentialRepository) List(ctx context.Context, filter repositories.CredentialFilter) ([]*repositories.Credential, error) {
	scope := middlewares.GetScope(ctx)
	dbService := ioc.GetDependency[database.DbService](scope)

	tx, err := dbService.GetTx()
	if err != nil {
		return nil, fmt.Errorf("failed to open tx: %w", err)
	}

	s := r.selectQuery(filter)
	s.OrderBy("audit_created_at").Asc()

	query, args := s.Build()
	logging.Logger.Debug("executing sql: ", query)
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying db: %w", err)
	}
	defer utils.PanicOnError(rows.Close, "closing rows")

	var credentials []*repositories.Credential
	for rows.Next() {
		credential := repositories.Credential{
			ModelBase: repositories.NewModelBase(),
		}
		err = rows.Scan(credential.GetScanPointers()...)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		credentials = append(credentials, &credential)
	}

	return credentials, nil
}

func (r *CredentialRepository) Count(ctx context.Context, filter repositories.CredentialFilter) (int, error) {
	scope := middlewares.GetScope(ctx)
	dbService := ioc.GetDependency[database.DbService](scope)

	tx, err := dbService.GetTx()
	if err != nil {
		return 0, fmt.Errorf("failed to open tx: %w", err)
	}

	s := sqlbuilder.Select("count(*)").From("credentials")

	if filter.HasUserId() {
		s.Where(s.Equal("user_id", filter.GetUserId()))
	}

	query, args := s.Build()
	logging.Logger.Debug("executing sql: ", query)

	var count int
	err = tx.QueryRowContext(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("scanning row: %w", err)
	}

	return count, nil
}

func (r *CredentialRepository) Insert(ctx context.Context, credential *repositories.Credential) error {
	scope := middlewares.GetScope(ctx)
	dbService := ioc.GetDependency[database.DbService](scope)

	tx, err := dbService.GetTx()
	if err != nil {
		return fmt.Errorf("failed to open tx: %w", err)
	}

	s := sqlbuilder.InsertInto("credentials").
		Cols("user_id", "credential_id", "public_key", "public_key_algorithm", "sign_count").
		Values(credential.UserId(), credential.CredentialId(), credential.PublicKey(), credential.PublicKeyAlgorithm(), credential.SignCount()).
		Returning("id", "audit_created_at", "audit_updated_at", "version")

	query, args := s.Build()
	logging.Logger.Debug("executing sql: ", query)
	row := tx.QueryRowContext(ctx, query, args...)

	err = row.Scan(credential.InsertPointers()...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return repositories.ErrDuplicateCredential
		}
		return fmt.Errorf("scanning row: %w", err)
	}

	credential.ClearChanges()
	return nil
}

func (r *CredentialRepository) Update(ctx context.Context, credential *repositories.Credential) error {
	scope := middlewares.GetScope(ctx)
	dbService := ioc.GetDependency[database.DbService](scope)

	tx, err := dbService.GetTx()
	if err != nil {
		return fmt.Errorf("failed to open tx: %w", err)
	}

	s := sqlbuilder.Update("credentials")
	for fieldName, value := range credential.Changes() {
		s.SetMore(s.Assign(fieldName, value))
	}
	s.SetMore(s.Assign("version", credential.Version()+1))

	s.Where(s.Equal("id", credential.Id()))
	s.Where(s.Equal("version", credential.Version()))
	s.Returning("audit_updated_at", "version")

	query, args := s.Build()
	logging.Logger.Debug("executing sql: ", query)
	row := tx.QueryRowContext(ctx, query, args...)

	err = row.Scan(credential.UpdatePointers()...)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("updating credential: %w", repositories.ErrVersionMismatch)
	case err != nil:
		return fmt.Errorf("scanning row: %w", err)
	}

	credential.ClearChanges()
	return nil
}

func (r *CredentialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	scope := middlewares.GetScope(ctx)
	dbService := ioc.GetDependency[database.DbService](scope)

	tx, err := dbService.GetTx()
	if err != nil {
		return fmt.Errorf("failed to open tx: %w", err)
	}

	s := sqlbuilder.DeleteFrom("credentials")
	s.Where(s.Equal("id", id))

	query, args := s.Build()
	logging.Logger.Debug("executing sql: ", query)
	_, err = tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("executing sql: %w", err)
	}

	return nil
}
