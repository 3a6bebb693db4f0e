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
)

type UserRepository struct{}

func NewUserRepository() repositories.UserRepository {
	return &UserRepository{}
}

func (r *UserRepository) selectQuery(filter repositories.UserFilter) *sqlbuilder.SelectBuilder {
	s := sqlbuilder.Select(
		"id",
		"audit_created_at",
		"audit_updated_at",
		"version",
		"display_name",
		"primary_email",
		"provisional",
	).From("users")

	if filter.HasId() {
		s.Where(s.Equal("id", filter.GetId()))
	}

	if filter.HasPrimaryEmail() {
		s.Where(s.Equal("primary_email", filter.GetPrimaryEmail()))
	}

	if filter.HasProvisional() {
		s.Where(s.Equal("provisional", filter.GetProvisional()))
	}

	return s
}

func (r *UserRepository) Single(ctx context.Context, filter repositories.UserFilter) (*repositories.User, error) {
	user, err := r.First(ctx, filter)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user: %w", utils.ErrResourceNotFound)
	}
	return user, nil
}

func (r *UserRepository) First(ctx context.Context, filter repositories.UserFilter) (*repositories.User, error) {
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

	user := repositories.User{
		ModelBase: repositories.NewModelBase(),
	}
	err = row.Scan(user.GetScanPointers()...)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil

	case err != nil:
		return nil, fmt.Errorf("scanning row: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) Insert(ctx context.Context, user *repositories.User) error {
	scope := middlewares.GetScope(ctx)
	dbService := ioc.GetDependency[database.DbService](scope)

	tx, err := dbService.GetTx()
	if err != nil {
		return fmt.Errorf("failed to open tx: %w", err)
	}

	s := sqlbuilder.InsertInto("users").
		Cols("display_name", "primary_email", "provisional").
		Values(user.DisplayName(), user.PrimaryEmail(), user.IsProvisional()).
		Returning("id", "audit_created_at", "audit_updated_at", "version")

	query, args := s.Build()
	logging.Logger.Debug("executing sql: ", query)
	row := tx.QueryRowContext(ctx, query, args...)

	err = row.Scan(user.InsertPointers()...)
	if err != nil {
		return fmt.Errorf("scanning row: %w", err)
	}

	user.ClearChanges()
	return nil
}

func (r *UserRepository) Update(ctx context.Context, user *repositories.User) error {
	scope := middlewares.GetScope(ctx)
	dbService := ioc.GetDependency[database.DbService](scope)

	tx, err := dbService.GetTx()
	if err != nil {
		return fmt.Errorf("failed to open tx: %w", err)
	}

	s := sqlbuilder.Update("users")
	for fieldName, value := range user.Changes() {
		s.SetMore(s.Assign(fieldName, value))
	}
	s.SetMore(s.Assign("version", user.Version()+1))

	s.Where(s.Equal("id", user.Id()))
	s.Where(s.Equal("version", user.Version()))
	s.Returning("audit_updated_at", "version")

	query, args := s.Build()
	logging.Logger.Debug("executing sql: ", query)
	row := tx.QueryRowContext(ctx, query, args...)

	err = row.Scan(user.UpdatePointers()...)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("updating user: %w", repositories.ErrVersionMismatch)
	case err != nil:
		return fmt.Errorf("scanning row: %w", err)
	}

	user.ClearChanges()
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	scope := middlewares.GetScope(ctx)
	dbService := ioc.GetDependency[database.DbService](scope)

	tx, err := dbService.GetTx()
	if err != nil {
		return fmt.Errorf("failed to open tx: %w", err)
	}

	s := sqlbuilder.DeleteFrom("users")
	s.Where(s.Equal("id", id))

	query, args := s.Build()
	logging.Logger.Debug("executing sql: ", query)
	_, err = tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("executing sql: %w", err)
	}

	return nil
}
