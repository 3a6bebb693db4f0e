package setup

import (
	"Sigil/internal/config"
	"Sigil/internal/database"
	"Sigil/internal/repositories"
	"Sigil/internal/repositories/postgres"
	"database/sql"

	"github.com/The127/ioc"
)

func Repositories(dc *ioc.DependencyCollection, mode config.DatabaseMode) {
	switch mode {
	case config.DatabaseModePostgres:
		postgresRepositories(dc)

	default:
		panic("database mode missing or not supported")
	}
}

func postgresRepositories(dc *ioc.DependencyCollection) {
	ioc.RegisterSingleton(dc, func(dp *ioc.DependencyProvider) *sql.DB {
		return database.ConnectToDatabase()
	})

	ioc.RegisterScoped(dc, func(dp *ioc.DependencyProvider) database.DbService {
		return database.NewDbService(dp)
	})
	ioc.RegisterCloseHandler(dc, func(dbService database.DbService) error {
		return dbService.Close()
	})

	ioc.RegisterScoped(dc, func(dp *ioc.DependencyProvider) repositories.UserRepository {
		return postgres.NewUserRepository()
	})
	ioc.RegisterScoped(dc, func(dp *ioc.DependencyProvider) repositories.CredentialRepository {
		return postgres.NewCredentialRepository()
	})
	ioc.RegisterScoped(dc, func(dp *ioc.DependencyProvider) repositories.SessionRepository {
		return postgres.NewSessionRepository()
	})
	ioc.RegisterScoped(dc, func(dp *ioc.DependencyProvider) repositories.OutboxMessageRepository {
		return postgres.NewOutboxMessageRepository()
	})
}
