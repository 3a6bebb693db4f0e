package setup

import (
	"Sigil/internal/behaviours"
	"Sigil/internal/config"
	"Sigil/internal/middlewares"
	"Sigil/internal/services"
	"Sigil/internal/services/audit"
	"Sigil/internal/services/keyValue"

	"github.com/The127/ioc"
)

func Services(dc *ioc.DependencyCollection) {
	ioc.RegisterSingleton(dc, func(dp *ioc.DependencyProvider) services.MailService {
		return services.NewMailService()
	})
	ioc.RegisterSingleton(dc, func(dp *ioc.DependencyProvider) services.ChallengeService {
		return services.NewChallengeService()
	})
	ioc.RegisterSingleton(dc, func(dp *ioc.DependencyProvider) services.CeremonyStateService {
		return services.NewCeremonyStateService()
	})
	ioc.RegisterSingleton(dc, func(dp *ioc.DependencyProvider) services.RegistrationTokenService {
		return services.NewRegistrationTokenService()
	})
	ioc.RegisterSingleton(dc, func(dp *ioc.DependencyProvider) middlewares.SessionService {
		return services.NewSessionService()
	})
	ioc.RegisterSingleton(dc, func(dp *ioc.DependencyProvider) behaviours.AuditLogger {
		return audit.NewConsoleAuditLogger()
	})
}

func Caching(dc *ioc.DependencyCollection, mode config.CacheMode) {
	ioc.RegisterSingleton(dc, func(dp *ioc.DependencyProvider) keyValue.Store {
		switch mode {
		case config.CacheModeMemory:
			return keyValue.NewMemoryStore()

		case config.CacheModeRedis:
			return keyValue.NewRedisStore()

		default:
			panic("cache mode missing or not supported")
		}
	})
}
