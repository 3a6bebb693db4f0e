package setup

import (
	"Sigil/internal/behaviours"
	"Sigil/internal/commands"
	"Sigil/internal/events"
	"Sigil/internal/queries"

	"github.com/The127/ioc"
	"github.com/The127/mediatr"
)

func Mediator(dc *ioc.DependencyCollection) {
	m := mediatr.NewMediator()

	mediatr.RegisterHandler(m, commands.HandleBeginPasskeyRegistration)
	mediatr.RegisterHandler(m, commands.HandleFinishPasskeyRegistration)
	mediatr.RegisterHandler(m, commands.HandleBeginPasskeyLogin)
	mediatr.RegisterHandler(m, commands.HandleFinishPasskeyLogin)
	mediatr.RegisterHandler(m, commands.HandleReportCeremonyFailure)
	mediatr.RegisterHandler(m, commands.HandleRemovePasskey)
	mediatr.RegisterHandler(m, commands.HandlePromoteProvisionalUser)

	mediatr.RegisterHandler(m, queries.HandleListPasskeys)
	mediatr.RegisterHandler(m, queries.HandleGetCeremonyState)

	mediatr.RegisterEventHandler(m, events.QueueNewPasskeyMailOnCredentialRegisteredEvent)
	mediatr.RegisterEventHandler(m, events.AlertOnCounterRegressionDetectedEvent)
	mediatr.RegisterEventHandler(m, events.LogCredentialRemovedEvent)

	mediatr.RegisterBehaviour(m, behaviours.PolicyBehaviour)

	ioc.RegisterSingleton(dc, func(dp *ioc.DependencyProvider) mediatr.Mediator {
		return m
	})
}
