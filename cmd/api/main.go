// @title       Sigil API
// @description Passkey-first authentication service.
// @BasePath    /
package main

import (
	"Sigil/internal/clock"
	"Sigil/internal/config"
	"Sigil/internal/database"
	"Sigil/internal/jobs"
	"Sigil/internal/logging"
	"Sigil/internal/metrics"
	"Sigil/internal/middlewares"
	"Sigil/internal/quorum"
	"Sigil/internal/server"
	"Sigil/internal/setup"
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/The127/ioc"

	"Sigil/docs"

	"github.com/huandu/go-sqlbuilder"
)

func tryFiveTimes(f func() error, msg string) {
	var err error
	for i := 0; i < 5; i++ {
		err = f()
		if err == nil {
			return
		}

		logging.Logger.Infof(msg+": %v", err)
		logging.Logger.Infof("Retrying in 5 seconds (attempt %d/5)", i+1)
		time.Sleep(5 * time.Second)
	}

	panic(err)
}

func main() {
	config.Init()
	configureSwaggerFromConfig()

	sqlbuilder.DefaultFlavor = sqlbuilder.PostgreSQL

	logging.Init()
	metrics.Init()

	tryFiveTimes(database.Migrate, "failed to migrate database")

	dc := ioc.NewDependencyCollection()

	ioc.RegisterSingleton(dc, func(dp *ioc.DependencyProvider) clock.Service {
		return clock.NewClockService()
	})

	setup.OutboxDelivery(dc, config.C.Queue.Mode)
	setup.Caching(dc, config.C.Cache.Mode)
	setup.Services(dc)
	setup.Repositories(dc, config.C.Database.Mode)
	setup.Mediator(dc)
	dp := dc.BuildProvider()

	var jobManager jobs.JobManager
	leaderElection := quorum.NewLeaderElectionFactory().
		OnLeaderChange(func(isLeader bool) {
			if isLeader {
				jobManager = jobs.NewJobManager(jobs.WithOnError(func(err error) {
					logging.Logger.Errorf("an error happened while running a job: %v", err)
				}))

				jobManager.QueueJob(
					jobs.OutboxSendingJob(dp),
					time.Second*10,
					jobs.WithName("outbox_sender"),
					jobs.WithStartImmediate(),
				)

				jobManager.QueueJob(
					jobs.SessionCleanupJob(dp),
					time.Hour,
					jobs.WithName("session_cleanup"),
				)

				logging.Logger.Info("Starting job manager")
				jobManager.Start(middlewares.ContextWithScope(context.Background(), dp))
			} else {
				logging.Logger.Info("Stopping job manager")
				if jobManager != nil {
					jobManager.Stop()
				}
			}
		}).
		Build(config.C.LeaderElection)
	err := leaderElection.Start(middlewares.ContextWithScope(context.Background(), dp))
	if err != nil {
		panic(fmt.Errorf("failed to start leader election: %s", err.Error()))
	}

	server.Serve(dp, config.C.Server)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}

func configureSwaggerFromConfig() {
	if config.C.Server.ExternalUrl != "" {
		if u, err := url.Parse(config.C.Server.ExternalUrl); err == nil {
			if u.Host != "" {
				docs.SwaggerInfo.Host = u.Host
			}

			if u.Scheme != "" {
				docs.SwaggerInfo.Schemes = []string{u.Scheme}
			}
		}
	} else {
		docs.SwaggerInfo.Host = fmt.Sprintf("%s:%d", config.C.Server.Host, config.C.Server.Port)
	}

	if len(docs.SwaggerInfo.Schemes) == 0 {
		docs.SwaggerInfo.Schemes = []string{"http"}
	}

	docs.SwaggerInfo.BasePath = "/"
}
