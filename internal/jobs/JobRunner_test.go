package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type JobManagerSuite struct {
	suite.Suite
}

func TestJobManagerSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(JobManagerSuite))
}

func (s *JobManagerSuite) TestRunsImmediateJobOnStart() {
	// arrange
	ran := make(chan struct{}, 1)

	manager := NewJobManager()
	manager.QueueJob(func(ctx context.Context) error {
		ran <- struct{}{}
		return nil
	}, time.Hour, WithStartImmediate(), WithName("immediate"))

	// act
	manager.Start(s.T().Context())
	defer manager.Stop()

	// assert
	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		s.Fail("job did not run")
	}
}

func (s *JobManagerSuite) TestReportsJobErrors() {
	// arrange
	jobErr := errors.New("job failed")
	reported := make(chan error, 1)

	manager := NewJobManager(WithOnError(func(err error) {
		reported <- err
	}))
	manager.QueueJob(func(ctx context.Context) error {
		return jobErr
	}, time.Hour, WithStartImmediate())

	// act
	manager.Start(s.T().Context())
	defer manager.Stop()

	// assert
	select {
	case err := <-reported:
		s.Require().ErrorIs(err, jobErr)
	case <-time.After(5 * time.Second):
		s.Fail("error was not reported")
	}
}

func (s *JobManagerSuite) TestRecoversFromPanickingJob() {
	// arrange
	reported := make(chan error, 1)

	manager := NewJobManager(WithOnError(func(err error) {
		reported <- err
	}))
	manager.QueueJob(func(ctx context.Context) error {
		panic("boom")
	}, time.Hour, WithStartImmediate(), WithName("panicky"))

	// act
	manager.Start(s.T().Context())
	defer manager.Stop()

	// assert
	select {
	case err := <-reported:
		s.Require().ErrorContains(err, "panicky")
		s.Require().ErrorContains(err, "boom")
	case <-time.After(5 * time.Second):
		s.Fail("panic was not reported")
	}
}

func (s *JobManagerSuite) TestStopWaitsForRunLoops() {
	// arrange
	started := make(chan struct{})
	release := make(chan struct{})

	manager := NewJobManager()
	manager.QueueJob(func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}, time.Hour, WithStartImmediate())

	manager.Start(s.T().Context())
	<-started

	stopped := make(chan struct{})
	go func() {
		manager.Stop()
		close(stopped)
	}()

	// act
	select {
	case <-stopped:
		s.Fail("stop returned while a run was still in flight")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)

	// assert
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		s.Fail("stop did not return")
	}
}
