package behaviours

import (
	"Sigil/internal/middlewares"
	"Sigil/utils"
	"context"
	"errors"
	"testing"

	"github.com/The127/ioc"
	"github.com/The127/mediatr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type PolicyBehaviourSuite struct {
	suite.Suite
}

func TestPolicyBehaviourSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(PolicyBehaviourSuite))
}

type recordingAuditLogger struct {
	policies []Policy
	results  []PolicyResult
}

func (r *recordingAuditLogger) Log(_ context.Context, policy Policy, result PolicyResult) error {
	r.policies = append(r.policies, policy)
	r.results = append(r.results, result)
	return nil
}

type stubPolicy struct {
	result PolicyResult
	err    error
}

func (p stubPolicy) IsAllowed(_ context.Context) (PolicyResult, error) {
	return p.result, p.err
}

func (p stubPolicy) GetRequestName() string {
	return "StubRequest"
}

func (s *PolicyBehaviourSuite) createContext(auditLogger AuditLogger) context.Context {
	dc := ioc.NewDependencyCollection()

	ioc.RegisterTransient(dc, func(dp *ioc.DependencyProvider) AuditLogger {
		return auditLogger
	})

	scope := dc.BuildProvider()
	s.T().Cleanup(func() {
		utils.PanicOnError(scope.Close, "closing scope")
	})

	return middlewares.ContextWithScope(s.T().Context(), scope)
}

func (s *PolicyBehaviourSuite) TestAllowedRequestPassesThrough() {
	// arrange
	auditLogger := &recordingAuditLogger{}
	ctx := s.createContext(auditLogger)

	userId := uuid.New()
	policy := stubPolicy{result: Allowed(userId, NewAllowedByOwnership())}

	nextCalled := false
	var next mediatr.Next = func() (any, error) {
		nextCalled = true
		return "handled", nil
	}

	// act
	result, err := PolicyBehaviour(ctx, policy, next)

	// assert
	s.Require().NoError(err)
	s.Equal("handled", result)
	s.True(nextCalled)

	s.Require().Len(auditLogger.results, 1)
	s.True(auditLogger.results[0].IsAllowed())
	s.Equal(userId, auditLogger.results[0].UserId())
}

func (s *PolicyBehaviourSuite) TestDeniedRequestNeverReachesHandler() {
	// arrange
	auditLogger := &recordingAuditLogger{}
	ctx := s.createContext(auditLogger)

	policy := stubPolicy{result: Denied(uuid.New())}

	nextCalled := false
	var next mediatr.Next = func() (any, error) {
		nextCalled = true
		return nil, nil
	}

	// act
	result, err := PolicyBehaviour(ctx, policy, next)

	// assert
	s.Require().ErrorIs(err, utils.ErrHttpUnauthorized)
	s.Nil(result)
	s.False(nextCalled)

	// denied requests still hit the audit trail
	s.Require().Len(auditLogger.results, 1)
	s.False(auditLogger.results[0].IsAllowed())
}

func (s *PolicyBehaviourSuite) TestPolicyErrorShortCircuits() {
	// arrange
	auditLogger := &recordingAuditLogger{}
	ctx := s.createContext(auditLogger)

	policyErr := errors.New("policy exploded")
	policy := stubPolicy{err: policyErr}

	var next mediatr.Next = func() (any, error) {
		s.Fail("next must not be called")
		return nil, nil
	}

	// act
	result, err := PolicyBehaviour(ctx, policy, next)

	// assert
	s.Require().ErrorIs(err, policyErr)
	s.Nil(result)
	s.Empty(auditLogger.results)
}
