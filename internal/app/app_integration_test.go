//go:build integration

package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"atelier/internal/audited"
	"atelier/internal/platform/config"
	"atelier/internal/usecase"
	audit "atelier/pkg/platform/audit"
	auditredis "atelier/pkg/platform/audit/store/redis"
	"atelier/pkg/testutil/containers"
)

type RedisMirrorSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestRedisMirrorSuite(t *testing.T) {
	suite.Run(t, new(RedisMirrorSuite))
}

func (s *RedisMirrorSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *RedisMirrorSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisMirrorSuite) build(sink string) *App {
	cfg := memoryConfig()
	cfg.AuditSink = sink
	cfg.Redis = config.RedisConfig{URL: s.redis.URL, Stream: "it:audit"}

	a, err := Build(context.Background(), cfg, discardLogger(), nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = a.Close() })
	return a
}

func (s *RedisMirrorSuite) registerUser(a *App, email string) {
	ctx := context.Background()
	err := a.Tx.RunInTx(ctx, func(ctx context.Context) error {
		_, err := usecase.RegisterUser(ctx, audited.Wrap(a.Deps, a.Journal, audited.Options{Action: audit.ActionUserRegistered}), usecase.RegisterUserInput{Email: email})
		return err
	})
	s.Require().NoError(err)
}

func (s *RedisMirrorSuite) streamRecords() []audit.Record {
	records, err := auditredis.New(s.redis.Client, "it:audit").List(context.Background(), audit.Filter{})
	s.Require().NoError(err)
	return records
}

func (s *RedisMirrorSuite) TestMemorySinkMirrorsToStream() {
	a := s.build(config.SinkMemory)
	s.Require().NotNil(a.Redis)
	s.Require().NoError(a.Health(context.Background()))

	s.registerUser(a, "ada@example.com")

	records := s.streamRecords()
	s.Require().Len(records, 1)
	s.Equal(audit.ActionUserRegistered, records[0].Action)
}

func (s *RedisMirrorSuite) TestRedisSinkIsPrimary() {
	a := s.build(config.SinkRedis)

	s.registerUser(a, "grace@example.com")
	s.registerUser(a, "linus@example.com")

	s.Len(s.streamRecords(), 2)
}
