//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	audit "atelier/pkg/platform/audit"
	"atelier/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *Store
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.store = New(s.redis.Client, "test:audit", WithMaxLen(1000))
}

func (s *RedisStoreSuite) TestAppendThenList() {
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	s.Require().NoError(s.store.Append(ctx, audit.Record{
		Action:     audit.ActionEventPublished,
		RequestID:  "req-1",
		TargetType: audit.TargetEvent,
		TargetID:   "evt-1",
		ActorID:    "usr-1",
		Metadata:   map[string]any{"slug": "go-basics"},
		Timestamp:  at,
	}))
	s.Require().NoError(s.store.Append(ctx, audit.Record{
		Action:     audit.ActionParticipantAdded,
		RequestID:  "req-2",
		TargetType: audit.TargetRegistration,
		TargetID:   "reg-1",
		Timestamp:  at.Add(time.Minute),
	}))

	all, err := s.store.List(ctx, audit.Filter{})
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(audit.ActionEventPublished, all[0].Action)
	s.Equal("go-basics", all[0].Metadata["slug"])
	s.True(at.Equal(all[0].Timestamp))

	events, err := s.store.List(ctx, audit.Filter{TargetType: audit.TargetEvent})
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal("evt-1", events[0].TargetID)

	byRequest, err := s.store.List(ctx, audit.Filter{RequestID: "req-2"})
	s.Require().NoError(err)
	s.Require().Len(byRequest, 1)
	s.Nil(byRequest[0].Metadata)
}

func (s *RedisStoreSuite) TestListLimitKeepsNewest() {
	ctx := context.Background()
	for _, target := range []string{"evt-1", "evt-2", "evt-3"} {
		s.Require().NoError(s.store.Append(ctx, audit.Record{
			Action:     audit.ActionEventCreated,
			TargetType: audit.TargetEvent,
			TargetID:   target,
		}))
	}

	out, err := s.store.List(ctx, audit.Filter{Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(out, 2)
	s.Equal("evt-2", out[0].TargetID)
	s.Equal("evt-3", out[1].TargetID)
}
