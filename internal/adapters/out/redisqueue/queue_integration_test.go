package redisqueue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"orderhub/internal/core/ports"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type StreamIntegrationTestSuite struct {
	suite.Suite
	container testcontainers.Container
	client    *redis.Client
	ctx       context.Context
}

func (s *StreamIntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	s.Require().NoError(err)
	s.container = container

	host, err := container.Host(s.ctx)
	s.Require().NoError(err)
	port, err := container.MappedPort(s.ctx, "6379")
	s.Require().NoError(err)

	s.client, err = NewClient(s.ctx, Config{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	s.Require().NoError(err)
}

func (s *StreamIntegrationTestSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *StreamIntegrationTestSuite) TestDispatchThenConsume() {
	stream := "transitions-" + s.T().Name()
	task := sampleTask()

	handler := &MockEffectHandler{}
	handler.On("Handle", mock.Anything, withTaskID(task.TaskID)).Return(nil).Once()

	consumer := NewStreamConsumer(s.client, handler, stream, "effects", "w1", discardLogger())
	s.Require().NoError(consumer.EnsureGroup(s.ctx))
	s.Require().NoError(consumer.EnsureGroup(s.ctx))

	s.Require().NoError(NewStreamDispatcher(s.client, stream).Dispatch(s.ctx, task))

	acked, err := consumer.ReadNew(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, acked)

	pending, err := s.client.XPending(s.ctx, stream, "effects").Result()
	s.Require().NoError(err)
	s.Zero(pending.Count)
	handler.AssertExpectations(s.T())
}

func (s *StreamIntegrationTestSuite) TestFailedEntryIsReclaimed() {
	stream := "transitions-" + s.T().Name()
	task := sampleTask()

	failing := &MockEffectHandler{}
	failing.On("Handle", mock.Anything, mock.Anything).Return(fmt.Errorf("downstream unavailable"))

	first := NewStreamConsumer(s.client, failing, stream, "effects", "w1", discardLogger())
	s.Require().NoError(first.EnsureGroup(s.ctx))
	s.Require().NoError(NewStreamDispatcher(s.client, stream).Dispatch(s.ctx, task))

	acked, err := first.ReadNew(s.ctx)
	s.Require().NoError(err)
	s.Zero(acked)

	var received ports.TransitionTask
	recovering := &MockEffectHandler{}
	recovering.On("Handle", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { received = args.Get(1).(ports.TransitionTask) }).
		Return(nil)

	second := NewStreamConsumer(s.client, recovering, stream, "effects", "w2", discardLogger(),
		WithMinIdle(time.Millisecond))
	time.Sleep(10 * time.Millisecond)

	acked, err = second.Reclaim(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, acked)
	s.Equal(task.OrderID, received.OrderID)
}

func TestStreamIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(StreamIntegrationTestSuite))
}
