package pubsub

import (
	"context"
	"errors"
	"testing"

	"github.com/autoads/autoads-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestResourceNames(t *testing.T) {
	c := &Client{project: "autoads-prod"}

	assert.Equal(t, "projects/autoads-prod/topics/domain-events", c.name(topics, "domain-events"))
	assert.Equal(t, "projects/autoads-prod/subscriptions/worker", c.name(subscriptions, " worker "))
	assert.Equal(t, "projects/other/topics/t1", c.name(topics, "projects/other/topics/t1"))
	assert.Equal(t, "projects/autoads-prod/subscriptions/projects/other/topics/t1", c.name(subscriptions, "projects/other/topics/t1"))
	assert.Empty(t, c.name(subscriptions, ""))
	assert.Empty(t, (&Client{}).name(topics, "t"))
}

func TestNilClient(t *testing.T) {
	var c *Client
	assert.Nil(t, c.DomainPublisher())
	assert.Nil(t, c.DomainSubscription())
	assert.NoError(t, c.Close())
	assert.ErrorIs(t, c.Ping(context.Background()), errNotInitialized)
}

func TestNewClientValidatesConfig(t *testing.T) {
	ctx := context.Background()
	_, err := NewClient(ctx, config.GCPConfig{}, config.PubSubConfig{DomainTopic: "t"}, nil)
	assert.ErrorIs(t, err, errProjectIDRequired)

	_, err = NewClient(ctx, config.GCPConfig{ProjectID: "p"}, config.PubSubConfig{DomainTopic: " "}, nil)
	assert.ErrorIs(t, err, errTopicRequired)
}

func TestDescribe(t *testing.T) {
	assert.NoError(t, describe("topic", "t", nil))
	assert.EqualError(t, describe("topic", "t", status.Error(codes.NotFound, "gone")), `topic "t" does not exist`)

	cause := errors.New("dial")
	assert.ErrorIs(t, describe("subscription", "s", cause), cause)
}
