// Package pubsub opens the Pub/Sub v2 client that carries domain events
// between the API and the worker.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/autoads/autoads-backend/pkg/config"
	"github.com/autoads/autoads-backend/pkg/logger"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	topics        = "topics"
	subscriptions = "subscriptions"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errTopicRequired     = errors.New("pubsub domain topic is required")
	errNotInitialized    = errors.New("pubsub client not initialized")
)

type Client struct {
	sdk     *pubsub.Client
	project string
	topic   string
	sub     string
}

// NewClient connects and fails fast when the domain topic, or the domain
// subscription if one is configured, is missing.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	c := &Client{
		project: strings.TrimSpace(gcp.ProjectID),
		topic:   strings.TrimSpace(cfg.DomainTopic),
		sub:     strings.TrimSpace(cfg.DomainSubscription),
	}
	if c.project == "" {
		return nil, errProjectIDRequired
	}
	if c.topic == "" {
		return nil, errTopicRequired
	}

	sdk, err := pubsub.NewClient(ctx, c.project, gcp.ClientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	c.sdk = sdk

	if err := c.Ping(ctx); err != nil {
		_ = sdk.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"topic": c.topic, "subscription": c.sub}), "pubsub client initialized")
	}
	return c, nil
}

// Ping checks that the configured topic and subscription exist.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.sdk == nil {
		return errNotInitialized
	}
	_, err := c.sdk.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: c.name(topics, c.topic)})
	if err := describe("topic", c.topic, err); err != nil {
		return err
	}
	if c.sub == "" {
		return nil
	}
	_, err = c.sdk.SubscriptionAdminClient.GetSubscription(ctx, &pubsubpb.GetSubscriptionRequest{Subscription: c.name(subscriptions, c.sub)})
	return describe("subscription", c.sub, err)
}

func describe(kind, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.NotFound:
		return fmt.Errorf("%s %q does not exist", kind, id)
	default:
		return fmt.Errorf("check %s %q: %w", kind, id, err)
	}
}

// Subscription accepts a subscription id or a full resource name.
func (c *Client) Subscription(id string) *pubsub.Subscriber {
	if c == nil || c.sdk == nil {
		return nil
	}
	full := c.name(subscriptions, id)
	if full == "" {
		return nil
	}
	return c.sdk.Subscriber(full)
}

// Publisher accepts a topic id or a full resource name.
func (c *Client) Publisher(id string) *pubsub.Publisher {
	if c == nil || c.sdk == nil {
		return nil
	}
	full := c.name(topics, id)
	if full == "" {
		return nil
	}
	return c.sdk.Publisher(full)
}

func (c *Client) DomainSubscription() *pubsub.Subscriber {
	if c == nil {
		return nil
	}
	return c.Subscription(c.sub)
}

func (c *Client) DomainPublisher() *pubsub.Publisher {
	if c == nil {
		return nil
	}
	return c.Publisher(c.topic)
}

func (c *Client) Close() error {
	if c == nil || c.sdk == nil {
		return nil
	}
	return c.sdk.Close()
}

// name expands id into projects/<project>/<collection>/<id>. Names that
// already point into collection pass through.
func (c *Client) name(collection, id string) string {
	id = strings.TrimSpace(id)
	if c == nil || id == "" {
		return ""
	}
	if strings.HasPrefix(id, "projects/") && strings.Contains(id, "/"+collection+"/") {
		return id
	}
	if c.project == "" {
		return ""
	}
	return "projects/" + c.project + "/" + collection + "/" + id
}
