package events

import (
	"fmt"
	"log/slog"
	"time"

	"cinema-ticket/monitoring"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

const consumerGroupPrefix = "cinema-ticket."

// Transport is the pub/sub pair events travel on.
type Transport struct {
	Publisher     message.Publisher
	NewSubscriber func(handlerName string) (message.Subscriber, error)
	close         func() error
}

func (t *Transport) Close() error {
	if t.close == nil {
		return nil
	}
	return t.close()
}

// NewRedisTransport uses Redis streams with one consumer group per handler.
func NewRedisTransport(rdb redis.UniversalClient, logger watermill.LoggerAdapter) (*Transport, error) {
	pub, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: rdb,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("could not create redis publisher: %w", err)
	}

	return &Transport{
		Publisher: pub,
		NewSubscriber: func(handlerName string) (message.Subscriber, error) {
			return redisstream.NewSubscriber(redisstream.SubscriberConfig{
				Client:        rdb,
				ConsumerGroup: consumerGroupPrefix + handlerName,
			}, logger)
		},
		close: pub.Close,
	}, nil
}

// NewMemoryTransport keeps events in process. Used in development and tests.
func NewMemoryTransport(logger watermill.LoggerAdapter) *Transport {
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
		Persistent:          true,
	}, logger)

	return &Transport{
		Publisher: ch,
		NewSubscriber: func(string) (message.Subscriber, error) {
			return ch, nil
		},
		close: ch.Close,
	}
}

// NewRouter builds the message router and registers handlers on it.
func NewRouter(t *Transport, handlers []cqrs.EventHandler, logger watermill.LoggerAdapter) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return nil, fmt.Errorf("could not create router: %w", err)
	}

	router.AddMiddleware(middleware.Recoverer)
	router.AddMiddleware(middleware.Retry{
		MaxRetries:      5,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2,
		Logger:          logger,
	}.Middleware)
	router.AddMiddleware(observe)

	ep, err := cqrs.NewEventProcessorWithConfig(router, cqrs.EventProcessorConfig{
		SubscriberConstructor: func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
			return t.NewSubscriber(params.HandlerName)
		},
		GenerateSubscribeTopic: func(params cqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
			return topic(params.EventName), nil
		},
		Marshaler: marshaler(),
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create event processor: %w", err)
	}

	if err := ep.AddHandlers(handlers...); err != nil {
		return nil, fmt.Errorf("could not add handlers to event processor: %w", err)
	}

	return router, nil
}

func observe(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		start := time.Now()
		handler := message.HandlerNameFromCtx(msg.Context())

		msgs, err := next(msg)
		monitoring.TrackEvent(handler, err, time.Since(start))
		if err != nil {
			slog.Error("Event handler failed",
				"handler", handler,
				"topic", message.SubscribeTopicFromCtx(msg.Context()),
				"message_id", msg.UUID,
				"error", err)
		}
		return msgs, err
	}
}
