package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/platform/logger"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("listing-query-service/nats-subscriber")

// Subjects whose events make cached search results stale.
const (
	SubjectListingCreated  = "listing.created"
	SubjectListingUpdated  = "listing.updated"
	SubjectListingDeleted  = "listing.deleted"
	SubjectCategoryChanged = "category.changed"
)

var InvalidationSubjects = []string{
	SubjectListingCreated,
	SubjectListingUpdated,
	SubjectListingDeleted,
	SubjectCategoryChanged,
}

// CacheInvalidator drops cached search results.
type CacheInvalidator interface {
	InvalidateCache(ctx context.Context) error
}

// changeEvent is the part of a write-side event this service looks at.
type changeEvent struct {
	ListingID  int64 `json:"listing_id,omitempty"`
	CategoryID int64 `json:"category_id,omitempty"`
}

// Subscriber listens for write-side events and invalidates the search cache.
// Every replica subscribes without a queue group so per-process caches are
// all cleared.
type Subscriber struct {
	conn        *nats.Conn
	invalidator CacheInvalidator
	subs        []*nats.Subscription
	logger      *logger.Logger
}

// NewSubscriber connects to url. Call Start to begin consuming.
func NewSubscriber(url string, log *logger.Logger, appName string, invalidator CacheInvalidator) (*Subscriber, error) {
	log.Info("NATS Subscriber: connecting...", zap.String("url", url))

	opts := []nats.Option{
		nats.Name(fmt.Sprintf("%s NATS Subscriber", appName)),
		nats.Timeout(10 * time.Second),
		nats.MaxReconnects(-1),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			subject := ""
			if sub != nil {
				subject = sub.Subject
			}
			log.Error("NATS error", zap.String("subject", subject), zap.Error(err))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Info("NATS connection closed")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			// Events may have been missed while disconnected.
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
			if err := invalidator.InvalidateCache(context.Background()); err != nil {
				log.Warn("Cache invalidation after reconnect failed", zap.Error(err))
			}
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		log.Error("NATS Subscriber: failed to connect", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	log.Info("NATS Subscriber: successfully connected", zap.String("url", conn.ConnectedUrl()))

	return newSubscriber(conn, invalidator, log), nil
}

func newSubscriber(conn *nats.Conn, invalidator CacheInvalidator, log *logger.Logger) *Subscriber {
	return &Subscriber{
		conn:        conn,
		invalidator: invalidator,
		logger:      log.Named("NATSSubscriber"),
	}
}

// Start subscribes to every invalidation subject.
func (s *Subscriber) Start() error {
	for _, subject := range InvalidationSubjects {
		sub, err := s.conn.Subscribe(subject, s.handleMessage)
		if err != nil {
			s.unsubscribeAll()
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
		s.subs = append(s.subs, sub)
		s.logger.Info("NATS Subscriber: subscribed", zap.String("subject", subject))
	}
	return s.conn.Flush()
}

func (s *Subscriber) handleMessage(msg *nats.Msg) {
	ctx := context.Background()
	if msg.Header != nil {
		ctx = otel.GetTextMapPropagator().Extract(ctx, NATSHeaderCarrier(msg.Header))
	}
	ctx, span := tracer.Start(ctx, fmt.Sprintf("NATS.Consume.%s", msg.Subject),
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(attribute.String("messaging.destination", msg.Subject)))
	defer span.End()

	fields := []zap.Field{zap.String("subject", msg.Subject)}
	var evt changeEvent
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &evt); err != nil {
			// The payload is informational only; invalidate regardless.
			s.logger.Debug("NATS Subscriber: undecodable event payload", zap.String("subject", msg.Subject), zap.Error(err))
		} else {
			fields = append(fields, zap.Int64("listing_id", evt.ListingID), zap.Int64("category_id", evt.CategoryID))
		}
	}

	if err := s.invalidator.InvalidateCache(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("NATS Subscriber: cache invalidation failed", append(fields, zap.Error(err))...)
		return
	}
	s.logger.Debug("NATS Subscriber: search cache invalidated", fields...)
}

func (s *Subscriber) unsubscribeAll() {
	for _, sub := range s.subs {
		if err := sub.Unsubscribe(); err != nil {
			s.logger.Warn("NATS Subscriber: unsubscribe failed", zap.String("subject", sub.Subject), zap.Error(err))
		}
	}
	s.subs = nil
}

// Close drains subscriptions and closes the connection.
func (s *Subscriber) Close() {
	s.logger.Info("NATS Subscriber: closing connection...")
	if s.conn != nil && !s.conn.IsClosed() {
		if err := s.conn.Drain(); err != nil {
			s.logger.Error("NATS Subscriber: failed to drain connection", zap.Error(err))
		}
		s.conn.Close()
		return
	}
	s.logger.Info("NATS Subscriber: connection already closed or not initialized.")
}

// NATSHeaderCarrier adapts nats.Header to an OpenTelemetry TextMapCarrier.
type NATSHeaderCarrier nats.Header

func (c NATSHeaderCarrier) Get(key string) string {
	return nats.Header(c).Get(key)
}

func (c NATSHeaderCarrier) Set(key string, value string) {
	nats.Header(c).Set(key, value)
}

func (c NATSHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
