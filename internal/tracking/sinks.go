package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"partner-intake/internal/common/observability"
	"partner-intake/internal/models"
)

// MetricsSink records every event on the OpenTelemetry meter.
type MetricsSink struct {
	obs *observability.Observability
}

func NewMetricsSink(obs *observability.Observability) *MetricsSink {
	return &MetricsSink{obs: obs}
}

func (s *MetricsSink) Name() string { return "metrics" }

func (s *MetricsSink) Deliver(ctx context.Context, event models.TrackingEvent) error {
	s.obs.RecordEvent(ctx, string(event.Type), event.MarketType, event.TargetMarket)
	if event.Type == models.EventStepChanged {
		s.obs.RecordStep(ctx, event.MarketType, event.Step)
	}
	return nil
}

// SearchSink indexes events into Elasticsearch for funnel analysis.
type SearchSink struct {
	client *elasticsearch.Client
	index  string
}

func NewSearchSink(client *elasticsearch.Client, index string) *SearchSink {
	return &SearchSink{client: client, index: index}
}

func (s *SearchSink) Name() string { return "elasticsearch" }

func (s *SearchSink) Deliver(ctx context.Context, event models.TrackingEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	req := esapi.IndexRequest{
		Index: s.index,
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("index event: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index event: %s", res.Status())
	}
	return nil
}

// MessagePublisher publishes a correlated process message.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, name, correlationKey, messageID string, variables map[string]interface{}) error
}

// ProcessSink starts partner onboarding when a form is submitted.
type ProcessSink struct {
	publisher   MessagePublisher
	messageName string
}

func NewProcessSink(publisher MessagePublisher, messageName string) *ProcessSink {
	return &ProcessSink{publisher: publisher, messageName: messageName}
}

func (s *ProcessSink) Name() string { return "camunda" }

func (s *ProcessSink) Deliver(ctx context.Context, event models.TrackingEvent) error {
	if event.Type != models.EventFormSubmitted {
		return nil
	}
	return s.publisher.PublishMessage(ctx, s.messageName, event.ContactID, event.SessionID+"-submitted", map[string]interface{}{
		"contactId":    event.ContactID,
		"sessionId":    event.SessionID,
		"marketType":   event.MarketType,
		"targetMarket": event.TargetMarket,
		"submittedAt":  event.Timestamp.Format(time.RFC3339),
	})
}

// TopicPublisher publishes a notification to a topic.
type TopicPublisher interface {
	PublishToTopic(ctx context.Context, topicARN, subject, message string, attrs map[string]string) error
}

// NotificationSink tells the recruitment team about new submissions.
type NotificationSink struct {
	publisher TopicPublisher
	topicARN  string
}

func NewNotificationSink(publisher TopicPublisher, topicARN string) *NotificationSink {
	return &NotificationSink{publisher: publisher, topicARN: topicARN}
}

func (s *NotificationSink) Name() string { return "sns" }

func (s *NotificationSink) Deliver(ctx context.Context, event models.TrackingEvent) error {
	if event.Type != models.EventFormSubmitted {
		return nil
	}
	body, err := json.Marshal(map[string]string{
		"contactId":    event.ContactID,
		"marketType":   event.MarketType,
		"targetMarket": event.TargetMarket,
		"submittedAt":  event.Timestamp.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	subject := fmt.Sprintf("Partner intake submitted (%s/%s)", event.MarketType, event.TargetMarket)
	return s.publisher.PublishToTopic(ctx, s.topicARN, subject, string(body), map[string]string{
		"eventType":  string(event.Type),
		"marketType": event.MarketType,
	})
}
