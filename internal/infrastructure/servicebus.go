package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"

	"propdesk-backend/internal/config"
	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/logger"
)

// messageSender is the part of *azservicebus.Sender we use.
type messageSender interface {
	SendMessage(ctx context.Context, message *azservicebus.Message, options *azservicebus.SendMessageOptions) error
	Close(ctx context.Context) error
}

// ServiceBusSink forwards events to an Azure Service Bus queue for downstream
// audit consumers. The event type travels in the "topic" application property.
type ServiceBusSink struct {
	client *azservicebus.Client
	sender messageSender
}

func NewServiceBusSink(cfg config.ServiceBusConfig) (*ServiceBusSink, error) {
	client, err := azservicebus.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create service bus client: %w", err)
	}

	sender, err := client.NewSender(cfg.QueueName, nil)
	if err != nil {
		client.Close(context.Background())
		return nil, fmt.Errorf("failed to create sender: %w", err)
	}

	return &ServiceBusSink{client: client, sender: sender}, nil
}

func (s *ServiceBusSink) Name() string { return "service_bus" }

func (s *ServiceBusSink) Handle(ctx context.Context, e domain.Event) error {
	msg, err := newServiceBusMessage(e)
	if err != nil {
		return err
	}
	logger.ExternalServiceCall("ServiceBus", "SendMessage", "eventID", e.ID, "type", e.Type)
	err = s.sender.SendMessage(ctx, msg, nil)
	logger.ExternalServiceResult("ServiceBus", "SendMessage", err, "eventID", e.ID)
	return err
}

func newServiceBusMessage(e domain.Event) (*azservicebus.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	messageID := e.ID
	contentType := "application/json"
	return &azservicebus.Message{
		MessageID:   &messageID,
		ContentType: &contentType,
		Body:        data,
		ApplicationProperties: map[string]interface{}{
			"topic":       string(e.Type),
			"entity_type": e.EntityType,
			"timestamp":   e.OccurredAt.Unix(),
		},
	}, nil
}

func (s *ServiceBusSink) Close() error {
	if s.sender != nil {
		if err := s.sender.Close(context.Background()); err != nil {
			return err
		}
	}
	if s.client != nil {
		return s.client.Close(context.Background())
	}
	return nil
}
