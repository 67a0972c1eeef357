package infrastructure

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"propdesk-backend/internal/config"
	"propdesk-backend/internal/logger"
)

// PushClient sends Firebase Cloud Messaging notifications to per-agent topics.
type PushClient struct {
	client *messaging.Client
}

func NewPushClient(ctx context.Context, cfg config.PushConfig) (*PushClient, error) {
	var fbConfig *firebase.Config
	if cfg.ProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.ProjectID}
	}
	app, err := firebase.NewApp(ctx, fbConfig, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}
	return &PushClient{client: client}, nil
}

// AgentTopic is the FCM topic an agent's devices subscribe to.
func AgentTopic(agentID int64) string {
	return fmt.Sprintf("agent_%d", agentID)
}

func (p *PushClient) SendToAgent(ctx context.Context, agentID int64, title, body string, data map[string]string) error {
	topic := AgentTopic(agentID)
	message := &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}

	logger.ExternalServiceCall("FCM", "Send", "topic", topic)
	_, err := p.client.Send(ctx, message)
	logger.ExternalServiceResult("FCM", "Send", err, "topic", topic)
	return err
}
