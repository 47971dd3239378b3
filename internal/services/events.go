package services

import (
	"fmt"

	"github.com/custodia/ops-console/internal/client"
	"github.com/custodia/ops-console/internal/logger"
	"github.com/custodia/ops-console/internal/models"
	"github.com/custodia/ops-console/internal/query"
)

// EventService handles deposit-ingestion events and webhook subscriptions.
type EventService struct {
	client *client.APIClient
}

// NewEventService creates a new event service
func NewEventService(apiClient *client.APIClient) *EventService {
	return &EventService{client: apiClient}
}

// ListDepositEvents retrieves one page of deposit-ingestion events
func (s *EventService) ListDepositEvents(q query.ListQuery) (*models.ListResult[models.DepositEvent], error) {
	var response models.DepositEventListResponse
	endpoint := client.BuildURLWithParams("/deposit-events", q.Params())
	if err := s.client.Get(endpoint, &response); err != nil {
		return nil, fmt.Errorf("failed to list deposit events: %w", err)
	}
	return &response.Result, nil
}

// ListWebhooks retrieves one page of webhook subscriptions
func (s *EventService) ListWebhooks(q query.ListQuery) (*models.ListResult[models.Webhook], error) {
	var response models.WebhookListResponse
	endpoint := client.BuildURLWithParams("/webhooks", q.Params())
	if err := s.client.Get(endpoint, &response); err != nil {
		return nil, fmt.Errorf("failed to list webhooks: %w", err)
	}
	return &response.Result, nil
}

// UpdateDepositEvent applies a partial update to a deposit event
func (s *EventService) UpdateDepositEvent(id string, patch map[string]interface{}) error {
	var response models.AckResponse
	endpoint := fmt.Sprintf("/deposit-events/%s", id)
	if err := s.client.Patch(endpoint, patch, &response); err != nil {
		return fmt.Errorf("failed to update deposit event %s: %w", id, err)
	}
	logger.Debug("Deposit event %s updated", id)
	return nil
}

// RetryDepositEvent re-queues a failed deposit event for ingestion
func (s *EventService) RetryDepositEvent(id string) error {
	var response models.AckResponse
	endpoint := fmt.Sprintf("/deposit-events/%s/retry", id)
	if err := s.client.Post(endpoint, nil, &response); err != nil {
		return fmt.Errorf("failed to retry deposit event %s: %w", id, err)
	}
	logger.Info("Deposit event %s queued for retry", id)
	return nil
}

// UpdateWebhook applies a partial update to a webhook subscription
func (s *EventService) UpdateWebhook(id string, patch map[string]interface{}) error {
	var response models.AckResponse
	endpoint := fmt.Sprintf("/webhooks/%s", id)
	if err := s.client.Patch(endpoint, patch, &response); err != nil {
		return fmt.Errorf("failed to update webhook %s: %w", id, err)
	}
	logger.Debug("Webhook %s updated", id)
	return nil
}

// SyncWebhooks asks the backend to resync all subscriptions in a scope
func (s *EventService) SyncWebhooks(scope string) error {
	var response models.AckResponse
	body := map[string]string{"scope": scope}
	if err := s.client.Post("/webhooks/sync", body, &response); err != nil {
		return fmt.Errorf("failed to sync webhooks for scope %s: %w", scope, err)
	}
	logger.Info("Webhook sync requested for scope %s", scope)
	return nil
}
