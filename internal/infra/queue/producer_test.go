package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func TestPublishAudienceChange(t *testing.T) {
	pub := new(MockPublisher)
	var sent amqp.Publishing
	pub.On("PublishWithContext", mock.Anything, ExchangeName, RoutingKey, false, false, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(5).(amqp.Publishing) }).
		Return(nil)

	event := AudienceChangedEvent{
		CampaignID: "camp-1",
		Action:     ActionAddSelected,
		ContactIDs: []string{"c1", "c2"},
		UserID:     "u1",
	}
	require.NoError(t, NewProducer(pub).PublishAudienceChange(context.Background(), event))

	assert.Equal(t, "application/json", sent.ContentType)
	assert.Equal(t, amqp.Persistent, sent.DeliveryMode)
	assert.False(t, sent.Timestamp.IsZero())

	var body map[string]any
	require.NoError(t, json.Unmarshal(sent.Body, &body))
	assert.Equal(t, "camp-1", body["campaign_id"])
	assert.Equal(t, "add_selected", body["action"])
	assert.NotContains(t, body, "filters")
	assert.NotEmpty(t, body["occurred_at"])
}

func TestPublishKeepsGivenTimestamp(t *testing.T) {
	pub := new(MockPublisher)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pub.On("PublishWithContext", mock.Anything, ExchangeName, RoutingKey, false, false,
		mock.MatchedBy(func(p amqp.Publishing) bool { return p.Timestamp.Equal(at) })).Return(nil)

	err := NewProducer(pub).PublishAudienceChange(context.Background(), AudienceChangedEvent{
		CampaignID: "camp-1", Action: ActionRemoveAll, OccurredAt: at,
	})

	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestPublishFailureIsWrapped(t *testing.T) {
	pub := new(MockPublisher)
	cause := errors.New("channel closed")
	pub.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(cause)

	err := NewProducer(pub).PublishAudienceChange(context.Background(), AudienceChangedEvent{CampaignID: "camp-1"})

	assert.ErrorIs(t, err, cause)
}

func TestLogProducerNeverFails(t *testing.T) {
	assert.NoError(t, LogProducer{}.PublishAudienceChange(context.Background(), AudienceChangedEvent{}))
	assert.NoError(t, LogProducer{Logger: zap.NewNop()}.PublishAudienceChange(context.Background(), AudienceChangedEvent{CampaignID: "c"}))
}
