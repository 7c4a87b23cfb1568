package notify

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewsync/crewsync/internal/chat"
	"github.com/crewsync/crewsync/internal/domain"
	"github.com/crewsync/crewsync/internal/pubsub"
	"github.com/crewsync/crewsync/internal/session"
)

// fakeConn implements session.Subscriber and records delivered payloads.
type fakeConn struct {
	id       string
	mu       sync.Mutex
	payloads [][]byte
}

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Deliver(payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
}

func (f *fakeConn) delivered() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([][]byte, len(f.payloads))
	copy(result, f.payloads)
	return result
}

// mockRecords implements domain.NotificationRepository in memory.
type mockRecords struct {
	mu      sync.Mutex
	records map[string]*domain.Notification
	nextID  int
}

func newMockRecords() *mockRecords {
	return &mockRecords{records: make(map[string]*domain.Notification)}
}

func (m *mockRecords) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	stored := *n
	stored.ID = "notification:" + strconv.Itoa(m.nextID)
	m.records[stored.ID] = &stored
	return &stored, nil
}

func (m *mockRecords) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return n, nil
}

func (m *mockRecords) MarkReadBy(ctx context.Context, id, userID string) (*domain.Notification, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.records[id]
	if !ok {
		return nil, false, domain.ErrNotFound
	}
	changed, err := n.MarkReadBy(userID)
	if err != nil {
		return nil, false, err
	}
	return n, changed, nil
}

func (m *mockRecords) ListForUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	return nil, nil
}

func (m *mockRecords) UnreadCountForUser(ctx context.Context, userID string) (int, error) {
	return 0, nil
}

// mockPublisher implements pubsub.Publisher for testing.
type mockPublisher struct {
	mu       sync.Mutex
	messages []pubsub.Message
}

func (m *mockPublisher) Publish(ctx context.Context, msg pubsub.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) published() []pubsub.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]pubsub.Message, len(m.messages))
	copy(result, m.messages)
	return result
}

func TestService_CreateEmitsToOnlineTargets(t *testing.T) {
	registry := session.NewRegistry()
	records := newMockRecords()
	publisher := &mockPublisher{}
	svc := NewService(records, registry, publisher)

	target := &fakeConn{id: "c1"}
	bystander := &fakeConn{id: "c2"}
	registry.Add(target)
	registry.Add(bystander)
	registry.Authenticate("c1", "alice")
	registry.Authenticate("c2", "bob")

	stored, err := svc.Create(context.Background(), &domain.Notification{
		Title:       "Objective assigned",
		Body:        "Inventory count in aisle 4",
		SenderID:    "manager1",
		TargetUsers: []string{"alice"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, domain.NotificationGeneral, stored.Type)

	require.Len(t, target.delivered(), 1)
	var env chat.Envelope
	require.NoError(t, json.Unmarshal(target.delivered()[0], &env))
	assert.Equal(t, chat.EventNotification, env.Event)

	assert.Empty(t, bystander.delivered())

	// The bus event carries the full record for offline push fan-out.
	published := publisher.published()
	require.Len(t, published, 1)
	assert.Equal(t, chat.TopicNotificationCreated, published[0].Topic)
}

func TestService_CreateInvalidPersistsNothing(t *testing.T) {
	registry := session.NewRegistry()
	records := newMockRecords()
	publisher := &mockPublisher{}
	svc := NewService(records, registry, publisher)

	_, err := svc.Create(context.Background(), &domain.Notification{
		Title:    "No targets",
		Body:     "nobody will read this",
		SenderID: "manager1",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, records.records)
	assert.Empty(t, publisher.published())
}

func TestService_MarkReadIdempotent(t *testing.T) {
	registry := session.NewRegistry()
	records := newMockRecords()
	svc := NewService(records, registry, &mockPublisher{})

	stored, err := svc.Create(context.Background(), &domain.Notification{
		Title:       "Objective assigned",
		Body:        "Inventory count",
		SenderID:    "manager1",
		TargetUsers: []string{"alice"},
	})
	require.NoError(t, err)

	first, err := svc.MarkRead(context.Background(), stored.ID, "alice")
	require.NoError(t, err)
	assert.True(t, first.IsReadBy("alice"))

	again, err := svc.MarkRead(context.Background(), stored.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, again.ReadBy)
}

func TestService_MarkReadRejectsNonTarget(t *testing.T) {
	registry := session.NewRegistry()
	records := newMockRecords()
	svc := NewService(records, registry, &mockPublisher{})

	stored, err := svc.Create(context.Background(), &domain.Notification{
		Title:       "Objective assigned",
		Body:        "Inventory count",
		SenderID:    "manager1",
		TargetUsers: []string{"alice"},
	})
	require.NoError(t, err)

	_, err = svc.MarkRead(context.Background(), stored.ID, "mallory")
	assert.ErrorIs(t, err, domain.ErrNotTargeted)
}
