package usecase

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/ligue-campaigns/internal/entity"
	"github.com/xavierca1/ligue-campaigns/internal/infra/integration/backend"
	"github.com/xavierca1/ligue-campaigns/internal/infra/queue"
)

// MockCampaignGateway
type MockCampaignGateway struct {
	mock.Mock
}

func (m *MockCampaignGateway) GetCampaign(ctx context.Context, campaignID string) (*entity.Campaign, error) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Campaign), args.Error(1)
}

// MockImportGateway
type MockImportGateway struct {
	mock.Mock
}

func (m *MockImportGateway) GetImport(ctx context.Context, importID string) (*entity.ContactImport, error) {
	args := m.Called(ctx, importID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ContactImport), args.Error(1)
}

func (m *MockImportGateway) SaveImportMapping(ctx context.Context, importID string, mapping entity.ImportMapping) error {
	args := m.Called(ctx, importID, mapping)
	return args.Error(0)
}

// MockAuthGateway
type MockAuthGateway struct {
	mock.Mock
}

func (m *MockAuthGateway) Login(ctx context.Context, email, password string) (*backend.LoginOutput, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.LoginOutput), args.Error(1)
}

func (m *MockAuthGateway) Me(ctx context.Context) (*entity.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

// MockTokenRepository
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Load(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockTokenRepository) Store(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockDraftRepository
type MockDraftRepository struct {
	mock.Mock
}

func (m *MockDraftRepository) Find(ctx context.Context, importID string) (entity.ImportMapping, error) {
	args := m.Called(ctx, importID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entity.ImportMapping), args.Error(1)
}

func (m *MockDraftRepository) Save(ctx context.Context, importID string, mapping entity.ImportMapping) error {
	args := m.Called(ctx, importID, mapping)
	return args.Error(0)
}

func (m *MockDraftRepository) Delete(ctx context.Context, importID string) error {
	args := m.Called(ctx, importID)
	return args.Error(0)
}

type availableCall struct {
	filters entity.Filters
	page    int
	perPage int
}

// fakeAudienceGateway registra as chamadas com lock próprio, já que o
// controller busca as duas coleções em goroutines separadas.
type fakeAudienceGateway struct {
	mu sync.Mutex

	availableFn func(call int, filters entity.Filters, page int) (entity.ContactPage, error)
	audienceFn  func(call int, page int) (entity.ContactPage, error)
	mutationErr error

	availableCalls []availableCall
	audienceCalls  []int
	added          [][]string
	addAll         []backend.AddAllAudienceInput
	removed        []string
	removedAll     int
}

func (g *fakeAudienceGateway) ListAvailableContacts(ctx context.Context, campaignID string, filters entity.Filters, page, perPage int) (entity.ContactPage, error) {
	g.mu.Lock()
	g.availableCalls = append(g.availableCalls, availableCall{filters: filters, page: page, perPage: perPage})
	call, fn := len(g.availableCalls), g.availableFn
	g.mu.Unlock()

	if fn == nil {
		return contactPage(page, 1, "c1", "c2", "c3"), nil
	}
	return fn(call, filters, page)
}

func (g *fakeAudienceGateway) ListAudience(ctx context.Context, campaignID string, page, perPage int) (entity.ContactPage, error) {
	g.mu.Lock()
	g.audienceCalls = append(g.audienceCalls, page)
	call, fn := len(g.audienceCalls), g.audienceFn
	g.mu.Unlock()

	if fn == nil {
		return contactPage(page, 1, "a1"), nil
	}
	return fn(call, page)
}

func (g *fakeAudienceGateway) AddToAudience(ctx context.Context, campaignID string, contactIDs []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mutationErr != nil {
		return g.mutationErr
	}
	g.added = append(g.added, contactIDs)
	return nil
}

func (g *fakeAudienceGateway) AddAllToAudience(ctx context.Context, campaignID string, input backend.AddAllAudienceInput) (entity.ContactPage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mutationErr != nil {
		return entity.ContactPage{}, g.mutationErr
	}
	g.addAll = append(g.addAll, input)
	return contactPage(1, 1), nil
}

func (g *fakeAudienceGateway) RemoveFromAudience(ctx context.Context, campaignID, contactID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mutationErr != nil {
		return g.mutationErr
	}
	g.removed = append(g.removed, contactID)
	return nil
}

func (g *fakeAudienceGateway) RemoveAllFromAudience(ctx context.Context, campaignID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mutationErr != nil {
		return g.mutationErr
	}
	g.removedAll++
	return nil
}

func (g *fakeAudienceGateway) counts() (available, audience int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.availableCalls), len(g.audienceCalls)
}

func (g *fakeAudienceGateway) lastAvailable() availableCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.availableCalls[len(g.availableCalls)-1]
}

func contactPage(page, totalPages int, ids ...string) entity.ContactPage {
	data := make([]entity.Contact, 0, len(ids))
	for _, id := range ids {
		data = append(data, entity.Contact{ID: id, Name: "Contato " + id})
	}
	return entity.ContactPage{
		Data: data,
		Pagination: entity.Pagination{
			TotalRecords: len(ids),
			TotalPages:   totalPages,
			CurrentPage:  page,
			PerPage:      entity.DefaultPerPage,
		},
	}
}

type fakeNotifier struct {
	mu        sync.Mutex
	successes []string
	failures  []string
}

func (n *fakeNotifier) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, message)
}

func (n *fakeNotifier) Failure(message string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, message)
}

func (n *fakeNotifier) counts() (successes, failures int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.successes), len(n.failures)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.AudienceChangedEvent
	err    error
}

func (p *fakePublisher) PublishAudienceChange(ctx context.Context, event queue.AudienceChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

type fakeSession struct {
	user *entity.User
}

func (s fakeSession) Token() string {
	if s.user == nil {
		return ""
	}
	return "tok"
}

func (s fakeSession) Profile() *entity.User { return s.user }

func (s fakeSession) Authenticated() bool { return s.user != nil }
