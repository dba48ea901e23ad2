package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/ligue-campaigns/internal/entity"
	"github.com/xavierca1/ligue-campaigns/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-campaigns/internal/infra/integration/backend"
	"github.com/xavierca1/ligue-campaigns/internal/infra/queue"
)

type LoadState int

const (
	// StateInitialLoad: primeira busca em andamento, a tela inteira espera.
	StateInitialLoad LoadState = iota
	StateReady
	// StateFetching: recarga em andamento, conteúdo anterior continua visível.
	StateFetching
)

func (s LoadState) String() string {
	switch s {
	case StateInitialLoad:
		return "initial-load"
	case StateReady:
		return "ready"
	case StateFetching:
		return "fetching"
	}
	return "unknown"
}

type AudienceOptions struct {
	PerPage  int
	Debounce time.Duration
	UserID   string
}

// AudienceSnapshot is an immutable copy of the controller state for rendering.
type AudienceSnapshot struct {
	CampaignID     string
	State          LoadState
	Editable       bool
	Filters        entity.Filters
	AppliedFilters entity.Filters
	Available      entity.ContactPage
	Audience       entity.ContactPage
	AvailablePage  int
	AudiencePage   int
	PerPage        int
	Selected       []string
}

func (s AudienceSnapshot) IsSelected(id string) bool {
	for _, sel := range s.Selected {
		if sel == id {
			return true
		}
	}
	return false
}

// Controls deriva o estado habilitado/desabilitado de cada ação da tela.
type Controls struct {
	FiltersEnabled     bool
	AddSelectedEnabled bool
	AddAllEnabled      bool
	RemoveOneEnabled   bool
	RemoveAllEnabled   bool
}

func (s AudienceSnapshot) Controls() Controls {
	return Controls{
		FiltersEnabled:     s.Editable,
		AddSelectedEnabled: s.Editable && len(s.Selected) > 0,
		AddAllEnabled:      s.Editable,
		RemoveOneEnabled:   s.Editable,
		RemoveAllEnabled:   s.Editable && !audienceEmpty(s.Audience),
	}
}

func audienceEmpty(p entity.ContactPage) bool {
	return p.TotalRecords == 0 && len(p.Data) == 0
}

// AudienceController keeps the two paginated collections of the audience
// screen (available contacts and audience) in sync with the backend.
//
// Every refresh cycle gets a generation number; responses that arrive after a
// newer cycle started are dropped.
type AudienceController struct {
	campaignID string
	editable   bool
	gateway    AudienceGateway
	notifier   Notifier
	events     AudienceEventPublisher
	logger     *zap.Logger
	debounce   *Debouncer
	userID     string

	mu            sync.Mutex
	ctx           context.Context
	state         LoadState
	pending       entity.Filters
	applied       entity.Filters
	available     entity.ContactPage
	audience      entity.ContactPage
	availablePage int
	audiencePage  int
	perPage       int
	selection     *entity.SelectionSet
	generation    uint64
	onChange      func(AudienceSnapshot)
}

func NewAudienceController(
	campaignID string,
	editable bool,
	gateway AudienceGateway,
	notifier Notifier,
	events AudienceEventPublisher,
	logger *zap.Logger,
	opts AudienceOptions,
) *AudienceController {
	if logger == nil {
		logger = zap.NewNop()
	}
	if events == nil {
		events = queue.LogProducer{Logger: logger}
	}
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = entity.DefaultPerPage
	}
	empty := entity.ContactPage{Data: []entity.Contact{}, Pagination: entity.NewPagination(perPage)}

	return &AudienceController{
		campaignID:    campaignID,
		editable:      editable,
		gateway:       gateway,
		notifier:      notifier,
		events:        events,
		logger:        logger.With(zap.String("campaign_id", campaignID)),
		debounce:      NewDebouncer(opts.Debounce),
		userID:        opts.UserID,
		ctx:           context.Background(),
		state:         StateInitialLoad,
		available:     empty,
		audience:      empty,
		availablePage: 1,
		audiencePage:  1,
		perPage:       perPage,
		selection:     entity.NewSelectionSet(),
	}
}

// OnChange registers the callback run (outside the lock) after every state change.
func (c *AudienceController) OnChange(fn func(AudienceSnapshot)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Start faz a carga inicial. ctx também é usado pelas recargas disparadas
// pelo debounce dos filtros.
func (c *AudienceController) Start(ctx context.Context) {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()
	c.Refresh(ctx)
}

func (c *AudienceController) Close() {
	c.debounce.Stop()
}

func (c *AudienceController) Snapshot() AudienceSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *AudienceController) snapshotLocked() AudienceSnapshot {
	return AudienceSnapshot{
		CampaignID:     c.campaignID,
		State:          c.state,
		Editable:       c.editable,
		Filters:        c.pending,
		AppliedFilters: c.applied,
		Available:      c.available,
		Audience:       c.audience,
		AvailablePage:  c.availablePage,
		AudiencePage:   c.audiencePage,
		PerPage:        c.perPage,
		Selected:       c.selection.IDs(),
	}
}

func (c *AudienceController) emit() {
	c.mu.Lock()
	fn := c.onChange
	snap := c.snapshotLocked()
	c.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

// Refresh busca as duas coleções em paralelo. Cada busca falha de forma
// independente e mantém os dados anteriores da sua coleção.
func (c *AudienceController) Refresh(ctx context.Context) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	filters := c.applied
	availablePage, audiencePage, perPage := c.availablePage, c.audiencePage, c.perPage
	if c.state != StateInitialLoad {
		c.state = StateFetching
	}
	c.mu.Unlock()
	c.emit()

	var (
		g                         errgroup.Group
		availableErr, audienceErr error
	)

	g.Go(func() error {
		page, err := c.gateway.ListAvailableContacts(ctx, c.campaignID, filters, availablePage, perPage)
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.generation {
			middleware.RecordStaleResponse()
			return nil
		}
		if err != nil {
			availableErr = err
			return nil
		}
		c.available = page
		return nil
	})

	g.Go(func() error {
		page, err := c.gateway.ListAudience(ctx, c.campaignID, audiencePage, perPage)
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.generation {
			middleware.RecordStaleResponse()
			return nil
		}
		if err != nil {
			audienceErr = err
			return nil
		}
		c.audience = page
		return nil
	})

	_ = g.Wait()

	if availableErr != nil {
		c.logger.Error("❌ erro ao buscar contatos disponíveis", zap.Error(availableErr))
		c.notify(func(n Notifier) { n.Failure("Erro ao carregar contatos disponíveis", availableErr) })
	}
	if audienceErr != nil {
		c.logger.Error("❌ erro ao buscar audiência", zap.Error(audienceErr))
		c.notify(func(n Notifier) { n.Failure("Erro ao carregar audiência", audienceErr) })
	}

	c.mu.Lock()
	current := gen == c.generation
	if current {
		c.state = StateReady
	}
	c.mu.Unlock()
	if current {
		c.emit()
	}
}

func (c *AudienceController) notify(fn func(Notifier)) {
	if c.notifier != nil {
		fn(c.notifier)
	}
}

// SetFilter altera um filtro. A busca só acontece depois que as edições
// ficarem paradas pelo intervalo do debounce.
func (c *AudienceController) SetFilter(key, value string) error {
	if !c.editable {
		return errCampaignLocked
	}

	c.mu.Lock()
	if err := c.pending.Set(key, value); err != nil {
		c.mu.Unlock()
		return &DomainError{Code: CodeInvalidInput, Message: err.Error() + ": " + key}
	}
	c.mu.Unlock()

	c.emit()
	c.debounce.Trigger(c.applyFilters)
	return nil
}

// BlurTags normaliza o campo de tags quando ele perde o foco.
func (c *AudienceController) BlurTags() error {
	c.mu.Lock()
	raw := c.pending.Tags
	c.mu.Unlock()

	normalized := entity.NormalizeTags(raw)
	if normalized == raw {
		return nil
	}
	return c.SetFilter(entity.FilterTags, normalized)
}

// ApplyFilters substitui todos os filtros e busca na hora, descartando
// qualquer disparo pendente do debounce.
func (c *AudienceController) ApplyFilters(ctx context.Context, filters entity.Filters) error {
	if !c.editable {
		return errCampaignLocked
	}
	c.debounce.Stop()

	c.mu.Lock()
	c.pending = filters
	c.applied = filters
	c.mu.Unlock()

	c.Refresh(ctx)
	return nil
}

func (c *AudienceController) applyFilters() {
	c.mu.Lock()
	c.applied = c.pending
	applied := c.applied
	ctx := c.ctx
	c.mu.Unlock()

	c.logger.Debug("🔎 aplicando filtros", zap.Any("filters", applied.Active()))
	c.Refresh(ctx)
}

// SetAvailablePage moves the available-contacts cursor and refreshes both
// collections, since mutations can shift membership of either one.
func (c *AudienceController) SetAvailablePage(ctx context.Context, page int) bool {
	c.mu.Lock()
	if page < 1 || page > c.available.TotalPages || page == c.availablePage {
		c.mu.Unlock()
		return false
	}
	c.availablePage = page
	c.mu.Unlock()

	c.Refresh(ctx)
	return true
}

func (c *AudienceController) SetAudiencePage(ctx context.Context, page int) bool {
	c.mu.Lock()
	if page < 1 || page > c.audience.TotalPages || page == c.audiencePage {
		c.mu.Unlock()
		return false
	}
	c.audiencePage = page
	c.mu.Unlock()

	c.Refresh(ctx)
	return true
}

func (c *AudienceController) Toggle(id string) {
	c.mu.Lock()
	c.selection.Toggle(id)
	c.mu.Unlock()
	c.emit()
}

// ToggleAll works on the ids of the current available page only.
func (c *AudienceController) ToggleAll() {
	c.mu.Lock()
	ids := make([]string, 0, len(c.available.Data))
	for _, contact := range c.available.Data {
		ids = append(ids, contact.ID)
	}
	c.selection.ToggleAll(ids)
	c.mu.Unlock()
	c.emit()
}

func (c *AudienceController) Selected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.IDs()
}

// AddSelectedToAudience adiciona os ids informados. Lista vazia não gera requisição.
func (c *AudienceController) AddSelectedToAudience(ctx context.Context, ids []string) error {
	if !c.editable {
		return errCampaignLocked
	}
	if len(ids) == 0 {
		return nil
	}

	return c.mutate(ctx, queue.ActionAddSelected, "Contatos adicionados à audiência", func(ctx context.Context) error {
		return c.gateway.AddToAudience(ctx, c.campaignID, ids)
	}, queue.AudienceChangedEvent{ContactIDs: ids})
}

func (c *AudienceController) AddAllFilteredToAudience(ctx context.Context, filters entity.Filters, currentPage, perPage int) error {
	if !c.editable {
		return errCampaignLocked
	}

	input := backend.AddAllAudienceInput{Filters: filters, CurrentPage: currentPage, PerPage: perPage}
	return c.mutate(ctx, queue.ActionAddAll, "Todos os contatos filtrados foram adicionados", func(ctx context.Context) error {
		page, err := c.gateway.AddAllToAudience(ctx, c.campaignID, input)
		if err == nil {
			c.logger.Info("✅ audiência preenchida com os filtros", zap.Int("total_records", page.TotalRecords))
		}
		return err
	}, queue.AudienceChangedEvent{Filters: filters.Active()})
}

func (c *AudienceController) RemoveOneFromAudience(ctx context.Context, contactID string) error {
	if !c.editable {
		return errCampaignLocked
	}
	if contactID == "" {
		return nil
	}

	return c.mutate(ctx, queue.ActionRemoveOne, "Contato removido da audiência", func(ctx context.Context) error {
		return c.gateway.RemoveFromAudience(ctx, c.campaignID, contactID)
	}, queue.AudienceChangedEvent{ContactIDs: []string{contactID}})
}

// RemoveAllFromAudience não faz nada se a audiência já está vazia.
func (c *AudienceController) RemoveAllFromAudience(ctx context.Context) error {
	if !c.editable {
		return errCampaignLocked
	}

	c.mu.Lock()
	empty := audienceEmpty(c.audience)
	c.mu.Unlock()
	if empty {
		return nil
	}

	return c.mutate(ctx, queue.ActionRemoveAll, "Audiência esvaziada", func(ctx context.Context) error {
		return c.gateway.RemoveAllFromAudience(ctx, c.campaignID)
	}, queue.AudienceChangedEvent{})
}

// mutate runs a backend mutation. State only changes after the backend
// confirms it: selection cleared, event published, both collections refetched.
func (c *AudienceController) mutate(ctx context.Context, action, successMsg string, call func(context.Context) error, event queue.AudienceChangedEvent) error {
	if err := call(ctx); err != nil {
		middleware.RecordAudienceMutation(action, "failure")
		c.logger.Error("❌ falha ao alterar audiência", zap.String("action", action), zap.Error(err))
		c.notify(func(n Notifier) { n.Failure("Não foi possível atualizar a audiência", err) })
		return &TechnicalError{Code: CodeBackendError, Message: "falha em " + action, Err: err}
	}
	middleware.RecordAudienceMutation(action, "success")

	c.mu.Lock()
	c.selection.Clear()
	c.mu.Unlock()

	event.CampaignID = c.campaignID
	event.Action = action
	event.UserID = c.userID
	event.OccurredAt = time.Now().UTC()
	if err := c.events.PublishAudienceChange(ctx, event); err != nil {
		// a mudança já foi aceita pelo backend, o evento é só informativo
		c.logger.Warn("⚠️ audiência alterada, mas o evento não foi publicado", zap.Error(err))
	}

	c.notify(func(n Notifier) { n.Success(successMsg) })
	c.Refresh(ctx)
	return nil
}
