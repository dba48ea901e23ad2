package usecase

import (
	"context"

	"github.com/xavierca1/ligue-campaigns/internal/entity"
	"github.com/xavierca1/ligue-campaigns/internal/infra/integration/backend"
	"github.com/xavierca1/ligue-campaigns/internal/infra/queue"
)

type AudienceGateway interface {
	ListAvailableContacts(ctx context.Context, campaignID string, filters entity.Filters, page, perPage int) (entity.ContactPage, error)
	ListAudience(ctx context.Context, campaignID string, page, perPage int) (entity.ContactPage, error)
	AddToAudience(ctx context.Context, campaignID string, contactIDs []string) error
	AddAllToAudience(ctx context.Context, campaignID string, input backend.AddAllAudienceInput) (entity.ContactPage, error)
	RemoveFromAudience(ctx context.Context, campaignID, contactID string) error
	RemoveAllFromAudience(ctx context.Context, campaignID string) error
}

type CampaignGateway interface {
	GetCampaign(ctx context.Context, campaignID string) (*entity.Campaign, error)
}

type ImportGateway interface {
	GetImport(ctx context.Context, importID string) (*entity.ContactImport, error)
	SaveImportMapping(ctx context.Context, importID string, mapping entity.ImportMapping) error
}

type AuthGateway interface {
	Login(ctx context.Context, email, password string) (*backend.LoginOutput, error)
	Me(ctx context.Context) (*entity.User, error)
}

type AudienceEventPublisher interface {
	PublishAudienceChange(ctx context.Context, event queue.AudienceChangedEvent) error
}

// Notifier mostra avisos não bloqueantes (toasts) ao usuário.
type Notifier interface {
	Success(message string)
	Failure(message string, err error)
}

// SessionProvider exposes the authenticated user to screens that need it.
type SessionProvider interface {
	Token() string
	Profile() *entity.User
	Authenticated() bool
}

// ColumnToken is the payload carried by a dragged CSV column.
type ColumnToken struct {
	Column string
}

// DragDrop abstracts the gesture layer. EmitDraggable renders a column as a
// draggable token; AcceptDrop registers the handler run when a token lands on
// a destination field.
type DragDrop interface {
	EmitDraggable(token ColumnToken)
	AcceptDrop(field string, onDrop func(ColumnToken))
}
