package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-campaigns/internal/entity"
)

type OpenAudienceUseCase struct {
	Campaigns CampaignGateway
	Audience  AudienceGateway
	Notifier  Notifier
	Events    AudienceEventPublisher
	Session   SessionProvider
	Logger    *zap.Logger
	Options   AudienceOptions
}

func NewOpenAudienceUseCase(
	campaigns CampaignGateway,
	audience AudienceGateway,
	notifier Notifier,
	events AudienceEventPublisher,
	session SessionProvider,
	logger *zap.Logger,
	opts AudienceOptions,
) *OpenAudienceUseCase {
	return &OpenAudienceUseCase{
		Campaigns: campaigns,
		Audience:  audience,
		Notifier:  notifier,
		Events:    events,
		Session:   session,
		Logger:    logger,
		Options:   opts,
	}
}

// Execute busca a campanha, decide se ela é editável e monta o controller da
// tela de audiência. A carga inicial fica por conta de quem chama Start.
func (uc *OpenAudienceUseCase) Execute(ctx context.Context, campaignID string) (*entity.Campaign, *AudienceController, error) {
	if uc.Session != nil && !uc.Session.Authenticated() {
		return nil, nil, errNotAuthenticated
	}

	campaign, err := uc.Campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		if errors.Is(err, entity.ErrCampaignNotFound) {
			return nil, nil, &DomainError{Code: CodeInvalidInput, Message: err.Error()}
		}
		return nil, nil, &TechnicalError{Code: CodeBackendError, Message: "erro ao buscar campanha", Err: err}
	}

	opts := uc.Options
	if uc.Session != nil {
		if p := uc.Session.Profile(); p != nil {
			opts.UserID = p.ID
		}
	}

	controller := NewAudienceController(
		campaign.ID,
		campaign.Editable(),
		uc.Audience,
		uc.Notifier,
		uc.Events,
		uc.Logger,
		opts,
	)
	return campaign, controller, nil
}
