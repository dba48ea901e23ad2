package entity

import "errors"

var ErrCampaignNotFound = errors.New("campanha não encontrada")

type CampaignStatus string

const (
	CampaignPending   CampaignStatus = "pendente"
	CampaignActive    CampaignStatus = "ativa"
	CampaignPaused    CampaignStatus = "pausada"
	CampaignFinished  CampaignStatus = "concluida"
	CampaignCancelled CampaignStatus = "cancelada"
)

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
)

type Campaign struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Channel Channel        `json:"channel"`
	Status  CampaignStatus `json:"status"`
}

// IsEditableStatus is the single place that decides whether a campaign's
// audience and filters may be changed.
func IsEditableStatus(status CampaignStatus) bool {
	return status == CampaignPending || status == CampaignCancelled
}

func (c Campaign) Editable() bool {
	return IsEditableStatus(c.Status)
}
