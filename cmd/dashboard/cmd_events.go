package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xavierca1/ligue-campaigns/internal/infra/queue"
)

var eventsCmd = &cobra.Command{
	Use:   "events [campaign-id]",
	Short: "Acompanha as mudanças de audiência publicadas no RabbitMQ",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		if a.broker == nil {
			return errors.New("RabbitMQ não configurado ou indisponível (defina RABBITMQ_URL)")
		}

		campaignID := ""
		if len(args) == 1 {
			campaignID = args[0]
		}

		watcher := queue.NewWatcher(a.broker.Ch, a.logger)
		return watcher.Start(cmd.Context(), campaignID, func(e queue.AudienceChangedEvent) {
			detail := ""
			switch {
			case len(e.ContactIDs) > 0:
				detail = strings.Join(e.ContactIDs, ", ")
			case len(e.Filters) > 0:
				detail = fmt.Sprintf("filtros %v", e.Filters)
			}
			fmt.Printf("%s  %-16s  campanha=%s  usuário=%s  %s\n",
				e.OccurredAt.Local().Format("15:04:05"), e.Action, e.CampaignID, e.UserID, detail)
		})
	},
}
