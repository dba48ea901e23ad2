package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/xavierca1/ligue-campaigns/internal/entity"
	"github.com/xavierca1/ligue-campaigns/internal/infra/notify"
	"github.com/xavierca1/ligue-campaigns/internal/tui"
	"github.com/xavierca1/ligue-campaigns/internal/usecase"
)

var audienceCmd = &cobra.Command{
	Use:   "audience <campaign-id>",
	Short: "Abre a tela de audiência de uma campanha",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, appOptions{interactive: true, restoreSession: true})
		if err != nil {
			return err
		}
		defer a.Close()

		bridge := tui.NewBridge()
		campaign, ctrl, err := openAudience(cmd, a, args[0], bridge)
		if err != nil {
			return err
		}
		defer ctrl.Close()

		model := tui.NewAudienceModel(cmd.Context(), *campaign, ctrl, bridge)
		_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
		return err
	},
}

var audienceShowCmd = &cobra.Command{
	Use:   "show <campaign-id>",
	Short: "Lista contatos disponíveis e a audiência atual",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := filtersFromFlags(cmd)
		if err != nil {
			return err
		}
		return withAudience(cmd, args[0], func(ctrl *usecase.AudienceController) error {
			if filters != (entity.Filters{}) {
				if err := ctrl.ApplyFilters(cmd.Context(), filters); err != nil {
					return err
				}
			}
			if err := goToPages(cmd, ctrl); err != nil {
				return err
			}
			printSnapshot(ctrl.Snapshot())
			return nil
		})
	},
}

var audienceAddCmd = &cobra.Command{
	Use:   "add <campaign-id> <contact-id>...",
	Short: "Adiciona contatos específicos à audiência",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAudience(cmd, args[0], func(ctrl *usecase.AudienceController) error {
			return ctrl.AddSelectedToAudience(cmd.Context(), args[1:])
		})
	},
}

var audienceAddAllCmd = &cobra.Command{
	Use:   "add-all <campaign-id>",
	Short: "Adiciona todos os contatos que batem com os filtros",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := filtersFromFlags(cmd)
		if err != nil {
			return err
		}
		page, _ := cmd.Flags().GetInt("page")
		return withAudience(cmd, args[0], func(ctrl *usecase.AudienceController) error {
			return ctrl.AddAllFilteredToAudience(cmd.Context(), filters, page, ctrl.Snapshot().PerPage)
		})
	},
}

var audienceRemoveCmd = &cobra.Command{
	Use:   "remove <campaign-id> <contact-id>",
	Short: "Remove um contato da audiência",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAudience(cmd, args[0], func(ctrl *usecase.AudienceController) error {
			return ctrl.RemoveOneFromAudience(cmd.Context(), args[1])
		})
	},
}

var audienceClearCmd = &cobra.Command{
	Use:   "clear <campaign-id>",
	Short: "Remove todos os contatos da audiência",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAudience(cmd, args[0], func(ctrl *usecase.AudienceController) error {
			if ctrl.Snapshot().Audience.TotalRecords == 0 {
				fmt.Println("A audiência já está vazia.")
				return nil
			}
			return ctrl.RemoveAllFromAudience(cmd.Context())
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{audienceShowCmd, audienceAddAllCmd} {
		c.Flags().StringArrayP("filter", "f", nil, "filtro chave=valor, pode repetir (ex.: -f city=Recife -f tags=vip)")
	}
	audienceAddAllCmd.Flags().Int("page", 1, "página atual enviada junto com os filtros")
	audienceShowCmd.Flags().Int("page", 1, "página dos contatos disponíveis")
	audienceShowCmd.Flags().Int("audience-page", 1, "página da audiência")

	audienceCmd.AddCommand(audienceShowCmd)
	audienceCmd.AddCommand(audienceAddCmd)
	audienceCmd.AddCommand(audienceAddAllCmd)
	audienceCmd.AddCommand(audienceRemoveCmd)
	audienceCmd.AddCommand(audienceClearCmd)
}

func openAudience(cmd *cobra.Command, a *app, campaignID string, notifier usecase.Notifier) (*entity.Campaign, *usecase.AudienceController, error) {
	uc := usecase.NewOpenAudienceUseCase(a.client, a.client, notifier, a.events, a.session, a.logger, a.audienceOptions())
	return uc.Execute(cmd.Context(), campaignID)
}

// withAudience opens the campaign, loads both collections and runs fn.
func withAudience(cmd *cobra.Command, campaignID string, fn func(*usecase.AudienceController) error) error {
	a, err := newApp(cmd, appOptions{restoreSession: true})
	if err != nil {
		return err
	}
	defer a.Close()

	campaign, ctrl, err := openAudience(cmd, a, campaignID, notify.NewConsoleNotifier(os.Stdout, a.logger))
	if err != nil {
		return err
	}
	defer ctrl.Close()

	fmt.Printf("📣 %s [%s · %s]\n", campaign.Name, campaign.Channel, campaign.Status)
	ctrl.Start(cmd.Context())
	return fn(ctrl)
}

func filtersFromFlags(cmd *cobra.Command) (entity.Filters, error) {
	var filters entity.Filters
	raw, _ := cmd.Flags().GetStringArray("filter")
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return filters, fmt.Errorf("filtro inválido %q, use chave=valor", kv)
		}
		key = strings.TrimSpace(key)
		if key == entity.FilterTags {
			value = entity.NormalizeTags(value)
		}
		if err := filters.Set(key, strings.TrimSpace(value)); err != nil {
			return filters, fmt.Errorf("%w: %s (válidos: %s)", err, key, strings.Join(entity.FilterKeys, ", "))
		}
	}
	return filters, nil
}

func goToPages(cmd *cobra.Command, ctrl *usecase.AudienceController) error {
	page, _ := cmd.Flags().GetInt("page")
	audiencePage, _ := cmd.Flags().GetInt("audience-page")
	snap := ctrl.Snapshot()

	if page != snap.AvailablePage && !ctrl.SetAvailablePage(cmd.Context(), page) {
		return fmt.Errorf("página %d fora do intervalo 1..%d", page, snap.Available.TotalPages)
	}
	if audiencePage != snap.AudiencePage && !ctrl.SetAudiencePage(cmd.Context(), audiencePage) {
		return fmt.Errorf("página da audiência %d fora do intervalo 1..%d", audiencePage, snap.Audience.TotalPages)
	}
	return nil
}

func printSnapshot(snap usecase.AudienceSnapshot) {
	if active := snap.AppliedFilters.Active(); len(active) > 0 {
		parts := make([]string, 0, len(active))
		for _, key := range entity.FilterKeys {
			if v, ok := active[key]; ok {
				parts = append(parts, key+"="+v)
			}
		}
		fmt.Printf("🔎 filtros: %s\n", strings.Join(parts, ", "))
	}

	fmt.Printf("\nDISPONÍVEIS (%d, página %d/%d)\n", snap.Available.TotalRecords, snap.AvailablePage, snap.Available.TotalPages)
	for _, c := range snap.Available.Data {
		fmt.Printf("  %s  %s  %s\n", c.ID, c.Name, c.Email)
	}

	fmt.Printf("\nNA AUDIÊNCIA (%d, página %d/%d)\n", snap.Audience.TotalRecords, snap.AudiencePage, snap.Audience.TotalPages)
	for _, c := range snap.Audience.Data {
		fmt.Printf("  %s  %s  %s\n", c.ID, c.Name, c.Email)
	}
	if !snap.Editable {
		fmt.Println("\n⚠️ campanha somente leitura no status atual")
	}
}
