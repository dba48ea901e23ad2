package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xavierca1/ligue-campaigns/internal/entity"
)

var version = "0.3.0"

var rootCmd = &cobra.Command{
	Use:           "dashboard",
	Short:         "Painel de campanhas no terminal",
	Long:          "dashboard gerencia a audiência das campanhas e o mapeamento de colunas das importações de contatos.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Mostra a versão",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dashboard %s\n", version)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("api-url", "", "URL base da API do backend (DASHBOARD_API_URL)")
	flags.String("db-path", "", "arquivo SQLite local (DASHBOARD_DB_PATH)")
	flags.String("rabbitmq-url", "", "URL do RabbitMQ para eventos de audiência (RABBITMQ_URL)")
	flags.String("log-level", "", "nível de log: debug, info, warn, error (LOG_LEVEL)")
	flags.Int("per-page", entity.DefaultPerPage, "contatos por página (DASHBOARD_PER_PAGE)")
	flags.Duration("debounce", 0, "espera antes de aplicar os filtros (DASHBOARD_DEBOUNCE)")
	flags.String("status-addr", "", "endereço do servidor de /health e /metrics, ex.: :9091 (DASHBOARD_STATUS_ADDR)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(audienceCmd)
	rootCmd.AddCommand(mappingCmd)
	rootCmd.AddCommand(eventsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
