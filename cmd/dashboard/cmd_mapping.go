package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/xavierca1/ligue-campaigns/internal/entity"
	"github.com/xavierca1/ligue-campaigns/internal/infra/database"
	"github.com/xavierca1/ligue-campaigns/internal/infra/notify"
	"github.com/xavierca1/ligue-campaigns/internal/tui"
	"github.com/xavierca1/ligue-campaigns/internal/usecase"
)

var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Mapeamento das colunas do CSV para os campos do contato",
}

var mappingShowCmd = &cobra.Command{
	Use:   "show <import-id>",
	Short: "Mostra as colunas do CSV e o mapeamento atual",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, args[0], func(editor *usecase.ImportMappingEditor) error {
			printMapping(editor)
			return nil
		})
	},
}

var mappingAddCmd = &cobra.Command{
	Use:   "add <import-id> <field> <column>",
	Short: "Liga uma coluna do CSV a um campo (fica no rascunho local)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, args[0], func(editor *usecase.ImportMappingEditor) error {
			field, column := args[1], args[2]
			if err := checkField(field); err != nil {
				return err
			}
			if !editor.AddSource(field, column) {
				fmt.Printf("%q já está ligada a %s.\n", column, field)
				return nil
			}
			return saveDraft(cmd, editor)
		})
	},
}

var mappingRemoveCmd = &cobra.Command{
	Use:   "remove <import-id> <field> <column>",
	Short: "Desliga uma coluna de um campo (fica no rascunho local)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, args[0], func(editor *usecase.ImportMappingEditor) error {
			if !editor.RemoveSource(args[1], args[2]) {
				fmt.Printf("%q não está ligada a %s.\n", args[2], args[1])
				return nil
			}
			return saveDraft(cmd, editor)
		})
	},
}

var mappingRulesCmd = &cobra.Command{
	Use:   "rules <import-id> <field> <text>",
	Short: "Define as regras de transformação de um campo (fica no rascunho local)",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, args[0], func(editor *usecase.ImportMappingEditor) error {
			if err := checkField(args[1]); err != nil {
				return err
			}
			if !editor.SetRules(args[1], strings.Join(args[2:], " ")) {
				return nil
			}
			return saveDraft(cmd, editor)
		})
	},
}

var mappingSaveCmd = &cobra.Command{
	Use:   "save <import-id>",
	Short: "Envia o mapeamento (com o rascunho local) para o backend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, args[0], func(editor *usecase.ImportMappingEditor) error {
			return editor.Save(cmd.Context())
		})
	},
}

var mappingDiscardCmd = &cobra.Command{
	Use:   "discard <import-id>",
	Short: "Descarta o rascunho local",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, args[0], func(editor *usecase.ImportMappingEditor) error {
			if err := editor.DiscardDraft(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("🗑️ rascunho descartado.")
			printMapping(editor)
			return nil
		})
	},
}

var mappingEditCmd = &cobra.Command{
	Use:   "edit <import-id>",
	Short: "Abre o quadro de mapeamento interativo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, appOptions{interactive: true, restoreSession: true})
		if err != nil {
			return err
		}
		defer a.Close()

		bridge := tui.NewBridge()
		editor := usecase.NewImportMappingEditor(args[0], a.client, database.NewMappingDraftRepository(a.db), bridge, a.logger)
		if err := editor.Load(cmd.Context()); err != nil {
			return err
		}

		model := tui.NewMappingModel(cmd.Context(), editor, bridge)
		_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
		return err
	},
}

func init() {
	mappingCmd.AddCommand(mappingShowCmd)
	mappingCmd.AddCommand(mappingAddCmd)
	mappingCmd.AddCommand(mappingRemoveCmd)
	mappingCmd.AddCommand(mappingRulesCmd)
	mappingCmd.AddCommand(mappingSaveCmd)
	mappingCmd.AddCommand(mappingDiscardCmd)
	mappingCmd.AddCommand(mappingEditCmd)
}

func withEditor(cmd *cobra.Command, importID string, fn func(*usecase.ImportMappingEditor) error) error {
	a, err := newApp(cmd, appOptions{restoreSession: true})
	if err != nil {
		return err
	}
	defer a.Close()

	notifier := notify.NewConsoleNotifier(os.Stdout, a.logger)
	editor := usecase.NewImportMappingEditor(importID, a.client, database.NewMappingDraftRepository(a.db), notifier, a.logger)
	if err := editor.Load(cmd.Context()); err != nil {
		return err
	}
	return fn(editor)
}

func checkField(field string) error {
	if !entity.IsDestinationField(field) {
		return fmt.Errorf("campo desconhecido %q (válidos: %s)", field, strings.Join(entity.DestinationFields, ", "))
	}
	return nil
}

func saveDraft(cmd *cobra.Command, editor *usecase.ImportMappingEditor) error {
	if err := editor.SaveDraft(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("📝 rascunho atualizado. Rode 'dashboard mapping save' para enviar.")
	return nil
}

func printMapping(editor *usecase.ImportMappingEditor) {
	fmt.Printf("📄 %s\n", editor.FileName())
	fmt.Printf("colunas: %s\n\n", strings.Join(editor.Columns(), ", "))

	mapping := editor.Mapping()
	for _, field := range entity.DestinationFields {
		sources := mapping.Sources(field)
		line := fmt.Sprintf("  %-13s ← %s", field, strings.Join(sources, ", "))
		if len(sources) == 0 {
			line = fmt.Sprintf("  %-13s ← (nenhuma)", field)
		}
		if rules := mapping.Rules(field); rules != "" {
			line += "  [regras: " + rules + "]"
		}
		fmt.Println(line)
	}
	if editor.Dirty() {
		fmt.Println("\n⚠️ há alterações locais ainda não enviadas")
	}
}
