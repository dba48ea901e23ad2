package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xavierca1/ligue-campaigns/internal/entity"
	"github.com/xavierca1/ligue-campaigns/internal/usecase"
)

var fieldLabels = map[string]string{
	entity.FieldName:         "Nome",
	entity.FieldEmail:        "Email",
	entity.FieldWhatsApp:     "WhatsApp",
	entity.FieldGender:       "Gênero",
	entity.FieldBirthDate:    "Data de nascimento",
	entity.FieldStreet:       "Rua",
	entity.FieldNumber:       "Número",
	entity.FieldComplement:   "Complemento",
	entity.FieldNeighborhood: "Bairro",
	entity.FieldCity:         "Cidade",
	entity.FieldState:        "UF",
	entity.FieldZipCode:      "CEP",
	entity.FieldTags:         "Tags",
}

type mappingPane int

const (
	paneColumns mappingPane = iota
	paneFields
)

type savedMsg struct{ err error }

type quitMsg struct{ err error }

// MappingModel is the keyboard rendition of the drag and drop mapping board:
// enter picks a column up, enter on a field drops it there.
type MappingModel struct {
	ctx    context.Context
	editor *usecase.ImportMappingEditor
	bridge *Bridge

	tokens  []usecase.ColumnToken
	targets map[string]func(usecase.ColumnToken)

	pane      mappingPane
	colCursor int
	fldCursor int
	chip      int
	held      *usecase.ColumnToken

	rules   textinput.Model
	editing bool

	toasts []toastMsg
	saving bool
}

func NewMappingModel(ctx context.Context, editor *usecase.ImportMappingEditor, bridge *Bridge) *MappingModel {
	ti := textinput.New()
	ti.Prompt = "regras: "
	ti.Placeholder = "ex.: capitalizar, remover espaços"
	ti.CharLimit = 500
	ti.Width = 60

	m := &MappingModel{
		ctx:     ctx,
		editor:  editor,
		bridge:  bridge,
		targets: make(map[string]func(usecase.ColumnToken)),
		rules:   ti,
	}
	editor.Bind(m)
	return m
}

func (m *MappingModel) EmitDraggable(token usecase.ColumnToken) {
	m.tokens = append(m.tokens, token)
}

func (m *MappingModel) AcceptDrop(field string, onDrop func(usecase.ColumnToken)) {
	m.targets[field] = onDrop
}

func (m *MappingModel) Init() tea.Cmd {
	return m.bridge.Listen()
}

func (m *MappingModel) currentField() string {
	return entity.DestinationFields[m.fldCursor]
}

func (m *MappingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case toastMsg:
		m.toasts = append(m.toasts, msg)
		return m, tea.Batch(m.bridge.Listen(), expireToast())

	case changedMsg:
		return m, m.bridge.Listen()

	case toastExpiredMsg:
		kept := m.toasts[:0]
		for _, t := range m.toasts {
			if time.Since(t.at) < toastTTL {
				kept = append(kept, t)
			}
		}
		m.toasts = kept
		return m, nil

	case savedMsg:
		m.saving = false
		return m, nil

	case quitMsg:
		if msg.err != nil {
			m.toasts = append(m.toasts, toastMsg{kind: toastFailure, text: msg.err.Error(), at: time.Now()})
		}
		return m, tea.Quit

	case tea.KeyMsg:
		if m.editing {
			return m.updateRules(msg)
		}
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m *MappingModel) updateRules(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.editor.SetRules(m.currentField(), m.rules.Value())
		m.editing = false
		m.rules.Blur()
		return m, nil
	case "esc":
		m.editing = false
		m.rules.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.rules, cmd = m.rules.Update(msg)
	return m, cmd
}

func (m *MappingModel) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		return m, m.quit()
	case "tab":
		if m.pane == paneColumns {
			m.pane = paneFields
		} else {
			m.pane = paneColumns
		}
		m.chip = 0
		return m, nil
	case "esc":
		m.held = nil
		return m, nil
	case "s":
		if m.saving {
			return m, nil
		}
		m.saving = true
		editor, ctx := m.editor, m.ctx
		return m, func() tea.Msg {
			return savedMsg{err: editor.Save(ctx)}
		}
	}

	if m.pane == paneColumns {
		m.updateColumns(key)
	} else {
		return m.updateFields(key)
	}
	return m, nil
}

func (m *MappingModel) updateColumns(key string) {
	switch key {
	case "up", "k":
		m.colCursor = clamp(m.colCursor-1, len(m.tokens))
	case "down", "j":
		m.colCursor = clamp(m.colCursor+1, len(m.tokens))
	case "enter", " ":
		if len(m.tokens) == 0 {
			return
		}
		token := m.tokens[m.colCursor]
		m.held = &token
		m.pane = paneFields
		m.chip = 0
	}
}

func (m *MappingModel) updateFields(key string) (tea.Model, tea.Cmd) {
	field := m.currentField()
	sources := m.editor.Mapping().Sources(field)

	switch key {
	case "up", "k":
		m.fldCursor = clamp(m.fldCursor-1, len(entity.DestinationFields))
		m.chip = 0
	case "down", "j":
		m.fldCursor = clamp(m.fldCursor+1, len(entity.DestinationFields))
		m.chip = 0
	case "left", "h":
		m.chip = clamp(m.chip-1, len(sources))
	case "right", "l":
		m.chip = clamp(m.chip+1, len(sources))
	case "enter", " ":
		if m.held == nil {
			return m, nil
		}
		if drop, ok := m.targets[field]; ok {
			drop(*m.held)
		}
		m.held = nil
		m.pane = paneColumns
	case "x", "delete", "backspace":
		if len(sources) > 0 {
			m.editor.RemoveSource(field, sources[clamp(m.chip, len(sources))])
			m.chip = clamp(m.chip, len(sources)-1)
		}
	case "r":
		m.editing = true
		m.rules.SetValue(m.editor.Mapping().Rules(field))
		m.rules.CursorEnd()
		return m, m.rules.Focus()
	}
	return m, nil
}

// quit grava um rascunho local quando há edições não salvas.
func (m *MappingModel) quit() tea.Cmd {
	if !m.editor.Dirty() {
		return tea.Quit
	}
	editor, ctx := m.editor, m.ctx
	return func() tea.Msg {
		return quitMsg{err: editor.SaveDraft(ctx)}
	}
}

func (m *MappingModel) View() string {
	var b strings.Builder

	title := fmt.Sprintf("Mapeamento · %s", m.editor.FileName())
	b.WriteString(titleStyle.Render(title))
	if m.editor.Dirty() {
		b.WriteString(warningStyle.Render("  • alterações não salvas"))
	}
	b.WriteString("\n\n")

	columns := paneStyle
	fields := paneStyle
	if m.pane == paneColumns {
		columns = activePane
	} else {
		fields = activePane
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		columns.Render(m.viewColumns()),
		"  ",
		fields.Render(m.viewFields()),
	))
	b.WriteString("\n")

	if m.held != nil {
		b.WriteString(focusedStyle.Render(fmt.Sprintf("arrastando %q, escolha um campo e pressione enter", m.held.Column)) + "\n")
	}
	if m.editing {
		b.WriteString(sectionStyle.Render(fieldLabels[m.currentField()]) + " " + m.rules.View() + "\n")
	}
	if m.saving {
		b.WriteString(dimStyle.Render("salvando...") + "\n")
	}
	for _, t := range m.toasts {
		if t.kind == toastSuccess {
			b.WriteString(successStyle.Render("✔ "+t.text) + "\n")
		} else {
			b.WriteString(failureStyle.Render("✖ "+t.text) + "\n")
		}
	}

	b.WriteString("\n" + strings.Join([]string{
		"tab painel",
		"enter pegar/soltar",
		"esc cancelar",
		"←/→ coluna mapeada",
		"x remover",
		"r regras",
		action("s", "salvar", !m.saving),
		"q sair",
	}, " · ") + "\n")
	return b.String()
}

func (m *MappingModel) viewColumns() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Colunas do CSV") + "\n")
	if len(m.tokens) == 0 {
		b.WriteString(dimStyle.Render("nenhuma coluna"))
	}
	for i, t := range m.tokens {
		line := "  " + t.Column
		if m.pane == paneColumns && i == m.colCursor {
			line = focusedStyle.Render("> " + t.Column)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *MappingModel) viewFields() string {
	mapping := m.editor.Mapping()
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Campos do contato") + "\n")

	for i, field := range entity.DestinationFields {
		current := m.pane == paneFields && i == m.fldCursor
		label := fmt.Sprintf("%-19s", fieldLabels[field])
		if current {
			label = focusedStyle.Render("> " + label)
		} else {
			label = "  " + label
		}

		sources := mapping.Sources(field)
		chips := make([]string, 0, len(sources))
		for j, col := range sources {
			if current && j == m.chip {
				chips = append(chips, selectedChip.Render(col))
			} else {
				chips = append(chips, chipStyle.Render(col))
			}
		}
		line := label + " " + strings.Join(chips, " ")
		if rules := mapping.Rules(field); rules != "" {
			line += dimStyle.Render("  regras: " + rules)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
