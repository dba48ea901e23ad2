package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xavierca1/ligue-campaigns/internal/entity"
	"github.com/xavierca1/ligue-campaigns/internal/usecase"
)

type audienceFocus int

const (
	focusFilters audienceFocus = iota
	focusAvailable
	focusAudience
)

type opDoneMsg struct{ err error }

type toastExpiredMsg struct{}

var filterLabels = map[string]string{
	entity.FilterName:           "Nome",
	entity.FilterEmail:          "Email",
	entity.FilterWhatsApp:       "WhatsApp",
	entity.FilterGender:         "Gênero",
	entity.FilterBirthDateStart: "Nascimento de",
	entity.FilterBirthDateEnd:   "Nascimento até",
	entity.FilterStreet:         "Rua",
	entity.FilterNeighborhood:   "Bairro",
	entity.FilterCity:           "Cidade",
	entity.FilterState:          "UF",
	entity.FilterZipCode:        "CEP",
	entity.FilterTags:           "Tags",
}

// AudienceModel is the audience management screen of one campaign.
type AudienceModel struct {
	ctx      context.Context
	campaign entity.Campaign
	ctrl     *usecase.AudienceController
	bridge   *Bridge

	snap        usecase.AudienceSnapshot
	focus       audienceFocus
	inputs      []textinput.Model
	inputIdx    int
	availCursor int
	audCursor   int
	spinner     spinner.Model
	toasts      []toastMsg
	busy        bool
}

func NewAudienceModel(ctx context.Context, campaign entity.Campaign, ctrl *usecase.AudienceController, bridge *Bridge) *AudienceModel {
	inputs := make([]textinput.Model, len(entity.FilterKeys))
	for i, key := range entity.FilterKeys {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = filterLabels[key]
		ti.CharLimit = 120
		ti.Width = 24
		inputs[i] = ti
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ctrl.OnChange(func(usecase.AudienceSnapshot) { bridge.Changed() })

	return &AudienceModel{
		ctx:      ctx,
		campaign: campaign,
		ctrl:     ctrl,
		bridge:   bridge,
		snap:     ctrl.Snapshot(),
		focus:    focusAvailable,
		inputs:   inputs,
		spinner:  sp,
	}
}

func (m *AudienceModel) Init() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return tea.Batch(
		m.spinner.Tick,
		m.bridge.Listen(),
		func() tea.Msg {
			ctrl.Start(ctx)
			return nil
		},
	)
}

func (m *AudienceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		m.snap = m.ctrl.Snapshot()
		m.clampCursors()
		return m, m.bridge.Listen()

	case toastMsg:
		m.toasts = append(m.toasts, msg)
		return m, tea.Batch(m.bridge.Listen(), expireToast())

	case toastExpiredMsg:
		m.pruneToasts()
		return m, nil

	case opDoneMsg:
		m.busy = false
		// falhas técnicas já chegam pelo Notifier do controller
		if msg.err != nil && usecase.IsDomainError(msg.err) {
			m.toasts = append(m.toasts, toastMsg{kind: toastFailure, text: msg.err.Error(), at: time.Now()})
			return m, expireToast()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func expireToast() tea.Cmd {
	return tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{} })
}

func (m *AudienceModel) pruneToasts() {
	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if time.Since(t.at) < toastTTL {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
}

func (m *AudienceModel) clampCursors() {
	m.availCursor = clamp(m.availCursor, len(m.snap.Available.Data))
	m.audCursor = clamp(m.audCursor, len(m.snap.Audience.Data))
}

func clamp(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}

func (m *AudienceModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		return m, m.cycleFocus(1)
	case "shift+tab":
		return m, m.cycleFocus(-1)
	}

	switch m.focus {
	case focusFilters:
		return m.updateFilters(msg)
	case focusAvailable:
		return m.updateAvailable(msg.String())
	default:
		return m.updateAudience(msg.String())
	}
}

func (m *AudienceModel) cycleFocus(delta int) tea.Cmd {
	if m.focus == focusFilters {
		m.blurInput()
	}
	next := (int(m.focus) + delta + 3) % 3
	// filtros desabilitados não recebem foco
	if audienceFocus(next) == focusFilters && !m.snap.Controls().FiltersEnabled {
		next = (next + delta + 3) % 3
	}
	m.focus = audienceFocus(next)
	if m.focus == focusFilters {
		return m.inputs[m.inputIdx].Focus()
	}
	return nil
}

// blurInput leaves the current filter input; the tags input is normalised here.
func (m *AudienceModel) blurInput() {
	m.inputs[m.inputIdx].Blur()
	if entity.FilterKeys[m.inputIdx] != entity.FilterTags {
		return
	}
	if err := m.ctrl.BlurTags(); err == nil {
		m.snap = m.ctrl.Snapshot()
		m.inputs[m.inputIdx].SetValue(m.snap.Filters.Tags)
	}
}

func (m *AudienceModel) moveInput(delta int) tea.Cmd {
	m.blurInput()
	m.inputIdx = (m.inputIdx + delta + len(m.inputs)) % len(m.inputs)
	return m.inputs[m.inputIdx].Focus()
}

func (m *AudienceModel) updateFilters(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, m.cycleFocus(1)
	case "up":
		return m, m.moveInput(-1)
	case "down", "enter":
		return m, m.moveInput(1)
	}

	if !m.snap.Controls().FiltersEnabled {
		return m, nil
	}

	before := m.inputs[m.inputIdx].Value()
	var cmd tea.Cmd
	m.inputs[m.inputIdx], cmd = m.inputs[m.inputIdx].Update(msg)
	if after := m.inputs[m.inputIdx].Value(); after != before {
		if err := m.ctrl.SetFilter(entity.FilterKeys[m.inputIdx], after); err != nil {
			m.toasts = append(m.toasts, toastMsg{kind: toastFailure, text: err.Error(), at: time.Now()})
			return m, tea.Batch(cmd, expireToast())
		}
	}
	return m, cmd
}

func (m *AudienceModel) updateAvailable(key string) (tea.Model, tea.Cmd) {
	controls := m.snap.Controls()
	data := m.snap.Available.Data

	switch key {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		m.availCursor = clamp(m.availCursor-1, len(data))
	case "down", "j":
		m.availCursor = clamp(m.availCursor+1, len(data))
	case " ", "x":
		if len(data) > 0 {
			m.ctrl.Toggle(data[m.availCursor].ID)
			m.snap = m.ctrl.Snapshot()
		}
	case "a":
		m.ctrl.ToggleAll()
		m.snap = m.ctrl.Snapshot()
	case "enter", "A":
		if controls.AddSelectedEnabled && !m.busy {
			ids := m.ctrl.Selected()
			return m, m.run(func(ctx context.Context) error {
				return m.ctrl.AddSelectedToAudience(ctx, ids)
			})
		}
	case "F":
		if controls.AddAllEnabled && !m.busy {
			filters, page, perPage := m.snap.AppliedFilters, m.snap.AvailablePage, m.snap.PerPage
			return m, m.run(func(ctx context.Context) error {
				return m.ctrl.AddAllFilteredToAudience(ctx, filters, page, perPage)
			})
		}
	case "left", "h":
		return m, m.goToPage(m.snap.AvailablePage-1, m.ctrl.SetAvailablePage)
	case "right", "l":
		return m, m.goToPage(m.snap.AvailablePage+1, m.ctrl.SetAvailablePage)
	}
	return m, nil
}

func (m *AudienceModel) updateAudience(key string) (tea.Model, tea.Cmd) {
	controls := m.snap.Controls()
	data := m.snap.Audience.Data

	switch key {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		m.audCursor = clamp(m.audCursor-1, len(data))
	case "down", "j":
		m.audCursor = clamp(m.audCursor+1, len(data))
	case "d":
		if controls.RemoveOneEnabled && len(data) > 0 && !m.busy {
			id := data[m.audCursor].ID
			return m, m.run(func(ctx context.Context) error {
				return m.ctrl.RemoveOneFromAudience(ctx, id)
			})
		}
	case "D":
		if controls.RemoveAllEnabled && !m.busy {
			return m, m.run(m.ctrl.RemoveAllFromAudience)
		}
	case "left", "h":
		return m, m.goToPage(m.snap.AudiencePage-1, m.ctrl.SetAudiencePage)
	case "right", "l":
		return m, m.goToPage(m.snap.AudiencePage+1, m.ctrl.SetAudiencePage)
	}
	return m, nil
}

func (m *AudienceModel) run(fn func(context.Context) error) tea.Cmd {
	m.busy = true
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{err: fn(ctx)}
	}
}

func (m *AudienceModel) goToPage(page int, set func(context.Context, int) bool) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		set(ctx, page)
		return nil
	}
}

func (m *AudienceModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Audiência · %s", m.campaign.Name)))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  [%s · %s]", m.campaign.Channel, m.campaign.Status)))
	if !m.snap.Editable {
		b.WriteString(warningStyle.Render("  somente leitura"))
	}
	b.WriteString("\n\n")

	if m.snap.State == usecase.StateInitialLoad {
		b.WriteString(m.spinner.View() + " Carregando audiência...\n")
		return b.String()
	}

	controls := m.snap.Controls()
	b.WriteString(m.viewFilters(controls))
	b.WriteString("\n")
	b.WriteString(m.viewAvailable())
	b.WriteString("\n")
	b.WriteString(m.viewAudience())
	b.WriteString("\n")

	if m.snap.State == usecase.StateFetching || m.busy {
		b.WriteString(m.spinner.View() + dimStyle.Render(" atualizando...") + "\n")
	}
	for _, t := range m.toasts {
		if t.kind == toastSuccess {
			b.WriteString(successStyle.Render("✔ "+t.text) + "\n")
		} else {
			b.WriteString(failureStyle.Render("✖ "+t.text) + "\n")
		}
	}

	b.WriteString("\n" + strings.Join([]string{
		"tab foco",
		"espaço marcar",
		"a marcar página",
		action("A", "adicionar marcados", controls.AddSelectedEnabled),
		action("F", "adicionar todos filtrados", controls.AddAllEnabled),
		action("d", "remover", controls.RemoveOneEnabled),
		action("D", "remover todos", controls.RemoveAllEnabled),
		"←/→ página",
		"q sair",
	}, " · ") + "\n")
	return b.String()
}

func (m *AudienceModel) viewFilters(controls usecase.Controls) string {
	var b strings.Builder
	header := "Filtros"
	if !controls.FiltersEnabled {
		header += dimStyle.Render(" (desabilitados)")
	}
	b.WriteString(sectionStyle.Render(header) + "\n")

	for i, key := range entity.FilterKeys {
		label := fmt.Sprintf("%-15s", filterLabels[key])
		value := m.inputs[i].View()
		if !controls.FiltersEnabled {
			value = dimStyle.Render(m.snap.Filters.Get(key))
		}
		line := label + " " + value
		if m.focus == focusFilters && i == m.inputIdx {
			line = focusedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		if i%2 == 1 {
			b.WriteString("\n")
		} else {
			b.WriteString("   ")
		}
	}
	if len(entity.FilterKeys)%2 == 1 {
		b.WriteString("\n")
	}
	return b.String()
}

func (m *AudienceModel) viewAvailable() string {
	page := m.snap.Available
	var b strings.Builder

	header := fmt.Sprintf("Disponíveis · %d contatos · página %d/%d · %d marcados",
		page.TotalRecords, m.snap.AvailablePage, page.TotalPages, len(m.snap.Selected))
	b.WriteString(sectionStyle.Render(header) + "\n")

	if len(page.Data) == 0 {
		b.WriteString(dimStyle.Render("  nenhum contato disponível") + "\n")
	}
	for i, c := range page.Data {
		cursor := "  "
		if m.focus == focusAvailable && i == m.availCursor {
			cursor = focusedStyle.Render("> ")
		}
		check := "[ ]"
		if m.snap.IsSelected(c.ID) {
			check = successStyle.Render("[x]")
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, check, contactLine(c)))
	}
	return b.String()
}

func (m *AudienceModel) viewAudience() string {
	page := m.snap.Audience
	var b strings.Builder

	header := fmt.Sprintf("Na audiência · %d contatos · página %d/%d",
		page.TotalRecords, m.snap.AudiencePage, page.TotalPages)
	b.WriteString(sectionStyle.Render(header) + "\n")

	if len(page.Data) == 0 {
		b.WriteString(dimStyle.Render("  audiência vazia") + "\n")
	}
	for i, c := range page.Data {
		cursor := "  "
		if m.focus == focusAudience && i == m.audCursor {
			cursor = focusedStyle.Render("> ")
		}
		b.WriteString(cursor + contactLine(c) + "\n")
	}
	return b.String()
}

func contactLine(c entity.Contact) string {
	parts := []string{c.Name}
	if c.Email != "" {
		parts = append(parts, c.Email)
	}
	if c.WhatsApp != "" {
		parts = append(parts, c.WhatsApp)
	}
	if len(c.Tags) > 0 {
		parts = append(parts, dimStyle.Render(strings.Join(c.Tags, ", ")))
	}
	return strings.Join(parts, " · ")
}
