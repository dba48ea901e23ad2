package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// LoginPrompt asks for email and password. After the program exits, Submitted
// reports whether the user confirmed the form.
type LoginPrompt struct {
	inputs    []textinput.Model
	idx       int
	submitted bool
}

func NewLoginPrompt(email string) *LoginPrompt {
	emailInput := textinput.New()
	emailInput.Prompt = "Email: "
	emailInput.Placeholder = "voce@empresa.com.br"
	emailInput.SetValue(email)

	password := textinput.New()
	password.Prompt = "Senha: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	p := &LoginPrompt{inputs: []textinput.Model{emailInput, password}}
	if email != "" {
		p.idx = 1
	}
	p.inputs[p.idx].Focus()
	return p
}

func (p *LoginPrompt) Init() tea.Cmd {
	return textinput.Blink
}

func (p *LoginPrompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			return p, tea.Quit
		case "tab", "down":
			return p, p.focus((p.idx + 1) % len(p.inputs))
		case "shift+tab", "up":
			return p, p.focus((p.idx + len(p.inputs) - 1) % len(p.inputs))
		case "enter":
			if p.idx < len(p.inputs)-1 {
				return p, p.focus(p.idx + 1)
			}
			p.submitted = true
			return p, tea.Quit
		}
	}

	var cmd tea.Cmd
	p.inputs[p.idx], cmd = p.inputs[p.idx].Update(msg)
	return p, cmd
}

func (p *LoginPrompt) focus(idx int) tea.Cmd {
	p.inputs[p.idx].Blur()
	p.idx = idx
	return p.inputs[p.idx].Focus()
}

func (p *LoginPrompt) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Entrar no painel de campanhas") + "\n\n")
	for _, in := range p.inputs {
		b.WriteString(in.View() + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("enter confirmar · esc cancelar") + "\n")
	return b.String()
}

func (p *LoginPrompt) Submitted() bool { return p.submitted }

func (p *LoginPrompt) Email() string { return strings.TrimSpace(p.inputs[0].Value()) }

func (p *LoginPrompt) Password() string { return p.inputs[1].Value() }
