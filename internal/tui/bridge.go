package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const toastTTL = 4 * time.Second

type toastKind int

const (
	toastSuccess toastKind = iota
	toastFailure
)

type toastMsg struct {
	kind toastKind
	text string
	at   time.Time
}

// changedMsg only signals that the controller state moved; the model pulls a
// fresh snapshot when it arrives, so dropped signals lose nothing.
type changedMsg struct{}

// Bridge carries notifications and change signals from background goroutines
// into the bubbletea event loop. It implements usecase.Notifier.
type Bridge struct {
	ch chan tea.Msg
}

func NewBridge() *Bridge {
	return &Bridge{ch: make(chan tea.Msg, 64)}
}

func (b *Bridge) Success(message string) {
	b.send(toastMsg{kind: toastSuccess, text: message, at: time.Now()})
}

func (b *Bridge) Failure(message string, err error) {
	text := message
	if err != nil {
		text += ": " + err.Error()
	}
	b.send(toastMsg{kind: toastFailure, text: text, at: time.Now()})
}

func (b *Bridge) Changed() {
	b.send(changedMsg{})
}

func (b *Bridge) send(msg tea.Msg) {
	select {
	case b.ch <- msg:
	default:
	}
}

// Listen waits for the next message; models re-arm it after every receive.
func (b *Bridge) Listen() tea.Cmd {
	return func() tea.Msg {
		return <-b.ch
	}
}
