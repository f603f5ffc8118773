package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type confirmRequest struct {
	prompt string
	reply  chan bool
}

// confirmRequestMsg asks the App to open the modal.
type confirmRequestMsg confirmRequest

// Prompter bridges confirmations requested from a tea.Cmd goroutine to the
// in-page modal. It satisfies collection.Confirmer.
type Prompter struct {
	requests chan confirmRequest
	done     chan struct{}
	once     sync.Once
}

// NewPrompter creates a prompter.
func NewPrompter() *Prompter {
	return &Prompter{
		requests: make(chan confirmRequest),
		done:     make(chan struct{}),
	}
}

// Confirm blocks until the user answers the modal, ctx ends or the prompter
// is closed.
func (p *Prompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	req := confirmRequest{prompt: prompt, reply: make(chan bool, 1)}
	select {
	case p.requests <- req:
	case <-ctx.Done():
		return false, ctx.Err()
	case <-p.done:
		return false, nil
	}
	select {
	case ok := <-req.reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	case <-p.done:
		return false, nil
	}
}

// Wait returns a command that delivers the next confirmation request.
func (p *Prompter) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case req := <-p.requests:
			return confirmRequestMsg(req)
		case <-p.done:
			return nil
		}
	}
}

// Close declines any outstanding and future requests.
func (p *Prompter) Close() {
	p.once.Do(func() { close(p.done) })
}

// ConfirmModal is a y/n dialog answering one request.
type ConfirmModal struct {
	prompt string
	reply  chan bool
	styles Styles
}

func newConfirmModal(req confirmRequestMsg, styles Styles) *ConfirmModal {
	return &ConfirmModal{prompt: req.prompt, reply: req.reply, styles: styles}
}

// Prompt returns the question shown.
func (m *ConfirmModal) Prompt() string { return m.prompt }

// Update handles a key and reports whether the modal was answered.
func (m *ConfirmModal) Update(msg tea.KeyMsg) (answered bool) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.reply <- true
		return true
	case "n", "N", "esc":
		m.reply <- false
		return true
	}
	return false
}

// View renders the dialog.
func (m *ConfirmModal) View() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Bold.Render(m.prompt),
		"",
		m.styles.Muted.Render("[y] Yes   [n] No"),
	)
	return m.styles.Modal.Render(body)
}
