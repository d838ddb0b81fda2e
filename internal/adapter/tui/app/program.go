package app

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"aitools/internal/domain"
	"aitools/internal/usecase/tools"
)

// Program runs the TUI until the user quits or ctx is cancelled.
type Program struct {
	logger      *slog.Logger
	kit         *tools.Kit
	bus         domain.EventBus // optional, nil = no activity pane feed
	downloadDir string
	program     *tea.Program
}

// NewProgram creates a TUI over kit. Downloads are written to downloadDir.
func NewProgram(kit *tools.Kit, downloadDir string, logger *slog.Logger) *Program {
	return &Program{logger: logger, kit: kit, downloadDir: downloadDir}
}

// SetEventBus enables forwarding bus events to the activity pane.
func (p *Program) SetEventBus(bus domain.EventBus) {
	p.bus = bus
}

// Run creates the Bubble Tea program and blocks until it exits.
func (p *Program) Run(ctx context.Context) error {
	// Controller observers run inside Update, so delivery must not wait
	// for the event loop.
	notify := func(msg tea.Msg) {
		go p.program.Send(msg)
	}

	model := NewModel(Deps{
		Kit:         p.kit,
		Logger:      p.logger,
		Context:     ctx,
		DownloadDir: p.downloadDir,
		Notify:      notify,
	})
	p.program = tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if p.bus != nil {
		unsub := p.bus.SubscribeAll(func(_ context.Context, event domain.Event) {
			p.program.Send(eventMsg{Event: event})
		})
		defer unsub()
	}

	go func() {
		<-ctx.Done()
		p.program.Send(QuitMsg{})
	}()

	_, err := p.program.Run()
	return err
}

// Stop signals the program to quit.
func (p *Program) Stop() {
	if p.program != nil {
		p.program.Send(QuitMsg{})
	}
}
