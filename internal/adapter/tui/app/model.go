package app

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"aitools/internal/adapter/tui/components"
	"aitools/internal/adapter/tui/theme"
	"aitools/internal/adapter/tui/uxerror"
	"aitools/internal/domain"
	"aitools/internal/usecase/tools"
)

// Deps are dependencies injected into the root model.
type Deps struct {
	Kit         *tools.Kit
	Logger      *slog.Logger
	Context     context.Context
	DownloadDir string
	// Notify delivers a message to the running program without blocking
	// the caller. Nil disables controller-driven refreshes.
	Notify func(tea.Msg)
}

// Model is the root Bubble Tea model: the catalog, or one open tool page.
type Model struct {
	deps Deps

	catalog   catalogModel
	page      page
	statusBar components.StatusBarModel
	spinner   spinner.Model
	overlay   components.Overlay
	activity  components.ActivityLog

	showActivity bool
	noteSeq      int
	width        int
	height       int
	quitting     bool
}

// NewModel creates the root model showing the catalog.
func NewModel(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Context == nil {
		deps.Context = context.Background()
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorInfo)

	return Model{
		deps:      deps,
		catalog:   newCatalog(),
		statusBar: components.NewStatusBar(),
		spinner:   s,
		activity:  components.NewActivityLog(),
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case QuitMsg:
		return m.quit()

	case snapshotMsg:
		// Views read snapshots directly; receiving the message is enough
		// to trigger a render.
		return m, nil

	case eventMsg:
		m.activity.Append(msg.Event)
		return m, nil

	case actionDoneMsg:
		return m, m.setNote(msg.Note, msg.Err)

	case clearNoteMsg:
		if msg.Seq == m.noteSeq {
			m.statusBar.Extra = ""
		}
		return m, nil

	case showOverlayMsg:
		m.overlay.Show(msg.Title, msg.Content, m.width, m.height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.page != nil {
		return m, m.page.Update(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	if m.overlay.Shown() {
		var cmd tea.Cmd
		m.overlay, cmd = m.overlay.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+e":
		m.showActivity = !m.showActivity
		m.layout()
		return m, nil
	case "f1":
		m.overlay.Show("Keys", helpText(m.hints()), m.width, m.height)
		return m, nil
	}

	if m.page == nil {
		return m.handleCatalogKey(msg)
	}
	if msg.Type == tea.KeyEsc {
		m.closePage()
		return m, nil
	}
	return m, m.page.Update(msg)
}

func (m Model) handleCatalogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch s := msg.String(); s {
	case "up", "k":
		m.catalog.up()
	case "down", "j":
		m.catalog.down()
	case "enter":
		m.openPage(m.catalog.selected())
	case "1", "2", "3", "4", "5":
		if m.catalog.pick(int(s[0] - '1')) {
			m.openPage(m.catalog.selected())
		}
	case "q", "esc":
		return m.quit()
	}
	return m, nil
}

func (m *Model) openPage(d domain.ToolDescriptor) {
	env := pageEnv{ctx: m.deps.Context, downloadDir: m.deps.DownloadDir, notify: m.deps.Notify}
	kit := m.deps.Kit
	switch d.ID {
	case domain.ToolImageGenerator:
		m.page = newImagePage(env, d, kit.ImageGenerator())
	case domain.ToolVoiceEnhancer:
		m.page = newVoicePage(env, d, kit.VoiceEnhancer())
	case domain.ToolTextSummarizer:
		m.page = newSummarizerPage(env, d, kit.TextSummarizer())
	case domain.ToolTranslator:
		m.page = newTranslatorPage(env, d, kit.Translator())
	case domain.ToolChatAssistant:
		m.page = newChatPage(env, d, kit.ChatAssistant())
	default:
		m.deps.Logger.Warn("no page for tool", "tool", string(d.ID))
		return
	}
	m.deps.Logger.Debug("tool page opened", "tool", string(d.ID))
	m.statusBar.Extra = ""
	m.layout()
}

func (m *Model) closePage() {
	if m.page == nil {
		return
	}
	m.deps.Logger.Debug("tool page closed", "tool", string(m.page.Descriptor().ID))
	m.page.Close()
	m.page = nil
	m.statusBar.Extra = ""
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.closePage()
	m.quitting = true
	return m, tea.Quit
}

// setNote shows a transient note, or the humanized error, in the status bar.
func (m *Model) setNote(note string, err error) tea.Cmd {
	if err != nil {
		n := uxerror.Explain(err)
		m.deps.Logger.Debug("action failed", "error", err, "code", string(n.Code))
		note = theme.SymbolError + " " + n.Summary()
	}
	if note == "" {
		return nil
	}
	m.noteSeq++
	m.statusBar.Extra = note
	return clearNoteCmd(m.noteSeq)
}

func (m Model) hints() []components.KeyHint {
	if m.page != nil {
		return m.page.Hints()
	}
	return m.catalog.hints()
}

// activityHeight is the height of the activity pane when shown.
func (m Model) activityHeight() int {
	if !m.showActivity {
		return 0
	}
	return theme.Clamp(m.height/4, 4, 12)
}

func (m Model) contentHeight() int {
	h := m.height - 1 // status bar
	if m.showActivity {
		h -= m.activityHeight() + 1 // divider
	}
	if h < 5 {
		h = 5
	}
	return h
}

// layout recalculates sizes for all sub-models.
func (m *Model) layout() {
	m.statusBar.SetWidth(m.width)
	m.catalog.width = m.width
	m.activity.SetSize(m.width, m.activityHeight())
	m.overlay.Resize(m.width, m.height)
	if m.page != nil {
		m.page.SetSize(m.width, m.contentHeight())
	}
}

// View renders the entire UI.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if m.width == 0 {
		return "  Initializing..."
	}
	if m.overlay.Shown() {
		return m.overlay.View()
	}

	var body string
	if m.page != nil {
		body = m.page.View(m.spinner.View())
		m.statusBar.Tool = m.page.Descriptor().Title
		m.statusBar.Status = m.page.Status()
	} else {
		body = m.catalog.View()
		m.statusBar.Tool = ""
		m.statusBar.Status = ""
	}
	m.statusBar.Hints = m.hints()

	h := m.contentHeight()
	parts := []string{lipgloss.NewStyle().Height(h).MaxHeight(h).Render(body)}
	if m.showActivity {
		parts = append(parts, components.Divider(m.width), m.activity.View())
	}
	parts = append(parts, m.statusBar.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
