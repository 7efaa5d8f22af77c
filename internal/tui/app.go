package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/tessro/cinder/internal/core"
	cerrors "github.com/tessro/cinder/internal/errors"
	"github.com/tessro/cinder/internal/library"
	"github.com/tessro/cinder/internal/logging"
	"github.com/tessro/cinder/internal/metadata"
	"github.com/tessro/cinder/internal/tail"
	"github.com/tessro/cinder/internal/transport"
	"github.com/tessro/cinder/internal/tui/components"
	"github.com/tessro/cinder/internal/tui/styles"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelNowPlaying Panel = iota
	PanelPlaylist
	PanelHistory
	panelCount
)

// promptMode is the purpose of the text input, if shown.
type promptMode int

const (
	promptNone promptMode = iota
	promptOpen
	promptFilter
)

const (
	seekStep   = 0.05
	volumeStep = 5
	errorTTL   = 5 * time.Second
	noticeTTL  = 3 * time.Second
	coverSize  = 16
)

// Options configures the dashboard.
type Options struct {
	Transport       *transport.Transport
	Reader          core.MetadataReader
	LibraryDir      string
	Extensions      []string
	RefreshInterval time.Duration
	AutoAdvance     bool
	ShowCover       bool
	Theme           string
	Logger          *log.Logger

	// Copy writes text to the clipboard. Defaults to the system
	// clipboard with an OSC 52 fallback.
	Copy func(string) error
}

// Model is the main TUI model
type Model struct {
	opts         Options
	transport    *transport.Transport
	logger       *log.Logger
	width        int
	height       int
	focusedPanel Panel

	// State
	state       *core.PlaybackState
	tracks      []core.Track
	cursor      int
	history     []components.HistoryEntry
	fingerprint uint64

	// Components
	nowPlaying   *components.NowPlaying
	playlistView *components.Playlist
	historyView  *components.History

	keys     keyMap
	help     help.Model
	showHelp bool

	prompt promptMode
	input  textinput.Model

	// Status line
	lastError    error
	errorExpiry  time.Time
	notice       string
	noticeExpiry time.Time

	quitting bool
}

// NewModel creates a new TUI model
func NewModel(opts Options) Model {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Copy == nil {
		opts.Copy = copyText
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = library.DefaultExtensions
	}
	if opts.Theme != "" {
		styles.Apply(opts.Theme)
	}

	ti := textinput.New()
	ti.CharLimit = 512
	ti.Width = 60

	m := Model{
		opts:         opts,
		transport:    opts.Transport,
		logger:       opts.Logger,
		focusedPanel: PanelPlaylist,
		nowPlaying:   components.NewNowPlaying(),
		playlistView: components.NewPlaylist(),
		historyView:  components.NewHistory(),
		keys:         newKeyMap(),
		help:         help.New(),
		input:        ti,
		cursor:       -1,
	}
	m.tracks = m.transport.Tracks()
	m.cursor = m.transport.Cursor()
	m.state = m.transport.Snapshot()
	if fp, err := library.Fingerprint(m.tracks); err == nil {
		m.fingerprint = fp
	}
	return m
}

// Messages
type tickMsg time.Time

type actionMsg struct {
	err    error
	notice string
}

type scanMsg struct {
	added       []core.Track
	fingerprint uint64
	unchanged   bool
	failed      int
	err         error
}

type coverMsg struct {
	id    string
	cells string
}

// Commands
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opts.RefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// do runs a transport call off the event loop, since loads may block
// on decoding or transcoding.
func (m Model) do(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return actionMsg{err: fn(ctx)}
	}
}

// Init initializes the model. The first track is cued paused; playback
// starts on the first key press.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tick()}
	if len(m.tracks) > 0 && !m.state.HasTrack() {
		cmds = append(cmds, m.do(func(ctx context.Context) error {
			return m.transport.Cue(ctx, 0)
		}))
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		cmd := m.poll()
		return m, tea.Batch(m.tick(), cmd)

	case actionMsg:
		if msg.err != nil {
			m.setError(msg.err)
		}
		if msg.notice != "" {
			m.setNotice(msg.notice)
		}
		return m, m.poll()

	case scanMsg:
		return m.handleScan(msg)

	case coverMsg:
		m.nowPlaying.SetCover(msg.id, msg.cells)
		return m, nil
	}

	if m.prompt != promptNone {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

// poll refreshes the transport on the event loop, records history and
// advances when a track finished.
func (m *Model) poll() tea.Cmd {
	state, finished := m.transport.Refresh()
	prev := m.state
	m.state = state
	m.tracks = m.transport.Tracks()
	m.cursor = m.transport.Cursor()

	var cmds []tea.Cmd
	for _, e := range tail.Diff(prev, state, finished) {
		switch e.Type {
		case tail.EventTrackComplete, tail.EventTrackSkip:
			if prev.HasTrack() {
				m.history = components.PushHistory(m.history, components.HistoryEntry{
					Track:    *prev.Track,
					PlayedAt: e.Timestamp,
					Skipped:  e.Type == tail.EventTrackSkip,
				})
			}
		case tail.EventTrackChange:
			if cmd := m.loadCover(state.Track); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	}

	if finished && m.opts.AutoAdvance {
		cmds = append(cmds, m.do(m.transport.Next))
	}
	return tea.Batch(cmds...)
}

func (m Model) loadCover(track *core.Track) tea.Cmd {
	if !m.opts.ShowCover || track == nil || m.nowPlaying.CoverFor(track.ID) {
		return nil
	}
	id, data := track.ID, track.Cover
	return func() tea.Msg {
		if len(data) == 0 {
			return coverMsg{id: id}
		}
		img, err := metadata.Thumbnail(data, coverSize, coverSize)
		if err != nil {
			m.logger.Debug("cover unavailable", "track", id, "err", err)
			return coverMsg{id: id}
		}
		return coverMsg{id: id, cells: components.CoverCells(img)}
	}
}

func (m *Model) setError(err error) {
	m.logger.Warn("action failed", "err", err)
	m.lastError = err
	m.errorExpiry = time.Now().Add(errorTTL)
}

func (m *Model) setNotice(s string) {
	m.notice = s
	m.noticeExpiry = time.Now().Add(noticeTTL)
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
		}
		return m, nil
	}

	if m.prompt != promptNone {
		return m.handlePromptKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.focus):
		m.focusedPanel = (m.focusedPanel + 1) % panelCount
		return m, nil

	case key.Matches(msg, m.keys.playPause):
		return m, m.do(m.transport.PlayPause)

	case key.Matches(msg, m.keys.next):
		return m, m.do(m.transport.Next)

	case key.Matches(msg, m.keys.prev):
		return m, m.do(m.transport.Previous)

	case key.Matches(msg, m.keys.stop):
		return m, m.do(func(context.Context) error { return m.transport.Stop() })

	case key.Matches(msg, m.keys.seekBack):
		return m, m.seekBy(-seekStep)

	case key.Matches(msg, m.keys.seekFwd):
		return m, m.seekBy(seekStep)

	case key.Matches(msg, m.keys.volUp):
		return m, m.volumeBy(volumeStep)

	case key.Matches(msg, m.keys.volDown):
		return m, m.volumeBy(-volumeStep)

	case key.Matches(msg, m.keys.down):
		m.playlistView.SelectNext(m.tracks)
		return m, nil

	case key.Matches(msg, m.keys.up):
		m.playlistView.SelectPrev(m.tracks)
		return m, nil

	case key.Matches(msg, m.keys.enter):
		i := m.playlistView.Selected(m.tracks)
		if i < 0 {
			return m, nil
		}
		return m, m.do(func(ctx context.Context) error {
			return m.transport.Select(ctx, i)
		})

	case key.Matches(msg, m.keys.open):
		return m, m.openPrompt(promptOpen, "Path to an audio file", "")

	case key.Matches(msg, m.keys.filter):
		return m, m.openPrompt(promptFilter, "Filter playlist", m.playlistView.Filter())

	case key.Matches(msg, m.keys.copyPath):
		return m, m.copySelected()

	case key.Matches(msg, m.keys.rescan):
		return m, m.rescan()
	}

	return m, nil
}

func (m *Model) openPrompt(mode promptMode, placeholder, value string) tea.Cmd {
	m.prompt = mode
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	return textinput.Blink
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.prompt == promptFilter {
			m.playlistView.SetFilter("")
		}
		m.closePrompt()
		return m, nil

	case "enter":
		value := strings.TrimSpace(m.input.Value())
		mode := m.prompt
		m.closePrompt()
		if mode == promptOpen && value != "" {
			return m, m.openFile(value)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.prompt == promptFilter {
		m.playlistView.SetFilter(m.input.Value())
		if m.playlistView.Selected(m.tracks) < 0 {
			m.playlistView.SelectNext(m.tracks)
		}
	}
	return m, cmd
}

func (m *Model) closePrompt() {
	m.prompt = promptNone
	m.input.Blur()
	m.input.SetValue("")
}

func (m Model) seekBy(delta float64) tea.Cmd {
	if !m.state.HasTrack() {
		return nil
	}
	target := m.state.Fraction() + delta
	return m.do(func(context.Context) error {
		return m.transport.Seek(target)
	})
}

func (m Model) volumeBy(delta int) tea.Cmd {
	level := m.state.Volume + delta
	return func() tea.Msg {
		applied, err := m.transport.SetVolume(level)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{notice: fmt.Sprintf("Volume %d%%", applied)}
	}
}

// openFile appends path to the playlist and plays it.
func (m Model) openFile(path string) tea.Cmd {
	path = expandHome(path)
	exts := m.opts.Extensions
	reader := m.opts.Reader
	return func() tea.Msg {
		info, err := os.Stat(path)
		if err != nil {
			return actionMsg{err: fmt.Errorf("open %s: %w", path, err)}
		}
		if info.IsDir() || !library.IsSupported(path, exts) {
			return actionMsg{err: fmt.Errorf("open %s: %w", filepath.Base(path), cerrors.ErrUnsupportedFormat)}
		}

		track := core.NewTrack(path)
		if reader != nil {
			md, _ := reader.Read(path)
			track = track.WithMetadata(md)
		}
		m.transport.Add(track)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := m.transport.Select(ctx, len(m.transport.Tracks())-1); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{notice: "Added " + track.Title}
	}
}

func (m Model) copySelected() tea.Cmd {
	i := m.playlistView.Selected(m.tracks)
	if i < 0 {
		if !m.state.HasTrack() {
			return nil
		}
		i = m.cursor
	}
	if i < 0 || i >= len(m.tracks) {
		return nil
	}
	path := m.tracks[i].Path
	copyFn := m.opts.Copy
	return func() tea.Msg {
		if err := copyFn(path); err != nil {
			return actionMsg{err: fmt.Errorf("copy path: %w", err)}
		}
		return actionMsg{notice: "Copied " + path}
	}
}

// rescan lists the library folder again and appends files that are not
// yet in the playlist.
func (m Model) rescan() tea.Cmd {
	dir := m.opts.LibraryDir
	if dir == "" {
		return nil
	}
	exts := m.opts.Extensions
	reader := m.opts.Reader
	known := make(map[string]bool, len(m.tracks))
	for _, t := range m.tracks {
		known[t.Path] = true
	}
	last := m.fingerprint

	return func() tea.Msg {
		found, err := library.Scan(dir, exts)
		if err != nil {
			return scanMsg{err: err}
		}
		fp, err := library.Fingerprint(found)
		if err != nil {
			return scanMsg{err: err}
		}
		if fp == last {
			return scanMsg{unchanged: true, fingerprint: fp}
		}

		var fresh []core.Track
		for _, t := range found {
			if !known[t.Path] {
				fresh = append(fresh, t)
			}
		}
		msg := scanMsg{fingerprint: fp}
		if reader != nil {
			result := library.Enrich(fresh, reader)
			msg.added = result.Data
			msg.failed = len(result.Errors)
		} else {
			msg.added = fresh
		}
		return msg
	}
}

func (m Model) handleScan(msg scanMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.err != nil:
		m.setError(msg.err)
		return m, nil
	case msg.unchanged:
		m.setNotice("Library unchanged")
		return m, nil
	}

	m.fingerprint = msg.fingerprint
	if len(msg.added) > 0 {
		m.transport.Add(msg.added...)
		m.tracks = m.transport.Tracks()
	}
	notice := fmt.Sprintf("Rescan: %d new", len(msg.added))
	if msg.failed > 0 {
		notice += fmt.Sprintf(", %d without tags", msg.failed)
	}
	m.setNotice(notice)
	return m, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	// Left: Now Playing (top), Playlist (bottom). Right: History.
	leftWidth := m.width * 65 / 100
	rightWidth := m.width - leftWidth - 2
	topHeight := m.height * 45 / 100
	if m.opts.ShowCover && topHeight < coverSize/2+6 {
		topHeight = coverSize/2 + 6
	}
	bottomHeight := m.height - topHeight - 3
	if m.prompt != promptNone {
		bottomHeight -= 2
	}

	nowPlaying := m.nowPlaying.Render(m.state, leftWidth-2, topHeight-2, m.focusedPanel == PanelNowPlaying)
	playlistView := m.playlistView.Render(m.tracks, m.cursor, leftWidth-2, bottomHeight-2, m.focusedPanel == PanelPlaylist)
	historyView := m.historyView.Render(m.history, rightWidth-2, topHeight+bottomHeight-2, m.focusedPanel == PanelHistory)

	leftCol := lipgloss.JoinVertical(lipgloss.Left, nowPlaying, playlistView)
	main := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, historyView)

	parts := []string{main}
	if m.prompt != promptNone {
		parts = append(parts, m.renderPrompt())
	}
	parts = append(parts, m.renderStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderPrompt() string {
	label := "Open: "
	if m.prompt == promptFilter {
		label = "Filter: "
	}
	return lipgloss.NewStyle().
		Padding(0, 1).
		Render(styles.Highlight.Render(label) + m.input.View())
}

func (m Model) renderStatusBar() string {
	now := time.Now()
	status := m.help.ShortHelpView(m.keys.ShortHelp())

	switch {
	case m.lastError != nil && now.Before(m.errorExpiry):
		text := "Error: " + m.lastError.Error()
		if s := cerrors.GetSuggestion(m.lastError); s != "" {
			text += " (" + s + ")"
		}
		status = styles.ErrorText.Render(text)
	case m.notice != "" && now.Before(m.noticeExpiry):
		status = styles.Muted.Render(m.notice)
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := styles.Highlight.Render("Cinder - Keyboard Shortcuts")
	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		m.help.FullHelpView(m.keys.FullHelp()),
		"",
		styles.Dim.Render("Press ? or Esc to close"),
	)

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Padding(1, 2).Render(body))
}

// Run starts the TUI application
func Run(opts Options) error {
	model := NewModel(opts)
	p := tea.NewProgram(model, tea.WithAltScreen())

	_, err := p.Run()
	return err
}
