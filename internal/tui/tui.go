// Package tui is the interactive shell of patchview: a file list, the
// original document with removed lines highlighted, and the patched preview
// with added lines highlighted, plus change navigation over the engine's
// provenance data.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	glam "github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/asynkron/patchview/internal/config"
	"github.com/asynkron/patchview/internal/theme"
	"github.com/asynkron/patchview/internal/uistate"
	"github.com/asynkron/patchview/pkg/patch"
)

const helpMarkdown = `# patchview

| Key | Action |
| --- | --- |
| j / k, down / up | select file |
| n / p | next / previous change block |
| s | save the selected file in place |
| a | apply every file in the patch set |
| b | toggle .bak backups for in-place writes |
| ? | toggle this help |
| q, ctrl+c | quit |

Removed lines are highlighted in the original pane, added lines in the
patched pane. Hunks that could not be anchored in lenient mode are counted in
the status bar.
`

// fileView caches the apply outcome for one file of the patch set.
type fileView struct {
	original string
	result   patch.ApplyResult
	nav      *patch.Navigator
	err      error
}

type model struct {
	cfg     config.Config
	pal     theme.Palette
	patches []patch.FilePatch

	selected int
	views    map[int]*fileView
	curLine  int

	origVP  viewport.Model
	patchVP viewport.Model
	width   int
	height  int
	ready   bool

	showHelp bool
	helpText string
	status   string

	state     uistate.State
	statePath string
}

func newModel(cfg config.Config, patches []patch.FilePatch, pal theme.Palette, state uistate.State, statePath string) *model {
	m := &model{
		cfg:       cfg,
		pal:       pal,
		patches:   patches,
		views:     make(map[int]*fileView),
		state:     state,
		statePath: statePath,
	}
	for i, fp := range patches {
		if patch.TargetPath(fp) == state.SelectedFile && state.SelectedFile != "" {
			m.selected = i
			break
		}
	}
	return m
}

// view lazily loads and applies the selected file.
func (m *model) view(index int) *fileView {
	if v, ok := m.views[index]; ok {
		return v
	}
	v := &fileView{}
	fp := m.patches[index]
	target := filepath.Join(m.cfg.WorkingDir, patch.TargetPath(fp))
	original, err := patch.LoadOriginal(target)
	if err != nil {
		v.err = err
	} else {
		v.original = original
		result, applyErr := patch.Preview(original, fp, m.cfg.EngineOptions())
		if applyErr != nil {
			v.err = applyErr
		} else {
			v.result = result
			v.nav = patch.NewNavigator(result)
		}
	}
	m.views[index] = v
	return v
}

func (m *model) refresh() {
	v := m.view(m.selected)
	if v.err != nil {
		msg := m.pal.Muted.Render("cannot preview: " + v.err.Error())
		m.origVP.SetContent(msg)
		m.patchVP.SetContent(msg)
		return
	}
	m.origVP.SetContent(m.renderOriginal(v))
	m.patchVP.SetContent(m.renderPatched(v))
}

func (m *model) renderOriginal(v *fileView) string {
	lines := splitLines(v.original)
	removed := make(map[int]bool, len(v.result.RemovedOriginalIndices))
	for _, idx := range v.result.RemovedOriginalIndices {
		removed[idx] = true
	}
	var b strings.Builder
	for i, line := range lines {
		gutter := m.pal.Muted.Render(fmt.Sprintf("%4d ", i+1))
		if removed[i] {
			b.WriteString(gutter + m.pal.Removed.Render(line))
		} else {
			b.WriteString(gutter + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *model) renderPatched(v *fileView) string {
	lines := splitLines(v.result.Text)
	added := make(map[int]bool, len(v.result.AddedLines))
	for _, idx := range v.result.AddedLines {
		added[idx] = true
	}
	var b strings.Builder
	for i, line := range lines {
		gutter := m.pal.Muted.Render(fmt.Sprintf("%4d ", i+1))
		if added[i] {
			b.WriteString(gutter + m.pal.Added.Render(line))
		} else {
			b.WriteString(gutter + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// renderFileList builds the left column with per-file change summaries.
func (m *model) renderFileList(width int) string {
	var b strings.Builder
	for i, fp := range m.patches {
		adds, dels, _ := patch.Summarize(fp)
		label := fmt.Sprintf("%s +%d -%d", patch.TargetPath(fp), adds, dels)
		if len(label) > width && width > 1 {
			label = label[:width-1] + "…"
		}
		if i == m.selected {
			b.WriteString(m.pal.Selected.Render(label))
		} else {
			b.WriteString(label)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *model) renderStatus() string {
	v := m.view(m.selected)
	parts := []string{fmt.Sprintf("file %d/%d", m.selected+1, len(m.patches))}
	if v.err == nil {
		adds, dels, hunks := patch.Summarize(m.patches[m.selected])
		parts = append(parts, fmt.Sprintf("+%d -%d in %d hunks", adds, dels, hunks))
		if len(v.result.SkippedHunks) > 0 {
			parts = append(parts, fmt.Sprintf("skipped hunks: %d", len(v.result.SkippedHunks)))
		}
	}
	if m.state.Backup {
		parts = append(parts, "backup on")
	} else {
		parts = append(parts, "backup off")
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	parts = append(parts, "? for help")
	return m.pal.StatusBar.Width(m.width).Render(" " + strings.Join(parts, " · "))
}

func (m *model) recalcLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	listWidth := m.width / 4
	if listWidth < 20 {
		listWidth = 20
	}
	paneWidth := m.width - listWidth - 4
	if paneWidth < 20 {
		paneWidth = 20
	}
	paneHeight := (m.height - 4) / 2
	if paneHeight < 3 {
		paneHeight = 3
	}
	m.origVP.Width = paneWidth
	m.origVP.Height = paneHeight
	m.patchVP.Width = paneWidth
	m.patchVP.Height = paneHeight
}

func (m *model) jump(next bool) {
	v := m.view(m.selected)
	if v.nav == nil {
		return
	}
	var target int
	var err error
	if next {
		target, err = v.nav.Next(m.curLine)
	} else {
		target, err = v.nav.Prev(m.curLine)
	}
	if err != nil {
		return
	}
	m.curLine = target
	offset := target - m.patchVP.Height/2
	if offset < 0 {
		offset = 0
	}
	m.patchVP.SetYOffset(offset)
	m.origVP.SetYOffset(offset)
	m.status = fmt.Sprintf("line %d", target+1)
}

func (m *model) saveSelected() {
	v := m.view(m.selected)
	if v.err != nil {
		m.status = "cannot save: " + v.err.Error()
		return
	}
	fp := m.patches[m.selected]
	target := filepath.Join(m.cfg.WorkingDir, patch.TargetPath(fp))
	if err := patch.WriteResult(target, v.result.Text, m.state.Backup); err != nil {
		m.status = err.Error()
		return
	}
	m.status = "saved " + patch.TargetPath(fp)
}

func (m *model) applyAll() {
	results, err := patch.ApplyAllFilesystem(m.patches, patch.FilesystemOptions{
		Options:    m.cfg.EngineOptions(),
		WorkingDir: m.cfg.WorkingDir,
		Backup:     m.state.Backup,
	})
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("applied %d files", len(results))
}

func (m *model) persistState() {
	if m.statePath == "" {
		return
	}
	m.state.LastDiff = m.cfg.DiffPath
	m.state.SelectedFile = patch.TargetPath(m.patches[m.selected])
	m.state.ScrollOriginal = m.origVP.YOffset
	m.state.ScrollPatched = m.patchVP.YOffset
	_ = uistate.Save(m.statePath, m.state)
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.origVP, cmd = m.origVP.Update(msg)
	cmds = append(cmds, cmd)
	m.patchVP, cmd = m.patchVP.Update(msg)
	cmds = append(cmds, cmd)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.persistState()
			return m, tea.Quit
		}
		switch msg.String() {
		case "q":
			m.persistState()
			return m, tea.Quit
		case "esc":
			m.showHelp = false
		case "?":
			m.showHelp = !m.showHelp
		case "j", "down":
			if m.selected < len(m.patches)-1 {
				m.selected++
				m.curLine = 0
				m.refresh()
			}
		case "k", "up":
			if m.selected > 0 {
				m.selected--
				m.curLine = 0
				m.refresh()
			}
		case "n":
			m.jump(true)
		case "p":
			m.jump(false)
		case "b":
			m.state.Backup = !m.state.Backup
		case "s":
			m.saveSelected()
		case "a":
			m.applyAll()
		}
		return m, tea.Batch(cmds...)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) View() string {
	if !m.ready {
		return "Initializing…"
	}
	if m.showHelp {
		return m.helpText
	}
	listWidth := m.width / 4
	if listWidth < 20 {
		listWidth = 20
	}
	list := lipgloss.NewStyle().Width(listWidth).Render(m.renderFileList(listWidth))
	panes := lipgloss.JoinVertical(lipgloss.Left,
		m.pal.Border.Render(m.origVP.View()),
		m.pal.Border.Render(m.patchVP.View()),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top, list, panes)
	return body + "\n" + m.renderStatus()
}

// Run launches the interactive shell for the configured diff.
func Run(ctx context.Context, cfg config.Config) error {
	if strings.TrimSpace(cfg.DiffPath) == "" {
		return fmt.Errorf("the shell needs a diff file; pass -diff or use a headless mode")
	}
	diffText, err := patch.LoadOriginal(cfg.DiffPath)
	if err != nil {
		return err
	}
	patches, err := patch.Parse(diffText)
	if err != nil {
		return err
	}

	mode := theme.Detect(cfg.Theme)
	pal := theme.PaletteFor(mode)

	// Prevent OSC background color queries from contaminating stdin by
	// explicitly setting color profile and background for lipgloss/termenv.
	lipgloss.SetColorProfile(termenv.TrueColor)
	lipgloss.SetHasDarkBackground(mode == theme.Dark)

	statePath, stateErr := uistate.DefaultPath()
	state := uistate.Default()
	if stateErr == nil {
		if loaded, loadErr := uistate.Load(statePath); loadErr == nil {
			state = loaded
		}
	} else {
		statePath = ""
	}

	m := newModel(cfg, patches, pal, state, statePath)
	m.helpText = renderHelp(mode)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// renderHelp renders the help overlay once; plain markdown is an acceptable
// fallback when the renderer cannot be built.
func renderHelp(mode theme.Mode) string {
	style := "dark"
	if mode == theme.Light {
		style = "light"
	}
	r, err := glam.NewTermRenderer(
		glam.WithStylePath(style),
		glam.WithWordWrap(76),
	)
	if err != nil {
		return helpMarkdown
	}
	rendered, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return rendered
}
