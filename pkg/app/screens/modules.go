package screens

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/app/styles"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/data"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/sources"
)

type modulesLoadedMsg struct {
	modules []data.Module
	err     error
}

// ModulesScreen is the module multi-select for one specialization.
type ModulesScreen struct {
	source   sources.Source
	spec     data.Specialization
	modules  []data.Module
	selected map[int]bool
	cursor   int
	loading  bool
	err      error
}

func NewModulesScreen(source sources.Source, spec data.Specialization) *ModulesScreen {
	return &ModulesScreen{
		source:   source,
		spec:     spec,
		selected: map[int]bool{},
		loading:  true,
	}
}

func (m *ModulesScreen) Init() tea.Cmd {
	return func() tea.Msg {
		modules, err := m.source.ListModules(m.spec.Slug)
		return modulesLoadedMsg{modules: modules, err: err}
	}
}

// selection renders the checked boxes as the same 1-based comma list the CLI
// accepts, or "0" when everything is checked.
func (m *ModulesScreen) selection() string {
	if len(m.selected) == 0 {
		return strconv.Itoa(m.cursor + 1)
	}
	if len(m.selected) == len(m.modules) {
		return "0"
	}
	var parts []string
	for i := range m.modules {
		if m.selected[i] {
			parts = append(parts, strconv.Itoa(i+1))
		}
	}
	return strings.Join(parts, ",")
}

func (m *ModulesScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case modulesLoadedMsg:
		m.loading = false
		m.modules = msg.modules
		m.err = msg.err

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.modules)-1 {
				m.cursor++
			}
		case " ":
			if len(m.modules) > 0 {
				m.selected[m.cursor] = !m.selected[m.cursor]
				if !m.selected[m.cursor] {
					delete(m.selected, m.cursor)
				}
			}
		case "a":
			for i := range m.modules {
				m.selected[i] = true
			}
		case "enter":
			if len(m.modules) == 0 {
				break
			}
			req := DownloadRequest{Specialization: m.spec, Selection: m.selection()}
			return m, func() tea.Msg {
				return SwitchScreenMsg{Screen: "download", Data: req}
			}
		}
	}
	return m, nil
}

func (m *ModulesScreen) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(m.spec.Title))
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(styles.MutedStyle.Render("Buscando módulos..."))
	case m.err != nil:
		b.WriteString(styles.StatusError.Render(fmt.Sprintf("✗ Erro ao buscar módulos: %v", m.err)))
	case len(m.modules) == 0:
		b.WriteString(styles.MutedStyle.Render("Nenhum módulo encontrado para esta especialização."))
	default:
		for i, module := range m.modules {
			check := "[ ]"
			if m.selected[i] {
				check = "[x]"
			}
			line := fmt.Sprintf("%s %s", check, module.Title)
			if module.Type != data.ModuleTypeGroup {
				line += styles.MutedStyle.Render(fmt.Sprintf(" (tipo: %s, pulado)", module.Type))
			}
			if i == m.cursor {
				line = styles.SelectedStyle.Render("> " + line)
			} else {
				line = "  " + line
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("espaço marcar • a todos • enter baixar • esc voltar"))
	return b.String()
}
