package screens

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/app/styles"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/data"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/sources"
)

type specsLoadedMsg struct {
	specs []data.Specialization
	err   error
}

// SpecializationsScreen lists the account's catalog and lets the operator
// pick the specialization to download.
type SpecializationsScreen struct {
	source  sources.Source
	specs   []data.Specialization
	cursor  int
	loading bool
	err     error
}

func NewSpecializationsScreen(source sources.Source) *SpecializationsScreen {
	return &SpecializationsScreen{source: source, loading: true}
}

func (s *SpecializationsScreen) Init() tea.Cmd {
	return func() tea.Msg {
		specs, err := s.source.ListSpecializations()
		return specsLoadedMsg{specs: specs, err: err}
	}
}

func (s *SpecializationsScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case specsLoadedMsg:
		s.loading = false
		s.specs = msg.specs
		s.err = msg.err

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.specs)-1 {
				s.cursor++
			}
		case "enter":
			if len(s.specs) == 0 {
				break
			}
			spec := s.specs[s.cursor]
			return s, func() tea.Msg {
				return SwitchScreenMsg{Screen: "modules", Data: spec}
			}
		}
	}
	return s, nil
}

func (s *SpecializationsScreen) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Formações disponíveis"))
	b.WriteString("\n")

	switch {
	case s.loading:
		b.WriteString(styles.MutedStyle.Render("Buscando especializações disponíveis..."))
	case s.err != nil:
		// Nothing to traverse without the catalog.
		b.WriteString(styles.StatusError.Render(fmt.Sprintf("✗ Erro ao buscar catálogo: %v", s.err)))
	case len(s.specs) == 0:
		b.WriteString(styles.MutedStyle.Render("Nenhuma formação encontrada."))
	default:
		for i, spec := range s.specs {
			line := fmt.Sprintf("  %s", spec.Title)
			if i == s.cursor {
				line = styles.SelectedStyle.Render(fmt.Sprintf("> %s", spec.Title))
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("↑/↓ navegar • enter selecionar • q sair"))
	return b.String()
}
