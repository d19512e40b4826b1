package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/session"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/sources"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Lista as formações disponíveis",
	Long:  "Lista as formações e cursos disponíveis para a sua conta em uma tabela",
	Run: func(cmd *cobra.Command, args []string) {
		source, err := authenticatedSource()
		cobra.CheckErr(err)

		specs, err := source.ListSpecializations()
		if err != nil {
			cobra.CheckErr(fmt.Errorf("falha ao buscar catálogo: %w", err))
		}

		if len(specs) == 0 {
			fmt.Println("Nenhuma formação encontrada.")
			return
		}

		var (
			purple = lipgloss.Color("99")

			headerStyle = lipgloss.NewStyle().Foreground(purple).Bold(true).Align(lipgloss.Center)
			cellStyle   = lipgloss.NewStyle().Padding(0, 1)
		)

		t := table.New().
			Border(lipgloss.HiddenBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(purple)).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return headerStyle
				default:
					return cellStyle
				}
			}).
			Headers("#", "Formação", "Slug")

		for i, spec := range specs {
			t.Row(fmt.Sprintf("%d", i+1), truncateString(spec.Title, 58), spec.Slug)
		}

		fmt.Println(t)
	},
}

// authenticatedSource loads the saved session; there is no API access
// without one.
func authenticatedSource() (*sources.Skylab, error) {
	store := session.NewStore()
	sess, err := store.Load()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("nenhuma sessão encontrada. Execute 'rocketseat login' primeiro")
	}
	return sources.NewSkylab(sess, store), nil
}
