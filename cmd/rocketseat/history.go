package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/data"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Mostra as execuções anteriores",
	Long:  "Exibe o histórico de downloads com totais de sucesso e erro por execução",
	Run: func(cmd *cobra.Command, args []string) {
		repo := data.NewDuckDBRepository()
		runs, err := repo.ListRuns()
		cobra.CheckErr(err)

		if len(runs) == 0 {
			fmt.Println("Nenhuma execução registrada ainda.")
			return
		}

		columns := []table.Column{
			{Title: "Data", Width: 17},
			{Title: "Formação", Width: 36},
			{Title: "Aulas", Width: 7},
			{Title: "Sucesso", Width: 8},
			{Title: "Erro", Width: 6},
			{Title: "Duração", Width: 10},
		}

		rows := []table.Row{}
		for _, run := range runs {
			rows = append(rows, table.Row{
				run.StartedAt.Format("02/01/2006 15:04"),
				truncateString(run.Specialization, 34),
				fmt.Sprintf("%d", run.Succeeded+run.Failed),
				fmt.Sprintf("%d", run.Succeeded),
				fmt.Sprintf("%d", run.Failed),
				run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String(),
			})
		}

		t := table.New(
			table.WithColumns(columns),
			table.WithRows(rows),
			table.WithFocused(false),
			table.WithHeight(len(rows)),
		)

		s := table.DefaultStyles()
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
		s.Selected = s.Selected.
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(false)
		t.SetStyles(s)

		fmt.Printf("\n📥 Histórico (%d execuções)\n\n", len(runs))
		fmt.Println(t.View())
	},
}
