package cmd

import (
	"os"

	"github.com/Kazbonfim/rocketseat-downloader2/pkg/app"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rocketseat",
	Short: "Baixador de cursos da Rocketseat",
	Long:  "Baixe as aulas e materiais das suas formações Rocketseat com TUI e CLI",
	Run: func(cmd *cobra.Command, args []string) {
		// Launch TUI by default
		dir, _ := cmd.Flags().GetString("dir")
		a, err := app.NewApp(dir)
		if err != nil {
			cobra.CheckErr(err)
		}
		if err := a.Run(); err != nil {
			cobra.CheckErr(err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("dir", "Cursos", "Diretório base dos downloads")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(historyCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
