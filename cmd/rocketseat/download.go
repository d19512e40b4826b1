package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/Kazbonfim/rocketseat-downloader2/pkg/data"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/media"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/services"
	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download [formação-slug]",
	Short: "Baixa as aulas de uma formação",
	Long:  "Baixa vídeos e materiais dos módulos selecionados de uma formação, com relatório ao final",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		slug := args[0]
		selection, _ := cmd.Flags().GetString("modules")
		strict, _ := cmd.Flags().GetBool("strict-video")
		baseDir, _ := cmd.Flags().GetString("dir")

		cobra.CheckErr(media.CheckDependencies())

		source, err := authenticatedSource()
		cobra.CheckErr(err)

		specs, err := source.ListSpecializations()
		if err != nil {
			cobra.CheckErr(fmt.Errorf("falha ao buscar catálogo: %w", err))
		}

		// "all" replays the whole catalog; otherwise the slug is resolved
		// against it to recover the display title.
		var targets []data.Specialization
		if strings.EqualFold(slug, "all") {
			targets = specs
		} else {
			spec := data.Specialization{Slug: slug, Title: slug}
			found := false
			for _, s := range specs {
				if strings.EqualFold(s.Slug, slug) {
					spec = s
					found = true
					break
				}
			}
			if !found {
				fmt.Printf("Formação '%s' não está no catálogo; tentando mesmo assim.\n", slug)
			}
			targets = []data.Specialization{spec}
		}

		videos := media.NewVideoFetcher(media.NewCDNStrategy(media.NewYtDlp()))
		repo := data.NewDuckDBRepository()

		downloader := services.NewDownloader(source, videos, baseDir)
		downloader.SetStrictVideoOutcomes(strict)
		defer downloader.Close()

		// Ctrl+C cancels the traversal, which still finishes the report
		// before the process exits.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		for _, spec := range targets {
			report := services.NewReportAggregator(spec.Title, repo)
			err := downloader.DownloadSpecialization(ctx, spec, selection, report)
			if errors.Is(err, context.Canceled) {
				fmt.Println("\nDownload interrompido pelo operador.")
				return
			}
			cobra.CheckErr(err)
		}
	},
}

func init() {
	downloadCmd.Flags().StringP("modules", "m", "0", "Módulos a baixar: 0 para todos ou índices separados por vírgula (ex: 1,3,5)")
	downloadCmd.Flags().Bool("strict-video", false, "Registra falha de vídeo como aula com erro no relatório")
}
