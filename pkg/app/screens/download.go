package screens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/app/components"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/app/styles"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/services"
)

type progressMsg struct {
	progress services.Progress
}

type progressClosedMsg struct{}

type downloadDoneMsg struct {
	err error
}

// DownloadScreen drives one download run and renders its progress. The run
// holds a cancellable context so an operator abort still exits through the
// report finish.
type DownloadScreen struct {
	downloader *services.Downloader
	report     *services.ReportAggregator
	request    DownloadRequest
	tracker    *components.ProgressTracker
	ctx        context.Context
	cancel     context.CancelFunc
	done       bool
	err        error
}

func NewDownloadScreen(downloader *services.Downloader, report *services.ReportAggregator, req DownloadRequest) *DownloadScreen {
	ctx, cancel := context.WithCancel(context.Background())
	return &DownloadScreen{
		downloader: downloader,
		report:     report,
		request:    req,
		tracker:    components.NewProgressTracker(),
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (d *DownloadScreen) Init() tea.Cmd {
	return tea.Batch(d.start(), d.waitForProgress())
}

func (d *DownloadScreen) start() tea.Cmd {
	return func() tea.Msg {
		err := d.downloader.DownloadSpecialization(
			d.ctx,
			d.request.Specialization,
			d.request.Selection,
			d.report,
		)
		d.downloader.Close()
		return downloadDoneMsg{err: err}
	}
}

func (d *DownloadScreen) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		p, ok := <-d.downloader.ProgressChannel()
		if !ok {
			return progressClosedMsg{}
		}
		return progressMsg{progress: p}
	}
}

func (d *DownloadScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		d.tracker.Update(msg.progress)
		return d, d.waitForProgress()

	case progressClosedMsg:
		return d, nil

	case downloadDoneMsg:
		d.done = true
		d.err = msg.err
		return d, nil
	}
	return d, nil
}

func (d *DownloadScreen) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Baixando: " + d.request.Specialization.Title))
	b.WriteString("\n")

	if !d.done {
		b.WriteString(d.tracker.View())
		b.WriteString("\n")
		b.WriteString(styles.HelpStyle.Render("q interromper (finaliza o relatório antes de sair; re-executar retoma do ponto)"))
		return b.String()
	}

	if errors.Is(d.err, context.Canceled) {
		b.WriteString(styles.StatusError.Render("✗ Download interrompido pelo operador."))
	} else if d.err != nil {
		b.WriteString(styles.StatusError.Render(fmt.Sprintf("✗ Download interrompido: %v", d.err)))
	} else {
		b.WriteString(styles.StatusCompleted.Render(fmt.Sprintf(
			"✓ Concluído: %d aulas baixadas, %d com erro", d.tracker.Completed(), d.tracker.Failed(),
		)))
	}
	b.WriteString("\n")
	if path := d.report.Path(); path != "" {
		b.WriteString(styles.TextStyle.Render("Relatório salvo em: " + path))
		b.WriteString("\n")
	}
	b.WriteString(styles.HelpStyle.Render("esc voltar • q sair"))
	return b.String()
}
