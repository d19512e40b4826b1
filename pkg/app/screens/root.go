package screens

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/data"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/media"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/services"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/sources"
)

type screenType int

const (
	specializationsView screenType = iota
	modulesView
	downloadView
)

// RootScreen wires the selection flow: pick a specialization, pick modules,
// watch the download.
type RootScreen struct {
	source  sources.Source
	repo    *data.Repository
	baseDir string

	currentView     screenType
	specializations *SpecializationsScreen
	modules         *ModulesScreen
	download        *DownloadScreen
	quitting        bool

	width  int
	height int
}

func NewRootScreen(source sources.Source, repo *data.Repository, baseDir string) *RootScreen {
	return &RootScreen{
		source:          source,
		repo:            repo,
		baseDir:         baseDir,
		currentView:     specializationsView,
		specializations: NewSpecializationsScreen(source),
	}
}

// newDownloader builds a fresh pipeline per run: the progress channel is
// closed when a run ends, and console output is silenced in favor of the
// progress view.
func (r *RootScreen) newDownloader() *services.Downloader {
	ytdlp := media.NewYtDlp()
	ytdlp.SetOutput(io.Discard)
	videos := media.NewVideoFetcher(media.NewCDNStrategy(ytdlp))
	videos.SetOutput(io.Discard)

	d := services.NewDownloader(r.source, videos, r.baseDir)
	d.SetOutput(io.Discard)
	return d
}

func (r *RootScreen) Init() tea.Cmd {
	return r.specializations.Init()
}

func (r *RootScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if r.currentView == downloadView && r.download != nil && !r.download.done {
				// Cancel the run and quit only after it has finished
				// its report.
				r.quitting = true
				r.download.cancel()
				return r, nil
			}
			return r, tea.Quit
		case "esc":
			switch r.currentView {
			case modulesView:
				r.currentView = specializationsView
				return r, nil
			case downloadView:
				if r.download != nil && r.download.done {
					r.currentView = specializationsView
					return r, nil
				}
			}
		}

	case SwitchScreenMsg:
		switch msg.Screen {
		case "modules":
			if spec, ok := msg.Data.(data.Specialization); ok {
				r.modules = NewModulesScreen(r.source, spec)
				r.currentView = modulesView
				return r, r.modules.Init()
			}
		case "download":
			if req, ok := msg.Data.(DownloadRequest); ok {
				report := services.NewReportAggregator(req.Specialization.Title, r.repo)
				report.SetOutput(io.Discard)
				r.download = NewDownloadScreen(r.newDownloader(), report, req)
				r.currentView = downloadView
				return r, r.download.Init()
			}
		}
		return r, nil
	}

	// Forward message to active screen
	switch r.currentView {
	case specializationsView:
		newModel, cmd := r.specializations.Update(msg)
		r.specializations = newModel.(*SpecializationsScreen)
		return r, cmd
	case modulesView:
		newModel, cmd := r.modules.Update(msg)
		r.modules = newModel.(*ModulesScreen)
		return r, cmd
	case downloadView:
		newModel, cmd := r.download.Update(msg)
		r.download = newModel.(*DownloadScreen)
		if r.quitting && r.download.done {
			return r, tea.Quit
		}
		return r, cmd
	}
	return r, nil
}

func (r *RootScreen) View() string {
	switch r.currentView {
	case modulesView:
		return r.modules.View()
	case downloadView:
		return r.download.View()
	default:
		return r.specializations.View()
	}
}
