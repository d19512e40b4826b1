package app

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/app/screens"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/data"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/media"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/session"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/sources"
)

// ErrNotLoggedIn is returned when no session file exists yet.
var ErrNotLoggedIn = errors.New("nenhuma sessão encontrada. Execute 'rocketseat login' primeiro")

type App struct {
	source  *sources.Skylab
	repo    *data.Repository
	baseDir string
}

func NewApp(baseDir string) (*App, error) {
	if err := media.CheckDependencies(); err != nil {
		return nil, err
	}

	store := session.NewStore()
	sess, err := store.Load()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotLoggedIn
	}

	return &App{
		source:  sources.NewSkylab(sess, store),
		repo:    data.NewDuckDBRepository(),
		baseDir: baseDir,
	}, nil
}

func (a *App) Run() error {
	model := screens.NewRootScreen(a.source, a.repo, a.baseDir)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
