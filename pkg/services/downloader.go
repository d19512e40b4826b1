package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Kazbonfim/rocketseat-downloader2/pkg/data"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/sources"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/utils"
)

// VideoFetcher is the slice of pkg/media the orchestrator needs.
type VideoFetcher interface {
	Fetch(ctx context.Context, videoID, dest string) error
}

// Progress mirrors one traversal step for CLI/TUI consumers.
type Progress struct {
	Module      string
	Group       string
	Lesson      string
	GroupIndex  int
	LessonIndex int
	Status      string // "module", "lesson", "complete", "error"
	Err         error
}

// Downloader walks specialization -> module -> group -> lesson, fetching the
// video and materials of each lesson and recording exactly one outcome per
// lesson visited.
type Downloader struct {
	source      sources.Source
	videos      VideoFetcher
	client      *http.Client
	baseDir     string
	strictVideo bool
	progress    chan Progress
	out         io.Writer
}

func NewDownloader(source sources.Source, videos VideoFetcher, baseDir string) *Downloader {
	return &Downloader{
		source:   source,
		videos:   videos,
		client:   http.DefaultClient,
		baseDir:  baseDir,
		progress: make(chan Progress, 100),
		out:      os.Stdout,
	}
}

// SetOutput redirects console messages; the TUI silences them and renders
// progress updates instead.
func (d *Downloader) SetOutput(w io.Writer) {
	d.out = w
}

// SetStrictVideoOutcomes controls how a failed video fetch is reported. The
// historical behavior (false) counts an attempted video as a processed
// lesson and only surfaces the fetch failure on the console; strict mode
// records it as a failed outcome.
func (d *Downloader) SetStrictVideoOutcomes(strict bool) {
	d.strictVideo = strict
}

// ProgressChannel returns the channel carrying traversal updates.
func (d *Downloader) ProgressChannel() <-chan Progress {
	return d.progress
}

// Close releases the progress channel once no more downloads will run.
func (d *Downloader) Close() {
	close(d.progress)
}

// DownloadSpecialization resolves the selected modules of one specialization
// and downloads every lesson in them. selection is the operator's module
// choice ("0" for all, or a 1-based comma-separated list). The report is
// finished on every exit path; it is the only durable record of the run.
func (d *Downloader) DownloadSpecialization(ctx context.Context, spec data.Specialization, selection string, report *ReportAggregator) error {
	fmt.Fprintf(d.out, "Baixando cursos da especialização: %s\n", spec.Title)
	report.Start()
	defer func() {
		if _, err := report.Finish(); err != nil {
			fmt.Fprintf(d.out, "✗ Erro ao gerar relatório: %v\n", err)
		}
	}()

	modules, err := d.source.ListModules(spec.Slug)
	if err != nil {
		// Recoverable by design: other specializations may still work.
		fmt.Fprintf(d.out, "✗ Erro ao buscar módulos: %v\n", err)
		return nil
	}
	if len(modules) == 0 {
		fmt.Fprintln(d.out, "Nenhum módulo encontrado para esta especialização.")
		return nil
	}

	indices, err := ParseSelection(selection, len(modules))
	if err != nil {
		fmt.Fprintln(d.out, "Seleção inválida. Abortando.")
		return nil
	}

	for _, idx := range indices {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.processModule(ctx, spec, modules[idx], report)
	}
	// A cancel during the last module still exits through the deferred
	// report finish above.
	return ctx.Err()
}

func (d *Downloader) processModule(ctx context.Context, spec data.Specialization, module data.Module, report *ReportAggregator) {
	fmt.Fprintf(d.out, "\nProcessando módulo: '%s' (Tipo: %s)\n", module.Title, module.Type)

	if module.Type != data.ModuleTypeGroup || module.Slug == "" {
		fmt.Fprintf(d.out, "Módulo '%s' não é um cluster de aulas ou não possui slug. Pulando.\n", module.Title)
		return
	}
	d.sendProgress(Progress{Module: module.Title, Status: "module"})

	courseTitle := module.CourseTitle
	if courseTitle == "" {
		courseTitle = "Curso Padrão"
	}
	moduleDir := filepath.Join(
		d.baseDir,
		utils.Sanitize(spec.Title),
		utils.Sanitize(courseTitle),
		utils.Sanitize(module.Title),
	)
	if err := os.MkdirAll(moduleDir, 0o755); err != nil {
		fmt.Fprintf(d.out, "✗ Erro ao criar diretório do módulo: %v\n", err)
		return
	}

	groups, err := d.source.ListGroups(module.Slug)
	if err != nil {
		// Recoverable: skip this module, keep downloading the others.
		fmt.Fprintf(d.out, "✗ Erro ao processar lições do módulo %s: %v\n", module.Slug, err)
		return
	}
	if len(groups) == 0 {
		fmt.Fprintf(d.out, "Nenhum grupo ou aula encontrado para o módulo: %s\n", module.Title)
		return
	}

	for gi, group := range groups {
		fmt.Fprintf(d.out, "\nProcessando grupo %d: %s\n", gi+1, group.Title)
		for li, lesson := range group.Lessons {
			if ctx.Err() != nil {
				return
			}
			d.processLesson(ctx, moduleDir, lesson, gi+1, li+1, report)
		}
		fmt.Fprintf(d.out, "Grupo %d ('%s') concluído!\n", gi+1, group.Title)
	}
}

// processLesson guarantees exactly one outcome per lesson: any error or
// panic inside the lesson boundary becomes a failure record and traversal
// moves on.
func (d *Downloader) processLesson(ctx context.Context, moduleDir string, lesson data.Lesson, groupIndex, lessonIndex int, report *ReportAggregator) {
	defer func() {
		if r := recover(); r != nil {
			report.AddFailure(lesson.GroupTitle, lesson.Title, fmt.Errorf("%v", r))
			d.sendProgress(Progress{Module: lesson.GroupTitle, Lesson: lesson.Title, Status: "error", Err: fmt.Errorf("%v", r)})
		}
	}()

	fmt.Fprintf(d.out, "\tBaixando aula %d.%d: %s (Grupo: %s)\n", groupIndex, lessonIndex, lesson.Title, lesson.GroupTitle)
	d.sendProgress(Progress{
		Module:      lesson.GroupTitle,
		Group:       lesson.GroupTitle,
		Lesson:      lesson.Title,
		GroupIndex:  groupIndex,
		LessonIndex: lessonIndex,
		Status:      "lesson",
	})

	if err := d.downloadLesson(ctx, moduleDir, lesson, groupIndex, lessonIndex); err != nil {
		report.AddFailure(lesson.GroupTitle, lesson.Title, err)
		d.sendProgress(Progress{Module: lesson.GroupTitle, Lesson: lesson.Title, Status: "error", Err: err})
		return
	}
	report.AddSuccess(lesson.GroupTitle, lesson.Title)
	d.sendProgress(Progress{Module: lesson.GroupTitle, Lesson: lesson.Title, Status: "complete"})
}

func (d *Downloader) downloadLesson(ctx context.Context, moduleDir string, lesson data.Lesson, groupIndex, lessonIndex int) error {
	groupDir := filepath.Join(moduleDir, utils.Numbered(groupIndex, lesson.GroupTitle))
	if err := os.MkdirAll(groupDir, 0o755); err != nil {
		return fmt.Errorf("criando diretório do grupo: %w", err)
	}

	base := utils.Numbered(lessonIndex, lesson.Title)
	if err := writeSidecar(filepath.Join(groupDir, base+".txt"), lesson); err != nil {
		return fmt.Errorf("salvando metadados da aula: %w", err)
	}

	var videoErr error
	if lesson.VideoID != "" {
		videoErr = d.videos.Fetch(ctx, lesson.VideoID, filepath.Join(groupDir, base+".mp4"))
		if videoErr != nil {
			fmt.Fprintf(d.out, "\t✗ Não foi possível baixar o vídeo: %v\n", videoErr)
		}
	} else {
		fmt.Fprintf(d.out, "\tAula '%s' não tem recurso de vídeo\n", lesson.Title)
	}

	d.downloadMaterials(ctx, lesson, groupDir, base)

	// An attempted video historically counts as a processed lesson; only
	// strict mode turns the fetch failure into a failed outcome.
	if d.strictVideo && videoErr != nil {
		return videoErr
	}
	return nil
}

func writeSidecar(path string, lesson data.Lesson) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Grupo: %s\n", lesson.GroupTitle)
	fmt.Fprintf(&b, "Aula: %s\n\n", lesson.Title)
	if lesson.Description != "" {
		fmt.Fprintf(&b, "Descrição:\n%s\n\n", lesson.Description)
	}
	if lesson.Duration != nil {
		fmt.Fprintf(&b, "Duração: %s\n", utils.FormatDuration(*lesson.Duration))
	}
	if lesson.Author != "" {
		fmt.Fprintf(&b, "Autor: %s\n", lesson.Author)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// downloadMaterials fetches the lesson's attachments. One failed material is
// logged and never affects the lesson's outcome.
func (d *Downloader) downloadMaterials(ctx context.Context, lesson data.Lesson, groupDir, base string) {
	withURL := 0
	for _, m := range lesson.Materials {
		if m.FileURL != "" {
			withURL++
		}
	}
	if withURL == 0 {
		return
	}

	materialsDir := filepath.Join(groupDir, base+"_arquivos")
	if err := os.MkdirAll(materialsDir, 0o755); err != nil {
		fmt.Fprintf(d.out, "\t\tErro ao criar diretório de materiais: %v\n", err)
		return
	}

	for _, m := range lesson.Materials {
		if m.FileURL == "" {
			continue
		}
		fmt.Fprintf(d.out, "\t\tBaixando material: %s\n", m.Title)
		dest := filepath.Join(materialsDir, utils.Sanitize(m.Title)+materialExt(m.FileURL))
		if err := d.fetchMaterial(ctx, m.FileURL, dest); err != nil {
			fmt.Fprintf(d.out, "\t\tErro ao baixar material: %v\n", err)
			continue
		}
		fmt.Fprintf(d.out, "\t\tMaterial salvo em: %s\n", dest)
	}
}

func (d *Downloader) fetchMaterial(ctx context.Context, fileURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", fileURL, nil)
	if err != nil {
		return err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status inesperado: %s", resp.Status)
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, resp.Body)
	return err
}

// materialExt keeps the original file extension, ignoring any query string.
func materialExt(fileURL string) string {
	if u, err := url.Parse(fileURL); err == nil {
		return path.Ext(u.Path)
	}
	return path.Ext(fileURL)
}

func (d *Downloader) sendProgress(p Progress) {
	select {
	case d.progress <- p:
	default:
		// Channel full, skip this update
	}
}
