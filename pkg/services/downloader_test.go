package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Kazbonfim/rocketseat-downloader2/pkg/data"
)

// Mock implementations for testing

type mockSource struct {
	listSpecializationsFunc func() ([]data.Specialization, error)
	listModulesFunc         func(slug string) ([]data.Module, error)
	listGroupsFunc          func(slug string) ([]data.Group, error)
}

func (m *mockSource) ListSpecializations() ([]data.Specialization, error) {
	if m.listSpecializationsFunc != nil {
		return m.listSpecializationsFunc()
	}
	return nil, nil
}

func (m *mockSource) ListModules(slug string) ([]data.Module, error) {
	if m.listModulesFunc != nil {
		return m.listModulesFunc(slug)
	}
	return nil, nil
}

func (m *mockSource) ListGroups(slug string) ([]data.Group, error) {
	if m.listGroupsFunc != nil {
		return m.listGroupsFunc(slug)
	}
	return nil, nil
}

type fakeVideoFetcher struct {
	calls []string
	err   error
}

func (f *fakeVideoFetcher) Fetch(ctx context.Context, videoID, dest string) error {
	f.calls = append(f.calls, videoID)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(dest, []byte("mp4"), 0o644)
}

func testSpecialization() data.Specialization {
	return data.Specialization{Slug: "nodejs", Title: "Formação Node"}
}

// twoModuleSource models the reference scenario: module A is a lesson group
// with one video lesson and one video-less lesson, module B is not
// traversable.
func twoModuleSource() *mockSource {
	return &mockSource{
		listModulesFunc: func(slug string) ([]data.Module, error) {
			return []data.Module{
				{Slug: "modulo-a", Title: "Módulo A", Type: "group", CourseTitle: "Curso X"},
				{Slug: "modulo-b", Title: "Módulo B", Type: "challenge", CourseTitle: "Curso X"},
			}, nil
		},
		listGroupsFunc: func(slug string) ([]data.Group, error) {
			if slug != "modulo-a" {
				return nil, fmt.Errorf("unexpected slug %s", slug)
			}
			return []data.Group{{
				Title: "Primeiros passos",
				Lessons: []data.Lesson{
					{Title: "Com vídeo", GroupTitle: "Primeiros passos", VideoID: "vid-1"},
					{Title: "Sem vídeo", GroupTitle: "Primeiros passos"},
				},
			}}, nil
		},
	}
}

func newTestDownloader(t *testing.T, source *mockSource, videos *fakeVideoFetcher) (*Downloader, *ReportAggregator, string) {
	t.Helper()
	baseDir := filepath.Join(t.TempDir(), "Cursos")
	d := NewDownloader(source, videos, baseDir)
	d.SetOutput(io.Discard)
	report := NewReportAggregator("Formação Node", nil)
	report.SetOutput(io.Discard)
	report.dir = t.TempDir()
	return d, report, baseDir
}

func TestDownloadSpecialization_DirectoryTreeAndOutcomes(t *testing.T) {
	videos := &fakeVideoFetcher{}
	d, report, baseDir := newTestDownloader(t, twoModuleSource(), videos)

	err := d.DownloadSpecialization(context.Background(), testSpecialization(), "0", report)
	if err != nil {
		t.Fatalf("DownloadSpecialization failed: %v", err)
	}

	groupDir := filepath.Join(baseDir, "Formação Node", "Curso X", "Módulo A", "01. Primeiros passos")
	for _, want := range []string{
		"01. Com vídeo.mp4",
		"01. Com vídeo.txt",
		"02. Sem vídeo.txt",
	} {
		if _, err := os.Stat(filepath.Join(groupDir, want)); err != nil {
			t.Errorf("expected %s to exist: %v", want, err)
		}
	}

	if len(videos.calls) != 1 || videos.calls[0] != "vid-1" {
		t.Errorf("expected exactly one video fetch for vid-1, got %v", videos.calls)
	}

	outcomes := report.Outcomes()
	if len(outcomes) != 2 {
		t.Fatalf("expected exactly one outcome per lesson (2), got %d", len(outcomes))
	}
	for _, o := range outcomes {
		if !o.Success() {
			t.Errorf("expected success, got failure: %s - %s (%s)", o.Module, o.Lesson, o.Err)
		}
	}
}

func TestDownloadSpecialization_SelectionFiltersModules(t *testing.T) {
	var requested []string
	source := twoModuleSource()
	inner := source.listGroupsFunc
	source.listGroupsFunc = func(slug string) ([]data.Group, error) {
		requested = append(requested, slug)
		return inner(slug)
	}

	d, report, _ := newTestDownloader(t, source, &fakeVideoFetcher{})

	// "2,99" on a 2-module list selects only module B, which is skipped for
	// not being a lesson group.
	if err := d.DownloadSpecialization(context.Background(), testSpecialization(), "2,99", report); err != nil {
		t.Fatalf("DownloadSpecialization failed: %v", err)
	}
	if len(requested) != 0 {
		t.Errorf("module B must be skipped without a group fetch, got %v", requested)
	}
	if got := report.Outcomes(); len(got) != 0 {
		t.Errorf("expected no outcomes, got %d", len(got))
	}
}

func TestDownloadSpecialization_InvalidSelectionAborts(t *testing.T) {
	d, report, _ := newTestDownloader(t, twoModuleSource(), &fakeVideoFetcher{})

	if err := d.DownloadSpecialization(context.Background(), testSpecialization(), "um,dois", report); err != nil {
		t.Fatalf("invalid selection must not be a process error, got: %v", err)
	}
	if got := report.Outcomes(); len(got) != 0 {
		t.Errorf("expected no outcomes after aborted selection, got %d", len(got))
	}
}

func TestDownloadSpecialization_ModuleListFailureIsRecoverable(t *testing.T) {
	source := &mockSource{
		listModulesFunc: func(slug string) ([]data.Module, error) {
			return nil, errors.New("connection reset")
		},
	}
	d, report, _ := newTestDownloader(t, source, &fakeVideoFetcher{})

	err := d.DownloadSpecialization(context.Background(), testSpecialization(), "0", report)
	if err != nil {
		t.Fatalf("module list failure must not abort the run, got: %v", err)
	}
	if got := report.Outcomes(); len(got) != 0 {
		t.Errorf("expected no outcomes, got %d", len(got))
	}
}

func TestDownloadSpecialization_GroupListFailureSkipsModule(t *testing.T) {
	source := twoModuleSource()
	source.listGroupsFunc = func(slug string) ([]data.Group, error) {
		return nil, errors.New("status 500")
	}
	d, report, _ := newTestDownloader(t, source, &fakeVideoFetcher{})

	if err := d.DownloadSpecialization(context.Background(), testSpecialization(), "0", report); err != nil {
		t.Fatalf("group list failure must not abort the run, got: %v", err)
	}
	if got := report.Outcomes(); len(got) != 0 {
		t.Errorf("expected no outcomes, got %d", len(got))
	}
}

func TestVideoFailure_DefaultStillReportsSuccess(t *testing.T) {
	videos := &fakeVideoFetcher{err: errors.New("yt-dlp saiu com código 1")}
	d, report, baseDir := newTestDownloader(t, twoModuleSource(), videos)

	if err := d.DownloadSpecialization(context.Background(), testSpecialization(), "1", report); err != nil {
		t.Fatalf("DownloadSpecialization failed: %v", err)
	}

	// The sidecar exists even though the video fetch failed.
	sidecar := filepath.Join(baseDir, "Formação Node", "Curso X", "Módulo A", "01. Primeiros passos", "01. Com vídeo.txt")
	if _, err := os.Stat(sidecar); err != nil {
		t.Errorf("sidecar must exist despite fetch failure: %v", err)
	}

	// Historical behavior: the attempted video still counts as a success in
	// the aggregate report; the failure only reaches the console.
	outcomes := report.Outcomes()
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	for _, o := range outcomes {
		if !o.Success() {
			t.Errorf("default mode must report attempted video as success, got failure: %s", o.Err)
		}
	}
}

func TestVideoFailure_StrictModeRecordsFailure(t *testing.T) {
	videos := &fakeVideoFetcher{err: errors.New("yt-dlp saiu com código 1")}
	d, report, _ := newTestDownloader(t, twoModuleSource(), videos)
	d.SetStrictVideoOutcomes(true)

	if err := d.DownloadSpecialization(context.Background(), testSpecialization(), "1", report); err != nil {
		t.Fatalf("DownloadSpecialization failed: %v", err)
	}

	outcomes := report.Outcomes()
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}

	var failed int
	for _, o := range outcomes {
		if !o.Success() {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("strict mode must record the failed video lesson, got %d failures", failed)
	}
}

func TestDownloadMaterials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.pdf" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	source := &mockSource{
		listModulesFunc: func(slug string) ([]data.Module, error) {
			return []data.Module{{Slug: "m", Title: "Módulo", Type: "group", CourseTitle: "Curso"}}, nil
		},
		listGroupsFunc: func(slug string) ([]data.Group, error) {
			return []data.Group{{
				Title: "Grupo",
				Lessons: []data.Lesson{{
					Title:      "Aula",
					GroupTitle: "Grupo",
					Materials: []data.Material{
						{Title: "Slides", FileURL: server.URL + "/slides.pdf"},
						{Title: "Sumiu", FileURL: server.URL + "/missing.pdf"},
						{Title: "Sem URL"},
					},
				}},
			}}, nil
		},
	}

	d, report, baseDir := newTestDownloader(t, source, &fakeVideoFetcher{})

	if err := d.DownloadSpecialization(context.Background(), testSpecialization(), "0", report); err != nil {
		t.Fatalf("DownloadSpecialization failed: %v", err)
	}

	materialsDir := filepath.Join(baseDir, "Formação Node", "Curso", "Módulo", "01. Grupo", "01. Aula_arquivos")
	if _, err := os.Stat(filepath.Join(materialsDir, "Slides.pdf")); err != nil {
		t.Errorf("material not downloaded: %v", err)
	}
	if _, err := os.Stat(filepath.Join(materialsDir, "Sumiu.pdf")); err == nil {
		t.Error("missing material should not produce a file")
	}

	// Material failures never affect the lesson outcome.
	outcomes := report.Outcomes()
	if len(outcomes) != 1 || !outcomes[0].Success() {
		t.Errorf("expected a single successful outcome, got %+v", outcomes)
	}
}

func TestProgressChannelReceivesUpdates(t *testing.T) {
	d, report, _ := newTestDownloader(t, twoModuleSource(), &fakeVideoFetcher{})

	if err := d.DownloadSpecialization(context.Background(), testSpecialization(), "1", report); err != nil {
		t.Fatalf("DownloadSpecialization failed: %v", err)
	}
	d.Close()

	var completes int
	for p := range d.ProgressChannel() {
		if p.Status == "complete" {
			completes++
		}
	}
	if completes != 2 {
		t.Errorf("expected 2 complete updates, got %d", completes)
	}
}

// cancelingFetcher cancels the run's context from inside the first video
// fetch, simulating an operator abort mid-lesson.
type cancelingFetcher struct {
	cancel context.CancelFunc
}

func (c *cancelingFetcher) Fetch(ctx context.Context, videoID, dest string) error {
	c.cancel()
	return ctx.Err()
}

func TestDownloadSpecialization_AbortStillWritesReport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	baseDir := filepath.Join(t.TempDir(), "Cursos")
	d := NewDownloader(twoModuleSource(), &cancelingFetcher{cancel: cancel}, baseDir)
	d.SetOutput(io.Discard)
	report := NewReportAggregator("Formação Node", nil)
	report.SetOutput(io.Discard)
	report.dir = t.TempDir()

	err := d.DownloadSpecialization(ctx, testSpecialization(), "1", report)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// Only the lesson in flight was processed before the cancel took effect.
	if got := report.Outcomes(); len(got) != 1 {
		t.Errorf("expected 1 outcome, got %d", len(got))
	}

	// The report is finished and on disk even though the run was aborted.
	if report.Path() == "" {
		t.Fatal("aborted run must still finish its report")
	}
	if _, err := os.Stat(report.Path()); err != nil {
		t.Errorf("report file not written: %v", err)
	}
}

type panickyFetcher struct{}

func (panickyFetcher) Fetch(ctx context.Context, videoID, dest string) error {
	panic("tabela de streams corrompida")
}

func TestLessonPanicIsIsolatedAsFailure(t *testing.T) {
	baseDir := filepath.Join(t.TempDir(), "Cursos")
	d := NewDownloader(twoModuleSource(), panickyFetcher{}, baseDir)
	d.SetOutput(io.Discard)
	report := NewReportAggregator("Formação Node", nil)
	report.SetOutput(io.Discard)
	report.dir = t.TempDir()

	if err := d.DownloadSpecialization(context.Background(), testSpecialization(), "1", report); err != nil {
		t.Fatalf("a lesson panic must never escape the run, got: %v", err)
	}

	// The panicking lesson is a failure; traversal continued to the next one.
	outcomes := report.Outcomes()
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	var failures int
	for _, o := range outcomes {
		if !o.Success() {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("expected exactly the panicking lesson as failure, got %d", failures)
	}

	raw, err := os.ReadFile(report.Path())
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}
	if !strings.Contains(string(raw), "tabela de streams corrompida") {
		t.Errorf("report missing the panic message:\n%s", raw)
	}
}

func TestSidecarKeepsZeroDuration(t *testing.T) {
	zero := 0
	source := &mockSource{
		listModulesFunc: func(slug string) ([]data.Module, error) {
			return []data.Module{{Slug: "m", Title: "Módulo", Type: "group", CourseTitle: "Curso"}}, nil
		},
		listGroupsFunc: func(slug string) ([]data.Group, error) {
			return []data.Group{{
				Title: "Grupo",
				Lessons: []data.Lesson{
					{Title: "Aviso rápido", GroupTitle: "Grupo", Duration: &zero},
					{Title: "Sem duração", GroupTitle: "Grupo"},
				},
			}}, nil
		},
	}
	d, report, baseDir := newTestDownloader(t, source, &fakeVideoFetcher{})

	if err := d.DownloadSpecialization(context.Background(), testSpecialization(), "0", report); err != nil {
		t.Fatalf("DownloadSpecialization failed: %v", err)
	}

	groupDir := filepath.Join(baseDir, "Formação Node", "Curso", "Módulo", "01. Grupo")

	raw, err := os.ReadFile(filepath.Join(groupDir, "01. Aviso rápido.txt"))
	if err != nil {
		t.Fatalf("sidecar not written: %v", err)
	}
	if !strings.Contains(string(raw), "Duração: 0min 0s") {
		t.Errorf("zero-second lesson must keep its duration line:\n%s", raw)
	}

	raw, err = os.ReadFile(filepath.Join(groupDir, "02. Sem duração.txt"))
	if err != nil {
		t.Fatalf("sidecar not written: %v", err)
	}
	if strings.Contains(string(raw), "Duração:") {
		t.Errorf("lesson without duration must omit the line:\n%s", raw)
	}
}
