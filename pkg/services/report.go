package services

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Kazbonfim/rocketseat-downloader2/pkg/data"
	"github.com/google/uuid"
)

// ErrIncompleteReport signals a Finish without a matching Start; nothing is
// rendered in that case.
var ErrIncompleteReport = errors.New("relatório incompleto - download não finalizado")

const reportDir = "relatorios"

// ReportAggregator accumulates one immutable outcome per processed lesson
// and renders the end-of-run report. It is the only durable record of a
// long, partially failing run, so Finish must be called on every exit path.
type ReportAggregator struct {
	mu             sync.Mutex
	runID          string
	specialization string
	start          time.Time
	end            time.Time
	outcomes       []data.Outcome
	repo           *data.Repository
	dir            string
	path           string
	out            io.Writer
}

// NewReportAggregator creates an aggregator for one run. repo may be nil;
// history persistence is then skipped.
func NewReportAggregator(specialization string, repo *data.Repository) *ReportAggregator {
	return &ReportAggregator{
		runID:          uuid.NewString(),
		specialization: specialization,
		repo:           repo,
		dir:            reportDir,
		out:            os.Stdout,
	}
}

// SetOutput redirects the aggregator's console messages.
func (r *ReportAggregator) SetOutput(w io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out = w
}

// Path returns the report file location once Finish has run.
func (r *ReportAggregator) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

func (r *ReportAggregator) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.start = time.Now()
	fmt.Fprintf(r.out, "Início do download: %s\n", r.start.Format("02/01/2006 15:04:05"))
}

func (r *ReportAggregator) AddSuccess(module, lesson string) {
	r.add(data.Outcome{Module: module, Lesson: lesson, Timestamp: time.Now()})
	fmt.Fprintf(r.out, "✓ Aula baixada com sucesso: %s - %s\n", module, lesson)
}

func (r *ReportAggregator) AddFailure(module, lesson string, err error) {
	r.add(data.Outcome{Module: module, Lesson: lesson, Err: err.Error(), Timestamp: time.Now()})
	fmt.Fprintf(r.out, "✗ Erro ao baixar aula: %s - %s\n", module, lesson)
	fmt.Fprintf(r.out, "   Erro: %v\n", err)
}

func (r *ReportAggregator) add(o data.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

// Outcomes returns a snapshot of the recorded outcomes.
func (r *ReportAggregator) Outcomes() []data.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]data.Outcome, len(r.outcomes))
	copy(out, r.outcomes)
	return out
}

func (r *ReportAggregator) counts() (succeeded, failed int) {
	for _, o := range r.outcomes {
		if o.Success() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// Finish stamps the end of the run, writes the report file, prints it, and
// persists the run to the history repository. It returns the report path.
func (r *ReportAggregator) Finish() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.end = time.Now()

	text, err := r.render()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("criando diretório de relatórios: %w", err)
	}
	path := filepath.Join(r.dir, fmt.Sprintf("relatorio_%s.txt", r.end.Format("20060102_150405")))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("salvando relatório: %w", err)
	}

	fmt.Fprintln(r.out, "\n"+strings.Repeat("=", 50))
	fmt.Fprintln(r.out, text)
	fmt.Fprintln(r.out, strings.Repeat("=", 50))
	fmt.Fprintf(r.out, "\nRelatório salvo em: %s\n", path)

	r.path = path
	r.persist()

	return path, nil
}

func (r *ReportAggregator) render() (string, error) {
	if r.start.IsZero() || r.end.IsZero() {
		return "", ErrIncompleteReport
	}

	succeeded, failed := r.counts()

	lines := []string{
		"=== RELATÓRIO DE DOWNLOAD ===",
		fmt.Sprintf("Data: %s", r.end.Format("02/01/2006 15:04:05")),
		fmt.Sprintf("Duração total: %s", r.end.Sub(r.start).Round(time.Second)),
		fmt.Sprintf("Total de aulas: %d", len(r.outcomes)),
		fmt.Sprintf("Aulas baixadas com sucesso: %d", succeeded),
		fmt.Sprintf("Aulas com erro: %d", failed),
		"",
		"=== AULAS BAIXADAS COM SUCESSO ===",
	}

	for _, o := range r.outcomes {
		if !o.Success() {
			continue
		}
		lines = append(lines,
			fmt.Sprintf("- Módulo: %s", o.Module),
			fmt.Sprintf("  Aula: %s", o.Lesson),
			fmt.Sprintf("  Horário: %s", o.Timestamp.Format("15:04:05")),
		)
	}

	if failed > 0 {
		lines = append(lines, "", "=== AULAS COM ERRO ===")
		for _, o := range r.outcomes {
			if o.Success() {
				continue
			}
			lines = append(lines,
				fmt.Sprintf("- Módulo: %s", o.Module),
				fmt.Sprintf("  Aula: %s", o.Lesson),
				fmt.Sprintf("  Erro: %s", o.Err),
				fmt.Sprintf("  Horário: %s", o.Timestamp.Format("15:04:05")),
			)
		}
	}

	return strings.Join(lines, "\n"), nil
}

func (r *ReportAggregator) persist() {
	if r.repo == nil {
		return
	}

	succeeded, failed := r.counts()
	run := &data.Run{
		ID:             r.runID,
		Specialization: r.specialization,
		StartedAt:      r.start,
		FinishedAt:     r.end,
		Succeeded:      succeeded,
		Failed:         failed,
	}
	if err := r.repo.SaveRun(run); err != nil {
		log.Printf("Aviso: falha ao salvar execução no histórico: %v", err)
		return
	}
	for i := range r.outcomes {
		if err := r.repo.SaveOutcome(r.runID, &r.outcomes[i]); err != nil {
			log.Printf("Aviso: falha ao salvar resultado no histórico: %v", err)
		}
	}
}
