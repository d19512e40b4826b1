package components

import (
	"fmt"
	"strings"

	"github.com/Kazbonfim/rocketseat-downloader2/pkg/app/styles"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/services"
)

// ProgressTracker accumulates traversal updates for the download screen.
type ProgressTracker struct {
	current   services.Progress
	completed int
	failed    int
}

func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{}
}

func (p *ProgressTracker) Update(progress services.Progress) {
	switch progress.Status {
	case "complete":
		p.completed++
	case "error":
		p.failed++
	}
	p.current = progress
}

func (p *ProgressTracker) Completed() int { return p.completed }
func (p *ProgressTracker) Failed() int    { return p.failed }

func (p *ProgressTracker) View() string {
	var b strings.Builder

	if p.current.Lesson != "" {
		label := fmt.Sprintf("Aula %d.%d: %s", p.current.GroupIndex, p.current.LessonIndex, p.current.Lesson)
		if p.current.GroupIndex == 0 {
			label = p.current.Lesson
		}
		b.WriteString(styles.StatusStyle(p.current.Status).Render(label))
		b.WriteString("\n")
	} else if p.current.Module != "" {
		b.WriteString(styles.TextStyle.Render("Módulo: " + p.current.Module))
		b.WriteString("\n")
	}

	b.WriteString(styles.MutedStyle.Render(
		fmt.Sprintf("%d concluídas, %d com erro", p.completed, p.failed),
	))
	return b.String()
}
