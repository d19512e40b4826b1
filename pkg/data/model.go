package data

import "time"

// ModuleTypeGroup marks a module that is a traversable lesson container.
// Modules of any other type are skipped by the downloader.
const ModuleTypeGroup = "group"

type Specialization struct {
	Slug  string
	Title string
}

type Module struct {
	Slug        string
	Title       string
	Type        string
	CourseTitle string
}

type Group struct {
	Title   string
	Lessons []Lesson
}

type Lesson struct {
	Title       string
	GroupTitle  string
	VideoID     string // opaque video resource id, empty when the lesson has no video
	Description string
	Duration    *int // seconds, nil when the API omits it
	Author      string
	Materials   []Material
}

type Material struct {
	Title   string
	FileURL string
}

// Outcome records the result of processing a single lesson. Records are
// append-only; Err is empty on success.
type Outcome struct {
	Module    string
	Lesson    string
	Err       string
	Timestamp time.Time
}

func (o Outcome) Success() bool {
	return o.Err == ""
}

// Run is one download session persisted to the history database.
type Run struct {
	ID             string
	Specialization string
	StartedAt      time.Time
	FinishedAt     time.Time
	Succeeded      int
	Failed         int
}
