package sources

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Kazbonfim/rocketseat-downloader2/pkg/data"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/session"
)

const (
	BaseAPI = "https://skylab-api.rocketseat.com.br"
	BaseURL = "https://app.rocketseat.com.br"
)

// ErrAuthentication marks a rejected login. Credentials are assumed either
// right or wrong, so there is no retry.
var ErrAuthentication = errors.New("autenticação recusada")

// Wire types. Each maps one API payload onto the domain structs.

type Item struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

func (i *Item) ToSpecialization() *data.Specialization {
	return &data.Specialization{Slug: i.Slug, Title: i.Title}
}

type Node struct {
	Slug   string `json:"slug"`
	Title  string `json:"title"`
	Type   string `json:"type"`
	Course struct {
		Title string `json:"title"`
	} `json:"course"`
}

func (n *Node) ToModule() *data.Module {
	return &data.Module{
		Slug:        n.Slug,
		Title:       n.Title,
		Type:        n.Type,
		CourseTitle: n.Course.Title,
	}
}

type LessonEntry struct {
	Last *LessonPayload `json:"last"`
}

type LessonPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    *int   `json:"duration"`
	Resource    string `json:"resource"`
	Author      *struct {
		Name string `json:"name"`
	} `json:"author"`
	Downloads []struct {
		Title   string `json:"title"`
		FileURL string `json:"file_url"`
	} `json:"downloads"`
}

func (l *LessonPayload) ToLesson(groupTitle string) *data.Lesson {
	lesson := &data.Lesson{
		Title:       l.Title,
		GroupTitle:  groupTitle,
		VideoID:     videoID(l.Resource),
		Description: l.Description,
		Duration:    l.Duration,
	}
	if l.Author != nil {
		lesson.Author = l.Author.Name
	}
	for _, d := range l.Downloads {
		lesson.Materials = append(lesson.Materials, data.Material{Title: d.Title, FileURL: d.FileURL})
	}
	return lesson
}

// videoID keeps only the last path segment of a resource reference; some
// lessons carry a full player path instead of a bare id.
func videoID(resource string) string {
	for i := len(resource) - 1; i >= 0; i-- {
		if resource[i] == '/' {
			return resource[i+1:]
		}
	}
	return resource
}

// Skylab talks to the Rocketseat platform API using an authenticated session.
type Skylab struct {
	api     *http.Client
	baseURL string
	session *session.Session
	store   *session.Store
}

func NewSkylab(sess *session.Session, store *session.Store) *Skylab {
	return &Skylab{
		api:     http.DefaultClient,
		baseURL: BaseAPI,
		session: sess,
		store:   store,
	}
}

func (s *Skylab) get(path string, v any) error {
	req, err := http.NewRequest("GET", fmt.Sprintf("%s%s", s.baseURL, path), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	s.session.Apply(req)
	resp, err := s.api.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("GET %s: unexpected status %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// Login posts credentials and installs the returned tokens into the session.
// A post-login profile or save failure does not undo the login: the session
// stays usable in memory and the problem is reported to the caller via the
// warning return.
func (s *Skylab) Login(email, password string) (name string, warning error, err error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", nil, err
	}

	req, err := http.NewRequest("POST", fmt.Sprintf("%s/sessions", s.baseURL), bytes.NewReader(payload))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	s.session.Apply(req)

	resp, err := s.api.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", nil, fmt.Errorf("%w: status %s", ErrAuthentication, resp.Status)
	}

	var creds struct {
		Type         string `json:"type"`
		Token        string `json:"token"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&creds); err != nil {
		return "", nil, fmt.Errorf("decoding login response: %w", err)
	}

	s.session.Authorize(creds.Type, creds.Token, creds.RefreshToken)

	var account struct {
		Name string `json:"name"`
	}
	if err := s.get("/account", &account); err != nil {
		warning = fmt.Errorf("consultando conta: %w", err)
	}
	name = account.Name

	if s.store != nil {
		if err := s.store.Save(s.session); err != nil {
			warning = errors.Join(warning, fmt.Errorf("salvando sessão: %w", err))
		}
	}

	return name, warning, nil
}

func (s *Skylab) ListSpecializations() ([]data.Specialization, error) {
	params := url.Values{}
	params.Add("types[0]", "SPECIALIZATION")
	params.Add("types[1]", "COURSE")
	params.Add("types[2]", "EXTRA")
	params.Set("limit", "60")
	params.Set("offset", "0")
	params.Set("page", "1")
	params.Set("sort_by", "relevance")

	var catalog struct {
		Items []Item `json:"items"`
	}
	if err := s.get("/catalog/list?"+params.Encode(), &catalog); err != nil {
		return nil, err
	}

	out := make([]data.Specialization, len(catalog.Items))
	for i, item := range catalog.Items {
		out[i] = *item.ToSpecialization()
	}
	return out, nil
}

func (s *Skylab) ListModules(specializationSlug string) ([]data.Module, error) {
	var journey struct {
		Nodes []Node `json:"nodes"`
	}
	if err := s.get(fmt.Sprintf("/journeys/%s", specializationSlug), &journey); err != nil {
		return nil, err
	}

	out := make([]data.Module, len(journey.Nodes))
	for i, node := range journey.Nodes {
		out[i] = *node.ToModule()
	}
	return out, nil
}

// ListGroups resolves a module into its lesson groups. A module without a
// group yields zero groups; lesson entries without a published variant are
// dropped, not counted.
func (s *Skylab) ListGroups(moduleSlug string) ([]data.Group, error) {
	var node struct {
		Group *struct {
			Title   string        `json:"title"`
			Lessons []LessonEntry `json:"lessons"`
		} `json:"group"`
	}
	if err := s.get(fmt.Sprintf("/journey-nodes/%s", moduleSlug), &node); err != nil {
		return nil, err
	}

	if node.Group == nil {
		return nil, nil
	}

	title := node.Group.Title
	if title == "" {
		title = "Aulas do Módulo"
	}

	group := data.Group{Title: title}
	for _, entry := range node.Group.Lessons {
		if entry.Last == nil {
			continue
		}
		group.Lessons = append(group.Lessons, *entry.Last.ToLesson(title))
	}
	if len(group.Lessons) == 0 {
		return nil, nil
	}
	return []data.Group{group}, nil
}
