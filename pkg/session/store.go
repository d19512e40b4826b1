package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const fileName = ".session.json"

// Store persists the session to a single file. The file's presence is the
// only "already authenticated" signal; there is no expiry check.
type Store struct {
	path string
}

// NewStore places the session file in $SESSION_DIR, defaulting to the
// working directory.
func NewStore() *Store {
	dir := os.Getenv("SESSION_DIR")
	if dir == "" {
		dir = "."
	}
	return NewStoreAt(dir)
}

func NewStoreAt(dir string) *Store {
	return &Store{path: filepath.Join(dir, fileName)}
}

func (st *Store) Path() string {
	return st.path
}

// Load restores a saved session. A missing file returns (nil, nil); a file
// that exists but cannot be decoded is an error, never a silent re-login,
// since a half-restored session makes every later API call ambiguous.
func (st *Store) Load() (*Session, error) {
	raw, err := os.ReadFile(st.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session file %s: %w", st.path, err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("corrupt session file %s: %w", st.path, err)
	}
	if sess.Headers == nil {
		sess.Headers = map[string]string{}
	}
	if sess.Cookies == nil {
		sess.Cookies = map[string]string{}
	}
	return &sess, nil
}

func (st *Store) Save(sess *Session) error {
	if err := os.MkdirAll(filepath.Dir(st.path), 0o755); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	raw, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(st.path, raw, 0o600)
}

// Delete removes the persisted session, forcing the next run to log in again.
func (st *Store) Delete() error {
	err := os.Remove(st.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
