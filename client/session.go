package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Session is the explicit organization context threaded through requests. It
// persists across restarts via a JSON state file; switching orgs goes through
// SwitchOrg so the change is durable.
type Session struct {
	CurrentOrgID    string `json:"current_org_id"`
	SidebarExpanded bool   `json:"sidebar_expanded"`

	path string
}

// DefaultSessionPath is the per-user state file location.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "metering", "session.json"), nil
}

// LoadSession restores the session from path. A missing file yields an empty
// session bound to that path, not an error.
func LoadSession(path string) (*Session, error) {
	s := &Session{path: path, SidebarExpanded: true}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return s, nil
}

// Save writes the session state to its file.
func (s *Session) Save() error {
	if s.path == "" {
		return errors.New("session has no state path")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

// SwitchOrg changes the active organization and persists the choice.
func (s *Session) SwitchOrg(orgID string) error {
	s.CurrentOrgID = orgID
	return s.Save()
}
