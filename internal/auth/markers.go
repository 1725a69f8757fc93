// Package auth owns the cross-cutting session markers (authenticated
// user, just-logged-in flag, last-load timestamp) and the heuristic
// that decides whether a session entry was a manual refresh or in-app
// navigation.
package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"hubchat/internal/utils"
)

type markerState struct {
	Authenticated bool   `json:"authenticated"`
	User          string `json:"user,omitempty"`
	JustLoggedIn  bool   `json:"justLoggedIn,omitempty"`
	LastPageLoad  int64  `json:"lastPageLoad,omitempty"` // unix millis
}

// Markers is the file-backed session marker store. Open it once at
// startup; every mutation writes straight through to disk.
type Markers struct {
	path  string
	state markerState
}

func OpenMarkers(dataDir string) (*Markers, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}
	m := &Markers{path: filepath.Join(dataDir, "session.json")}
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, err
	}
	// A corrupt marker file degrades to a logged-out session.
	_ = json.Unmarshal(data, &m.state)
	return m, nil
}

func (m *Markers) save() error {
	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return err
	}
	return utils.WriteFileAtomic(m.path, data, 0600)
}

func (m *Markers) Authenticated() bool { return m.state.Authenticated }
func (m *Markers) User() string        { return m.state.User }

// MarkLoggedIn records a fresh authentication. The just-logged-in flag
// suppresses the refresh check on the very next session entry.
func (m *Markers) MarkLoggedIn(user string) error {
	m.state = markerState{
		Authenticated: true,
		User:          user,
		JustLoggedIn:  true,
		LastPageLoad:  m.state.LastPageLoad,
	}
	return m.save()
}

// Reset clears every marker, logging the session out.
func (m *Markers) Reset() error {
	m.state = markerState{}
	return m.save()
}

func (m *Markers) LastPageLoad() time.Time {
	if m.state.LastPageLoad == 0 {
		return time.Time{}
	}
	return time.UnixMilli(m.state.LastPageLoad)
}

func (m *Markers) setLastPageLoad(t time.Time) error {
	m.state.LastPageLoad = t.UnixMilli()
	return m.save()
}
