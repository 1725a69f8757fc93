package auth

import "time"

// EntryKind is the navigation-timing signal for how the session view was
// entered. EntryUnknown covers environments where the signal is
// unavailable and is treated as navigation.
type EntryKind int

const (
	EntryUnknown EntryKind = iota
	EntryNavigate
	EntryReload
)

// refreshWindow is the minimum gap since the last recorded load before a
// reload counts as a manual refresh. Reloads inside the window are part
// of the same load sequence (e.g. a slow double render) and are ignored.
const refreshWindow = 3000 * time.Millisecond

// DetectRefresh runs once when the session view mounts. It returns true
// when the entry was a manual refresh and the session has been logged
// out; in every other case it updates the last-load marker and keeps the
// session.
//
// The just-logged-in flag is consumed on first sight so the initial load
// right after authentication never reads as a refresh.
func DetectRefresh(m *Markers, entry EntryKind, now time.Time) (loggedOut bool, err error) {
	if m.state.JustLoggedIn {
		m.state.JustLoggedIn = false
		return false, m.setLastPageLoad(now)
	}

	last := m.LastPageLoad()
	if entry == EntryReload && !last.IsZero() && now.Sub(last) > refreshWindow {
		return true, m.Reset()
	}

	return false, m.setLastPageLoad(now)
}
