package session

import (
	"context"
	"fmt"

	"hubchat/internal/types"
)

// RefreshHubs fetches the hub catalog. On failure the cached catalog is
// left unchanged and the error is returned for the caller to surface as
// a transient notice; a catalog failure never tears the session down.
func (c *Controller) RefreshHubs(ctx context.Context) ([]types.Hub, error) {
	hubs, err := c.client.ListHubs(ctx)
	if err != nil {
		c.logger.Warnf("failed to fetch hubs: %v", err)
		return c.Hubs(), fmt.Errorf("failed to load hubs: %w", err)
	}
	c.mu.Lock()
	c.hubs = hubs
	c.mu.Unlock()
	return hubs, nil
}

// RefreshLoadedHubs fetches the set of hubs resident in server memory.
// Intended for background polling: failures are logged and swallowed.
func (c *Controller) RefreshLoadedHubs(ctx context.Context) {
	names, err := c.client.ListLoadedHubs(ctx)
	if err != nil {
		c.logger.Debugf("failed to fetch loaded hubs: %v", err)
		return
	}
	loaded := make(map[string]struct{}, len(names))
	for _, name := range names {
		loaded[name] = struct{}{}
	}
	c.mu.Lock()
	c.loadedHubs = loaded
	c.mu.Unlock()
}

// CheckConnection probes the health endpoint and records the result.
func (c *Controller) CheckConnection(ctx context.Context) types.ConnectionStatus {
	if err := c.client.Health(ctx); err != nil {
		c.markDisconnected()
		return types.StatusDisconnected
	}
	c.markConnected()
	return types.StatusConnected
}

// SwitchHub moves the session to a different hub. The transition is
// strictly sequential: the active conversation is persisted under the
// old hub, the old hub is unloaded, the new hub is loaded, and only
// then is the new hub's history read from the store. Exactly one switch
// may run at a time; re-entrant calls fail with ErrSwitchInProgress.
//
// On a load failure the selection is cleared entirely — a half-selected
// hub would disagree with the server — and the old hub's conversations
// are left untouched in the store.
func (c *Controller) SwitchHub(ctx context.Context, hub string) (string, error) {
	c.mu.Lock()
	if c.switching {
		c.mu.Unlock()
		return "", ErrSwitchInProgress
	}
	if hub == c.selectedHub {
		c.mu.Unlock()
		return "", nil
	}
	c.switching = true
	previous := c.selectedHub
	if previous != "" && c.currentID != "" && len(c.messages) > 0 {
		// Persist before detaching; doing it after would drop any
		// in-flight exchange.
		if err := c.persistActiveLocked(previous); err != nil {
			c.logger.Warnf("failed to persist conversation before switch: %v", err)
		}
	}
	c.mu.Unlock()

	if previous != "" {
		// Serialize: the unload must complete before the load starts.
		if _, err := c.client.UnloadHub(ctx, previous); err != nil {
			c.logger.Warnf("failed to unload hub %q: %v", previous, err)
		}
	}

	msg, err := c.client.LoadHub(ctx, hub)
	if err != nil {
		c.mu.Lock()
		c.selectedHub = ""
		c.previousHub = ""
		c.currentID = ""
		c.messages = nil
		c.switching = false
		c.mu.Unlock()
		return "", err
	}
	c.markConnected()

	conversations, err := c.store.Load(hub)
	if err != nil {
		c.logger.Warnf("failed to load conversations for %q: %v", hub, err)
		conversations = []types.Conversation{}
	}

	c.mu.Lock()
	c.selectedHub = hub
	c.previousHub = hub
	c.conversations = conversations
	// A switch always lands with no conversation pre-selected.
	c.currentID = ""
	c.messages = nil
	c.loadedHubs[hub] = struct{}{}
	if previous != "" {
		delete(c.loadedHubs, previous)
	}
	c.switching = false
	c.mu.Unlock()

	return msg, nil
}

// UnloadHub deactivates a hub on the server. When it is the selected
// hub, the selection and visible messages are cleared; stored history
// stays retrievable for the next load.
func (c *Controller) UnloadHub(ctx context.Context, hub string) (string, error) {
	msg, err := c.client.UnloadHub(ctx, hub)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	delete(c.loadedHubs, hub)
	if c.selectedHub == hub {
		if c.currentID != "" && len(c.messages) > 0 {
			if perr := c.persistActiveLocked(hub); perr != nil {
				c.logger.Warnf("failed to persist conversation before unload: %v", perr)
			}
		}
		c.selectedHub = ""
		c.previousHub = ""
		c.currentID = ""
		c.messages = nil
		c.conversations = nil
	}
	c.mu.Unlock()
	return msg, nil
}

// SyncHub asks the server to re-index the selected hub, then refreshes
// the catalog so the new file count is visible.
func (c *Controller) SyncHub(ctx context.Context) (string, error) {
	c.mu.Lock()
	hub := c.selectedHub
	c.mu.Unlock()
	if hub == "" {
		return "", ErrNoHubSelected
	}
	msg, err := c.client.SyncHub(ctx, hub)
	if err != nil {
		return "", err
	}
	if _, err := c.RefreshHubs(ctx); err != nil {
		c.logger.Warnf("catalog refresh after sync failed: %v", err)
	}
	return msg, nil
}
