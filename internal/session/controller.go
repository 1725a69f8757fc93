// Package session is the lifecycle controller: it owns the selected
// hub, the active conversation, and the visible message list, and it is
// the only writer to the conversation store. All remote calls go
// through the api client; all durable state goes through the store.
package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"hubchat/internal/api"
	"hubchat/internal/store"
	"hubchat/internal/types"
	"hubchat/internal/utils"
)

// State is the controller's position in the hub lifecycle.
type State string

const (
	StateIdle      State = "idle"      // no hub selected
	StateSwitching State = "switching" // hub change in progress
	StateActive    State = "active"    // hub loaded
)

var (
	ErrSwitchInProgress = errors.New("hub switch already in progress")
	ErrNoHubSelected    = errors.New("no hub selected")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrSendInFlight     = errors.New("a send is already in flight")
)

type Controller struct {
	mu     sync.Mutex
	client *api.Client
	store  *store.ConversationStore
	logger *utils.Logger

	hubs       []types.Hub
	loadedHubs map[string]struct{}

	selectedHub string
	previousHub string

	conversations []types.Conversation
	currentID     string
	messages      []types.Message

	switching bool
	sending   bool
	status    types.ConnectionStatus

	// Retry backoff after a service-reported network error and after a
	// thrown transport error. Tests shrink these.
	serviceRetryDelay   time.Duration
	transportRetryDelay time.Duration

	loadedPollInterval time.Duration
	healthPollInterval time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewController(client *api.Client, st *store.ConversationStore, logger *utils.Logger) *Controller {
	return &Controller{
		client:              client,
		store:               st,
		logger:              logger,
		loadedHubs:          make(map[string]struct{}),
		status:              types.StatusChecking,
		serviceRetryDelay:   2 * time.Second,
		transportRetryDelay: 3 * time.Second,
		loadedPollInterval:  30 * time.Second,
		healthPollInterval:  60 * time.Second,
		stopCh:              make(chan struct{}),
	}
}

// SetRetryDelays overrides the send-retry backoff.
func (c *Controller) SetRetryDelays(service, transport time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.serviceRetryDelay = service
	c.transportRetryDelay = transport
}

// SetPollIntervals overrides the background poll cadence.
func (c *Controller) SetPollIntervals(loaded, health time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadedPollInterval = loaded
	c.healthPollInterval = health
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.switching:
		return StateSwitching
	case c.selectedHub != "":
		return StateActive
	default:
		return StateIdle
	}
}

func (c *Controller) SelectedHub() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedHub
}

func (c *Controller) Status() types.ConnectionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

func (c *Controller) Hubs() []types.Hub {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.Hub, len(c.hubs))
	copy(out, c.hubs)
	return out
}

func (c *Controller) IsLoaded(hub string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.loadedHubs[hub]
	return ok
}

func (c *Controller) LoadedHubs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.loadedHubs))
	for name := range c.loadedHubs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (c *Controller) Conversations() []types.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.Conversation, len(c.conversations))
	copy(out, c.conversations)
	return out
}

func (c *Controller) CurrentConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentID
}

// Messages returns the visible message list for the active conversation.
func (c *Controller) Messages() []types.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// StartPolling launches the loaded-hub refresh and connectivity probe
// tickers. Both stop when Close is called.
func (c *Controller) StartPolling() {
	c.mu.Lock()
	loadedTick := time.NewTicker(c.loadedPollInterval)
	healthTick := time.NewTicker(c.healthPollInterval)
	c.mu.Unlock()
	go func() {
		defer loadedTick.Stop()
		defer healthTick.Stop()
		for {
			select {
			case <-loadedTick.C:
				c.RefreshLoadedHubs(context.Background())
			case <-healthTick.C:
				c.CheckConnection(context.Background())
			case <-c.stopCh:
				return
			}
		}
	}()
}

// Close stops the background timers. The controller remains usable for
// direct calls afterwards.
func (c *Controller) Close() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

func (c *Controller) markConnected() {
	c.mu.Lock()
	c.status = types.StatusConnected
	c.mu.Unlock()
}

func (c *Controller) markDisconnected() {
	c.mu.Lock()
	c.status = types.StatusDisconnected
	c.mu.Unlock()
}
