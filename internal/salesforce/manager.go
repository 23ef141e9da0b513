package salesforce

import (
	"sync"

	"github.com/hypn4/salesforce-mcp-server/internal/auth"
	"github.com/hypn4/salesforce-mcp-server/pkg/logging"
)

// Manager hands out Salesforce clients per authenticated identity,
// reusing them across requests. A client is keyed by user and token so a
// re-authentication with a fresh token gets a fresh client.
type Manager struct {
	mu      sync.Mutex
	clients map[string]*Client
}

// NewManager creates an empty client manager.
func NewManager() *Manager {
	return &Manager{clients: make(map[string]*Client)}
}

// GetClient returns the client for an identity, creating one on first
// use. Guest identities are rejected with ErrAuthenticationRequired.
func (m *Manager) GetClient(identity *auth.Identity) (*Client, error) {
	if identity.IsGuest() || identity.Claims.SalesforceToken == "" {
		return nil, ErrAuthenticationRequired
	}

	key := identity.Claims.UserID + "|" + identity.Claims.InstanceURL + "|" + identity.Claims.SalesforceToken

	m.mu.Lock()
	defer m.mu.Unlock()

	if client, ok := m.clients[key]; ok {
		return client, nil
	}

	client := NewClient(identity.Claims.InstanceURL, identity.Claims.SalesforceToken)
	m.clients[key] = client
	logging.Debug("Salesforce", "Created client for user %s on %s", identity.Claims.UserID, identity.Claims.InstanceURL)
	return client, nil
}

// ClearAll drops every cached client. Called on shutdown.
func (m *Manager) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients = make(map[string]*Client)
}

// Size returns the number of cached clients.
func (m *Manager) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}
