package api

import (
	"fmt"
	"sync"
)

// Registration pairs a client with the name it was registered under.
type Registration struct {
	Name   string
	Client Client
}

// Registry owns the configured clients, keyed by provider name.
// Enumeration follows registration order; re-registering a name replaces
// the client but keeps its original position.
// Follows Single Responsibility - only tracks which clients exist.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client // provider name -> client
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]Client),
	}
}

// Register adds or replaces the client for a provider name.
func (r *Registry) Register(name string, client Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.clients[name]; !exists {
		r.order = append(r.order, name)
	}
	r.clients[name] = client
}

// Get returns the client registered under name.
func (r *Registry) Get(name string) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, exists := r.clients[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, name)
	}
	return client, nil
}

// GetAll returns every registered client in registration order.
func (r *Registry) GetAll() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	registrations := make([]Registration, 0, len(r.order))
	for _, name := range r.order {
		registrations = append(registrations, Registration{Name: name, Client: r.clients[name]})
	}
	return registrations
}
