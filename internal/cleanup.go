package internal

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// CleanupManager tracks resources opened for an invocation (daemon clients,
// raw terminals) and releases them in LIFO order.
type CleanupManager struct {
	mu     sync.Mutex
	logger *log.Logger
	funcs  []cleanupFunc
}

type cleanupFunc struct {
	name string
	fn   func() error
}

// NewCleanupManager creates a cleanup manager that reports failures to logger.
func NewCleanupManager(logger *log.Logger) *CleanupManager {
	return &CleanupManager{logger: logger}
}

// Add registers a cleanup function. Functions are executed in LIFO order
// (last added, first executed).
func (m *CleanupManager) Add(name string, fn func() error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funcs = append([]cleanupFunc{{name, fn}}, m.funcs...)
}

// Execute runs all registered cleanup functions once, even if some fail, and
// returns the joined failures. Later calls are no-ops.
func (m *CleanupManager) Execute() error {
	m.mu.Lock()
	funcs := m.funcs
	m.funcs = nil
	m.mu.Unlock()

	var errs []error
	for _, cleanup := range funcs {
		if err := cleanup.fn(); err != nil {
			m.logger.Error("cleanup failed", "resource", cleanup.name, "err", err)
			errs = append(errs, fmt.Errorf("cleanup %s: %w", cleanup.name, err))
		}
	}
	return errors.Join(errs...)
}
