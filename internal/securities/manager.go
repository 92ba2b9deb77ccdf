package securities

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-fills/pkg/errors"
)

// Manager holds the securities of a session in insertion order.
type Manager struct {
	securities map[string]*Security
	symbols    []string
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		securities: make(map[string]*Security),
		symbols:    []string{},
	}
}

// Add registers a security. Symbols are unique.
func (m *Manager) Add(security *Security) error {
	if err := security.Validate(); err != nil {
		return err
	}

	if _, ok := m.securities[security.Ticker()]; ok {
		return errors.Newf(errors.ErrCodeDuplicateSecurity, "security %s already exists", security.Ticker())
	}

	m.securities[security.Ticker()] = security
	m.symbols = append(m.symbols, security.Ticker())

	return nil
}

// Get returns the security of the symbol.
func (m *Manager) Get(symbol string) (*Security, error) {
	security, ok := m.securities[symbol]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeSecurityNotFound, "security %s not found", symbol)
	}

	return security, nil
}

// Lookup returns the security of the symbol if it exists.
func (m *Manager) Lookup(symbol string) optional.Option[*Security] {
	if security, ok := m.securities[symbol]; ok {
		return optional.Some(security)
	}

	return optional.None[*Security]()
}

// All returns the securities in insertion order.
func (m *Manager) All() []*Security {
	result := make([]*Security, 0, len(m.symbols))
	for _, symbol := range m.symbols {
		result = append(result, m.securities[symbol])
	}

	return result
}

func (m *Manager) Len() int { return len(m.symbols) }

// SetTime moves the clock of every security.
func (m *Manager) SetTime(utcTime time.Time) {
	for _, security := range m.securities {
		security.SetTime(utcTime)
	}
}
