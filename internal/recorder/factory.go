package recorder

import (
	"fmt"

	"github.com/vrlink/extension/internal/config"
)

// NewBackend creates a recorder backend based on configuration
func NewBackend(cfg config.RecorderConfig) (Backend, error) {
	switch cfg.Type {
	case "sqlite":
		return NewSqliteBackend(cfg.Path), nil
	case "memory":
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown recorder type: %s", cfg.Type)
	}
}
