package webclient

import (
	"fmt"
	"strings"

	"github.com/raysh454/employeesapp/internal/logging"
)

// New constructs the configured WebClient backend. An empty backend name
// means nethttp.
func New(cfg Config, logger logging.Logger) (WebClient, error) {
	backend := Client(strings.ToLower(strings.TrimSpace(string(cfg.Client))))
	if backend == "" {
		backend = ClientNetHTTP
	}

	switch backend {
	case ClientNetHTTP:
		wc, err := NewNetHTTPClient(cfg, logger, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to construct webclient backend %q: %w", backend, err)
		}
		return wc, nil
	case ClientChromedp:
		wc, err := NewChromedpClient(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to construct webclient backend %q: %w", backend, err)
		}
		return wc, nil
	default:
		return nil, fmt.Errorf("webclient backend %q not supported: available backends=%v", backend, Backends())
	}
}

// Backends returns the list of supported backend names.
func Backends() []Client {
	return []Client{ClientNetHTTP, ClientChromedp}
}
