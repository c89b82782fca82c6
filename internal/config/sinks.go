package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SinkRoutes maps action types to the endpoint that receives them.
// Action types without a route are handled internally.
type SinkRoutes struct {
	Routes map[string]string `yaml:"routes"`
}

// LoadSinkRoutes reads an optional routing table. When path is empty the
// routes derived from env (CRM_ESCALATE_URL, RISK_ALERT_URL) are used as-is.
func LoadSinkRoutes(path string, cfg Config) (map[string]string, error) {
	routes := map[string]string{
		"escalate": cfg.CRMEscalateURL,
		"alert":    cfg.RiskAlertURL,
		"flag":     cfg.RiskAlertURL,
	}
	if path == "" {
		return routes, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sink routes %s: %w", path, err)
	}
	var file SinkRoutes
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse sink routes %s: %w", path, err)
	}
	for action, endpoint := range file.Routes {
		routes[action] = endpoint
	}
	return routes, nil
}
