package agent

import (
	"github.com/aldicp/aldicp/pkg/config"
	"github.com/aldicp/aldicp/pkg/models"
)

// ResolveConstraints converts a declared config.AgentConstraintsConfig
// (pointer-optional fields) into the resolved models.Constraints a spawned
// instance carries.
func ResolveConstraints(cfg config.AgentConstraintsConfig) models.Constraints {
	c := models.Constraints{
		ReadOnly:         cfg.ReadOnly,
		RequiresApproval: cfg.RequiresApproval,
		AllowedFormats:   cfg.AllowedFormats,
	}
	if cfg.MaxFileSizeMB != nil {
		c.MaxFileSizeMB = *cfg.MaxFileSizeMB
	}
	return c
}
