package config

import (
	"fmt"
	"strings"
)

type Config struct {
	ServerAddr     string
	DatabaseDSN    string
	AllowedOrigins []string
	NpcCount       int
	NpcReplyRate   float64
}

// NewConfig validates the raw values from flags and environment. The
// database DSN is optional; without one, event logging is disabled.
func NewConfig(serverAddr, databaseDSN, origins string, npcCount int, npcReplyRate float64) (*Config, error) {
	if serverAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if npcCount < 0 {
		return nil, fmt.Errorf("npc count cannot be negative")
	}
	if npcReplyRate <= 0 {
		return nil, fmt.Errorf("npc reply rate must be positive")
	}

	return &Config{
		ServerAddr:     serverAddr,
		DatabaseDSN:    databaseDSN,
		AllowedOrigins: splitOrigins(origins),
		NpcCount:       npcCount,
		NpcReplyRate:   npcReplyRate,
	}, nil
}

func splitOrigins(origins string) []string {
	var out []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
