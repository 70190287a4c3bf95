package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	var (
		addr = "localhost:8080"
		dsn  = "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable"
	)

	tcases := []struct {
		name         string
		addr         string
		dsn          string
		origins      string
		npcCount     int
		npcReplyRate float64
		err          bool
	}{
		{
			name:         "valid config",
			addr:         addr,
			dsn:          dsn,
			origins:      "http://localhost:3000",
			npcCount:     2,
			npcReplyRate: 0.5,
			err:          false,
		},
		{
			name:         "empty address",
			addr:         "",
			dsn:          dsn,
			npcCount:     2,
			npcReplyRate: 0.5,
			err:          true,
		},
		{
			name:         "empty DSN is allowed",
			addr:         addr,
			dsn:          "",
			npcCount:     2,
			npcReplyRate: 0.5,
			err:          false,
		},
		{
			name:         "negative npc count",
			addr:         addr,
			dsn:          dsn,
			npcCount:     -1,
			npcReplyRate: 0.5,
			err:          true,
		},
		{
			name:         "zero npc reply rate",
			addr:         addr,
			dsn:          dsn,
			npcCount:     2,
			npcReplyRate: 0,
			err:          true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			config, err := NewConfig(tc.addr, tc.dsn, tc.origins, tc.npcCount, tc.npcReplyRate)
			if tc.err {
				assert.Error(t, err, "expected error for config: %s", tc.name)
				return
			}
			assert.NoError(t, err, "expected no error for config: %s", tc.name)

			assert.Equal(t, tc.addr, config.ServerAddr, "expected server address to match")
			assert.Equal(t, tc.dsn, config.DatabaseDSN, "expected database DSN to match")
			assert.Equal(t, tc.npcCount, config.NpcCount, "expected npc count to match")
		})
	}
}

func Test_splitOrigins(t *testing.T) {
	tcases := []struct {
		name     string
		origins  string
		expected []string
	}{
		{
			name:     "single origin",
			origins:  "http://localhost:3000",
			expected: []string{"http://localhost:3000"},
		},
		{
			name:     "multiple origins with whitespace",
			origins:  "http://localhost:3000, https://game.example.com",
			expected: []string{"http://localhost:3000", "https://game.example.com"},
		},
		{
			name:     "empty string",
			origins:  "",
			expected: nil,
		},
		{
			name:     "stray commas",
			origins:  ",http://localhost:3000,,",
			expected: []string{"http://localhost:3000"},
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, splitOrigins(tc.origins))
		})
	}
}
