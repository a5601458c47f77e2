package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd", "-a", "http://tracker:8080", "-t", "3", "-i", "10", "-f", "/tmp/s.db"},
			expected: &Config{ServerURL: "http://tracker:8080", RequestTimeout: 3 * time.Second,
				OnlineCheckInterval: 10 * time.Second, StateFile: "/tmp/s.db"}},
		{name: "unrelated flags ignored", args: []string{"cmd", "-x", "1", "-a", "http://h"},
			expected: &Config{ServerURL: "http://h"}},
		{name: "bad timeout", args: []string{"cmd", "-t", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
