package snapshot

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestTakeRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"empty url", func(c *Config) { c.URL = "" }},
		{"bad scheme", func(c *Config) { c.URL = "ftp://127.0.0.1/" }},
		{"no timeout", func(c *Config) { c.Timeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(&cfg)
			_, err := Take(context.Background(), cfg)
			assert.ErrorContains(t, err, "snapshot:")
		})
	}
}

func TestNodeCount(t *testing.T) {
	tests := []struct {
		page string
		want int
	}{
		{`<p id="node-count">Nodos visualizados: <span id="node-count-value">42</span></p>`, 42},
		{`<p id="node-count">Nodos visualizados: <span id="node-count-value"> 0 </span></p>`, 0},
		{`<span id="node-count-value"></span>`, -1},
		{`<div>ARAT</div>`, -1},
	}

	for _, tt := range tests {
		doc, err := html.Parse(strings.NewReader(tt.page))
		require.NoError(t, err)
		assert.Equal(t, tt.want, NodeCount(doc), tt.page)
	}
}
