// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
	}{
		{name: "quiet", verbose: false, wantDebug: false},
		{name: "verbose", verbose: true, wantDebug: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(&buf, tt.verbose)
			log.Debug("debug entry", zap.String("url", "https://www.amazon.com/dp/X"))
			log.Info("info entry")
			log.Warn("warn entry", zap.Int("count", 2))
			_ = log.Sync()

			out := buf.String()
			assert.Contains(t, out, "warn entry")
			assert.Contains(t, out, "WARN")
			assert.Contains(t, out, `"count": 2`)
			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("debug entry")))
			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("info entry")))
		})
	}
}

func TestNop(t *testing.T) {
	log := Nop()
	log.Error("discarded")
	assert.NotNil(t, log)
}
