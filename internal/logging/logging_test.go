// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/newsdesk/pkg/types"
)

func level(l zapcore.Level) *zapcore.Level { return &l }

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.LogConfig
		enabled zapcore.Level
		skipped *zapcore.Level
		wantErr bool
	}{
		{name: "defaults to info json", cfg: types.LogConfig{}, enabled: zapcore.InfoLevel, skipped: level(zapcore.DebugLevel)},
		{name: "debug console", cfg: types.LogConfig{Level: "debug", Format: "console"}, enabled: zapcore.DebugLevel},
		{name: "upper case level", cfg: types.LogConfig{Level: "WARN"}, enabled: zapcore.WarnLevel, skipped: level(zapcore.InfoLevel)},
		{name: "unknown level", cfg: types.LogConfig{Level: "loud"}, wantErr: true},
		{name: "unknown format", cfg: types.LogConfig{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.enabled))
			if tt.skipped != nil {
				assert.False(t, logger.Core().Enabled(*tt.skipped))
			}
		})
	}
}
