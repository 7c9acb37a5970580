package tmlog

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScope struct{ scope string }

func (f fakeScope) LogScope() string { return f.scope }

func withCapturedLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Logger
	Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)
	t.Cleanup(func() { Logger = prev })
	return &buf
}

func TestConfigureAttachesScopeAndDimensions(t *testing.T) {
	buf := withCapturedLogger(t)
	Configure(fakeScope{"source.matlab"}, 10, 80)
	Degraded("source.unknown")

	var fields map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fields))
	assert.Equal(t, "source.matlab", fields["scope"])
	assert.Equal(t, float64(10), fields["height"])
	assert.Equal(t, float64(80), fields["width"])
	assert.Equal(t, "source.unknown", fields["include"])
}

func TestLeafFallbackLogsToken(t *testing.T) {
	buf := withCapturedLogger(t)
	LeafFallback("constant.numeric")

	var fields map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fields))
	assert.Equal(t, "constant.numeric", fields["token"])
	assert.Equal(t, "warn", fields["level"])
}

func TestIterationCeilingLogsLimit(t *testing.T) {
	buf := withCapturedLogger(t)
	IterationCeiling("source.matlab", 10000)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fields))
	assert.Equal(t, float64(10000), fields["limit"])
	assert.Equal(t, "error", fields["level"])
}
