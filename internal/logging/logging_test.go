package logging

import (
	"bytes"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONWhenNotATerminal(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info")

	l.WithField("endpoint", "search").Info("api call")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "api call", entry["msg"])
	assert.Equal(t, "search", entry["endpoint"])
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "error")
	assert.Equal(t, logrus.ErrorLevel, l.GetLevel())

	l.Warn("dropped")
	assert.Zero(t, buf.Len())

	assert.Equal(t, logrus.WarnLevel, New(&buf, "nonsense").GetLevel())
}
