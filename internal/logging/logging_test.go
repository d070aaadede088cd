package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	l, err := New("debug", FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)

	_, err = New("loud", FormatText)
	assert.Error(t, err)

	_, err = New("info", "xml")
	assert.Error(t, err)
}

func TestFunc(t *testing.T) {
	var buf bytes.Buffer
	l, err := New("info", FormatJSON)
	require.NoError(t, err)
	l.SetOutput(&buf)

	Func(l, "box", "Open").WithField("box", "01H").Info("opened")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "box", line["package"])
	assert.Equal(t, "Open", line["function"])
	assert.Equal(t, "opened", line["msg"])
}
