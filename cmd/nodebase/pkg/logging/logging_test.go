package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"
)

func TestNewHandler(t *testing.T) {
	buf := new(bytes.Buffer)

	h, err := newHandler("json", buf, slog.LevelInfo, false)
	require.NoError(t, err)

	logger := log.NewLogger(h)
	logger.Debug("hidden")
	logger.Info("indexed node events", "block", 7)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "indexed node events", line["msg"])
	require.EqualValues(t, 7, line["block"])

	_, err = newHandler("xml", buf, slog.LevelInfo, false)
	require.ErrorContains(t, err, "unknown log format")
}
