package logger

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func captureStdout(t *testing.T, f func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	f()

	_ = w.Close()
	b, _ := io.ReadAll(r)
	_ = r.Close()
	return string(b)
}

func TestErrorLogCarriesServiceAndStack(t *testing.T) {
	out := captureStdout(t, func() {
		log := New("foundly-test")
		err := errors.New("db unreachable")
		log.Error().Stack().Err(err).Msg("ping failed")
	})

	var line string
	for _, l := range strings.Split(out, "\n") {
		if strings.TrimSpace(l) != "" {
			line = l
		}
	}
	require.NotEmpty(t, line, "expected a log line on stdout")

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &payload), "log output must be JSON: %s", line)

	require.Equal(t, "foundly-test", payload["service"])
	require.Equal(t, "error", payload["level"])
	require.Contains(t, payload, "stack", "pkg/errors stack should be marshaled")
	require.Equal(t, "db unreachable", payload["error"])
}
