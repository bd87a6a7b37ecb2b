package config_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskflow/pkg/cli/config"
)

type credential struct {
	User  string
	Token string
}

func TestLogger_NewHandler(t *testing.T) {
	t.Run("json output masks credentials", func(t *testing.T) {
		var buf bytes.Buffer
		handler, err := config.NewLoggerForTest("info", "json").NewHandler(&buf)
		gt.NoError(t, err).Required()

		slog.New(handler).Info("login", "cred", credential{User: "alice", Token: "xoxb-secret"})

		var record map[string]any
		gt.NoError(t, json.Unmarshal(buf.Bytes(), &record)).Required()
		gt.String(t, buf.String()).Contains("alice")
		gt.B(t, bytes.Contains(buf.Bytes(), []byte("xoxb-secret"))).Describef("token must be redacted: %s", buf.String()).False()
	})

	t.Run("level filters records", func(t *testing.T) {
		var buf bytes.Buffer
		handler, err := config.NewLoggerForTest("warn", "json").NewHandler(&buf)
		gt.NoError(t, err).Required()

		slog.New(handler).Info("ignored")
		gt.Number(t, buf.Len()).Equal(0)
	})

	t.Run("console format", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := config.NewLoggerForTest("debug", "console").NewHandler(&buf)
		gt.NoError(t, err)
	})

	t.Run("invalid level", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := config.NewLoggerForTest("verbose", "json").NewHandler(&buf)
		gt.Value(t, err).NotNil()
	})

	t.Run("invalid format", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := config.NewLoggerForTest("info", "xml").NewHandler(&buf)
		gt.Value(t, err).NotNil()
	})
}
