package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskflow/pkg/utils/logging"
)

func TestFromFallsBackToDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logging.SetDefault(logger)

	logging.From(context.Background()).Info("hello")
	gt.String(t, buf.String()).Contains("hello")
}

func TestWithBindsLogger(t *testing.T) {
	var def, bound bytes.Buffer
	logging.SetDefault(slog.New(slog.NewJSONHandler(&def, nil)))

	ctx := logging.With(context.Background(), slog.New(slog.NewJSONHandler(&bound, nil)))
	logging.From(ctx).Info("bound message")

	gt.String(t, bound.String()).Contains("bound message")
	gt.Bool(t, strings.Contains(def.String(), "bound message")).False()
}

func TestSetDefaultIgnoresNil(t *testing.T) {
	current := logging.Default()
	logging.SetDefault(nil)
	gt.V(t, logging.Default()).Equal(current)
}
