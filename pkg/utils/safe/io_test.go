package safe_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskflow/pkg/utils/safe"
)

type closer struct {
	name  string
	order *[]string
	err   error
}

func (c *closer) Close() error {
	*c.order = append(*c.order, c.name)
	return c.err
}

type brokenWriter struct{}

func (brokenWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestCloseAll(t *testing.T) {
	var order []string
	safe.CloseAll(context.Background(),
		&closer{name: "repo", order: &order},
		&closer{name: "cache", order: &order, err: errors.New("already closed")},
		nil,
	)
	gt.Array(t, order).Length(2).Required()
	gt.Value(t, order[0]).Equal("cache")
	gt.Value(t, order[1]).Equal("repo")
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	safe.Write(context.Background(), &buf, []byte("RISK-0001"))
	gt.Value(t, buf.String()).Equal("RISK-0001")

	// failures and nil writers are only logged
	safe.Write(context.Background(), brokenWriter{}, []byte("x"))
	safe.Write(context.Background(), nil, []byte("x"))
}
