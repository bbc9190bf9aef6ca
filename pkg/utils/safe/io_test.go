package safe_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/Neperienx/souvella-web-sub000/pkg/utils/logging"
	"github.com/Neperienx/souvella-web-sub000/pkg/utils/safe"
)

type failingCloser struct{}

func (failingCloser) Close() error { return errors.New("close failed") }

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("write failed") }

func TestCloseLogsError(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := logging.With(context.Background(), logging.New("debug", buf))

	safe.Close(ctx, failingCloser{})
	gt.S(t, buf.String()).Contains("Failed to close")

	safe.Close(ctx, nil)
}

func TestWrite(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := logging.With(context.Background(), logging.New("debug", buf))

	out := &bytes.Buffer{}
	safe.Write(ctx, out, []byte("hello"))
	gt.Value(t, out.String()).Equal("hello")

	safe.Write(ctx, failingWriter{}, []byte("hello"))
	gt.S(t, buf.String()).Contains("Failed to write")
}
