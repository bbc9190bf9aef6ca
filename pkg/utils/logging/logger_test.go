package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/Neperienx/souvella-web-sub000/pkg/utils/logging"
)

func TestNewWithDifferentLevels(t *testing.T) {
	testCases := []struct {
		level       string
		expectDebug bool
		expectInfo  bool
		expectWarn  bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"warning", false, false, true},
		{"ERROR", false, false, false},
		{"invalid", false, true, true},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := logging.New(tc.level, buf)

			logger.Debug("debug message")
			logger.Info("info message")
			logger.Warn("warn message")

			output := buf.String()
			if tc.expectDebug {
				gt.S(t, output).Contains("debug message")
			} else {
				gt.S(t, output).NotContains("debug message")
			}
			if tc.expectInfo {
				gt.S(t, output).Contains("info message")
			} else {
				gt.S(t, output).NotContains("info message")
			}
			if tc.expectWarn {
				gt.S(t, output).Contains("warn message")
			} else {
				gt.S(t, output).NotContains("warn message")
			}
		})
	}
}

func TestNewJSONRedactsSecrets(t *testing.T) {
	type credentials struct {
		User     string
		Password string
		APIKey   string `masq:"secret"`
	}

	buf := &bytes.Buffer{}
	logger := logging.NewJSON("info", buf)
	logger.Info("login", "cred", credentials{User: "blue", Password: "hunter2", APIKey: "k-123"})

	output := buf.String()
	gt.S(t, output).Contains(`"msg":"login"`)
	gt.S(t, output).Contains("blue")
	gt.S(t, output).NotContains("hunter2")
	gt.S(t, output).NotContains("k-123")
}

func TestWithAndFrom(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New("debug", buf).With("component", "test")

	ctx := logging.With(context.Background(), logger)
	retrieved := logging.From(ctx)
	gt.Equal(t, retrieved, logger)

	retrieved.Info("context message")
	gt.S(t, buf.String()).Contains("context message")
	gt.S(t, buf.String()).Contains("component")
}

func TestFromUsesDefault(t *testing.T) {
	original := logging.Default()
	defer logging.SetDefault(original)

	buf := &bytes.Buffer{}
	customDefault := logging.New("warn", buf)
	logging.SetDefault(customDefault)

	retrieved := logging.From(context.Background())
	gt.Equal(t, retrieved, customDefault)

	retrieved.Warn("warning from default")
	gt.S(t, buf.String()).Contains("warning from default")
}
