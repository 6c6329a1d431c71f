// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func newCapturedSlog(level zerolog.Level) (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	zl := zerolog.New(buf).Level(level)
	return slog.New(NewSlogHandlerWithLogger(zl)), buf
}

func TestSlogHandlerLevels(t *testing.T) {
	tests := []struct {
		name string
		log  func(*slog.Logger)
		want string
	}{
		{"debug", func(l *slog.Logger) { l.Debug("msg") }, "debug"},
		{"info", func(l *slog.Logger) { l.Info("msg") }, "info"},
		{"warn", func(l *slog.Logger) { l.Warn("msg") }, "warn"},
		{"error", func(l *slog.Logger) { l.Error("msg") }, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newCapturedSlog(zerolog.TraceLevel)
			tt.log(logger)

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("decode log line %q: %v", buf.String(), err)
			}
			if entry["level"] != tt.want {
				t.Errorf("level = %v, want %s", entry["level"], tt.want)
			}
			if entry["message"] != "msg" {
				t.Errorf("message = %v", entry["message"])
			}
		})
	}
}

func TestSlogHandlerRespectsLevel(t *testing.T) {
	logger, buf := newCapturedSlog(zerolog.WarnLevel)

	logger.Info("suppressed")
	if buf.Len() != 0 {
		t.Errorf("info emitted below warn level: %q", buf.String())
	}

	logger.Error("kept")
	if buf.Len() == 0 {
		t.Error("error suppressed at warn level")
	}
}

func TestSlogHandlerAttrs(t *testing.T) {
	logger, buf := newCapturedSlog(zerolog.TraceLevel)

	logger.With("service", "http-server").Info("started", slog.Int("port", 8460), slog.Bool("tls", false))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["service"] != "http-server" {
		t.Errorf("service attr = %v", entry["service"])
	}
	if entry["port"] != float64(8460) {
		t.Errorf("port attr = %v", entry["port"])
	}
	if entry["tls"] != false {
		t.Errorf("tls attr = %v", entry["tls"])
	}
}

func TestSlogHandlerGroups(t *testing.T) {
	logger, buf := newCapturedSlog(zerolog.TraceLevel)

	logger.WithGroup("supervisor").Info("event", slog.String("name", "restarting"))

	line := buf.String()
	if !strings.Contains(line, "supervisor.name") {
		t.Errorf("grouped attr key missing from %q", line)
	}
}
