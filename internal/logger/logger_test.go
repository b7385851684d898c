package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
	}{
		{name: "quiet", verbose: false, wantDebug: false},
		{name: "verbose", verbose: true, wantDebug: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(&buf, tt.verbose)
			log.Debugf("Copied %d bytes", 512)
			log.Infof("Wrote %s", "README.TXT")
			log.Warnf("chain ended early")
			_ = log.Sync()

			out := buf.String()
			if got := strings.Contains(out, "DEBUG\tCopied 512 bytes"); got != tt.wantDebug {
				t.Errorf("debug message written = %v, want %v\n%s", got, tt.wantDebug, out)
			}
			if !strings.Contains(out, "INFO\tWrote README.TXT") {
				t.Errorf("info message missing\n%s", out)
			}
			if !strings.Contains(out, "WARN\tchain ended early") {
				t.Errorf("warning missing\n%s", out)
			}
			if strings.Contains(out, "\x1b[") {
				t.Errorf("colored output for a buffer\n%s", out)
			}
		})
	}
}

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	var buf bytes.Buffer
	SetLogger(New(&buf, false))
	Logger().Infof("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("Logger() did not use the logger passed to SetLogger")
	}

	SetLogger(nil)
	buf.Reset()
	Logger().Infof("hello")
	if buf.Len() != 0 {
		t.Errorf("Logger() after SetLogger(nil) wrote %q", buf.String())
	}
}
