package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/aligator/gofat16"
)

func TestCdCommand(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantDir     string
		wantEntry   string
		wantWarning bool
		wantErr     error
	}{
		{
			name:      "into a directory",
			args:      []string{"cd", "disk.img", "DOCS"},
			wantDir:   "Directory /DOCS\n",
			wantEntry: "File: [NOTES   .TXT]",
		},
		{
			name:      "lower case",
			args:      []string{"cd", "disk.img", "docs"},
			wantDir:   "Directory /DOCS\n",
			wantEntry: "File: [NOTES   .TXT]",
		},
		{
			name:      "in and out again",
			args:      []string{"cd", "disk.img", "DOCS", ".."},
			wantDir:   "Directory /\n",
			wantEntry: "File: [README  .TXT]",
		},
		{
			name:      "back to root by slash",
			args:      []string{"cd", "disk.img", "DOCS", "/"},
			wantDir:   "Directory /\n",
			wantEntry: "File: [README  .TXT]",
		},
		{
			name:        "parent of root",
			args:        []string{"cd", "disk.img", ".."},
			wantDir:     "Directory /\n",
			wantEntry:   "File: [README  .TXT]",
			wantWarning: true,
		},
		{
			name:    "file is no directory",
			args:    []string{"cd", "disk.img", "README.TXT"},
			wantErr: gofat16.ErrEntryNotFound,
		},
		{
			name:    "missing directory",
			args:    []string{"cd", "disk.img", "NOPE"},
			wantErr: gofat16.ErrEntryNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupImages(t)

			stdout, stderr, err := execCmd(t, tt.args...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("cd error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("cd error = %v", err)
			}

			if !strings.HasPrefix(stdout, tt.wantDir) {
				t.Errorf("cd output = %q, want it to start with %q", stdout, tt.wantDir)
			}
			if !strings.Contains(stdout, tt.wantEntry) {
				t.Errorf("cd output misses %q:\n%s", tt.wantEntry, stdout)
			}

			gotWarning := strings.Contains(stderr, "Warning: already at root directory")
			if gotWarning != tt.wantWarning {
				t.Errorf("warning = %v, want %v, stderr: %q", gotWarning, tt.wantWarning, stderr)
			}
		})
	}
}
