package gofat16

import (
	"context"
	"strings"
)

// Session tracks a current directory on a Volume.
// Each caller owns its own Session, several sessions may share a Volume.
type Session struct {
	vol *Volume

	current uint16
	history []uint16
	names   []string
}

// NewSession starts a session in the root directory.
func NewSession(vol *Volume) *Session {
	return &Session{vol: vol, current: RootCluster}
}

// Current returns the first cluster of the current directory, RootCluster for the root.
func (s *Session) Current() uint16 {
	return s.current
}

// Cwd returns the path of the current directory.
func (s *Session) Cwd() string {
	return "/" + strings.Join(s.names, "/")
}

// Cd changes into the subdirectory name of the current directory.
// ".." returns to the previous directory and fails with ErrAlreadyAtRoot in
// the root directory. "/" returns to the root. The session is unchanged on error.
func (s *Session) Cd(ctx context.Context, name string) error {
	switch name {
	case ".", "":
		return nil
	case "/":
		s.current, s.history, s.names = RootCluster, nil, nil
		return nil
	case "..":
		if len(s.history) == 0 {
			return stageError(nil, ErrAlreadyAtRoot, "cd %s", name)
		}
		last := len(s.history) - 1
		s.current = s.history[last]
		s.history = s.history[:last]
		s.names = s.names[:last]
		return nil
	}

	e, err := s.vol.Find(ctx, s.current, name, true)
	if err != nil {
		return err
	}

	s.history = append(s.history, s.current)
	s.names = append(s.names, e.Name())
	s.current = e.StartingCluster
	return nil
}

// List returns the records of the current directory.
func (s *Session) List(ctx context.Context) ([]DirectoryEntry, error) {
	return s.vol.ReadDir(ctx, s.current)
}

// Find looks up a file or directory in the current directory.
func (s *Session) Find(ctx context.Context, name string) (DirectoryEntry, error) {
	return s.vol.Find(ctx, s.current, name, false)
}
