package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultDir returns ~/.config/gerapost/sessions, honouring XDG_CONFIG_HOME.
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(dir, "gerapost", "sessions"), nil
}

// CLIStore holds the one session of a command-line user as a JSON file
// readable only by its owner.
type CLIStore struct {
	mu  sync.RWMutex
	dir string
}

// NewCLIStore creates a store in dir, or in [DefaultDir] when dir is empty.
func NewCLIStore(dir string) (*CLIStore, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &CLIStore{dir: dir}, nil
}

// Path returns the session file path.
func (c *CLIStore) Path() string {
	return filepath.Join(c.dir, "current.json")
}

// GetSession returns the current session, or nil when signed out. An
// expired session is removed and reported as signed out.
func (c *CLIStore) GetSession(_ context.Context) (*Session, error) {
	c.mu.RLock()
	data, err := os.ReadFile(c.Path())
	c.mu.RUnlock()
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if sess.IsExpired() {
		c.mu.Lock()
		os.Remove(c.Path())
		c.mu.Unlock()
		return nil, nil
	}
	return &sess, nil
}

// SaveSession makes sess the current session. The file is replaced
// atomically so a crash never leaves half a session behind.
func (c *CLIStore) SaveSession(_ context.Context, sess *Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	tmp, err := os.CreateTemp(c.dir, ".session-*")
	if err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.Path()); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// DeleteSession signs out. Signing out twice is not an error.
func (c *CLIStore) DeleteSession(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.Remove(c.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
