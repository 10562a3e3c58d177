package oracle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

// Static answers every request from a fixed candidate set. It is used for
// replaying recorded oracle answers and as a deterministic test stub.
type Static struct {
	name  string
	all   *Candidates
	calls atomic.Int64
}

// NewStatic returns an oracle that always answers from c
func NewStatic(c *Candidates) *Static {
	if c == nil {
		c = &Candidates{}
	}
	return &Static{name: "static", all: c}
}

// LoadStatic reads a replay file. YAML is used for .yaml/.yml files, the
// tolerant JSON decoder for anything else, so raw model answers and full
// reports both load.
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read candidates: %w", err)
	}

	var c *Candidates
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		c, err = DecodeYAML(data)
	default:
		c, err = Decode(string(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s := NewStatic(c)
	s.name = "replay:" + filepath.Base(path)
	return s, nil
}

// Name returns "static" or the replay file name
func (s *Static) Name() string {
	return s.name
}

// Infer returns the section for req.Task
func (s *Static) Infer(ctx context.Context, req Request) (*Candidates, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.calls.Add(1)
	return s.all.Only(req.Task), nil
}

// Calls returns how many times Infer was called
func (s *Static) Calls() int64 {
	return s.calls.Load()
}
