package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/logicguard/internal/ingest"
	"github.com/ppiankov/logicguard/internal/model"
	"github.com/ppiankov/logicguard/internal/pipeline"
)

// mockLoader returns the source name as its text
type mockLoader struct {
	fail map[string]bool
}

func (m *mockLoader) Load(ctx context.Context, source string) (*ingest.Source, error) {
	if m.fail[source] {
		return nil, errors.New("load error")
	}
	return &ingest.Source{Name: source, Title: "Title " + source, Text: "Text of " + source + "."}, nil
}

// mockAnalyzer records the inputs it saw
type mockAnalyzer struct {
	mu          sync.Mutex
	inputs      []pipeline.Input
	shouldError bool
}

func (m *mockAnalyzer) Run(ctx context.Context, in pipeline.Input) (*pipeline.Result, error) {
	time.Sleep(5 * time.Millisecond)
	m.mu.Lock()
	m.inputs = append(m.inputs, in)
	m.mu.Unlock()
	if m.shouldError {
		return nil, errors.New("analyze error")
	}
	return &pipeline.Result{
		Report:   &model.AnalysisReport{Summary: model.Summary{TotalIssues: 1}},
		Degraded: []model.Detector{model.DetectorLogicalJumps},
	}, nil
}

func writeSources(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessSources(t *testing.T) {
	analyzer := &mockAnalyzer{}
	template := pipeline.Input{
		Context:  model.AnalysisContext{WritingType: "essay"},
		Language: model.LanguageVI,
	}
	processor := NewBatchProcessor(analyzer, &mockLoader{}, nil, 2, template)

	sources := []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt"}
	results := processor.ProcessSources(context.Background(), sources)

	if len(results) != len(sources) {
		t.Fatalf("expected %d results, got %d", len(sources), len(results))
	}
	for i, res := range results {
		if res.Source != sources[i] {
			t.Errorf("result %d: expected source %s, got %s", i, sources[i], res.Source)
		}
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Source, res.Error)
		}
		if res.Report == nil {
			t.Errorf("expected report for %s", res.Source)
		}
		if res.Title != "Title "+sources[i] {
			t.Errorf("unexpected title %q", res.Title)
		}
		if len(res.Degraded) != 1 {
			t.Errorf("expected degraded detectors to be carried over")
		}
	}

	for _, in := range analyzer.inputs {
		if in.Context.WritingType != "essay" || in.Language != model.LanguageVI {
			t.Errorf("template not applied: %+v", in)
		}
		if !strings.HasPrefix(in.Content, "Text of ") {
			t.Errorf("unexpected content %q", in.Content)
		}
	}
}

func TestBatchProcessor_ProcessSources_Errors(t *testing.T) {
	loader := &mockLoader{fail: map[string]bool{"bad.txt": true}}
	processor := NewBatchProcessor(&mockAnalyzer{}, loader, nil, 2, pipeline.Input{})

	results := processor.ProcessSources(context.Background(), []string{"good.txt", "bad.txt"})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Error != nil {
		t.Errorf("unexpected error: %v", results[0].Error)
	}
	if results[1].Error == nil || results[1].Report != nil {
		t.Errorf("expected load failure without report, got %+v", results[1])
	}

	failing := NewBatchProcessor(&mockAnalyzer{shouldError: true}, &mockLoader{}, nil, 2, pipeline.Input{})
	results = failing.ProcessSources(context.Background(), []string{"x.txt"})
	if results[0].Error == nil {
		t.Error("expected analyze error, got nil")
	}
}

func TestBatchProcessor_ProcessSources_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{}, &mockLoader{}, nil, 2, pipeline.Input{})

	results := processor.ProcessSources(context.Background(), []string{})
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessSources_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := NewBatchProcessor(&mockAnalyzer{}, &mockLoader{}, NewLimiter(1, 1), 2, pipeline.Input{})
	results := processor.ProcessSources(ctx, []string{"http://example.com/a", "http://example.com/b"})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, res := range results {
		if res.Error == nil {
			t.Errorf("expected error for %s after cancellation", res.Source)
		}
	}
}

func TestReadSourcesFromFile(t *testing.T) {
	path := writeSources(t, `http://example.com
# comment
notes/essay.md
   
http://bing.com   
notes/essay.md`)

	sources, err := ReadSourcesFromFile(path)
	if err != nil {
		t.Fatalf("ReadSourcesFromFile failed: %v", err)
	}

	expected := []string{"http://example.com", "notes/essay.md", "http://bing.com"}
	if len(sources) != len(expected) {
		t.Fatalf("expected %d sources, got %d", len(expected), len(sources))
	}
	for i, s := range sources {
		if s != expected[i] {
			t.Errorf("expected source %s at index %d, got %s", expected[i], i, s)
		}
	}
}

func TestReadSourcesFromFile_NonExistent(t *testing.T) {
	if _, err := ReadSourcesFromFile("non_existent_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestAnalyzeResult_GetError(t *testing.T) {
	r1 := &AnalyzeResult{Source: "a.txt"}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("analysis failed")
	r2 := &AnalyzeResult{Source: "a.txt", Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := writeSources(t, "a.txt\nb.txt\n# comment\n\nc.txt\n")

	processor := NewBatchProcessor(&mockAnalyzer{}, &mockLoader{}, nil, 2, pipeline.Input{})
	results, err := processor.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{}, &mockLoader{}, nil, 2, pipeline.Input{})

	if _, err := processor.ProcessFile(context.Background(), "no_such_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_ProcessFile_Empty(t *testing.T) {
	path := writeSources(t, "")

	processor := NewBatchProcessor(&mockAnalyzer{}, &mockLoader{}, nil, 2, pipeline.Input{})
	results, err := processor.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected 0 results for empty file, got %d", len(results))
	}
}
