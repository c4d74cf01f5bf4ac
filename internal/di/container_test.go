package di

import (
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/dig"

	"github.com/mikey/llm-style-responder/internal/core"
	"github.com/mikey/llm-style-responder/internal/corpus"
	"github.com/mikey/llm-style-responder/internal/utils"
)

func testOptions(t *testing.T, overrides map[string]interface{}) Options {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	base := map[string]interface{}{
		"vectorstore.sqlite_path": filepath.Join(dir, "vectors.db"),
		"corpus.sqlite_path":      filepath.Join(dir, "corpus.db"),
		"logging.level":           "error",
	}
	for k, v := range overrides {
		base[k] = v
	}
	return Options{Overrides: base}
}

func TestBuildContainer_DirectMode(t *testing.T) {
	container, err := BuildContainer(testOptions(t, map[string]interface{}{"knowledge.mode": "direct"}))
	if err != nil {
		t.Fatalf("BuildContainer() error = %v", err)
	}

	// Direct mode resolves without any provider credentials.
	err = container.Invoke(func(session *core.Session, builder *corpus.Builder, repo core.CorpusRepository) {
		if session.Mode() != core.ModeDirect {
			t.Errorf("Mode() = %q", session.Mode())
		}
		if builder == nil || repo == nil {
			t.Error("builder and repository should be provided")
		}
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
}

func TestBuildContainer_TextProcessor(t *testing.T) {
	container, err := BuildContainer(testOptions(t, nil))
	if err != nil {
		t.Fatalf("BuildContainer() error = %v", err)
	}
	if err := container.Invoke(func(tp *utils.TextProcessor) {
		if tp.SanitizeUTF8("ok") != "ok" {
			t.Error("text processor should pass valid UTF-8 through")
		}
	}); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
}

func TestBuildContainer_ResponderNeedsCredentials(t *testing.T) {
	container, err := BuildContainer(testOptions(t, nil))
	if err != nil {
		t.Fatalf("BuildContainer() error = %v", err)
	}

	err = container.Invoke(func(*core.ResponderService) {})
	if !errors.Is(dig.RootCause(err), core.ErrNotConfigured) {
		t.Errorf("Invoke() error = %v, want ErrNotConfigured", err)
	}
}

func TestBuildContainer_Responder(t *testing.T) {
	container, err := BuildContainer(testOptions(t, map[string]interface{}{"openai.api_key": "sk-test"}))
	if err != nil {
		t.Fatalf("BuildContainer() error = %v", err)
	}
	if err := container.Invoke(func(svc *core.ResponderService) {
		if svc == nil {
			t.Error("service = nil")
		}
	}); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
}
