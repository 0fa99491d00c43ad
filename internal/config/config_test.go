package config

import (
	"os"
	"path/filepath"
	"testing"

	"loom/internal/errs"
)

type scoreSection struct {
	Threshold float64 `yaml:"threshold"`
	Modifier  struct {
		ShortTextLimit int     `yaml:"short_text_limit"`
		ShortTextDelta float64 `yaml:"short_text_delta"`
	} `yaml:"modifier"`
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileProviderFormats(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"cfg.yaml", "threshold: 0.75\nmodifier:\n  short_text_limit: 20\n"},
		{"cfg.json", `{"threshold": 0.75, "modifier": {"short_text_limit": 20}}`},
		{"cfg.toml", "threshold = 0.75\n[modifier]\nshort_text_limit = 20\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.name, tt.content)
			root, err := NewBuilder().WithFile(path).Build()
			if err != nil {
				t.Fatalf("build: %v", err)
			}

			var cfg scoreSection
			if err := root.Section("").Bind(&cfg); err != nil {
				t.Fatalf("bind: %v", err)
			}
			if cfg.Threshold != 0.75 {
				t.Errorf("threshold = %f, want 0.75", cfg.Threshold)
			}
			if cfg.Modifier.ShortTextLimit != 20 {
				t.Errorf("short_text_limit = %d, want 20", cfg.Modifier.ShortTextLimit)
			}
		})
	}
}

func TestMissingFileIsNotFound(t *testing.T) {
	_, err := NewBuilder().WithFile("/nonexistent/cfg.yaml").Build()
	if !errs.IsCode(err, errs.NotFound) {
		t.Errorf("error code = %v, want not_found", errs.CodeOf(err))
	}
}

func TestMalformedFileIsParse(t *testing.T) {
	path := writeFile(t, "bad.json", "{not json")
	_, err := NewBuilder().WithFile(path).Build()
	if !errs.IsCode(err, errs.Parse) {
		t.Errorf("error code = %v, want parse", errs.CodeOf(err))
	}
}

func TestOptionalFileMissingIsFine(t *testing.T) {
	root, err := NewBuilder().WithOptionalFile("/nonexistent/cfg.yaml").Build()
	if err != nil {
		t.Fatalf("optional missing file should not error: %v", err)
	}
	if root == nil {
		t.Fatal("nil root")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "cfg.yaml", "threshold: 0.75\nmodifier:\n  short_text_delta: 0.05\n")

	t.Setenv("LOOM_THRESHOLD", "0.8")
	t.Setenv("LOOM_MODIFIER_SHORT__TEXT__DELTA", "0.1")
	t.Setenv("UNRELATED_THRESHOLD", "0.1")

	root, err := NewBuilder().WithFile(path).WithEnv("LOOM").Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var cfg scoreSection
	if err := root.Section("").Bind(&cfg); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if cfg.Threshold != 0.8 {
		t.Errorf("env should override threshold: got %f", cfg.Threshold)
	}
	if cfg.Modifier.ShortTextDelta != 0.1 {
		t.Errorf("double underscore should map to literal underscore: got %f", cfg.Modifier.ShortTextDelta)
	}
}

func TestEnvKeyMapping(t *testing.T) {
	tests := []struct {
		key  string
		want string
		ok   bool
	}{
		{"LOOM_LAYERS_SCORE_THRESHOLD", "layers.score.threshold", true},
		{"LOOM_MODIFIER_SHORT__TEXT__DELTA", "modifier.short_text_delta", true},
		{"OTHER_THRESHOLD", "", false},
		{"LOOM_", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := envKey(tt.key, "LOOM_")
			if ok != tt.ok || got != tt.want {
				t.Errorf("envKey(%q) = %q, %v; want %q, %v", tt.key, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestEnvValueTyping(t *testing.T) {
	if v := envValue("true"); v.Kind().String() != "bool" {
		t.Errorf("true parsed as %v", v.Kind())
	}
	if v := envValue("42"); v.Kind().String() != "int" {
		t.Errorf("42 parsed as %v", v.Kind())
	}
	if v := envValue("0.8"); v.Kind().String() != "float" {
		t.Errorf("0.8 parsed as %v", v.Kind())
	}
	if v := envValue("hello"); v.Kind().String() != "string" {
		t.Errorf("hello parsed as %v", v.Kind())
	}
}

func TestSectionMissingIsNotFound(t *testing.T) {
	path := writeFile(t, "cfg.yaml", "threshold: 0.75\n")
	root, err := NewBuilder().WithFile(path).Build()
	if err != nil {
		t.Fatal(err)
	}

	var cfg scoreSection
	err = root.Section("layers.score").Bind(&cfg)
	if !errs.IsCode(err, errs.NotFound) {
		t.Errorf("error code = %v, want not_found", errs.CodeOf(err))
	}
}
