package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if cfg.DefaultLanguage != DefaultLanguage || cfg.Model != DefaultModel {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadInvalidJSONReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if cfg.DefaultLanguage != DefaultLanguage {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadFillsUnsetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	if err := os.WriteFile(path, []byte(`{"system_prompt":"jawab singkat"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SystemPrompt != "jawab singkat" {
		t.Errorf("SystemPrompt = %q", cfg.SystemPrompt)
	}
	if cfg.DefaultLanguage != DefaultLanguage || cfg.Model != DefaultModel {
		t.Errorf("unset fields not defaulted: %+v", cfg)
	}
	if cfg.Temperature != nil || cfg.MaxTokens != nil {
		t.Errorf("unset sampling knobs should stay nil: %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dengar.json")
	temp := 0.4
	tokens := 512
	in := Config{
		DefaultLanguage: "en-US",
		Model:           "llama3:8b",
		SystemPrompt:    "be brief",
		Temperature:     &temp,
		MaxTokens:       &tokens,
	}
	if err := Save(path, in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.DefaultLanguage != "en-US" || out.Model != "llama3:8b" || out.SystemPrompt != "be brief" {
		t.Errorf("round trip: %+v", out)
	}
	if out.Temperature == nil || *out.Temperature != 0.4 {
		t.Errorf("Temperature = %v", out.Temperature)
	}
	if out.MaxTokens == nil || *out.MaxTokens != 512 {
		t.Errorf("MaxTokens = %v", out.MaxTokens)
	}
}
