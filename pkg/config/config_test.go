package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	valid bool
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	s.valid = true
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "professor")
	path := writeFile(t, "name: ${SAMPLE_NAME}\nport: 8080\n")

	var s sample
	if err := Load(path, &s); err != nil {
		t.Fatal(err)
	}
	if s.Name != "professor" || s.Port != 8080 || !s.valid {
		t.Errorf("loaded = %+v", s)
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := writeFile(t, "name: x\nport: 0\n")

	var s sample
	err := Load(path, &s)
	if err == nil || !strings.Contains(err.Error(), "config validation failed") {
		t.Errorf("err = %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeFile(t, "name: [unterminated\n")

	var s sample
	if err := Load(path, &s); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadOptional_MissingFileKeepsDefaults(t *testing.T) {
	s := sample{Name: "default", Port: 9000}
	loaded, err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), &s)
	if err != nil {
		t.Fatal(err)
	}
	if loaded {
		t.Error("loaded should be false for a missing file")
	}
	if s.Name != "default" || !s.valid {
		t.Errorf("defaults = %+v", s)
	}
}

func TestLoadOptional_OverridesDefaults(t *testing.T) {
	path := writeFile(t, "port: 7000\n")

	s := sample{Name: "default", Port: 9000}
	loaded, err := LoadOptional(path, &s)
	if err != nil {
		t.Fatal(err)
	}
	if !loaded || s.Port != 7000 || s.Name != "default" {
		t.Errorf("loaded=%v sample=%+v", loaded, s)
	}
}
