package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

type validatedConfig struct {
	Port int `yaml:"port"`
}

var errBadPort = errors.New("port out of range")

func (c *validatedConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errBadPort
	}
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

func TestLoad(t *testing.T) {
	path := writeFile(t, "name: corkboard\nport: 9090\n")

	var cfg testConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "corkboard" || cfg.Port != 9090 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("CORKBOARD_TEST_NAME", "from-env")
	path := writeFile(t, "name: ${CORKBOARD_TEST_NAME}\n")

	var cfg testConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "from-env" {
		t.Errorf("name = %q", cfg.Name)
	}
}

func TestLoadMissingFile(t *testing.T) {
	var cfg testConfig
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &cfg); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeFile(t, "name: [unclosed\n")
	var cfg testConfig
	if err := Load(path, &cfg); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadRunsValidation(t *testing.T) {
	path := writeFile(t, "port: 0\n")
	var cfg validatedConfig
	if err := Load(path, &cfg); !errors.Is(err, errBadPort) {
		t.Errorf("err = %v, want errBadPort", err)
	}

	path = writeFile(t, "port: 8080\n")
	if err := Load(path, &cfg); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}
