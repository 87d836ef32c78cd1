package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present")
	if err := os.WriteFile(present, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if !fileExists(present) {
		t.Fatal("expected fileExists to report true for an existing file")
	}
	if fileExists(filepath.Join(dir, "absent")) {
		t.Fatal("expected fileExists to report false for a missing file")
	}
}

func TestReadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# a comment\nRELAYMERE_LISTEN=127.0.0.1\n\nRELAYMERE_PORT=4444\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	kv, err := readDotEnv(path)
	if err != nil {
		t.Fatalf("readDotEnv: %v", err)
	}
	if kv["RELAYMERE_LISTEN"] != "127.0.0.1" {
		t.Fatalf("RELAYMERE_LISTEN = %q", kv["RELAYMERE_LISTEN"])
	}
	if kv["RELAYMERE_PORT"] != "4444" {
		t.Fatalf("RELAYMERE_PORT = %q", kv["RELAYMERE_PORT"])
	}
	if len(kv) != 2 {
		t.Fatalf("expected 2 entries (comment and blank line skipped), got %d", len(kv))
	}
}

func TestEnvKVIncludesAppName(t *testing.T) {
	cfg := C{AppName: "relaymere", Port: 3334}
	kvs := EnvKV(cfg)
	found := false
	for _, kv := range kvs {
		if kv.Key == "RELAYMERE_APP_NAME" {
			found = true
			if kv.Value != "relaymere" {
				t.Fatalf("RELAYMERE_APP_NAME value = %q", kv.Value)
			}
		}
	}
	if !found {
		t.Fatal("expected RELAYMERE_APP_NAME in EnvKV output")
	}
}
