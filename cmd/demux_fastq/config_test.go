package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigFromJSON(t *testing.T) {
	c, err := configFromJSON([]byte(`{
		"inputs": ["r1.fq.gz"],
		"destinations": {"ACGT": "out.fq.gz"},
		"mismatches": 1,
		"threads": 4,
		"buffer_size": 4096
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Inputs) != 1 || c.Inputs[0] != "r1.fq.gz" {
		t.Errorf("inputs: %#v", c.Inputs)
	}
	if c.Destinations["ACGT"] != "out.fq.gz" {
		t.Errorf("destinations: %#v", c.Destinations)
	}
	if c.Mismatches != 1 || c.Threads != 4 || c.BufferSize != 4096 || c.Unbuffered {
		t.Errorf("config: %#v", c)
	}
}

func TestConfigFromJSONErrors(t *testing.T) {
	for _, data := range []string{
		`{"inputs": [`,
		`{"destinations": {}}`,
		`{"inputs": ["a.fq"], "threads": -1}`,
	} {
		if _, err := configFromJSON([]byte(data)); err == nil {
			t.Errorf("configFromJSON(%s): expected error", data)
		}
	}
}

func TestReadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"inputs": ["a.fq"], "unbuffered": true}`), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := readConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !c.Unbuffered {
		t.Errorf("unbuffered not set")
	}

	if _, err := readConfigFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Errorf("expected error for a missing file")
	}
}
