package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Hakuto4838/SkipListKV/internal/logging"
	"github.com/Hakuto4838/SkipListKV/snapshot"
)

func testOptions(t *testing.T) options {
	snap := snapshot.DefaultConfig()
	snap.Dir = filepath.Join(t.TempDir(), "store")
	return options{snap: snap, maxLevel: 10, seed: 42}
}

func TestRunDemo(t *testing.T) {
	opts := testOptions(t)
	var out bytes.Buffer
	if err := run(&out, opts, logging.Discard); err != nil {
		t.Fatalf("run: %v", err)
	}
	text := out.String()
	for _, want := range []string{
		"dump 10 records",
		"skip_list size: 10",
		"No key: 9 in the skip list",
		"Find key: 18, value: 繁华落尽终是一场空",
		"No key: 29 in the skip list",
		"Successfully delete key 19",
		"skip_list size: 9",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Successfully delete key 7") {
		t.Error("deleting absent key 7 reported success")
	}

	data, err := os.ReadFile(opts.snap.Path())
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 10 || lines[0] != "3:而不用克己工夫也" || lines[9] != "19:方可立得住" {
		t.Errorf("snapshot lines = %q", lines)
	}
}

func TestRunDemoLoadsExistingSnapshot(t *testing.T) {
	opts := testOptions(t)
	opts.snap.Compression = snapshot.Zstd
	if err := run(&bytes.Buffer{}, opts, logging.Discard); err != nil {
		t.Fatalf("first run: %v", err)
	}

	opts.load = true
	var out bytes.Buffer
	if err := run(&out, opts, logging.Discard); err != nil {
		t.Fatalf("second run: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "loaded 10 records") {
		t.Errorf("output missing load line:\n%s", text)
	}
	if !strings.Contains(text, "key: 3, exist") {
		t.Errorf("reloaded keys should be reported as existing:\n%s", text)
	}
}

func TestRunDemoLoadMissingSnapshot(t *testing.T) {
	opts := testOptions(t)
	opts.load = true
	if err := run(&bytes.Buffer{}, opts, logging.Discard); err != nil {
		t.Fatalf("run with missing snapshot: %v", err)
	}
}
