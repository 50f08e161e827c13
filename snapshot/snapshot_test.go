package snapshot

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Hakuto4838/SkipListKV/internal/logging"
	"github.com/Hakuto4838/SkipListKV/skiplist/kvlist"
)

func newList() *kvlist.SkipList[int, string] {
	return kvlist.NewWithOptions[int, string](kvlist.Options{MaxLevel: 10, Seed: 42})
}

func TestSaveRestoreAllCompressions(t *testing.T) {
	src := newList()
	for i := 0; i < 1000; i++ {
		src.Insert(i*7, strings.Repeat("value", i%5+1))
	}

	var digests []uint64
	for _, c := range []Compression{None, Snappy, Zstd, LZ4} {
		t.Run(c.String(), func(t *testing.T) {
			cfg := Config{Dir: filepath.Join(t.TempDir(), "store"), File: "dumpFile", Compression: c}

			saved, err := Save[int, string](src, kvlist.IntStringCodec{}, cfg, nil)
			if err != nil {
				t.Fatalf("Save: %v", err)
			}
			if saved.Records != 1000 {
				t.Errorf("saved %d records, want 1000", saved.Records)
			}

			dst := newList()
			loaded, restored, err := Restore[int, string](dst, kvlist.IntStringCodec{}, cfg, nil)
			if err != nil {
				t.Fatalf("Restore: %v", err)
			}
			if loaded.Inserted != 1000 || loaded.Malformed != 0 || loaded.Duplicates != 0 {
				t.Errorf("loaded = %+v", loaded)
			}
			if restored.Digest != saved.Digest || restored.Bytes != saved.Bytes {
				t.Errorf("restored %+v, saved %+v", restored, saved)
			}
			for k, v := range src.All() {
				if got, ok := dst.Search(k); !ok || got != v {
					t.Fatalf("Search(%d) = (%q, %v), want %q", k, got, ok, v)
				}
			}

			fd, err := FileDigest(cfg)
			if err != nil {
				t.Fatalf("FileDigest: %v", err)
			}
			if fd != saved.Digest {
				t.Errorf("FileDigest = %016x, want %016x", fd, saved.Digest)
			}
			digests = append(digests, saved.Digest)
		})
	}
	for i := 1; i < len(digests); i++ {
		if digests[i] != digests[0] {
			t.Errorf("digest differs across compressions: %016x vs %016x", digests[i], digests[0])
		}
	}
}

func TestPlainSnapshotIsTextLines(t *testing.T) {
	sl := newList()
	sl.Insert(3, "a")
	sl.Insert(12, "c")
	sl.Insert(11, "b")
	sl.Delete(11)

	cfg := Config{Dir: t.TempDir(), File: "dumpFile"}
	if _, err := Save[int, string](sl, kvlist.IntStringCodec{}, cfg, nil); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(cfg.Path())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "3:a\n12:c\n" {
		t.Errorf("snapshot = %q", data)
	}
	d, _ := Digest(bytes.NewReader(data))
	fd, _ := FileDigest(cfg)
	if d != fd {
		t.Errorf("Digest = %016x, FileDigest = %016x", d, fd)
	}
}

type failingDumper struct{}

func (failingDumper) Dump(w io.Writer, codec kvlist.Codec[int, string]) (int, error) {
	io.WriteString(w, "1:partial\n")
	return 1, errors.New("boom")
}

func TestFailedSaveKeepsPreviousSnapshot(t *testing.T) {
	cfg := Config{Dir: t.TempDir(), File: "dumpFile"}
	sl := newList()
	sl.Insert(1, "old")
	if _, err := Save[int, string](sl, kvlist.IntStringCodec{}, cfg, nil); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := Save[int, string](failingDumper{}, kvlist.IntStringCodec{}, cfg, nil); err == nil {
		t.Fatal("Save with failing dumper returned nil error")
	}
	data, err := os.ReadFile(cfg.Path())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "1:old\n" {
		t.Errorf("snapshot = %q, want previous content", data)
	}
	entries, _ := os.ReadDir(cfg.Dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

type closeRecorder struct {
	io.WriteCloser
	closed int
}

func (c *closeRecorder) Close() error {
	c.closed++
	return c.WriteCloser.Close()
}

func TestFailedSaveClosesCompressionStream(t *testing.T) {
	var streams []*closeRecorder
	openWriter = func(c Compression, w io.Writer) (io.WriteCloser, error) {
		wc, err := newWriter(c, w)
		if err != nil {
			return nil, err
		}
		r := &closeRecorder{WriteCloser: wc}
		streams = append(streams, r)
		return r, nil
	}
	t.Cleanup(func() { openWriter = newWriter })

	cfg := Config{Dir: t.TempDir(), File: "dumpFile", Compression: Zstd}
	if _, err := Save[int, string](failingDumper{}, kvlist.IntStringCodec{}, cfg, nil); err == nil {
		t.Fatal("Save with failing dumper returned nil error")
	}
	sl := newList()
	sl.Insert(1, "ok")
	if _, err := Save[int, string](sl, kvlist.IntStringCodec{}, cfg, nil); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if len(streams) != 2 {
		t.Fatalf("opened %d streams, want 2", len(streams))
	}
	for i, r := range streams {
		if r.closed != 1 {
			t.Errorf("stream %d closed %d times, want 1", i, r.closed)
		}
	}
	entries, _ := os.ReadDir(cfg.Dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestRestoreMissingFile(t *testing.T) {
	cfg := Config{Dir: t.TempDir(), File: "absent"}
	_, _, err := Restore[int, string](newList(), kvlist.IntStringCodec{}, cfg, nil)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Restore err = %v, want os.ErrNotExist", err)
	}
}

func TestRestoreLogsMalformedLines(t *testing.T) {
	cfg := Config{Dir: t.TempDir(), File: "dumpFile"}
	if err := os.WriteFile(cfg.Path(), []byte("1:a\nbroken\n2:b\n1:dup\n"), 0644); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	logger := logging.NewLogger(&buf, logging.LevelWarn)
	sl := newList()
	loaded, stats, err := Restore[int, string](sl, kvlist.IntStringCodec{}, cfg, logger)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if loaded.Inserted != 2 || loaded.Malformed != 1 || loaded.Duplicates != 1 {
		t.Errorf("loaded = %+v", loaded)
	}
	if stats.Records != 4 {
		t.Errorf("stats.Records = %d, want 4", stats.Records)
	}
	if !strings.Contains(buf.String(), "skipped 1 malformed lines") {
		t.Errorf("log output = %q", buf.String())
	}
}

func TestConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Path() != filepath.Join("store", "dumpFile") {
		t.Errorf("default path = %q", cfg.Path())
	}
	if _, err := Save[int, string](newList(), kvlist.IntStringCodec{}, Config{Dir: t.TempDir()}, nil); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("Save without file err = %v", err)
	}
	bad := Config{Dir: t.TempDir(), File: "f", Compression: Compression(42)}
	if _, err := Save[int, string](newList(), kvlist.IntStringCodec{}, bad, nil); !errors.Is(err, ErrUnsupportedCompression) {
		t.Errorf("Save with bad compression err = %v", err)
	}
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		in      string
		want    Compression
		wantErr bool
	}{
		{"", None, false},
		{"none", None, false},
		{"Snappy", Snappy, false},
		{"zstd", Zstd, false},
		{" lz4 ", LZ4, false},
		{"bzip2", None, true},
	}
	for _, tt := range tests {
		got, err := ParseCompression(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseCompression(%q) = (%v, %v), want (%v, err=%v)", tt.in, got, err, tt.want, tt.wantErr)
		}
		if !got.IsSupported() {
			t.Errorf("%v reported unsupported", got)
		}
	}
}
