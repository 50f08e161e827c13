package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/Hakuto4838/SkipListKV/internal/logging"
	"github.com/Hakuto4838/SkipListKV/skiplist"
	"github.com/Hakuto4838/SkipListKV/skiplist/analyTool"
	"github.com/Hakuto4838/SkipListKV/skiplist/kvlist"
	"github.com/Hakuto4838/SkipListKV/snapshot"
)

type entry struct {
	key   int
	value string
}

var demoEntries = []entry{
	{3, "而不用克己工夫也"},
	{11, "事以秘成"},
	{12, "尽人事知天命"},
	{13, "憾无穷"},
	{14, "人生长恨水长东"},
	{15, "天涯去后"},
	{16, "乡关外"},
	{17, "听风声诉幽怀"},
	{18, "繁华落尽终是一场空"},
	{19, "方可立得住"},
}

type options struct {
	snap     snapshot.Config
	maxLevel int
	seed     int64
	load     bool
}

func main() {
	var opts options
	var compression string
	var logLevel string
	opts.snap = snapshot.DefaultConfig()

	flag.StringVar(&opts.snap.Dir, "store", opts.snap.Dir, "snapshot directory")
	flag.StringVar(&opts.snap.File, "file", opts.snap.File, "snapshot file name inside -store")
	flag.IntVar(&opts.maxLevel, "max-level", 10, "skip list max level")
	flag.Int64Var(&opts.seed, "seed", time.Now().UnixNano(), "seed for level generation")
	flag.StringVar(&compression, "compression", "none", "snapshot compression: none, snappy, zstd, lz4")
	flag.StringVar(&logLevel, "log-level", "info", "log level: error, warn, info, debug")
	flag.BoolVar(&opts.load, "load", false, "load the existing snapshot before running the demo")
	flag.Parse()

	var err error
	if opts.snap.Compression, err = snapshot.ParseCompression(compression); err != nil {
		log.Fatalf("%v", err)
	}
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := run(os.Stdout, opts, logging.NewDefaultLogger(level)); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(w io.Writer, opts options, logger logging.Logger) error {
	sl := kvlist.NewWithOptions[int, string](kvlist.Options{
		MaxLevel: opts.maxLevel,
		Seed:     opts.seed,
		Logger:   logger,
	})

	if opts.load {
		loaded, _, err := snapshot.Restore[int, string](sl, kvlist.IntStringCodec{}, opts.snap, logger)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logger.Warnf(logging.NSDemo+"no snapshot at %s, starting empty", opts.snap.Path())
		case err != nil:
			return err
		default:
			fmt.Fprintf(w, "loaded %d records from %s\n", loaded.Inserted, opts.snap.Path())
		}
	}

	for _, e := range demoEntries {
		if sl.Insert(e.key, e.value) == skiplist.AlreadyExists {
			fmt.Fprintf(w, "key: %d, exist\n", e.key)
		}
	}

	stats, err := snapshot.Save[int, string](sl, kvlist.IntStringCodec{}, opts.snap, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "dump %d records to %s\n", stats.Records, opts.snap.Path())
	fmt.Fprintf(w, "skip_list size: %d\n", sl.Size())

	for _, key := range []int{9, 18, 29} {
		if v, ok := sl.Search(key); ok {
			fmt.Fprintf(w, "Find key: %d, value: %s\n", key, v)
		} else {
			fmt.Fprintf(w, "No key: %d in the skip list\n", key)
		}
	}

	if err := display(w, sl); err != nil {
		return err
	}

	for _, key := range []int{7, 19} {
		if sl.Delete(key) {
			fmt.Fprintf(w, "Successfully delete key %d\n", key)
		}
	}
	fmt.Fprintf(w, "skip_list size: %d\n", sl.Size())
	return display(w, sl)
}

func display(w io.Writer, sl *kvlist.SkipList[int, string]) error {
	fmt.Fprintln(w, "\n************************* Skip List *************************")
	if err := sl.Display(w); err != nil {
		return err
	}
	analyTool.RenderLevels[int, string](w, sl, 12)
	return nil
}
