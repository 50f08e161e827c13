package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Hakuto4838/SkipListKV/datastream"
	"github.com/Hakuto4838/SkipListKV/internal/logging"
	"github.com/Hakuto4838/SkipListKV/skiplist"
	"github.com/Hakuto4838/SkipListKV/skiplist/analyTool"
	"github.com/Hakuto4838/SkipListKV/skiplist/kvlist"
	"github.com/Hakuto4838/SkipListKV/snapshot"
	"github.com/olekukonko/tablewriter"
)

const stressValue = "rain"

type config struct {
	threads     int
	count       int
	maxLevel    int
	keyRange    int
	seed        int64
	phase       string
	opsFile     string
	stepSamples int
	saveDir     string
	compression string
	logLevel    string
}

// phaseStats 一個階段的結果，hits/misses 依階段代表 找到/沒找到 或 插入/已存在
type phaseStats struct {
	name    string
	ops     int64
	hits    int64
	misses  int64
	deletes int64
	elapsed time.Duration
}

func main() {
	var cfg config
	flag.IntVar(&cfg.threads, "threads", 1, "number of concurrent goroutines")
	flag.IntVar(&cfg.count, "count", 100000, "total operations per phase, split evenly across threads")
	flag.IntVar(&cfg.maxLevel, "max-level", kvlist.DefaultMaxLevel, "skip list max level")
	flag.IntVar(&cfg.keyRange, "key-range", 0, "keys are drawn from [0, key-range); 0 means -count")
	flag.Int64Var(&cfg.seed, "seed", time.Now().UnixNano(), "seed for the skip list and the key generators")
	flag.StringVar(&cfg.phase, "phase", "both", "phases to run: insert, search or both")
	flag.StringVar(&cfg.opsFile, "ops", "", "replay an SLOPS1 operation file instead of the random phases")
	flag.IntVar(&cfg.stepSamples, "steps", 1000, "number of keys sampled to estimate search steps")
	flag.StringVar(&cfg.saveDir, "save", "", "directory to write a snapshot of the final list (empty to skip)")
	flag.StringVar(&cfg.compression, "compression", "none", "snapshot compression: none, snappy, zstd, lz4")
	flag.StringVar(&cfg.logLevel, "log-level", "warn", "log level: error, warn, info, debug")
	flag.Parse()

	level, err := logging.ParseLevel(cfg.logLevel)
	if err != nil {
		log.Fatalf("%v", err)
	}
	logger := logging.NewDefaultLogger(level)

	if cfg.threads <= 0 || cfg.count < 0 {
		log.Fatalf("invalid -threads or -count: threads=%d count=%d", cfg.threads, cfg.count)
	}
	if cfg.keyRange <= 0 {
		cfg.keyRange = max(cfg.count, 1)
	}

	sl := kvlist.NewWithOptions[int, string](kvlist.Options{
		MaxLevel: cfg.maxLevel,
		Seed:     cfg.seed,
		Logger:   logger,
	})

	var results []phaseStats
	if cfg.opsFile != "" {
		ops, err := datastream.ReadOpsFile(cfg.opsFile)
		if err != nil {
			log.Fatalf("read ops file %s: %v", cfg.opsFile, err)
		}
		fmt.Printf("ops_file: %s (%d ops)\n", cfg.opsFile, len(ops))
		results = append(results, runReplay(sl, datastream.NewSequenceModelFromOps(ops), cfg.threads))
	} else {
		switch strings.ToLower(cfg.phase) {
		case "insert":
			results = append(results, runInsert(sl, cfg))
		case "search":
			results = append(results, runSearch(sl, cfg))
		case "both":
			results = append(results, runInsert(sl, cfg), runSearch(sl, cfg))
		default:
			log.Fatalf("unknown -phase: %s", cfg.phase)
		}
	}

	printResults(cfg, results)
	printStructure(sl, cfg.stepSamples, cfg.seed)

	if cfg.saveDir != "" {
		comp, err := snapshot.ParseCompression(cfg.compression)
		if err != nil {
			log.Fatalf("%v", err)
		}
		scfg := snapshot.DefaultConfig()
		scfg.Dir = cfg.saveDir
		scfg.Compression = comp
		stats, err := snapshot.Save[int, string](sl, kvlist.IntStringCodec{}, scfg, logger)
		if err != nil {
			log.Fatalf("save snapshot: %v", err)
		}
		fmt.Printf("snapshot: %s records=%d bytes=%d digest=%016x\n", scfg.Path(), stats.Records, stats.FileBytes, stats.Digest)
	}

	if err := analyTool.CheckStruct[int, string](sl); err != nil {
		logger.Errorf(logging.NSStress+"structure check failed: %v", err)
		os.Exit(1)
	}
	fmt.Println("structure check: ok")
}

// runWorkers 每個 worker 分到 count/threads 筆，與原本的壓力測試切法相同
func runWorkers(cfg config, work func(tid int, r *rand.Rand, n int)) time.Duration {
	perThread := cfg.count / cfg.threads
	var wg sync.WaitGroup
	start := time.Now()
	for tid := 0; tid < cfg.threads; tid++ {
		wg.Add(1)
		go func(tid int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(cfg.seed + int64(tid) + 1))
			work(tid, r, perThread)
		}(tid)
	}
	wg.Wait()
	return time.Since(start)
}

func runInsert(sl *kvlist.SkipList[int, string], cfg config) phaseStats {
	var inserted, exists int64
	elapsed := runWorkers(cfg, func(tid int, r *rand.Rand, n int) {
		for i := 0; i < n; i++ {
			if sl.Insert(r.Intn(cfg.keyRange), stressValue) == skiplist.Inserted {
				atomic.AddInt64(&inserted, 1)
			} else {
				atomic.AddInt64(&exists, 1)
			}
		}
	})
	return phaseStats{
		name:    "insert",
		ops:     inserted + exists,
		hits:    inserted,
		misses:  exists,
		elapsed: elapsed,
	}
}

func runSearch(sl *kvlist.SkipList[int, string], cfg config) phaseStats {
	var found, missing int64
	elapsed := runWorkers(cfg, func(tid int, r *rand.Rand, n int) {
		for i := 0; i < n; i++ {
			if _, ok := sl.Search(r.Intn(cfg.keyRange)); ok {
				atomic.AddInt64(&found, 1)
			} else {
				atomic.AddInt64(&missing, 1)
			}
		}
	})
	return phaseStats{
		name:    "search",
		ops:     found + missing,
		hits:    found,
		misses:  missing,
		elapsed: elapsed,
	}
}

// runReplay 將操作序列切給各 worker 並行重播
func runReplay(sl *kvlist.SkipList[int, string], model *datastream.SequenceModel, threads int) phaseStats {
	var hits, misses, deletes int64
	var wg sync.WaitGroup
	start := time.Now()
	for _, part := range model.Split(threads) {
		wg.Add(1)
		go func(ops []datastream.Operation) {
			defer wg.Done()
			for _, op := range ops {
				key := int(op.Key)
				switch op.Type {
				case datastream.OpQuery:
					if sl.Contains(key) {
						atomic.AddInt64(&hits, 1)
					} else {
						atomic.AddInt64(&misses, 1)
					}
				case datastream.OpInsert:
					if sl.Insert(key, fmt.Sprintf("v%d", key)) == skiplist.Inserted {
						atomic.AddInt64(&hits, 1)
					} else {
						atomic.AddInt64(&misses, 1)
					}
				case datastream.OpDelete:
					sl.Delete(key)
					atomic.AddInt64(&deletes, 1)
				}
			}
		}(part)
	}
	wg.Wait()
	return phaseStats{
		name:    "replay",
		ops:     int64(model.Len()),
		hits:    hits,
		misses:  misses,
		deletes: deletes,
		elapsed: time.Since(start),
	}
}

func printResults(cfg config, results []phaseStats) {
	rows := make([][]string, 0, len(results))
	for _, s := range results {
		ms := float64(s.elapsed.Microseconds()) / 1000.0
		thr := "N/A"
		if s.elapsed > 0 {
			thr = fmt.Sprintf("%.2f", float64(s.ops)/s.elapsed.Seconds())
		}
		rows = append(rows, []string{
			s.name,
			fmt.Sprintf("%d", cfg.threads),
			fmt.Sprintf("%d", s.ops),
			fmt.Sprintf("%.3f", ms),
			thr,
			fmt.Sprintf("%d", s.hits),
			fmt.Sprintf("%d", s.misses),
			fmt.Sprintf("%d", s.deletes),
		})
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Phase", "Threads", "Ops", "Elapsed(ms)", "Ops/s", "Hit", "Miss", "Delete"})
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

func printStructure(sl *kvlist.SkipList[int, string], samples int, seed int64) {
	size, level := sl.GetMaxStats()
	fmt.Printf("size: %d, level: %d/%d\n", size, level, sl.MaxLevel())
	if size == 0 {
		return
	}
	analyTool.RenderLevels[int, string](os.Stdout, sl, 8)

	keys := sl.Keys()
	r := rand.New(rand.NewSource(seed))
	total := 0
	for i := 0; i < samples; i++ {
		step, _ := analyTool.FindStep[int, string](sl, keys[r.Intn(len(keys))])
		total += step
	}
	if samples > 0 {
		fmt.Printf("avg search steps: %.3f (over %d sampled keys)\n", float64(total)/float64(samples), samples)
	}
}
