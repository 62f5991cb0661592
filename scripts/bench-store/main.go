// bench-store measures the diagnostics store's array codec throughput and
// resident memory while writing and reading synthetic [time, y, x] fields at
// production grid sizes.
//
// Usage:
//
//	go run ./scripts/bench-store --out /tmp/bench-store --ny 1080 --nx 1440 \
//	  --records 12 --rounds 3 --profile-dir docs/profiles/store
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/ctessum/sparse"

	"github.com/tidewater-labs/oceanstat/internal/store"
)

const bytesPerElement = 8

func main() {
	outDir := flag.String("out", "", "Directory for the benchmark store")
	ny := flag.Int("ny", 1080, "Meridional grid extent")
	nx := flag.Int("nx", 1440, "Zonal grid extent")
	records := flag.Int("records", 12, "Records per synthetic field")
	rounds := flag.Int("rounds", 3, "Write/read rounds")
	profileDir := flag.String("profile-dir", "", "Directory to write heap profiles")
	cpuProfile := flag.Bool("cpu-profile", false, "Write CPU profile to profile-dir/cpu.prof")

	flag.Parse()

	if *outDir == "" {
		log.Fatal("--out is required")
	}

	if *profileDir != "" {
		if err := os.MkdirAll(*profileDir, 0o755); err != nil {
			log.Fatalf("mkdir profile-dir: %v", err)
		}
	}

	if *cpuProfile {
		if *profileDir == "" {
			log.Fatal("--cpu-profile requires --profile-dir")
		}

		cpuPath := filepath.Join(*profileDir, "cpu.prof")

		cpuFile, cpuErr := os.Create(cpuPath)
		if cpuErr != nil {
			log.Fatalf("create cpu profile: %v", cpuErr)
		}
		defer cpuFile.Close()

		if startErr := pprof.StartCPUProfile(cpuFile); startErr != nil {
			log.Fatalf("start cpu profile: %v", startErr)
		}

		defer pprof.StopCPUProfile()

		log.Printf("CPU profiling enabled -> %s", cpuPath)
	}

	st := store.New(*outDir)

	logicalBytes := int64(*records) * int64(*ny) * int64(*nx) * bytesPerElement
	log.Printf("field shape [%d, %d, %d], %.1f MB decoded", *records, *ny, *nx, float64(logicalBytes)/1e6)

	// Heap measurements at phase boundaries.
	type heapSnapshot struct {
		label     string
		heapInUse uint64
		heapSys   uint64
		heapIdle  uint64
	}

	var snapshots []heapSnapshot

	takeSnapshot := func(label string) {
		runtime.GC()
		runtime.GC()

		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		snapshots = append(snapshots, heapSnapshot{
			label:     label,
			heapInUse: m.HeapInuse,
			heapSys:   m.HeapSys,
			heapIdle:  m.HeapIdle,
		})
		log.Printf("  [heap] %-30s inuse=%6.1f MB  sys=%6.1f MB  idle=%6.1f MB",
			label, float64(m.HeapInuse)/1e6, float64(m.HeapSys)/1e6, float64(m.HeapIdle)/1e6)
	}

	writeHeapProfile := func(name string) {
		if *profileDir == "" {
			return
		}

		runtime.GC()
		runtime.GC()

		path := filepath.Join(*profileDir, name)

		f, ferr := os.Create(path)
		if ferr != nil {
			log.Printf("warning: create heap profile %s: %v", path, ferr)

			return
		}
		defer f.Close()

		if perr := pprof.WriteHeapProfile(f); perr != nil {
			log.Printf("warning: write heap profile %s: %v", path, perr)
		}
	}

	type roundResult struct {
		saveDur    time.Duration
		loadDur    time.Duration
		compressed int64
	}

	results := make([]roundResult, 0, *rounds)

	takeSnapshot("before_any_round")
	writeHeapProfile("heap_before_any_round.prof")

	for round := range *rounds {
		field := syntheticField(*records, *ny, *nx)
		basename := fmt.Sprintf("field_%d", round)

		log.Printf("round %d/%d: saving %s", round+1, *rounds, basename)

		before := storeSize(*outDir)

		saveStart := time.Now()

		if err := st.SaveArray("bench", basename, field); err != nil {
			log.Fatalf("save array: %v", err)
		}

		saveDur := time.Since(saveStart)

		takeSnapshot(fmt.Sprintf("round_%d_after_save", round+1))

		loadStart := time.Now()

		loaded, err := st.LoadArray("bench", basename)
		if err != nil {
			log.Fatalf("load array: %v", err)
		}

		loadDur := time.Since(loadStart)

		if len(loaded.Elements) != len(field.Elements) {
			log.Fatalf("round-trip length mismatch: wrote %d, read %d",
				len(field.Elements), len(loaded.Elements))
		}

		takeSnapshot(fmt.Sprintf("round_%d_after_load", round+1))
		writeHeapProfile(fmt.Sprintf("heap_round_%d.prof", round+1))

		results = append(results, roundResult{
			saveDur:    saveDur,
			loadDur:    loadDur,
			compressed: storeSize(*outDir) - before,
		})
	}

	takeSnapshot("after_all_rounds")

	// Print summary tables.
	fmt.Println()
	fmt.Println("=== Heap Memory Timeline ===")
	fmt.Printf("%-35s %10s %10s %10s\n", "Phase", "InUse(MB)", "Sys(MB)", "Idle(MB)")
	fmt.Println("-----------------------------------+----------+----------+----------")

	for _, s := range snapshots {
		fmt.Printf("%-35s %10.1f %10.1f %10.1f\n",
			s.label, float64(s.heapInUse)/1e6, float64(s.heapSys)/1e6, float64(s.heapIdle)/1e6)
	}

	fmt.Println()
	fmt.Println("=== Codec Throughput ===")
	fmt.Printf("%-8s %10s %10s %12s %12s %8s\n",
		"Round", "Save(s)", "Load(s)", "Write MB/s", "Read MB/s", "Ratio")
	fmt.Println("--------+----------+----------+------------+------------+--------")

	mb := float64(logicalBytes) / 1e6
	for i, r := range results {
		ratio := math.NaN()
		if r.compressed > 0 {
			ratio = float64(logicalBytes) / float64(r.compressed)
		}

		fmt.Printf("%-8d %10.2f %10.2f %12.1f %12.1f %7.1fx\n",
			i+1, r.saveDur.Seconds(), r.loadDur.Seconds(),
			mb/r.saveDur.Seconds(), mb/r.loadDur.Seconds(), ratio)
	}
}

// syntheticField fills a [records, ny, nx] array with smooth waves, which
// compress like gridded geophysical fields rather than random noise.
func syntheticField(records, ny, nx int) *sparse.DenseArray {
	field := sparse.ZerosDense(records, ny, nx)

	for idx := range field.Elements {
		field.Elements[idx] = math.Sin(float64(idx) / 97)
	}

	return field
}

// storeSize sums the on-disk bytes under dir.
func storeSize(dir string) int64 {
	var total int64

	_ = filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}

		total += info.Size()

		return nil
	})

	return total
}
