package maint

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"twscache/internal/model"
	"twscache/internal/slogx"
	"twscache/internal/store"
)

// Job is one series file to compact.
type Job struct {
	Path string
}

// Result is sent by workers for fan-in.
type Result struct {
	Ok     bool
	Path   string
	Rows   int
	Reason string
}

// ScanSeriesFiles walks dir and returns a job per series file matching the
// codec extension. Temp files and hidden files are skipped.
func ScanSeriesFiles(dir, ext string) ([]Job, error) {
	var jobs []Job
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".tmp") {
			return nil
		}
		if strings.HasSuffix(name, "."+ext) {
			jobs = append(jobs, Job{Path: path})
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("maint: scan %s: %w", dir, err)
	}
	return jobs, nil
}

// CompactAll re-reads and re-writes every series file under dir through codec
// using a fixed worker pool. Compaction re-establishes the store invariants
// (no duplicate timestamps, ascending order, no zero-timestamp rows) and
// shrinks files grown by repeated incremental saves. A run report is written
// next to the data. Returns success and failure counts.
func CompactAll(dir string, codec store.Codec, workers int) (success, failed int, err error) {
	jobs, err := ScanSeriesFiles(dir, codec.Extension())
	if err != nil {
		return 0, 0, err
	}
	if len(jobs) == 0 {
		slog.Info("no series files to compact", "dir", dir)
		return 0, 0, nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	// Worker logs fan in through one channel so lines never interleave.
	lines := make(chan string, 1024)
	logger := slogx.NewChanLogger(lines, slog.LevelInfo)
	var logWg sync.WaitGroup
	logWg.Add(1)
	go func() {
		defer logWg.Done()
		for s := range lines {
			fmt.Println(s)
		}
	}()

	pending := make(chan Job, len(jobs))
	for _, j := range jobs {
		pending <- j
	}
	close(pending)

	results := make(chan Result, len(jobs))
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for job := range pending {
				rows, err := compactOne(job.Path, codec)
				if err != nil {
					logger.Error("compact fail", "path", job.Path, "reason", err.Error())
					results <- Result{Ok: false, Path: job.Path, Reason: err.Error()}
					continue
				}
				logger.Info("compact ok", "path", job.Path, "rows", rows)
				results <- Result{Ok: true, Path: job.Path, Rows: rows}
			}
		}()
	}
	wg.Wait()
	close(results)

	var successList []string
	var failedList []FailedEntry
	for r := range results {
		if r.Ok {
			success++
			successList = append(successList, r.Path)
		} else {
			failed++
			failedList = append(failedList, FailedEntry{Path: r.Path, Reason: r.Reason})
		}
	}

	if err := writeRunReport(dir, successList, failedList); err != nil {
		logger.Warn("could not write run report", "error", err)
	}
	logger.Info("compact done", "success", success, "failed", failed)

	close(lines)
	logWg.Wait()
	return success, failed, nil
}

// compactOne rewrites one series file in place: filter unusable rows, dedupe
// by timestamp keeping the last occurrence, sort ascending, write atomically.
func compactOne(path string, codec store.Codec) (int, error) {
	bars, err := codec.Read(path)
	if err != nil {
		return 0, fmt.Errorf("read: %w", err)
	}
	kept := make([]model.Bar, 0, len(bars))
	for _, b := range bars {
		if b.Timestamp > 0 {
			kept = append(kept, b)
		}
	}
	merged := store.Merge(nil, kept)
	tmp := path + ".tmp"
	if err := codec.Write(tmp, merged); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("write: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("rename: %w", err)
	}
	return len(merged), nil
}

