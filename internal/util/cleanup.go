package util

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
)

// TmpSuffix marks chapter folders that are still being written.
const TmpSuffix = "_tmp"

// InterruptContext returns a context cancelled on SIGINT/SIGTERM. On
// cancellation unfinished chapter folders under outputDir are removed
// before the process exits.
func InterruptContext(parent context.Context, outputDir string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sig:
		case <-ctx.Done():
			signal.Stop(sig)
			return
		}

		fmt.Println("\nInterrupt received. Cleaning up...")
		cancel()

		CleanupUnfinishedTempFolders(outputDir)
		RemoveIfEmpty(outputDir)
		fmt.Println("\nExiting due to interrupt.")

		os.Exit(1)
	}()

	return ctx, cancel
}

// CleanupUnfinishedTempFolders removes every *_tmp folder and returns the
// removed paths.
func CleanupUnfinishedTempFolders(outputDir string) []string {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil
	}

	var removed []string
	for _, e := range entries {
		if !e.IsDir() || !strings.HasSuffix(e.Name(), TmpSuffix) {
			continue
		}

		full := filepath.Join(outputDir, e.Name())
		if err := os.RemoveAll(full); err != nil {
			fmt.Printf("Error cleaning up %s: %v\n", full, err)
			continue
		}
		removed = append(removed, full)
	}

	return removed
}

func RemoveIfEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return false
	}

	return os.Remove(dir) == nil
}
