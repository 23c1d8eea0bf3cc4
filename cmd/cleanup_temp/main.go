// Command cleanup_temp removes PDF export artifacts that a crashed or killed
// server left in UPLOAD_BASE/temp.
package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"bapp/config"
	"bapp/pkg/storage"
)

func main() {
	maxAge := flag.Duration("max-age", 0, "remove artifacts older than this (default TEMP_MAX_AGE)")
	dryRun := flag.Bool("dry-run", false, "only list what would be removed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	age := cfg.TempMaxAge
	if *maxAge > 0 {
		age = *maxAge
	}
	dir := filepath.Join(cfg.UploadBase, storage.TempDir)
	removed, err := storage.SweepTemp(dir, age, time.Now(), *dryRun)
	for _, p := range removed {
		if *dryRun {
			fmt.Println("would remove", p)
		} else {
			fmt.Println("removed", p)
		}
	}
	if err != nil {
		log.Fatalf("cleanup %s: %v", dir, err)
	}
	fmt.Printf("%d artifact(s) older than %s in %s\n", len(removed), age, dir)
}
