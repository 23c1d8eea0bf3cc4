// Command render_bapp renders a BAPP from the database into a local PDF file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"bapp/pkg/bapp"
	"bapp/pkg/pdfreport"
	"bapp/pkg/store"

	"github.com/goodsign/monday"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	id := flag.Uint("id", 0, "BAPP id to render")
	out := flag.String("out", "", "output file (default BAPP_<number>.pdf in the current directory)")
	locale := flag.String("locale", string(monday.LocaleIdID), "locale for month names")
	font := flag.String("font", "", "TrueType font for text outside cp1252 (default PDF_FONT_REGULAR)")
	fontBold := flag.String("font-bold", "", "bold TrueType font (default PDF_FONT_BOLD, then -font)")
	flag.Parse()
	if *id == 0 {
		fmt.Fprintln(os.Stderr, "usage: go run ./cmd/render_bapp -id <bapp id> [-out file.pdf] [-locale id_ID]")
		os.Exit(2)
	}

	_ = godotenv.Load()
	if *font == "" {
		*font = os.Getenv("PDF_FONT_REGULAR")
	}
	if *fontBold == "" {
		*fontBold = os.Getenv("PDF_FONT_BOLD")
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set; export DB_DSN and retry")
		os.Exit(2)
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	report, err := store.New(db).FindReport(ctx, uint(*id))
	if errors.Is(err, bapp.ErrNotFound) {
		log.Fatalf("bapp %d not found", *id)
	}
	if err != nil {
		log.Fatalf("load bapp %d: %v", *id, err)
	}

	path := *out
	if path == "" {
		path = fmt.Sprintf("%s_%s.pdf", bapp.ReportPrefix, bapp.SanitizeNumber(report.BAPPNumber))
	}
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("create %s: %v", path, err)
	}
	opts := pdfreport.DefaultOptions()
	opts.Locale = monday.Locale(*locale)
	opts.FontRegular = *font
	opts.FontBold = *fontBold
	if err := pdfreport.New(opts).Render(report, bapp.ResolveSignatures(report), f); err != nil {
		f.Close()
		os.Remove(path)
		log.Fatalf("render: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("close %s: %v", path, err)
	}
	abs, _ := filepath.Abs(path)
	fmt.Printf("wrote %s (%d work items)\n", abs, len(report.WorkItems))
}
