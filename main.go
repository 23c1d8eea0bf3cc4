package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"bapp/config"
	"bapp/pkg/bapp"
	"bapp/pkg/pdfreport"
	"bapp/pkg/storage"
	"bapp/pkg/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/goodsign/monday"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	jwtSecret []byte
	logger    = logrus.StandardLogger()
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger = config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	jwtSecret = []byte(cfg.JWTSecret)
	if cfg.InsecureSecret() {
		logger.Warn("[config] JWT_SECRET not set, using the development secret")
	}

	// `./bapp migrate` runs AutoMigrate and seeding then exits.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		initDB(cfg)
		fmt.Println("migration and seeding completed")
		return
	}

	initDB(cfg)
	api, err := newBAPPAPI(cfg, db, logger)
	if err != nil {
		logger.Fatalf("init: %v", err)
	}

	r := gin.Default()
	r.Use(cors.New(corsConfig(cfg)))
	setupRoutes(r, api)

	logger.WithField("addr", cfg.HTTPAddr).Info("[server.start]")
	if err := r.Run(cfg.HTTPAddr); err != nil {
		logger.Fatalf("server: %v", err)
	}
}

// newBAPPAPI wires the stores, renderer and orchestrators behind /api.
func newBAPPAPI(cfg *config.Config, gdb *gorm.DB, log logrus.FieldLogger) (*bappAPI, error) {
	files, err := storage.NewLocalStorage(cfg.UploadBase)
	if err != nil {
		return nil, err
	}
	if err := files.EnsureLayout(); err != nil {
		return nil, err
	}
	st := store.New(gdb)
	opts := pdfreport.DefaultOptions()
	opts.Locale = monday.Locale(cfg.PDFLocale)
	opts.FontRegular = cfg.PDFFontRegular
	opts.FontBold = cfg.PDFFontBold
	return &bappAPI{
		attachments: bapp.NewAttachmentService(st, st, files, log),
		exporter:    bapp.NewExporter(st, pdfreport.New(opts), filepath.Join(files.Base(), storage.TempDir), log),
		files:       files,
		policy:      bapp.DefaultPolicy(cfg.SignatureMaxBytes, cfg.DocumentMaxBytes),
		log:         log,
	}, nil
}

func corsConfig(cfg *config.Config) cors.Config {
	cc := cors.DefaultConfig()
	cc.AllowHeaders = append(cc.AllowHeaders, "Authorization")
	cc.ExposeHeaders = []string{"Content-Disposition"}
	if len(cfg.CORSOrigins) == 0 || (len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = cfg.CORSOrigins
	}
	return cc
}
