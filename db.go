package main

import (
	"bapp/config"
	"bapp/models"
	"bapp/pkg/storage"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func initDB(cfg *config.Config) {
	var err error
	if cfg.DBDSN == "" {
		logger.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		logger.Fatalf("failed to connect postgres database: %v", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true). Any permission errors will be logged and ignored.
	shouldMigrate := cfg.AutoMigrate()
	// roles first so the users FK can be applied safely
	if shouldMigrate {
		if err := db.AutoMigrate(&models.Role{}); err != nil {
			logger.Warnf("migration warning (roles): %v", err)
		}
	}
	seedRoles()

	if shouldMigrate {
		// Migrate models individually so a failure on one doesn't block others
		for _, m := range []struct {
			table string
			model any
		}{
			{"users", &models.User{}},
			{"bapps", &models.BAPP{}},
			{"bapp_work_items", &models.BAPPWorkItem{}},
			{"bapp_attachments", &models.BAPPAttachment{}},
			{"refresh_tokens", &models.RefreshToken{}},
		} {
			if err := db.AutoMigrate(m.model); err != nil {
				logger.Warnf("migration warning (%s): %v", m.table, err)
			}
		}
	}
	seedDB(cfg)
}

// seedRoles inserts any missing default role. Failures are logged and the
// remaining roles are still attempted.
func seedRoles() {
	for _, r := range models.DefaultRoles() {
		var cnt int64
		if err := db.Model(&models.Role{}).Where("name = ?", r.Name).Count(&cnt).Error; err != nil {
			config.LogError(logger, "db", "seedRoles", logrus.Fields{"role": r.Name}, err)
			continue
		}
		if cnt == 0 {
			if err := db.Create(&r).Error; err != nil {
				config.LogError(logger, "db", "seedRoles", logrus.Fields{"role": r.Name}, err)
			}
		}
	}
}

func seedDB(cfg *config.Config) {
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", "admin").Count(&count).Error; err != nil {
		config.LogError(logger, "db", "seedDB", nil, err)
	} else if count == 0 {
		var role models.Role
		if err := db.Where("name = ?", models.RoleAdministrator).First(&role).Error; err != nil {
			logger.Errorf("failed to find administrator role: %v", err)
		}
		rid := role.ID
		admin := models.User{
			Username: "admin",
			Name:     "Administrator",
			RoleID:   &rid,
		}
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		admin.HashedPassword = hashedPassword
		if err := db.Create(&admin).Error; err != nil {
			logger.Errorf("failed to seed admin user: %v", err)
		} else {
			logger.Info("Seeded admin user: username=admin, password=admin123")
		}
	}
	ensureUploadBase(cfg)
}

// ensureUploadBase creates the upload base and its signatures, documents and temp directories.
func ensureUploadBase(cfg *config.Config) {
	s, err := storage.NewLocalStorage(cfg.UploadBase)
	if err == nil {
		err = s.EnsureLayout()
	}
	if err != nil {
		logger.Errorf("failed to create upload base dir %s: %v", cfg.UploadBase, err)
	}
}
