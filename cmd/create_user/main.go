package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"bapp/models"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	name := flag.String("name", "", "display name (defaults to username)")
	company := flag.String("company", "", "company, for vendors")
	role := flag.String("role", models.RoleVendor, "role: administrator, vendor or direksi")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: go run ./cmd/create_user [-name N] [-company C] [-role R] <username> <password>")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() < 2 {
		flag.Usage()
		os.Exit(2)
	}
	username := flag.Arg(0)
	password := flag.Arg(1)

	valid := false
	for _, r := range models.DefaultRoles() {
		if r.Name == *role {
			valid = true
		}
	}
	if !valid {
		log.Fatalf("unknown role %q", *role)
	}

	_ = godotenv.Load()
	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in environment")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	// ensure the role exists
	r := models.Role{Name: *role}
	if err := db.Where("name = ?", *role).FirstOrCreate(&r).Error; err != nil {
		log.Fatalf("failed to ensure role %s: %v", *role, err)
	}

	// check existing
	var existing models.User
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		fmt.Printf("user %s already exists (id=%d)\n", username, existing.ID)
		os.Exit(0)
	}

	hpw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("bcrypt failed: %v", err)
	}
	if *name == "" {
		*name = username
	}
	rid := r.ID
	user := models.User{Username: username, HashedPassword: hpw, Name: *name, Company: *company, RoleID: &rid}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("failed to create user: %v", err)
	}
	fmt.Printf("created %s user %s id=%d\n", *role, username, user.ID)
}
