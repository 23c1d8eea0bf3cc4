package main

import (
	"fmt"
	"strings"

	"bapp/models"

	"golang.org/x/crypto/bcrypt"
)

// RegisterUser creates a user with the given role, creating the role row if
// it is missing.
func RegisterUser(username, password, name, company, roleName string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username required")
	}
	if len(password) < 6 { // basic password policy
		return fmt.Errorf("password too short (min 6)")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = username
	}
	// pre-check existing (optimistic)
	var existing models.User
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		return fmt.Errorf("user already exists")
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	role := models.Role{Name: roleName}
	if err := db.Where("name = ?", roleName).FirstOrCreate(&role).Error; err != nil {
		return fmt.Errorf("failed to ensure %s role: %w", roleName, err)
	}
	rid := role.ID
	user := models.User{
		Username:       username,
		HashedPassword: hashedPassword,
		Name:           name,
		Company:        strings.TrimSpace(company),
		RoleID:         &rid,
	}
	if err := db.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) { // race condition after initial check
			return fmt.Errorf("user already exists")
		}
		return err
	}
	return nil
}

func Authenticate(username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		return models.User{}, fmt.Errorf("invalid credentials")
	}
	return user, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}
