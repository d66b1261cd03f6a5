package core

import (
	"fmt"
	"strings"

	"github.com/jinzhu/gorm"
	"golang.org/x/crypto/bcrypt"
)

// Validate checks a coach before it is saved and collects errors per field.
func (coach *Coach) Validate(ormDB *gorm.DB) bool {
	coach.Errors = make(map[string]string)
	coach.Email = strings.ToLower(strings.TrimSpace(coach.Email))
	coach.Name = strings.TrimSpace(coach.Name)

	if coach.Name == "" {
		coach.Errors["name"] = "name empty"
	}
	if err := ValidateFormat(coach.Email); err != nil {
		coach.Errors["email"] = err.Error()
	}
	if coach.ID == 0 && coach.PasswordX == "" {
		coach.Errors["password"] = "password empty"
	}
	if coach.PasswordX != "" {
		if err := ValidatePassword(coach.PasswordX); err != nil {
			coach.Errors["password"] = err.Error()
		}
	}

	if coach.ID == 0 && coach.Errors["email"] == "" {
		existing := Coach{}
		ormDB.Where("email = ?", coach.Email).First(&existing)
		if existing.ID > 0 {
			coach.Errors["email"] = "email already registered"
		}
	}

	return len(coach.Errors) == 0
}

// Save hashes a new password if one was set and stores the coach.
func (coach *Coach) Save(ormDB *gorm.DB) error {
	if coach.PasswordX != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(coach.PasswordX), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		coach.Password = string(hash)
		coach.PasswordX = ""
	}

	if coach.ID == 0 {
		coach.IsActive = true
		coach.RegisteredAt = Now()
		return ormDB.Create(coach).Error
	}

	if coach.Password == "" {
		stored := Coach{}
		if err := ormDB.First(&stored, coach.ID).Error; err != nil {
			return err
		}
		coach.Password = stored.Password
	}
	return ormDB.Save(coach).Error
}

// CheckPassword reports whether password matches the stored hash.
func (coach *Coach) CheckPassword(password string) bool {
	if coach.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(coach.Password), []byte(password)) == nil
}
