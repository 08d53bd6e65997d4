package seeders

import (
	"log"
	"os"
	"time"

	"github.com/raipur-smart-connect/raipur_api/model"
	"github.com/raipur-smart-connect/raipur_api/shared"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// OfficialSeeder creates the municipal official accounts that triage
// complaints and manage the security admin surface.
type OfficialSeeder struct {
	db *gorm.DB
}

func NewOfficialSeeder(db *gorm.DB) *OfficialSeeder {
	return &OfficialSeeder{db: db}
}

func (s *OfficialSeeder) SeedOfficials() error {
	var existing model.User
	if err := s.db.Where("role = ?", shared.RoleOfficial).First(&existing).Error; err == nil {
		log.Println("Official user already exists, skipping official seeding")
		return nil
	}

	password := os.Getenv("SEED_OFFICIAL_PASSWORD")
	if password == "" {
		password = "ChangeMe123!"
		log.Println("SEED_OFFICIAL_PASSWORD not set, using default password; change it after first login")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now()
	official := model.User{
		ID:        uuid.New().String(),
		Email:     "nodal.officer@rmc.raipur.gov.in",
		Username:  "rmc_nodal_officer",
		Password:  string(hashedPassword),
		Role:      shared.RoleOfficial,
		Ward:      "Raipur Municipal Corporation HQ",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.Create(&official).Error; err != nil {
		return err
	}

	log.Printf("Seeded official account: %s", official.Username)
	return nil
}
