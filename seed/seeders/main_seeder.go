package seeders

import (
	"log"

	"gorm.io/gorm"
)

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	db *gorm.DB
}

// NewMainSeeder creates a new main seeder
func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{db: db}
}

// SeedAll runs all seeders in the correct order
func (s *MainSeeder) SeedAll() error {
	log.Println("Starting database seeding...")

	officialSeeder := NewOfficialSeeder(s.db)
	if err := officialSeeder.SeedOfficials(); err != nil {
		log.Printf("Official seeding failed: %v", err)
		return err
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedOfficialsOnly seeds just the municipal official accounts
func (s *MainSeeder) SeedOfficialsOnly() error {
	return NewOfficialSeeder(s.db).SeedOfficials()
}
