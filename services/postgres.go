package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/raipur-smart-connect/raipur_api/model"
	"github.com/raipur-smart-connect/raipur_api/shared"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type PostgresService struct {
	context.DefaultService
	db *gorm.DB

	database string
}

const POSTGRES_SVC = "postgres_svc"

func (ds PostgresService) Id() string {
	return POSTGRES_SVC
}

func (ds PostgresService) Db() *gorm.DB {
	return ds.db
}

func (ds *PostgresService) Configure(ctx *context.Context) error {
	ds.database = os.Getenv("DATABASE_URL")
	if ds.database == "" {
		// Fallback to individual environment variables
		host := os.Getenv("DB_HOST")
		if host == "" {
			host = "localhost"
		}
		port := os.Getenv("DB_PORT")
		if port == "" {
			port = "5432"
		}
		user := os.Getenv("DB_USER")
		if user == "" {
			user = "postgres"
		}
		password := os.Getenv("DB_PASSWORD")
		if password == "" {
			password = "postgres"
		}
		dbname := os.Getenv("DB_NAME")
		if dbname == "" {
			dbname = "raipur_connect"
		}
		sslmode := os.Getenv("DB_SSLMODE")
		if sslmode == "" {
			sslmode = "disable"
		}

		ds.database = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			host, user, password, dbname, port, sslmode)
	}

	return ds.DefaultService.Configure(ctx)
}

func (ds *PostgresService) Start() (err error) {
	// Retry connection with exponential backoff
	maxRetries := 10
	retryDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Printf("Attempting to connect to database (attempt %d/%d)...", attempt, maxRetries)

		ds.db, err = gorm.Open(postgres.Open(ds.database), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})

		if err == nil {
			sqlDB, dbErr := ds.db.DB()
			if dbErr == nil {
				if pingErr := sqlDB.Ping(); pingErr == nil {
					log.Println("Successfully connected to database")
					break
				} else {
					err = pingErr
				}
			} else {
				err = dbErr
			}
		}

		if attempt == maxRetries {
			log.Printf("Failed to connect to database after %d attempts: %v", maxRetries, err)
			return err
		}

		log.Printf("Database connection failed: %v. Retrying in %v...", err, retryDelay)
		time.Sleep(retryDelay)

		retryDelay *= 2
		if retryDelay > 10*time.Second {
			retryDelay = 10 * time.Second
		}
	}

	models := []interface{}{
		&model.User{},
		&model.Complaint{},
		&model.Comment{},
		&model.Vote{},
		&model.Notification{},
		&model.TokenTransaction{},
	}

	if err = ds.db.AutoMigrate(models...); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *PostgresService) Shutdown() {
	if ds.db != nil {
		if sqlDB, err := ds.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func (ds *PostgresService) HandleError(err error) error {
	if err == nil {
		return nil
	}

	var statusCode int
	var errorType string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		statusCode = http.StatusNotFound
		errorType = "NOT_FOUND"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		statusCode = http.StatusConflict
		errorType = "CONFLICT"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		statusCode = http.StatusBadRequest
		errorType = "FOREIGN_KEY_VIOLATION"
	case errors.Is(err, gorm.ErrInvalidTransaction):
		statusCode = http.StatusInternalServerError
		errorType = "TRANSACTION_ERROR"
	default:
		if strings.Contains(err.Error(), "duplicate key value") {
			statusCode = http.StatusConflict
			errorType = "UNIQUE_CONSTRAINT"
		} else {
			statusCode = http.StatusInternalServerError
			errorType = "INTERNAL_ERROR"
		}
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	return shared.NewAppError(statusCode, errorType, err.Error())
}

// ==================== USERS ====================

func (ds *PostgresService) GetUser(id string) (*model.User, error) {
	var user model.User
	err := ds.db.Where("id = ?", id).First(&user).Error
	return &user, err
}

func (ds *PostgresService) GetUserByEmailOrUsername(emailOrUsername string) (*model.User, error) {
	var user model.User
	err := ds.db.Where("email = ? OR username = ?", emailOrUsername, emailOrUsername).First(&user).Error
	return &user, err
}

func (ds *PostgresService) CreateUser(user *model.User) error {
	return ds.db.Create(user).Error
}

func (ds *PostgresService) UpdateUser(user *model.User) error {
	return ds.db.Save(user).Error
}

// ==================== COMPLAINTS ====================

func (ds *PostgresService) CreateComplaint(complaint *model.Complaint) error {
	return ds.db.Create(complaint).Error
}

func (ds *PostgresService) GetComplaint(id string) (*model.Complaint, error) {
	var complaint model.Complaint
	err := ds.db.Where("id = ?", id).First(&complaint).Error
	return &complaint, err
}

func (ds *PostgresService) UpdateComplaint(complaint *model.Complaint) error {
	return ds.db.Save(complaint).Error
}

func (ds *PostgresService) ListComplaints(status, category, ward string, page, limit int) ([]model.Complaint, int64, error) {
	query := ds.db.Model(&model.Complaint{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if ward != "" {
		query = query.Where("ward = ?", ward)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var complaints []model.Complaint
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&complaints).Error
	return complaints, total, err
}

// ==================== COMMENTS & VOTES ====================

func (ds *PostgresService) CreateComment(comment *model.Comment) error {
	return ds.db.Create(comment).Error
}

func (ds *PostgresService) GetComplaintComments(complaintID string) ([]model.Comment, error) {
	var comments []model.Comment
	err := ds.db.Where("complaint_id = ?", complaintID).Order("created_at ASC").Find(&comments).Error
	return comments, err
}

func (ds *PostgresService) HasVoted(complaintID, userID string) (bool, error) {
	var count int64
	err := ds.db.Model(&model.Vote{}).
		Where("complaint_id = ? AND user_id = ?", complaintID, userID).
		Count(&count).Error
	return count > 0, err
}

// CastVote records the vote and bumps the complaint's upvote counter in one
// transaction.
func (ds *PostgresService) CastVote(vote *model.Vote) (int, error) {
	var upvotes int
	err := ds.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(vote).Error; err != nil {
			return err
		}

		var complaint model.Complaint
		if err := tx.Where("id = ?", vote.ComplaintID).First(&complaint).Error; err != nil {
			return err
		}
		complaint.Upvotes++
		complaint.UpdatedAt = time.Now()
		upvotes = complaint.Upvotes
		return tx.Save(&complaint).Error
	})
	return upvotes, err
}

// ==================== NOTIFICATIONS ====================

func (ds *PostgresService) CreateNotification(notification *model.Notification) error {
	return ds.db.Create(notification).Error
}

func (ds *PostgresService) GetUserNotifications(userID string, limit int) ([]model.Notification, error) {
	var notifications []model.Notification
	err := ds.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (ds *PostgresService) MarkNotificationRead(id, userID string) error {
	return ds.db.Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true).Error
}

// ==================== TOKEN LEDGER ====================

func (ds *PostgresService) CreateTokenTransaction(tx *model.TokenTransaction) error {
	return ds.db.Create(tx).Error
}

func (ds *PostgresService) GetTokenBalance(userID string) (int, error) {
	var balance *int
	err := ds.db.Model(&model.TokenTransaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ?", userID).
		Scan(&balance).Error
	if err != nil || balance == nil {
		return 0, err
	}
	return *balance, nil
}
