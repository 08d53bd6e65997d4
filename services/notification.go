package services

import (
	"fmt"
	"time"

	"github.com/raipur-smart-connect/raipur_api/model"
	"github.com/raipur-smart-connect/raipur_api/security"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// NotificationService records in-app notifications and fans out email copies
// for the ones serious enough to warrant it.
type NotificationService struct {
	context.DefaultService

	postgresSvc *PostgresService
	emailSvc    *EmailService
}

const NOTIFICATION_SVC = "notification_svc"

func (svc NotificationService) Id() string {
	return NOTIFICATION_SVC
}

func (svc *NotificationService) Configure(ctx *context.Context) error {
	svc.postgresSvc = ctx.Service(POSTGRES_SVC).(*PostgresService)
	svc.emailSvc = ctx.Service(EMAIL_SVC).(*EmailService)
	return svc.DefaultService.Configure(ctx)
}

func (svc *NotificationService) Start() error {
	return nil
}

// ==================== SECURITY VIOLATIONS ====================

// NotifySecurityViolation stores an in-app notification for the user and
// emails them when the violation escalated into a block. The caller runs this
// off the request path; errors here never affect enforcement.
func (svc *NotificationService) NotifySecurityViolation(userID string, severity security.Severity, reason, ip string, at time.Time) error {
	title, body := svc.violationMessage(severity, reason, ip, at)

	notification := &model.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Body:      body,
		Severity:  string(severity),
		CreatedAt: at,
	}

	if err := svc.postgresSvc.CreateNotification(notification); err != nil {
		return err
	}

	user, err := svc.postgresSvc.GetUser(userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Could not load user for violation email")
		return nil
	}
	if user.Email == "" {
		return nil
	}

	switch severity {
	case security.SeverityCritical:
		return svc.emailSvc.SendAccountBlockedEmail(user.Email, AccountBlockedEmailData{
			Username: user.Username,
			Reason:   reason,
			Time:     at.Format(time.RFC1123),
			Duration: int(security.BlockDuration.Minutes()),
		})
	case security.SeverityHigh, security.SeverityMedium:
		return svc.emailSvc.SendSecurityWarningEmail(user.Email, SecurityWarningEmailData{
			Username:    user.Username,
			Reason:      reason,
			Time:        at.Format(time.RFC1123),
			IP:          ip,
			Warnings:    warningCountFor(severity),
			MaxWarnings: security.MaxWarnings,
		})
	}
	return nil
}

func (svc *NotificationService) violationMessage(severity security.Severity, reason, ip string, at time.Time) (string, string) {
	switch severity {
	case security.SeverityCritical:
		return "Account temporarily blocked",
			fmt.Sprintf("Your account has been blocked for %d minutes after repeated violations. Reason: %s (IP %s at %s).",
				int(security.BlockDuration.Minutes()), reason, ip, at.Format(time.RFC1123))
	case security.SeverityHigh:
		return "Final warning",
			fmt.Sprintf("Final warning before a temporary block. Reason: %s (IP %s at %s).", reason, ip, at.Format(time.RFC1123))
	default:
		return "Security warning",
			fmt.Sprintf("Unusual activity was detected on your account. Reason: %s (IP %s at %s).", reason, ip, at.Format(time.RFC1123))
	}
}

func warningCountFor(severity security.Severity) int {
	if severity == security.SeverityHigh {
		return security.MaxWarnings - 1
	}
	return 1
}

// ==================== GENERAL NOTIFICATIONS ====================

func (svc *NotificationService) NotifyComplaintStatus(userID, complaintID, title, status string) error {
	notification := &model.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     "Complaint update",
		Body:      fmt.Sprintf("Your complaint %q is now %s.", title, status),
		Severity:  string(security.SeverityLow),
		CreatedAt: time.Now(),
	}

	if err := svc.postgresSvc.CreateNotification(notification); err != nil {
		return err
	}

	go func() {
		user, err := svc.postgresSvc.GetUser(userID)
		if err != nil || user.Email == "" {
			return
		}
		if err := svc.emailSvc.SendComplaintStatusEmail(user.Email, user.Username, title, status, complaintID); err != nil {
			log.WithError(err).WithField("user_id", userID).Warn("Failed to send complaint status email")
		}
	}()

	return nil
}

func (svc *NotificationService) UserNotifications(userID string, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return svc.postgresSvc.GetUserNotifications(userID, limit)
}

func (svc *NotificationService) MarkRead(id, userID string) error {
	return svc.postgresSvc.MarkNotificationRead(id, userID)
}
