package services

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/raipur-smart-connect/raipur_api/dto"
	"github.com/raipur-smart-connect/raipur_api/security"
	"github.com/raipur-smart-connect/raipur_api/shared"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// ErrDuplicateSubmission is returned by ScreenSubmission when the same user
// resubmits near-identical content inside the duplicate window.
var ErrDuplicateSubmission = errors.New("duplicate submission")

// SecurityService owns the in-memory abuse mitigation state: the rate limit
// guard, the content filter, the duplicate detector and the suspicious
// activity log. It exposes fiber middleware for route groups and admin
// operations for the security handler.
type SecurityService struct {
	context.DefaultService

	guard    *security.Guard
	filter   *security.ContentFilter
	detector *security.DuplicateDetector
	activity *security.ActivityLog
	notifier security.Notifier

	notificationSvc *NotificationService
	monitoringSvc   *MonitoringService

	stop chan struct{}
}

const SECURITY_SVC = "security_svc"

func (svc SecurityService) Id() string {
	return SECURITY_SVC
}

func (svc *SecurityService) Configure(ctx *context.Context) error {
	svc.notificationSvc = ctx.Service(NOTIFICATION_SVC).(*NotificationService)
	svc.monitoringSvc = ctx.Service(MONITORING_SVC).(*MonitoringService)
	svc.initCore(&violationNotifier{notificationSvc: svc.notificationSvc})
	return svc.DefaultService.Configure(ctx)
}

// initCore builds the in-memory state. Split out of Configure so tests can
// construct the service without a service context.
func (svc *SecurityService) initCore(notifier security.Notifier) {
	if notifier == nil {
		notifier = security.NopNotifier{}
	}
	svc.notifier = notifier
	svc.activity = security.NewActivityLog(security.ActivityLogCap)
	svc.guard = security.NewGuard(security.DefaultCategories(), svc.activity, notifier)
	svc.filter = security.NewContentFilter()
	svc.detector = security.NewDuplicateDetector(security.DuplicateWindow)
	svc.stop = make(chan struct{})
}

func (svc *SecurityService) Start() error {
	go svc.sweepLoop()
	return nil
}

func (svc *SecurityService) Shutdown() {
	close(svc.stop)
}

func (svc *SecurityService) sweepLoop() {
	ticker := time.NewTicker(security.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := svc.guard.Sweep()
			svc.detector.Sweep()
			if removed > 0 {
				log.WithField("removed", removed).Debug("Swept idle rate limit entries")
			}
		case <-svc.stop:
			return
		}
	}
}

// ==================== MIDDLEWARE ====================

// RateLimit enforces the given category's threshold for every request in the
// group. Authenticated requests are tracked per user, anonymous ones per IP.
func (svc *SecurityService) RateLimit(category string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := svc.IdentityFromCtx(c)
		decision := svc.guard.Check(id, category)

		if decision.Allowed {
			return c.Next()
		}

		if decision.IPBlocked {
			svc.countRejection(category, "ip_blocked")
			return c.Status(http.StatusForbidden).JSON(fiber.Map{
				"message": decision.Message,
				"blocked": true,
			})
		}

		if decision.Blocked && decision.Warnings == 0 {
			svc.countRejection(category, "blocked")
			c.Set("Retry-After", strconv.Itoa(decision.RemainingMinutes*60))
			return c.Status(http.StatusTooManyRequests).JSON(fiber.Map{
				"message":          decision.Message,
				"blocked":          true,
				"remainingMinutes": decision.RemainingMinutes,
			})
		}

		outcome := "warning"
		if decision.Blocked {
			outcome = "blocked"
		}
		svc.countRejection(category, outcome)
		c.Set("Retry-After", strconv.Itoa(decision.RetryAfter))
		return c.Status(http.StatusTooManyRequests).JSON(fiber.Map{
			"message":     decision.Message,
			"warnings":    decision.Warnings,
			"maxWarnings": decision.MaxWarnings,
			"retryAfter":  decision.RetryAfter,
			"blocked":     decision.Blocked,
		})
	}
}

// ==================== SUBMISSION SCREENING ====================

// ScreenSubmission validates content and checks for duplicate resubmission.
// Returns a *security.ContentError for rejected content or
// ErrDuplicateSubmission for a repeat; nil means the submission may proceed.
func (svc *SecurityService) ScreenSubmission(id security.Identity, submissionType, content string) error {
	if err := svc.filter.Validate(content); err != nil {
		var contentErr *security.ContentError
		if svc.monitoringSvc != nil && errors.As(err, &contentErr) {
			svc.monitoringSvc.RecordContentRejection(rejectionKind(contentErr.Reason))
		}
		return err
	}

	if svc.detector.CheckAndRecord(submissionType, id.UserID(), content) {
		if svc.monitoringSvc != nil {
			svc.monitoringSvc.RecordDuplicateSubmission()
		}
		now := time.Now()
		reason := "Duplicate " + submissionType + " submission"
		svc.activity.Record(security.SuspiciousActivity{
			Identifier: id.Key(),
			IP:         id.IP(),
			Action:     reason,
			Severity:   security.SeverityHigh,
			Timestamp:  now,
		})
		svc.notifier.NotifyViolation(id, security.SeverityHigh, reason, now)
		return ErrDuplicateSubmission
	}

	return nil
}

// RespondScreeningError translates a ScreenSubmission error into the client
// response.
func (svc *SecurityService) RespondScreeningError(c *fiber.Ctx, err error) error {
	var contentErr *security.ContentError
	if errors.As(err, &contentErr) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Content validation failed",
			"reason":  contentErr.Reason,
		})
	}
	if errors.Is(err, ErrDuplicateSubmission) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Duplicate submission detected. Please wait before resubmitting.",
			"reason":  "duplicate",
		})
	}
	return shared.ResponseJSON(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
}

// ==================== ADMIN OPERATIONS ====================

func (svc *SecurityService) Stats() dto.SecurityStatsResponse {
	snap := svc.guard.Snapshot()
	return dto.SecurityStatsResponse{
		TrackedEntries:    snap.TrackedEntries,
		BlockedIdentities: snap.BlockedIdentities,
		BlockedIPs:        snap.BlockedIPs,
		Last24hBySeverity: svc.activity.CountsBySeverity(24*time.Hour, time.Now()),
	}
}

func (svc *SecurityService) RecentActivity(limit int) dto.SecurityActivityResponse {
	entries := svc.activity.Recent(limit)
	return dto.SecurityActivityResponse{
		Activity: entries,
		Count:    len(entries),
	}
}

func (svc *SecurityService) UnblockIdentity(identifier string) bool {
	cleared := svc.guard.UnblockIdentity(identifier)
	if cleared {
		log.WithField("identifier", identifier).Info("Identity unblocked by admin")
	}
	return cleared
}

func (svc *SecurityService) UnblockIP(ip string) bool {
	cleared := svc.guard.UnblockIP(ip)
	if cleared {
		log.WithField("ip", ip).Info("IP unblocked by admin")
	}
	return cleared
}

// ==================== HELPERS ====================

func (svc *SecurityService) countRejection(category, outcome string) {
	if svc.monitoringSvc != nil {
		svc.monitoringSvc.RecordRateLimitRejection(category, outcome)
	}
}

func rejectionKind(reason string) string {
	switch {
	case reason == "Empty content":
		return "empty"
	case strings.HasPrefix(reason, "Content contains prohibited keyword"):
		return "keyword"
	case reason == "Excessive capitalization":
		return "caps"
	case strings.HasPrefix(reason, "Flagged by content classifier"):
		return "classifier"
	default:
		return "pattern"
	}
}

func (svc *SecurityService) IdentityFromCtx(c *fiber.Ctx) security.Identity {
	ip := getClientIP(c)
	if userID, ok := c.Locals(shared.UserID).(string); ok && userID != "" {
		return security.UserIdentity(userID, ip)
	}
	return security.AnonymousIdentity(ip)
}

func getClientIP(c *fiber.Ctx) string {
	// Check for forwarded IP first (for load balancers/proxies)
	forwarded := c.Get("X-Forwarded-For")
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		if len(ips) > 0 {
			ip := strings.TrimSpace(ips[0])
			if ip != "" {
				return ip
			}
		}
	}

	// Check for real IP header
	realIP := c.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	// Check Cloudflare header
	cfIP := c.Get("CF-Connecting-IP")
	if cfIP != "" {
		return cfIP
	}

	// Fall back to remote address
	ip, _, err := net.SplitHostPort(c.Context().RemoteAddr().String())
	if err != nil {
		return c.Context().RemoteAddr().String()
	}

	return ip
}

// ==================== NOTIFIER ADAPTER ====================

// violationNotifier bridges guard violations into the notification service.
// Delivery runs on its own goroutine so a slow database or SMTP round trip
// can never stall a rate limit decision.
type violationNotifier struct {
	notificationSvc *NotificationService
}

func (n *violationNotifier) NotifyViolation(id security.Identity, severity security.Severity, reason string, at time.Time) {
	if id.Anonymous() || n.notificationSvc == nil {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithField("recover", r).Error("Violation notification panicked")
			}
		}()
		if err := n.notificationSvc.NotifySecurityViolation(id.UserID(), severity, reason, id.IP(), at); err != nil {
			log.WithError(err).WithField("user_id", id.UserID()).Warn("Failed to deliver violation notification")
		}
	}()
}
