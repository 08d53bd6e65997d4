package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/raipur-smart-connect/raipur_api/security"
	"github.com/raipur-smart-connect/raipur_api/services/handlers"
	"github.com/raipur-smart-connect/raipur_api/shared"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberSwagger "github.com/gofiber/swagger"
	log "github.com/sirupsen/logrus"
)

type HttpService struct {
	context.DefaultService

	authSvc         *AuthService
	complaintSvc    *ComplaintService
	securitySvc     *SecurityService
	notificationSvc *NotificationService
	monitoringSvc   *MonitoringService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	svc.authSvc = ctx.Service(AUTH_SVC).(*AuthService)
	svc.complaintSvc = ctx.Service(COMPLAINT_SVC).(*ComplaintService)
	svc.securitySvc = ctx.Service(SECURITY_SVC).(*SecurityService)
	svc.notificationSvc = ctx.Service(NOTIFICATION_SVC).(*NotificationService)
	svc.monitoringSvc = ctx.Service(MONITORING_SVC).(*MonitoringService)

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	app := fiber.New(fiber.Config{
		AppName:      "Raipur Smart Connect API",
		ErrorHandler: svc.errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(MonitoringMiddleware(svc.monitoringSvc))

	// Resolve the caller early so rate limiting tracks users, not just IPs.
	app.Use(svc.authSvc.OptionalAuth())
	app.Use(svc.securitySvc.RateLimit(security.CategoryAPIGeneral))

	app.Get("/ping", svc.ping)
	app.Get("/swagger/*", fiberSwagger.HandlerDefault)

	authHandler := handlers.NewAuthHandler(svc.authSvc)
	complaintHandler := handlers.NewComplaintHandler(svc.complaintSvc, svc.securitySvc, svc.notificationSvc)
	securityHandler := handlers.NewSecurityHandler(svc.securitySvc)
	chatHandler := handlers.NewChatHandler(svc.securitySvc)

	v1 := app.Group("/api/v1")
	v1.Get("/ping", svc.ping)

	v1.Post("/register", authHandler.Register)
	v1.Post("/login", authHandler.Login)

	complaints := v1.Group("/complaints")
	complaints.Get("/", complaintHandler.ListComplaints)
	complaints.Get("/:id", complaintHandler.GetComplaint)
	complaints.Get("/:id/comments", complaintHandler.ListComments)
	complaints.Post("/", svc.authSvc.RequiredAuth(), svc.securitySvc.RateLimit(security.CategoryComplaintSubmit), complaintHandler.CreateComplaint)
	complaints.Post("/:id/comments", svc.authSvc.RequiredAuth(), svc.securitySvc.RateLimit(security.CategoryCommentPost), complaintHandler.AddComment)
	complaints.Post("/:id/vote", svc.authSvc.RequiredAuth(), svc.securitySvc.RateLimit(security.CategoryVote), complaintHandler.Vote)
	complaints.Post("/:id/attachment", svc.authSvc.RequiredAuth(), complaintHandler.AttachFile)
	complaints.Put("/:id/status", svc.authSvc.RequiredAuth(), svc.authSvc.RequireOfficial(), complaintHandler.UpdateStatus)

	chat := v1.Group("/chat", svc.authSvc.RequiredAuth(), svc.securitySvc.RateLimit(security.CategoryChatMessage))
	chat.Post("/messages", chatHandler.SendMessage)

	user := v1.Group("/", svc.authSvc.RequiredAuth())
	user.Get("/tokens/balance", complaintHandler.TokenBalance)
	user.Get("/notifications", complaintHandler.ListNotifications)
	user.Post("/notifications/:id/read", complaintHandler.MarkNotificationRead)

	admin := v1.Group("/admin/security", svc.authSvc.RequiredAuth(), svc.authSvc.RequireOfficial())
	admin.Get("/stats", securityHandler.Stats)
	admin.Get("/activity", securityHandler.Activity)
	admin.Post("/unblock-user", securityHandler.UnblockUser)
	admin.Post("/unblock-ip", securityHandler.UnblockIP)

	app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseNotFound(c)
	})

	svc.server = app

	log.WithField("port", svc.port).Info("HTTP server starting")
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")

	return shared.ResponseJSON(c, http.StatusOK, "Success", "pong")
}

func (svc *HttpService) errorHandler(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	log.WithError(err).Error("Unhandled request error")
	return shared.ResponseInternalError(c, err)
}
