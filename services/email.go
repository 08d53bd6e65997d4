package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"os"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
)

type EmailService struct {
	context.DefaultService

	smtpHost     string
	smtpPort     string
	smtpUsername string
	smtpPassword string
	fromEmail    string
	fromName     string
	baseURL      string

	templates map[string]*template.Template
}

const EMAIL_SVC = "email_svc"

func (svc EmailService) Id() string {
	return EMAIL_SVC
}

func (svc *EmailService) Configure(ctx *context.Context) error {
	svc.smtpHost = os.Getenv("SMTP_HOST")
	svc.smtpPort = os.Getenv("SMTP_PORT")
	svc.smtpUsername = os.Getenv("SMTP_USERNAME")
	svc.smtpPassword = os.Getenv("SMTP_PASSWORD")
	svc.fromEmail = os.Getenv("FROM_EMAIL")
	svc.fromName = os.Getenv("FROM_NAME")
	svc.baseURL = os.Getenv("BASE_URL")

	// Set defaults if not provided
	if svc.smtpPort == "" {
		svc.smtpPort = "587"
	}
	if svc.fromName == "" {
		svc.fromName = "Raipur Smart Connect"
	}
	if svc.baseURL == "" {
		svc.baseURL = "http://localhost:8000"
	}

	svc.templates = make(map[string]*template.Template)

	return svc.DefaultService.Configure(ctx)
}

func (svc *EmailService) Start() error {
	// Load email templates
	err := svc.loadTemplates()
	if err != nil {
		log.WithError(err).Error("Failed to load email templates")
		// Don't fail startup, just log the error
	}

	return nil
}

// Email templates
const securityWarningEmailHTML = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Security Warning - {{.AppName}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #D97706; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background-color: #f9f9f9; }
        .details { background-color: white; padding: 15px; border-radius: 5px; margin: 15px 0; }
        .warning { background-color: #FFFBEB; border-left: 4px solid #D97706; padding: 10px; margin: 20px 0; }
        .footer { padding: 20px; text-align: center; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Security Warning</h1>
        </div>
        <div class="content">
            <h2>Hi {{.Username}},</h2>
            <p>Unusual activity was detected on your {{.AppName}} account:</p>

            <div class="details">
                <strong>Reason:</strong> {{.Reason}}<br>
                <strong>Time:</strong> {{.Time}}<br>
                <strong>IP Address:</strong> {{.IP}}
            </div>

            <div class="warning">
                <strong>Warning {{.Warnings}} of {{.MaxWarnings}}.</strong> Repeated violations will lead to a temporary block on your account.
            </div>

            <p>If this was not you, please change your password and contact the municipal helpdesk.</p>
        </div>
        <div class="footer">
            <p>&copy; 2025 {{.AppName}}. Raipur Municipal Corporation.</p>
        </div>
    </div>
</body>
</html>
`

const accountBlockedEmailHTML = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Account Temporarily Blocked - {{.AppName}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #DC2626; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background-color: #f9f9f9; }
        .details { background-color: white; padding: 15px; border-radius: 5px; margin: 15px 0; }
        .footer { padding: 20px; text-align: center; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Account Temporarily Blocked</h1>
        </div>
        <div class="content">
            <h2>Hi {{.Username}},</h2>
            <p>Your {{.AppName}} account has been temporarily blocked after repeated violations of the platform usage limits.</p>

            <div class="details">
                <strong>Reason:</strong> {{.Reason}}<br>
                <strong>Time:</strong> {{.Time}}<br>
                <strong>Block duration:</strong> {{.Duration}} minutes
            </div>

            <p>You will be able to use the platform again once the block expires. If you believe this is a mistake, contact the municipal helpdesk.</p>
        </div>
        <div class="footer">
            <p>&copy; 2025 {{.AppName}}. Raipur Municipal Corporation.</p>
        </div>
    </div>
</body>
</html>
`

const complaintStatusEmailHTML = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Complaint Update - {{.AppName}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #059669; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background-color: #f9f9f9; }
        .details { background-color: white; padding: 15px; border-radius: 5px; margin: 15px 0; }
        .footer { padding: 20px; text-align: center; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Complaint Update</h1>
        </div>
        <div class="content">
            <h2>Hi {{.Username}},</h2>
            <p>The status of your complaint has changed:</p>

            <div class="details">
                <strong>Complaint:</strong> {{.Title}}<br>
                <strong>New status:</strong> {{.Status}}
            </div>

            <p><a href="{{.ComplaintURL}}">View your complaint</a></p>
        </div>
        <div class="footer">
            <p>&copy; 2025 {{.AppName}}. Raipur Municipal Corporation.</p>
        </div>
    </div>
</body>
</html>
`

// Template data structures
type SecurityWarningEmailData struct {
	AppName     string
	Username    string
	Reason      string
	Time        string
	IP          string
	Warnings    int
	MaxWarnings int
}

type AccountBlockedEmailData struct {
	AppName  string
	Username string
	Reason   string
	Time     string
	Duration int
}

type ComplaintStatusEmailData struct {
	AppName      string
	Username     string
	Title        string
	Status       string
	ComplaintURL string
}

// Load email templates
func (svc *EmailService) loadTemplates() error {
	var err error

	svc.templates["security_warning"], err = template.New("security_warning").Parse(securityWarningEmailHTML)
	if err != nil {
		return fmt.Errorf("failed to parse security warning email template: %v", err)
	}

	svc.templates["account_blocked"], err = template.New("account_blocked").Parse(accountBlockedEmailHTML)
	if err != nil {
		return fmt.Errorf("failed to parse account blocked email template: %v", err)
	}

	svc.templates["complaint_status"], err = template.New("complaint_status").Parse(complaintStatusEmailHTML)
	if err != nil {
		return fmt.Errorf("failed to parse complaint status email template: %v", err)
	}

	return nil
}

// Send security warning email
func (svc *EmailService) SendSecurityWarningEmail(email string, data SecurityWarningEmailData) error {
	if svc.smtpHost == "" {
		log.Warn("SMTP not configured, skipping security warning email")
		return nil
	}

	data.AppName = "Raipur Smart Connect"
	subject := "Security Warning - Raipur Smart Connect"
	return svc.sendTemplateEmail(email, subject, "security_warning", data)
}

// Send account blocked email
func (svc *EmailService) SendAccountBlockedEmail(email string, data AccountBlockedEmailData) error {
	if svc.smtpHost == "" {
		log.Warn("SMTP not configured, skipping account blocked email")
		return nil
	}

	data.AppName = "Raipur Smart Connect"
	subject := "Account Temporarily Blocked - Raipur Smart Connect"
	return svc.sendTemplateEmail(email, subject, "account_blocked", data)
}

// Send complaint status update email
func (svc *EmailService) SendComplaintStatusEmail(email, username, title, status, complaintID string) error {
	if svc.smtpHost == "" {
		log.Warn("SMTP not configured, skipping complaint status email")
		return nil
	}

	data := ComplaintStatusEmailData{
		AppName:      "Raipur Smart Connect",
		Username:     username,
		Title:        title,
		Status:       status,
		ComplaintURL: fmt.Sprintf("%s/complaints/%s", svc.baseURL, complaintID),
	}

	subject := "Complaint Update - Raipur Smart Connect"
	return svc.sendTemplateEmail(email, subject, "complaint_status", data)
}

// Send template email
func (svc *EmailService) sendTemplateEmail(to, subject, templateName string, data interface{}) error {
	tmpl, exists := svc.templates[templateName]
	if !exists {
		return fmt.Errorf("template %s not found", templateName)
	}

	var body bytes.Buffer
	err := tmpl.Execute(&body, data)
	if err != nil {
		return fmt.Errorf("failed to execute template: %v", err)
	}

	return svc.sendEmail(to, subject, body.String())
}

// Send email using SMTP
func (svc *EmailService) sendEmail(to, subject, body string) error {
	if svc.smtpHost == "" {
		return fmt.Errorf("SMTP not configured")
	}

	// Setup authentication
	auth := smtp.PlainAuth("", svc.smtpUsername, svc.smtpPassword, svc.smtpHost)

	// Compose message
	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		svc.fromName, svc.fromEmail, to, subject, body))

	// Send email
	err := smtp.SendMail(
		svc.smtpHost+":"+svc.smtpPort,
		auth,
		svc.fromEmail,
		[]string{to},
		msg,
	)

	if err != nil {
		log.WithError(err).WithFields(log.Fields{"to": to, "subject": subject}).Error("Failed to send email")
		return fmt.Errorf("failed to send email: %v", err)
	}

	log.WithFields(log.Fields{"to": to, "subject": subject}).Info("Email sent successfully")
	return nil
}

// Send plain text email (for simple notifications)
func (svc *EmailService) SendPlainEmail(to, subject, body string) error {
	if svc.smtpHost == "" {
		log.Warn("SMTP not configured, skipping email")
		return nil
	}

	// Setup authentication
	auth := smtp.PlainAuth("", svc.smtpUsername, svc.smtpPassword, svc.smtpHost)

	// Compose message
	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		svc.fromName, svc.fromEmail, to, subject, body))

	// Send email
	err := smtp.SendMail(
		svc.smtpHost+":"+svc.smtpPort,
		auth,
		svc.fromEmail,
		[]string{to},
		msg,
	)

	if err != nil {
		log.WithError(err).WithFields(log.Fields{"to": to, "subject": subject}).Error("Failed to send plain email")
		return fmt.Errorf("failed to send email: %v", err)
	}

	log.WithFields(log.Fields{"to": to, "subject": subject}).Info("Plain email sent successfully")
	return nil
}

// Test email configuration
func (svc *EmailService) TestEmailConfig() error {
	if svc.smtpHost == "" {
		return fmt.Errorf("SMTP host not configured")
	}

	testEmail := svc.fromEmail
	if testEmail == "" {
		return fmt.Errorf("from email not configured")
	}

	subject := "Test Email Configuration - Raipur Smart Connect"
	body := "This is a test email to verify SMTP configuration."

	return svc.SendPlainEmail(testEmail, subject, body)
}
