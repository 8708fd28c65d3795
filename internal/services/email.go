package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/example/waterline/internal/config"
)

// EmailService delivers transactional mail through an HTTP mail API.
// Delivery is fire-and-forget: failures are logged and never block or
// fail the request that triggered them.
type EmailService struct {
	apiURL string
	token  string
	from   string
	log    *logrus.Logger
}

// NewEmailService creates an EmailService from config.
func NewEmailService(cfg *config.Config, log *logrus.Logger) *EmailService {
	return &EmailService{
		apiURL: cfg.MailAPIURL,
		token:  cfg.MailAPIToken,
		from:   cfg.MailFrom,
		log:    log,
	}
}

type emailMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Send posts a message to the mail API. A missing API URL makes Send a
// logged no-op so development setups work without a mail account.
func (s *EmailService) Send(to, subject, html string) error {
	if s.apiURL == "" {
		s.log.WithField("to", to).Info("mail API not configured, skipping email")
		return nil
	}

	body, err := json.Marshal(emailMessage{
		From:    s.from,
		To:      to,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		s.log.WithError(err).Error("failed to send email")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		s.log.WithField("status", resp.StatusCode).Error("mail API returned unexpected status")
		return fmt.Errorf("mail API returned status %d", resp.StatusCode)
	}

	return nil
}

// SendOTP mails a verification code for registration.
func (s *EmailService) SendOTP(to, name, otp string) {
	html := fmt.Sprintf(
		"<h2>Welcome %s!</h2><p>Your OTP code is: <strong>%s</strong></p><p>This code will expire in 10 minutes.</p>",
		name, otp,
	)
	if err := s.Send(to, "Email Verification - OTP Code", html); err != nil {
		s.log.WithError(err).WithField("to", to).Error("OTP email delivery failed")
	}
}
