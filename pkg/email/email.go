// Package email sends transactional mail through the Resend HTTP API.
package email

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"
)

const DefaultEndpoint = "https://api.resend.com/emails"

//go:embed templates/*.html
var templateFS embed.FS

type EmailData struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Html    string `json:"html"`
	ReplyTo string `json:"reply_to,omitempty"`
}

type EnquiryNotificationData struct {
	PropertyTitle    string
	PropertyLocation string
	PropertyPrice    string
	Name             string
	Email            string
	Phone            string
	Message          string
}

type EnquiryDigestData struct {
	AgentName   string
	Since       time.Time
	Total       int64
	Unanswered  int64
	Listings    int64
	TopProperty string
}

type WelcomeEmailData struct {
	Name    string
	IsAgent bool
}

type Service struct {
	apiKey    string
	from      string
	templates *template.Template

	// Endpoint and Client default to the Resend API and a 10s client.
	Endpoint string
	Client   *http.Client
}

func NewService(apiKey, from string) (*Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}

	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("error loading email templates: %w", err)
	}

	return &Service{
		apiKey:    apiKey,
		from:      from,
		templates: templates,
		Endpoint:  DefaultEndpoint,
		Client:    &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// SendEnquiryNotification tells an agent about a new enquiry. Replies go
// straight to the visitor.
func (s *Service) SendEnquiryNotification(ctx context.Context, agentEmail string, data EnquiryNotificationData) error {
	subject := fmt.Sprintf("New enquiry for %s", data.PropertyTitle)
	return s.sendTemplateEmail(ctx, agentEmail, data.Email, subject, "enquiry_notification.html", data)
}

func (s *Service) SendEnquiryDigest(ctx context.Context, agentEmail string, data EnquiryDigestData) error {
	return s.sendTemplateEmail(ctx, agentEmail, "", "Your weekly enquiry summary", "enquiry_digest.html", data)
}

func (s *Service) SendWelcomeEmail(ctx context.Context, to string, data WelcomeEmailData) error {
	return s.sendTemplateEmail(ctx, to, "", "Welcome to Realty", "welcome.html", data)
}

func (s *Service) sendTemplateEmail(ctx context.Context, to, replyTo, subject, templateName string, data interface{}) error {
	if s == nil {
		return nil
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	jsonData, err := json.Marshal(EmailData{
		From:    s.from,
		To:      to,
		Subject: subject,
		Html:    body.String(),
		ReplyTo: replyTo,
	})
	if err != nil {
		return fmt.Errorf("error marshaling email data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("resend API error: status %d: %s", resp.StatusCode, respBody)
	}

	log.Printf("Sent %q to %s", subject, to)
	return nil
}
