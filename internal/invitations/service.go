// Package invitations emails a partner the link to their intake questionnaire.
package invitations

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	apperrors "partner-intake/internal/common/errors"
	"partner-intake/internal/common/logger"
	"partner-intake/internal/intake"
	"partner-intake/internal/models"
)

type ContactReader interface {
	Get(ctx context.Context, id string) (*models.Contact, error)
}

type EmailSender interface {
	SendEmail(ctx context.Context, from, to, subject, htmlBody, textBody string) (string, error)
}

type Config struct {
	FromEmail     string
	PublicBaseURL string
}

type Service struct {
	contacts     ContactReader
	markets      intake.MarketLookup
	translations intake.Translations
	sender       EmailSender
	config       Config
	logger       logger.Logger
}

type Result struct {
	ContactID string `json:"contactId"`
	Email     string `json:"email"`
	Link      string `json:"link"`
	MessageID string `json:"messageId"`
}

var htmlTemplate = template.Must(template.New("invitation").Parse(`<!DOCTYPE html>
<html><body>
<p>{{.Greeting}}{{if .Name}} {{.Name}}{{end}},</p>
<p>{{.Body}}:</p>
<p><a href="{{.Link}}">{{.Action}}</a></p>
</body></html>`))

func NewService(contacts ContactReader, markets intake.MarketLookup, translations intake.Translations, sender EmailSender, cfg Config, log logger.Logger) *Service {
	return &Service{
		contacts:     contacts,
		markets:      markets,
		translations: translations,
		sender:       sender,
		config:       cfg,
		logger:       log.Component("invitations"),
	}
}

// Link builds the public questionnaire URL for a contact.
func Link(baseURL string, c *models.Contact) string {
	return fmt.Sprintf("%s/intake/%s/%s?contact=%s",
		strings.TrimRight(baseURL, "/"),
		url.PathEscape(c.MarketType),
		url.PathEscape(c.TargetMarket),
		url.QueryEscape(c.ID))
}

// Invite sends the invitation once, in the market language. Failures are
// returned to the caller and not retried.
func (s *Service) Invite(ctx context.Context, contactID string) (*Result, error) {
	contact, err := s.contacts.Get(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(contact.Email) == "" {
		return nil, apperrors.NewInvalidAnswerError("email", "contact has no email address")
	}
	market, err := s.markets.Get(ctx, contact.MarketType, contact.TargetMarket)
	if err != nil {
		return nil, err
	}

	tr := s.translations.For(market.Language)
	link := Link(s.config.PublicBaseURL, contact)
	subject := tr.T("invitation.subject")

	var html bytes.Buffer
	err = htmlTemplate.Execute(&html, map[string]string{
		"Greeting": tr.T("invitation.greeting"),
		"Name":     contact.ContactFirstName,
		"Body":     tr.T("invitation.body"),
		"Action":   tr.T("invitation.action"),
		"Link":     link,
	})
	if err != nil {
		return nil, apperrors.NewInvitationSendFailedError(fmt.Errorf("render invitation: %w", err))
	}
	text := fmt.Sprintf("%s %s,\n\n%s:\n%s\n", tr.T("invitation.greeting"), contact.ContactFirstName, tr.T("invitation.body"), link)

	messageID, err := s.sender.SendEmail(ctx, s.config.FromEmail, contact.Email, subject, html.String(), text)
	if err != nil {
		s.logger.Error("invitation send failed", map[string]interface{}{
			"contactId": contactID,
			"error":     err,
		})
		return nil, apperrors.NewInvitationSendFailedError(err)
	}

	s.logger.Info("invitation sent", map[string]interface{}{
		"contactId": contactID,
		"messageId": messageID,
		"language":  market.Language,
	})
	return &Result{ContactID: contactID, Email: contact.Email, Link: link, MessageID: messageID}, nil
}
