package services

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/models"
	"github.com/ArowuTest/fundraiser-awards-backend/pkg/mailer"
)

var _ NotificationService = (*EmailNotificationService)(nil)

const couponIssuedText = `Hi {{.DonorName}},

Thank you for your donation of {{.Amount}} {{.Currency}} to {{.Fundraiser}}.

Your prize draw coupon code is {{.Code}}.
It takes part in every draw until {{.ExpiresAt}}.
`

const couponIssuedHTML = `<p>Hi {{.DonorName}},</p>
<p>Thank you for your donation of <strong>{{.Amount}} {{.Currency}}</strong> to {{.Fundraiser}}.</p>
<p>Your prize draw coupon code is <strong>{{.Code}}</strong>.<br>
It takes part in every draw until {{.ExpiresAt}}.</p>
`

const awardAnnouncedText = `Congratulations {{.DonorName}}!

Your coupon {{.Code}} was selected as a winner in the {{.Fundraiser}} prize draw.
{{if .Notes}}
{{.Notes}}
{{end}}
We will be in touch shortly with the details.
`

const awardAnnouncedHTML = `<p>Congratulations {{.DonorName}}!</p>
<p>Your coupon <strong>{{.Code}}</strong> was selected as a winner in the {{.Fundraiser}} prize draw.</p>
{{if .Notes}}<p>{{.Notes}}</p>{{end}}
<p>We will be in touch shortly with the details.</p>
`

type emailData struct {
	DonorName  string
	Code       string
	Amount     string
	Currency   string
	Fundraiser string
	ExpiresAt  string
	Notes      string
}

type emailTemplate struct {
	subject string
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

func mustTemplate(name, subject, text, html string) emailTemplate {
	return emailTemplate{
		subject: subject,
		text:    texttemplate.Must(texttemplate.New(name).Parse(text)),
		html:    htmltemplate.Must(htmltemplate.New(name).Parse(html)),
	}
}

// EmailNotificationService renders the prize draw e-mails and hands them
// to a mailer
type EmailNotificationService struct {
	mailer       mailer.Mailer
	couponIssued emailTemplate
	awardWinner  emailTemplate
}

// NewEmailNotificationService creates a new EmailNotificationService
func NewEmailNotificationService(m mailer.Mailer) *EmailNotificationService {
	return &EmailNotificationService{
		mailer:       m,
		couponIssued: mustTemplate("coupon_issued", "Your prize draw coupon for %s", couponIssuedText, couponIssuedHTML),
		awardWinner:  mustTemplate("award_announced", "You won the %s prize draw!", awardAnnouncedText, awardAnnouncedHTML),
	}
}

// CouponIssued sends the coupon code to the donor
func (s *EmailNotificationService) CouponIssued(ctx context.Context, coupon *models.Coupon, fundraiserTitle string) error {
	data := emailData{
		DonorName:  coupon.DonorName,
		Code:       coupon.Code,
		Amount:     fmt.Sprintf("%.2f", coupon.DonationAmount),
		Currency:   coupon.Currency,
		Fundraiser: orDefault(fundraiserTitle, "our fundraiser"),
		ExpiresAt:  coupon.ExpiresAt.UTC().Format("January 2, 2006"),
	}
	return s.send(ctx, s.couponIssued, coupon.DonorEmail, data)
}

// AwardAnnounced tells the donor their coupon won
func (s *EmailNotificationService) AwardAnnounced(ctx context.Context, award *models.AwardDetails) error {
	title := ""
	if award.Fundraiser != nil {
		title = award.Fundraiser.Title
	}
	data := emailData{
		DonorName:  award.DonorName,
		Code:       award.CouponCode,
		Amount:     fmt.Sprintf("%.2f", award.DonationAmount),
		Currency:   award.Currency,
		Fundraiser: orDefault(title, "fundraiser"),
		Notes:      award.Notes,
	}
	return s.send(ctx, s.awardWinner, award.DonorEmail, data)
}

func (s *EmailNotificationService) send(ctx context.Context, tpl emailTemplate, to string, data emailData) error {
	var text, html bytes.Buffer
	if err := tpl.text.Execute(&text, data); err != nil {
		return fmt.Errorf("failed to render %s text: %w", tpl.text.Name(), err)
	}
	if err := tpl.html.Execute(&html, data); err != nil {
		return fmt.Errorf("failed to render %s html: %w", tpl.html.Name(), err)
	}

	return s.mailer.Send(ctx, mailer.Message{
		To:      to,
		Subject: fmt.Sprintf(tpl.subject, data.Fundraiser),
		Text:    text.String(),
		HTML:    html.String(),
	})
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
