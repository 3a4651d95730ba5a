package services

import (
	"fmt"
	"log"
	"net/url"

	"gopkg.in/gomail.v2"

	"github.com/example/daps/internal/config"
	"github.com/example/daps/internal/models"
)

// EmailService sends transactional mail over SMTP. Every send is
// best-effort from the caller's perspective: when SMTP is not
// configured the service logs and reports success so flows keep
// working in development.
type EmailService struct {
	host    string
	port    int
	user    string
	pass    string
	from    string
	baseURL string
}

// NewEmailService creates an EmailService from config.
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:    cfg.SMTPHost,
		port:    cfg.SMTPPort,
		user:    cfg.SMTPUser,
		pass:    cfg.SMTPPass,
		from:    cfg.EmailFrom,
		baseURL: cfg.PublicBaseURL,
	}
}

// VerifyTransport dials the SMTP server once to surface configuration
// problems at startup.
func (s *EmailService) VerifyTransport() {
	if !s.configured() {
		log.Println("[Email] SMTP not configured, outbound mail disabled")
		return
	}

	closer, err := gomail.NewDialer(s.host, s.port, s.user, s.pass).Dial()
	if err != nil {
		log.Printf("[Email] SMTP verify FAILED: %v", err)
		return
	}
	_ = closer.Close()
	log.Printf("[Email] SMTP ready: %s:%d as %s", s.host, s.port, s.user)
}

func (s *EmailService) configured() bool {
	return s.host != ""
}

func (s *EmailService) send(to, subject, text, html string) error {
	if !s.configured() {
		log.Printf("[Email] SMTP not configured, skipping %q to %s", subject, to)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", text)
	if html != "" {
		m.AddAlternative("text/html", html)
	}

	if err := gomail.NewDialer(s.host, s.port, s.user, s.pass).DialAndSend(m); err != nil {
		log.Printf("[Email] send %q to %s failed: %v", subject, to, err)
		return err
	}

	log.Printf("[Email] sent %q to %s", subject, to)
	return nil
}

// SendVerificationEmail mails the account verification link.
func (s *EmailService) SendVerificationEmail(to, token string) error {
	link := fmt.Sprintf("%s/api/users/verify?token=%s", s.baseURL, url.QueryEscape(token))
	return s.send(to,
		"Verify your Daps account",
		fmt.Sprintf("Verify your email: %s", link),
		fmt.Sprintf(`<p>Verify your email:</p><p><a href="%s">%s</a></p>`, link, link),
	)
}

// SendPasswordResetEmail mails the password reset link.
func (s *EmailService) SendPasswordResetEmail(to, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, url.QueryEscape(token))
	return s.send(to,
		"Reset your Daps password",
		fmt.Sprintf("Reset your password: %s", link),
		fmt.Sprintf(`<p>Reset your password:</p><p><a href="%s">%s</a></p>`, link, link),
	)
}

// SendOfferStatusEmail notifies the customer that an admin moved their
// offer to a new status. Each status has its own template; an
// unrecognized status sends nothing. Validation upstream should make
// that branch unreachable.
func (s *EmailService) SendOfferStatusEmail(to string, offer models.Offer) error {
	if to == "" {
		log.Println("[Email] offer status mail skipped: no recipient")
		return nil
	}

	athleteName := "the athlete"
	if offer.Athlete != nil && offer.Athlete.Name != "" {
		athleteName = offer.Athlete.Name
	}

	experience := offer.ExpDesc
	if experience == "" {
		experience = offer.GameDesc
	}
	if experience == "" {
		experience = "your requested experience"
	}

	amount := ""
	if offer.Offered > 0 {
		amount = fmt.Sprintf("$%.0f ", offer.Offered)
	}

	var subject, text, html string
	switch offer.Status {
	case models.OfferStatusApproved:
		subject = "Your Daps offer was approved"
		text = fmt.Sprintf("Good news! Your offer %sfor %s with %s was approved.", amount, experience, athleteName)
		html = fmt.Sprintf("<h2>Offer approved</h2><p>Good news! Your offer %sfor <b>%s</b> with <b>%s</b> was approved.</p><p>We'll be in touch with next steps.</p>", amount, experience, athleteName)
	case models.OfferStatusDeclined:
		subject = "Update on your Daps offer"
		text = fmt.Sprintf("Thanks for your offer for %s with %s. It wasn't approved this time.", experience, athleteName)
		html = fmt.Sprintf("<h2>Offer update</h2><p>Thanks for your offer for <b>%s</b> with <b>%s</b>. It wasn't approved this time.</p><p>You can submit a new offer anytime.</p>", experience, athleteName)
	case models.OfferStatusPending:
		subject = "Your Daps offer is pending"
		text = fmt.Sprintf("Your offer for %s with %s is pending review.", experience, athleteName)
		html = fmt.Sprintf("<h2>Offer pending</h2><p>Your offer for <b>%s</b> with <b>%s</b> is pending review.</p>", experience, athleteName)
	default:
		log.Printf("[Email] offer status mail skipped: unknown status %q", offer.Status)
		return nil
	}

	return s.send(to, subject, text, html)
}
