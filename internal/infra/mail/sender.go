package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templatesFS embed.FS

var digestTemplate = template.Must(
	template.New("followup_digest.html").
		Funcs(template.FuncMap{"brl": FormatBRL, "date": formatDate}).
		ParseFS(templatesFS, "templates/followup_digest.html"),
)

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

// RenderFollowUpDigest monta o HTML do relatório sem enviar.
func RenderFollowUpDigest(digest FollowUpDigest) (string, error) {
	var body bytes.Buffer
	if err := digestTemplate.Execute(&body, digest); err != nil {
		return "", fmt.Errorf("erro ao processar template: %w", err)
	}
	return body.String(), nil
}

func (s *EmailSender) SendFollowUpDigest(to string, digest FollowUpDigest) error {
	body, err := RenderFollowUpDigest(digest)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Follow-ups atrasados: %d proposta(s)", len(digest.Items)))
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}

	return nil
}

// FormatBRL formata um valor como moeda brasileira (R$ 1.500,00).
func FormatBRL(v float64) string {
	negative := v < 0
	if negative {
		v = -v
	}

	raw := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac, _ := strings.Cut(raw, ".")

	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	out := "R$ " + grouped.String() + "," + frac
	if negative {
		out = "-" + out
	}
	return out
}

func formatDate(t time.Time) string {
	return t.Format("02/01/2006")
}
