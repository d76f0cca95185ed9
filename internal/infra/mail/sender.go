package mail

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"

	"gopkg.in/gomail.v2"
)

func NewEmailSender(host string, port int, user, password string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
	}
}

func (s *EmailSender) SendFollowUp(to, name, company string) error {
	data := FollowUpEmailData{
		Name:    name,
		Company: company,
	}

	tmplPath := filepath.Join("templates", "followup.html")
	t, err := template.ParseFiles(tmplPath)
	if err != nil {
		return fmt.Errorf("erreur de lecture du template d'email: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return fmt.Errorf("erreur de rendu du template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", "contact@leadflow.app")
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("%s, on se rappelle ? 📅", name))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("erreur d'envoi SMTP: %w", err)
	}

	return nil
}
