package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	// IMPORTANT: pas d'imports de usecase ou infra ici !
)

// Cycle de vie d'un lead. Les transitions sont déclenchées par des actions
// externes (envoi d'email, webhook de réponse, worker de relance), jamais
// par la recherche elle-même, qui crée toujours en StatusToContact.
const (
	StatusToContact     = "à contacter"
	StatusEmailSent     = "email envoyé"
	StatusResponded     = "répondu"
	StatusToFollowUp    = "à relancer"
	StatusCallScheduled = "appel prévu"
	StatusMeeting       = "rendez-vous"
	StatusMeetingMissed = "rendez-vous manqué"
)

var ErrEmailAlreadyExists = errors.New("un lead avec cet email existe déjà")

// Entité : Lead
type Lead struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`

	FullName string `json:"full_name"`
	JobTitle string `json:"job_title,omitempty"`
	Company  string `json:"company,omitempty"`
	Location string `json:"location,omitempty"`

	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`

	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Factory
func NewLead(tenantID, fullName, email string) *Lead {
	return &Lead{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		FullName:  fullName,
		Email:     email,
		Status:    StatusToContact,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

type LeadRepositoryInterface interface {
	Insert(ctx context.Context, lead *Lead) error
	FindExistingEmails(ctx context.Context, tenantID string, emails []string) (map[string]bool, error)
	ListByStatus(ctx context.Context, tenantID, status string) ([]Lead, error)
	ListCreatedAfter(ctx context.Context, tenantID string, since time.Time) ([]Lead, error)
	UpdateStatus(ctx context.Context, leadID, status string) error
	UpdateEmail(ctx context.Context, leadID, email string) error
}
