package database

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/maximepasquier/leadflow-api/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

// Insert tente une insertion simple. La contrainte d'unicité
// (tenant_id, email) attrape la course résiduelle entre le pré-filtrage
// et l'insertion : le code 23505 devient ErrEmailAlreadyExists.
func (r *LeadRepository) Insert(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (id, tenant_id, full_name, job_title, company, location,
			email, phone, linkedin_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.TenantID,
		lead.FullName,
		nullString(lead.JobTitle),
		nullString(lead.Company),
		nullString(lead.Location),
		nullString(lead.Email),
		nullString(lead.Phone),
		nullString(lead.LinkedInURL),
		lead.Status,
		lead.CreatedAt,
		lead.UpdatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code == "23505" {
				return entity.ErrEmailAlreadyExists
			}
		}

		log.Printf("Erreur critique en base: %v", err)
		return err
	}

	return nil
}

// FindExistingEmails : une seule requête groupée pour tout le lot, pas de
// N allers-retours. Renvoie l'ensemble des emails déjà connus du tenant.
func (r *LeadRepository) FindExistingEmails(ctx context.Context, tenantID string, emails []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(emails) == 0 {
		return existing, nil
	}

	query := `
		SELECT email FROM leads
		WHERE tenant_id = $1 AND email = ANY($2)
	`

	rows, err := r.DB.QueryContext(ctx, query, tenantID, pq.Array(emails))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		existing[strings.ToLower(email)] = true
	}

	return existing, rows.Err()
}

func (r *LeadRepository) ListByStatus(ctx context.Context, tenantID, status string) ([]entity.Lead, error) {
	query := `
		SELECT id, tenant_id, full_name, COALESCE(job_title, ''), COALESCE(company, ''),
			COALESCE(location, ''), COALESCE(email, ''), COALESCE(phone, ''),
			COALESCE(linkedin_url, ''), status, created_at, updated_at
		FROM leads
		WHERE tenant_id = $1 AND status = $2
		ORDER BY created_at DESC
	`

	rows, err := r.DB.QueryContext(ctx, query, tenantID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLeads(rows)
}

func (r *LeadRepository) ListCreatedAfter(ctx context.Context, tenantID string, since time.Time) ([]entity.Lead, error) {
	query := `
		SELECT id, tenant_id, full_name, COALESCE(job_title, ''), COALESCE(company, ''),
			COALESCE(location, ''), COALESCE(email, ''), COALESCE(phone, ''),
			COALESCE(linkedin_url, ''), status, created_at, updated_at
		FROM leads
		WHERE tenant_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
	`

	rows, err := r.DB.QueryContext(ctx, query, tenantID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLeads(rows)
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, leadID, status string) error {
	query := `
		UPDATE leads SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.DB.ExecContext(ctx, query, leadID, status)
	return err
}

// UpdateEmail complète un lead enrichi après coup (commande "enrichis tout").
func (r *LeadRepository) UpdateEmail(ctx context.Context, leadID, email string) error {
	query := `
		UPDATE leads SET email = $2, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.DB.ExecContext(ctx, query, leadID, email)
	return err
}

func scanLeads(rows *sql.Rows) ([]entity.Lead, error) {
	var leads []entity.Lead
	for rows.Next() {
		var l entity.Lead
		if err := rows.Scan(
			&l.ID, &l.TenantID, &l.FullName, &l.JobTitle, &l.Company,
			&l.Location, &l.Email, &l.Phone, &l.LinkedInURL,
			&l.Status, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
