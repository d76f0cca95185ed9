package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/maximepasquier/leadflow-api/internal/entity"
)

// Issue d'une tentative d'insertion. Le comptage agrégé est un simple
// fold sur ces tags, pas du contrôle de flux par exception.
type insertOutcome int

const (
	outcomeInserted insertOutcome = iota
	outcomeConflict
	outcomeFailed
)

type PersistResult struct {
	Inserted  []entity.Lead
	Conflicts int // doublons (pré-filtrage ou course perdue sur l'unicité)
	Failures  int // autres erreurs de stockage, lead par lead
}

// LeadPersister ne persiste que les candidats inconnus du tenant.
// Le pré-filtrage groupé réduit l'exposition aux courses mais ne
// l'élimine pas : la contrainte d'unicité en base attrape le reste.
type LeadPersister struct {
	Repo entity.LeadRepositoryInterface
}

func NewLeadPersister(repo entity.LeadRepositoryInterface) *LeadPersister {
	return &LeadPersister{Repo: repo}
}

// PersistNew : pré-filtre par emails en une requête, puis insère un par un.
// Un échec individuel n'interrompt jamais le lot, et rien n'est annulé
// rétroactivement : les leads déjà insérés restent insérés.
func (p *LeadPersister) PersistNew(ctx context.Context, tenantID string, candidates []entity.Lead) PersistResult {
	var result PersistResult
	if len(candidates) == 0 {
		return result
	}

	var emails []string
	for _, c := range candidates {
		if c.Email != "" {
			emails = append(emails, c.Email)
		}
	}

	existing := make(map[string]bool)
	if len(emails) > 0 {
		found, err := p.Repo.FindExistingEmails(ctx, tenantID, emails)
		if err != nil {
			// Le pré-filtrage n'est qu'une optimisation : s'il échoue, on
			// laisse la contrainte d'unicité faire le tri.
			log.Printf("⚠️ Pré-filtrage des doublons impossible: %v", err)
		} else {
			existing = found
		}
	}

	for _, candidate := range candidates {
		// Un candidat sans email ne passe jamais par le pré-filtrage :
		// il est toujours tenté à l'insertion.
		if candidate.Email != "" && existing[strings.ToLower(candidate.Email)] {
			result.Conflicts++
			continue
		}

		lead := candidate
		lead.TenantID = tenantID
		lead.Status = entity.StatusToContact
		if lead.ID == "" {
			lead.ID = uuid.New().String()
		}
		now := time.Now()
		lead.CreatedAt = now
		lead.UpdatedAt = now

		switch p.insertOne(ctx, &lead) {
		case outcomeInserted:
			result.Inserted = append(result.Inserted, lead)
		case outcomeConflict:
			result.Conflicts++
		case outcomeFailed:
			result.Failures++
		}
	}

	return result
}

func (p *LeadPersister) insertOne(ctx context.Context, lead *entity.Lead) insertOutcome {
	if err := p.Repo.Insert(ctx, lead); err != nil {
		if errors.Is(err, entity.ErrEmailAlreadyExists) {
			// Un écrivain concurrent a gagné la course sur cet email :
			// résultat normal et silencieux, pas une erreur.
			return outcomeConflict
		}
		log.Printf("⚠️ Lead non sauvegardé (%s): %v", lead.Email, err)
		return outcomeFailed
	}
	return outcomeInserted
}
