package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/maximepasquier/leadflow-api/internal/entity"
)

var (
	// ErrNotConfigured : clé API absente ou refusée. À remonter tel quel à
	// l'utilisateur avec un message actionnable, jamais réessayé.
	ErrNotConfigured = errors.New("enrichissement non configuré")

	// ErrUnavailable : réseau, timeout ou réponse non-2xx du provider.
	ErrUnavailable = errors.New("service d'enrichissement indisponible")
)

// SearchResult : candidats bruts renvoyés par le provider. La déduplication
// n'est PAS faite ici, c'est le travail de la couche de persistance.
type SearchResult struct {
	Leads            []entity.Lead
	ExistingExcluded int
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Search : exactement un appel amont par invocation, pas de retry ici.
// Le tenant est envoyé au provider pour qu'il exclue ses propres doublons.
func (c *Client) Search(ctx context.Context, tenantID, query string, count int) (*SearchResult, error) {
	if c.apiKey == "" {
		log.Println("⚠️ Enrichment: API_KEY non configurée")
		return nil, ErrNotConfigured
	}

	// 1. Prépare le JSON
	payload := searchRequest{
		Query:    query,
		TenantID: tenantID,
		Count:    count,
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("erreur marshal recherche: %w", err)
	}

	// 2. Crée la requête (le ctx porte le timeout de l'appelant)
	url := fmt.Sprintf("%s/v1/people/search", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	// 3. Envoie
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	// 4. Traite les erreurs API
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: clé API refusée (status %d)", ErrNotConfigured, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		log.Printf("❌ ERREUR API ENRICHMENT (status %d): %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	// 5. Décode
	var response searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: décodage: %v", ErrUnavailable, err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, response.Error)
	}

	// 6. Convertit Response -> entités
	leads := make([]entity.Lead, 0, len(response.Leads))
	for _, p := range response.Leads {
		leads = append(leads, entity.Lead{
			FullName:    p.FullName,
			JobTitle:    p.JobTitle,
			Company:     p.Company,
			Location:    p.Location,
			Email:       p.Email,
			Phone:       p.Phone,
			LinkedInURL: p.LinkedInURL,
		})
	}

	return &SearchResult{
		Leads:            leads,
		ExistingExcluded: response.ExistingExcludedCount,
	}, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "LeadFlow/1.0")
}
