package usecase

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	defaultLeadCount = 5
	maxLeadCount     = 10
)

type Intent struct {
	IsSearch       bool
	RequestedCount int
}

// IntentClassifier décide si un message est une demande de recherche de leads.
// L'implémentation par défaut est à base de mots-clés ; une version LLM
// pourra la remplacer sans toucher à l'orchestrateur.
type IntentClassifier interface {
	Classify(text string) Intent
}

// Heuristique, pas une garantie : un faux négatif retombe sur la
// conversation générale, un faux positif déclenche un appel provider
// (mis en cache) qui renverra peu ou pas de leads.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// quantityPattern attrape les formulations "5 leads", "10 prospects", etc.
var quantityPattern = regexp.MustCompile(`(\d+)\s*(leads?|prospects?|contacts?|profils?|personnes?)`)

var searchTriggers = []string{
	// verbes de recherche FR/EN
	"trouve", "trouver", "cherche", "chercher", "recherche",
	"find", "search", "look for", "get me",
	// noms métier
	"leads", "prospects", "profils",
	"rh", "ressources humaines", "développeur", "developpeur", "commercial",
	"marketing", "recruteur", "fondateur", "dirigeant",
	"developer", "recruiter", "founder", "sales", "ceo", "cto",
	// localisations fréquentes
	"à paris", "à lyon", "à marseille", "à bordeaux",
	"in paris", "in london", "in berlin",
}

// Les verbes de commande l'emportent sur les noms métier : « montre les
// leads à relancer » est une commande, pas une recherche, même si le mot
// « leads » y figure.
var commandTriggers = []string{
	"enrichis", "enrichir", "enrich",
	"relance", "follow-up", "followup",
	"recharge", "actualise", "rafraîchis", "reload", "refresh",
	"statut", "status", "montre", "affiche", "liste", "show",
}

func (c *KeywordClassifier) Classify(text string) Intent {
	normalized := strings.ToLower(strings.TrimSpace(text))

	intent := Intent{RequestedCount: defaultLeadCount}

	if containsAny(normalized, commandTriggers...) && !quantityPattern.MatchString(normalized) {
		return intent
	}

	if m := quantityPattern.FindStringSubmatch(normalized); m != nil {
		intent.IsSearch = true
		if n, err := strconv.Atoi(m[1]); err == nil {
			intent.RequestedCount = n
		}
	}

	if !intent.IsSearch {
		for _, trigger := range searchTriggers {
			if strings.Contains(normalized, trigger) {
				intent.IsSearch = true
				break
			}
		}
	}

	intent.RequestedCount = clampCount(intent.RequestedCount)
	return intent
}

// clampCount borne le nombre demandé pour limiter le coût provider.
func clampCount(n int) int {
	if n < 1 {
		return defaultLeadCount
	}
	if n > maxLeadCount {
		return maxLeadCount
	}
	return n
}
