package canonical

import (
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/pantrylens/pantry-cli/internal/model"
)

var foldCaser = cases.Fold()

// Canonicalize maps a free-text detected label to a canonical
// ingredient. Resolution order: exact match on the cleaned label, exact
// match after descriptor stripping, fuzzy match above the similarity
// floor, and finally a degraded unknown entry carrying the cleaned
// label verbatim. Never fails: vocabulary gaps must not block the
// pipeline.
func (r *Registry) Canonicalize(rawLabel string) model.CanonicalIngredient {
	cleaned := r.cleanLabel(rawLabel, false)
	if ing, ok := r.resolveExact(cleaned); ok {
		return ing
	}

	stripped := r.cleanLabel(rawLabel, true)
	if stripped != "" && stripped != cleaned {
		if ing, ok := r.resolveExact(stripped); ok {
			return ing
		}
	}
	if stripped == "" {
		stripped = cleaned
	}

	if ing, ok := r.resolveFuzzy(stripped); ok {
		return ing
	}

	zap.L().Debug("canonical: label not in vocabulary",
		zap.String("label", rawLabel),
		zap.String("cleaned", stripped),
	)
	return model.CanonicalIngredient{
		Name:        stripped,
		DisplayName: strings.TrimSpace(rawLabel),
		Category:    model.CategoryOther,
		Known:       false,
	}
}

func (r *Registry) resolveExact(cleaned string) (model.CanonicalIngredient, bool) {
	if ing, ok := r.byName[cleaned]; ok {
		return ing, true
	}
	if name, ok := r.aliasToName[cleaned]; ok {
		return r.byName[name], true
	}
	return model.CanonicalIngredient{}, false
}

// resolveFuzzy finds the best canonical name or alias above the
// similarity floor. Candidates are scanned in lexical order so equal
// scores resolve deterministically.
func (r *Registry) resolveFuzzy(cleaned string) (model.CanonicalIngredient, bool) {
	bestScore := r.similarityFloor
	var bestName string

	for _, name := range r.names {
		if score := r.Similarity(cleaned, name); score > bestScore {
			bestScore = score
			bestName = name
		}
	}
	for _, alias := range r.aliases {
		if score := r.Similarity(cleaned, alias); score > bestScore {
			bestScore = score
			bestName = r.aliasToName[alias]
		}
	}

	if bestName == "" {
		return model.CanonicalIngredient{}, false
	}
	zap.L().Debug("canonical: fuzzy match",
		zap.String("cleaned", cleaned),
		zap.String("canonical", bestName),
		zap.Float64("score", bestScore),
	)
	return r.byName[bestName], true
}

// cleanLabel lowercases the label, drops punctuation, numeric and
// percent tokens, singularizes, and optionally strips descriptor
// tokens.
func (r *Registry) cleanLabel(raw string, stripDescriptors bool) string {
	folded := foldCaser.String(raw)

	var b strings.Builder
	for _, ch := range folded {
		if unicode.IsLetter(ch) || unicode.IsSpace(ch) || ch == '-' {
			b.WriteRune(ch)
		} else {
			b.WriteRune(' ')
		}
	}

	var kept []string
	for _, tok := range strings.Fields(b.String()) {
		if stripDescriptors {
			if _, drop := r.descriptors[tok]; drop {
				continue
			}
		}
		kept = append(kept, singularize(tok))
	}
	return strings.Join(kept, " ")
}

// singularize strips common English plural suffixes from a token.
func singularize(tok string) string {
	switch {
	case len(tok) > 3 && strings.HasSuffix(tok, "ies"):
		return tok[:len(tok)-3] + "y"
	case len(tok) > 3 && strings.HasSuffix(tok, "oes"):
		return tok[:len(tok)-2]
	case len(tok) > 4 && (strings.HasSuffix(tok, "ches") || strings.HasSuffix(tok, "shes") ||
		strings.HasSuffix(tok, "sses") || strings.HasSuffix(tok, "xes")):
		return tok[:len(tok)-2]
	case len(tok) > 3 && strings.HasSuffix(tok, "s") && !strings.HasSuffix(tok, "ss") && !strings.HasSuffix(tok, "us"):
		return tok[:len(tok)-1]
	default:
		return tok
	}
}
