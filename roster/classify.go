package roster

import "github.com/warp/planning-engine/planning"

// =============================================================================
// ACTIVITY CLASSIFICATION
// =============================================================================

// Classification is the outcome of classifying one activity cell.
type Classification struct {
	Category       planning.Category
	SourceActivity string
	// Note preserves provenance when the text fell back to OTHER; empty
	// otherwise.
	Note string
}

// Classifier maps folded free text to canonical activity categories.
// The table is built once and never mutated; share one instance freely.
type Classifier struct {
	aliases map[string]planning.Category
}

// NewClassifier builds a classifier with the known roster vocabulary.
// Keys are stored folded, so lookups tolerate case and diacritics.
func NewClassifier() *Classifier {
	aliases := map[string]planning.Category{
		"visites":      planning.CategoryVisit,
		"visite":       planning.CategoryVisit,
		"acc. direct.": planning.CategoryOther,
		"acc direct":   planning.CategoryOther,
		"tel":          planning.CategoryCall,
		"tel.":         planning.CategoryCall,
		"téléphone":    planning.CategoryCall,
		"telephone":    planning.CategoryCall,
		"rdv":          planning.CategoryRDV,
		"rendez-vous":  planning.CategoryRDV,
		"rendez vous":  planning.CategoryRDV,
		"leads":        planning.CategoryLead,
		"lead":         planning.CategoryLead,
		"async":        planning.CategoryAsync,
		"asynchrones":  planning.CategoryAsync,
		"asynchrone":   planning.CategoryAsync,
		"réunion":      planning.CategoryMeeting,
		"reunion":      planning.CategoryMeeting,
		"formation":    planning.CategoryTraining,
		"télétravail":  planning.CategoryWFH,
		"teletravail":  planning.CategoryWFH,
		"wfh":          planning.CategoryWFH,
		"abs":          planning.CategoryAbsence,
		"absence":      planning.CategoryAbsence,
	}

	folded := make(map[string]planning.Category, len(aliases))
	for key, cat := range aliases {
		folded[Fold(key)] = cat
	}
	return &Classifier{aliases: folded}
}

// Classify maps raw activity text to a category. It never fails: unmatched
// input degrades to OTHER with the original text preserved in the note,
// since roster authors use inconsistent vocabulary and one unknown label
// must not abort an entire import.
func (c *Classifier) Classify(raw string) Classification {
	category, ok := c.aliases[Fold(raw)]
	if !ok {
		category = planning.CategoryOther
	}

	note := ""
	if category == planning.CategoryOther {
		note = "Excel: " + raw
	}
	return Classification{Category: category, SourceActivity: raw, Note: note}
}
