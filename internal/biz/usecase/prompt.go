package usecase

import (
	"strings"

	"github.com/pagereply/pagereply/internal/biz/domain"
)

// BuildSystemPrompt assembles the system instruction for a generation
// request. Pure function: same config, same output. The result is shared
// verbatim by every provider.
func BuildSystemPrompt(cfg *domain.AIConfig) string {
	var b strings.Builder

	b.WriteString("Tu es un assistant de réseaux sociaux pour une page Facebook. ")

	switch cfg.Tone {
	case "professional":
		b.WriteString("Utilise un ton professionnel et courtois. ")
	case "friendly":
		b.WriteString("Sois amical et chaleureux dans tes réponses. ")
	case "humorous":
		b.WriteString("Utilise de l'humour approprié et sois décontracté. ")
	case "formal":
		b.WriteString("Maintiens un ton formel et respectueux. ")
	default:
		b.WriteString("Sois naturel et adapte-toi au contexte. ")
	}

	switch cfg.Style {
	case "short":
		b.WriteString("Garde tes réponses courtes et concises (max 50 mots). ")
	case "medium":
		b.WriteString("Utilise des réponses de longueur moyenne (50-150 mots). ")
	case "long":
		b.WriteString("Tu peux donner des réponses détaillées si nécessaire. ")
	}
	// Unrecognized styles add no length clause.

	if cfg.Instructions != "" {
		b.WriteString("Instructions spéciales: ")
		b.WriteString(cfg.Instructions)
		b.WriteString(" ")
	}

	language := cfg.Language
	if language == "" {
		language = "fr"
	}
	if language == "fr" {
		b.WriteString("Réponds toujours en français.")
	} else {
		b.WriteString("Réponds toujours en anglais.")
	}

	return b.String()
}
