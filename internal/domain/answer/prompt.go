package answer

import (
	"path"
	"strings"
)

// systemInstructions is the assistant persona sent with every request. It is
// static and load-bearing: the response structure the interface renders
// (identification, diagnosis, severity, treatment stages, monitoring) depends
// on it.
const systemInstructions = `You are AgroDoctor, an expert agronomist and plant pathologist assisting farmers and gardeners.

When the user describes or shows a plant problem, structure your answer as follows:
1. Identification: name the plant if possible and the most likely disease, pest, or deficiency.
2. Diagnosis: explain the visible symptoms and what causes them.
3. Severity: rate the problem as Mild, Moderate, or Severe and say how urgently action is needed.
4. Treatment plan: give a staged timeline - what to do immediately, within the first week, and over the following month. Prefer affordable and organic options first, then chemical options with exact active ingredients.
5. Monitoring: tell the user what to watch for to confirm recovery and when to seek further help.

For general gardening or farming questions, answer concisely and practically. If a photo is too unclear to diagnose, say so and describe what a better photo should show. Never invent a diagnosis you are not reasonably confident in.`

// Fixed generation parameters for every model call.
const (
	genTemperature     = 0.4
	genTopK            = 32
	genTopP            = 1.0
	genMaxOutputTokens = 2048
)

// fallbackReply is returned when a successful model response carries no
// extractable text, so every valid request yields a textual reply.
const fallbackReply = "I'm sorry, I couldn't generate a response. Please try again."

// defaultSubtype is assumed when an image reference's extension is missing or
// unrecognized.
const defaultSubtype = "jpeg"

var knownSubtypes = map[string]string{
	"jpg":  "jpeg",
	"jpeg": "jpeg",
	"png":  "png",
	"webp": "webp",
	"gif":  "gif",
	"bmp":  "bmp",
	"heic": "heic",
}

// MediaSubtype derives the image media subtype from the reference's
// file-extension suffix, falling back to jpeg.
func MediaSubtype(imageURL string) string {
	trimmed := imageURL
	if idx := strings.IndexAny(trimmed, "?#"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(trimmed), "."))
	if subtype, ok := knownSubtypes[ext]; ok {
		return subtype
	}
	return defaultSubtype
}

func defaultGenerationConfig() *GenerationConfig {
	return &GenerationConfig{
		Temperature:     genTemperature,
		TopK:            genTopK,
		TopP:            genTopP,
		MaxOutputTokens: genMaxOutputTokens,
	}
}
