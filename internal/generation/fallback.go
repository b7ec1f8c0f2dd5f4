package generation

import "strings"

// fallbackKeys are tested against the lowercased message in order; the first
// key found as a substring selects the canned reply.
var fallbackKeys = []string{"skills", "projects", "experience", "contact"}

var fallbackResponses = map[string]string{
	"skills":     "I have experience in full-stack development, AI/ML, and various programming languages. Please check the Skills section for detailed information.",
	"projects":   "I've worked on various interesting projects. You can find detailed information in the Projects section of this portfolio.",
	"experience": "I have professional experience in software development. Please check the Resume section for my complete work history.",
	"contact":    "You can reach out through the Contact section of this portfolio.",
	"default":    "I'm here to help you learn about this portfolio. Please explore the different sections or ask specific questions about skills, projects, or experience.",
}

// Fallback returns the deterministic canned reply for a message, used when
// the generation model is unavailable or fails. Confidence is fixed and no
// sources are attributed.
func Fallback(message string) Result {
	lower := strings.ToLower(message)

	key := "default"
	for _, k := range fallbackKeys {
		if strings.Contains(lower, k) {
			key = k
			break
		}
	}

	return Result{
		Response:   fallbackResponses[key],
		Confidence: fallbackConfidence,
		Sources:    []string{},
	}
}
