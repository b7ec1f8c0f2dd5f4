package simple

import (
	"fmt"
	"math/rand"
	"strings"
)

// Category is a keyword-matched response category.
type Category string

const (
	CategoryGreeting   Category = "greeting"
	CategorySkills     Category = "skills"
	CategoryProjects   Category = "projects"
	CategoryExperience Category = "experience"
	CategoryContact    Category = "contact"
	CategoryDefault    Category = "default"
)

// categoryConfidence is the fixed confidence per category.
var categoryConfidence = map[Category]float64{
	CategoryGreeting:   0.9,
	CategorySkills:     0.8,
	CategoryProjects:   0.8,
	CategoryExperience: 0.8,
	CategoryContact:    0.9,
	CategoryDefault:    0.6,
}

// categorySources labels where each category's answer is drawn from.
var categorySources = map[Category][]string{
	CategoryGreeting:   {"greeting_template"},
	CategorySkills:     {"skills_data", "general_info"},
	CategoryProjects:   {"projects_data"},
	CategoryExperience: {"experience_data", "education_data"},
	CategoryContact:    {"contact_info"},
	CategoryDefault:    {"default_template"},
}

// keyword sets per category, checked in priority order.
var (
	greetingWords   = []string{"hello", "hi", "hey", "greetings"}
	skillWords      = []string{"skill", "technology", "tech", "programming", "development"}
	projectWords    = []string{"project", "work", "portfolio", "application", "app"}
	experienceWords = []string{"experience", "background", "education", "qualification"}
	contactWords    = []string{"contact", "email", "reach", "connect", "linkedin"}
)

// Responder answers chat messages by keyword matching against fixed
// templates built from the loaded portfolio data.
type Responder struct {
	templates map[Category][]string
	pick      func(n int) int
}

// NewResponder builds the template sets from the portfolio data.
func NewResponder(data *PortfolioData) *Responder {
	name := data.OwnerName()
	specs := strings.Join(data.Specializations(), ", ")

	contactLine := "Feel free to use the contact form on this website to get in touch directly."
	if email := data.Email(); email != "" {
		contactLine = fmt.Sprintf("You can reach %s at %s or connect on LinkedIn.", name, email)
	}

	templates := map[Category][]string{
		CategoryGreeting: {
			fmt.Sprintf("Hello! I'm %s's AI assistant. I can help you learn about skills, projects, and experience.", name),
			fmt.Sprintf("Hi there! I'm here to answer questions about %s's portfolio. What would you like to know?", name),
			"Welcome! I can provide information about this portfolio's work, skills, and projects. How can I help?",
		},
		CategorySkills: {
			fmt.Sprintf("%s is skilled in %s, with experience across technologies like React, Node.js, Python, and MongoDB.", name, specs),
			"The technical expertise here covers full-stack development, AI/ML integration, and building scalable web applications.",
			fmt.Sprintf("%s specializes in modern web development technologies with a strong background in both frontend and backend work.", name),
		},
		CategoryProjects: {
			fmt.Sprintf("%s has worked on %d projects including web applications, AI integrations, and full-stack solutions.", name, len(data.Projects)),
			"The project portfolio includes web applications built with modern technologies like React, Node.js, and AI integrations.",
			"You can find detailed information about the projects in the Projects section of this website.",
		},
		CategoryExperience: {
			fmt.Sprintf("%s is currently pursuing %s and has hands-on experience in software development.", name, data.Degree()),
			"There is practical experience here in full-stack development, team leadership, and hackathon recognition.",
			"The experience spans both academic projects and real-world applications in web development and AI.",
		},
		CategoryContact: {
			contactLine,
			"Feel free to use the contact form on this website to get in touch directly.",
			fmt.Sprintf("%s is open to new opportunities and collaborations. You can make contact through the contact section.", name),
		},
		CategoryDefault: {
			"I'm here to help you learn about this portfolio. You can ask me about skills, projects, experience, or how to get in contact.",
			"I can provide information about technical skills, project experience, and background. What specific area interests you?",
			"Feel free to ask about the work, education, skills, or any specific projects you'd like to know more about.",
		},
	}

	return &Responder{
		templates: templates,
		pick:      rand.Intn,
	}
}

// Classify maps a message to its response category. Categories are tested
// in a fixed priority order, first match wins.
func Classify(message string) Category {
	lower := strings.ToLower(message)

	switch {
	case containsAny(lower, greetingWords):
		return CategoryGreeting
	case containsAny(lower, skillWords):
		return CategorySkills
	case containsAny(lower, projectWords):
		return CategoryProjects
	case containsAny(lower, experienceWords):
		return CategoryExperience
	case containsAny(lower, contactWords):
		return CategoryContact
	default:
		return CategoryDefault
	}
}

// Respond returns a template reply for the message with its fixed
// confidence and source labels. Equally weighted templates are chosen at
// random.
func (r *Responder) Respond(message string) (string, float64, []string) {
	category := Classify(message)

	options := r.templates[category]
	response := options[r.pick(len(options))]

	return response, categoryConfidence[category], categorySources[category]
}

func containsAny(haystack string, words []string) bool {
	for _, w := range words {
		if strings.Contains(haystack, w) {
			return true
		}
	}
	return false
}
