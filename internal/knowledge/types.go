// Package knowledge loads the portfolio data files and flattens them into
// retrievable context items.
package knowledge

// ItemType classifies a context item by the section it was derived from.
type ItemType string

const (
	TypeSkills     ItemType = "skills"
	TypeProject    ItemType = "project"
	TypeExperience ItemType = "experience"
	TypeGeneral    ItemType = "general"
)

// ContextItem is one retrievable knowledge-base fact with its metadata.
// Items are immutable once created; the collection is rebuilt wholesale on
// reload.
type ContextItem struct {
	Content  string   `json:"content"`
	Type     ItemType `json:"type"`
	Category string   `json:"category"`
	Source   string   `json:"source"`
}

// Skill is a single technical skill with a proficiency level.
type Skill struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

// SkillsFile is the schema of skills.json.
type SkillsFile struct {
	Technical map[string][]Skill `json:"technical"`
	Soft      []string           `json:"soft"`
}

// Project is one entry of projects.json.
type Project struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Challenges   []string `json:"challenges"`
	Solutions    []string `json:"solutions"`
	Category     string   `json:"category"`
}

// Experience is one entry of experience.json.
type Experience struct {
	Company      string   `json:"company"`
	Position     string   `json:"position"`
	Description  string   `json:"description"`
	Achievements []string `json:"achievements"`
	Technologies []string `json:"technologies"`
}
