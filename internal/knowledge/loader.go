package knowledge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/portfolio-ai-assistant/internal/jsonx"
)

// Source labels attached to items by section of origin.
const (
	sourceSkills   = "Skills Section"
	sourceProjects = "Projects Section"
	sourceResume   = "Resume Section"
	sourceGeneral  = "General Information"
	sourceDefault  = "Default Information"
)

// Data file names expected under the data directory. Each is optional.
const (
	skillsFile     = "skills.json"
	projectsFile   = "projects.json"
	experienceFile = "experience.json"
	generalFile    = "general_info.json"
)

// Loader reads the portfolio data files from a fixed directory.
type Loader struct {
	dataDir string
	logger  *zap.Logger
}

// NewLoader creates a loader rooted at dataDir.
func NewLoader(dataDir string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{dataDir: dataDir, logger: logger}
}

// Load reads every data file that exists and flattens it into context items.
// A file that fails to read or parse is logged and skipped; Load only fails
// if the data directory itself is unreadable. If no file contributes any
// item, a small default set is returned so the assistant always has
// something to ground on.
func (l *Loader) Load() ([]ContextItem, error) {
	if l.dataDir != "" {
		if _, err := os.Stat(l.dataDir); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("data directory %s: %w", l.dataDir, err)
		}
	}

	var items []ContextItem
	items = append(items, l.loadSkills()...)
	items = append(items, l.loadProjects()...)
	items = append(items, l.loadExperience()...)
	items = append(items, l.loadGeneralInfo()...)

	if len(items) == 0 {
		l.logger.Warn("no portfolio data found, using default context",
			zap.String("data_dir", l.dataDir))
		return defaultItems(), nil
	}

	l.logger.Info("portfolio context loaded",
		zap.String("data_dir", l.dataDir),
		zap.Int("items", len(items)))
	return items, nil
}

// readFile returns the file contents, or nil if the file is absent or broken.
func (l *Loader) readFile(name string) []byte {
	path := filepath.Join(l.dataDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn("failed to read data file",
				zap.String("file", name), zap.Error(err))
		}
		return nil
	}
	return data
}

func (l *Loader) loadSkills() []ContextItem {
	data := l.readFile(skillsFile)
	if data == nil {
		return nil
	}

	var skills SkillsFile
	if err := jsonx.Unmarshal(data, &skills); err != nil {
		l.logger.Warn("skipping malformed skills file", zap.Error(err))
		return nil
	}

	var items []ContextItem

	// JSON objects have no order; sort categories so reloads are stable.
	categories := make([]string, 0, len(skills.Technical))
	for cat := range skills.Technical {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	for _, cat := range categories {
		entries := skills.Technical[cat]
		parts := make([]string, 0, len(entries))
		for _, s := range entries {
			level := s.Level
			if level == "" {
				level = "intermediate"
			}
			parts = append(parts, fmt.Sprintf("%s (%s)", s.Name, level))
		}
		items = append(items, ContextItem{
			Content:  fmt.Sprintf("Technical skills in %s: %s", cat, strings.Join(parts, ", ")),
			Type:     TypeSkills,
			Category: cat,
			Source:   sourceSkills,
		})
	}

	if len(skills.Soft) > 0 {
		items = append(items, ContextItem{
			Content:  fmt.Sprintf("Soft skills: %s", strings.Join(skills.Soft, ", ")),
			Type:     TypeSkills,
			Category: "soft",
			Source:   sourceSkills,
		})
	}

	return items
}

func (l *Loader) loadProjects() []ContextItem {
	data := l.readFile(projectsFile)
	if data == nil {
		return nil
	}

	var projects []Project
	if err := jsonx.Unmarshal(data, &projects); err != nil {
		l.logger.Warn("skipping malformed projects file", zap.Error(err))
		return nil
	}

	items := make([]ContextItem, 0, len(projects))
	for _, p := range projects {
		var b strings.Builder
		fmt.Fprintf(&b, "Project: %s. ", p.Title)
		fmt.Fprintf(&b, "Description: %s. ", p.Description)
		if len(p.Technologies) > 0 {
			fmt.Fprintf(&b, "Technologies used: %s. ", strings.Join(p.Technologies, ", "))
		}
		if len(p.Challenges) > 0 {
			fmt.Fprintf(&b, "Challenges: %s. ", strings.Join(p.Challenges, ". "))
		}
		if len(p.Solutions) > 0 {
			fmt.Fprintf(&b, "Solutions: %s. ", strings.Join(p.Solutions, ". "))
		}
		items = append(items, ContextItem{
			Content:  b.String(),
			Type:     TypeProject,
			Category: p.Category,
			Source:   sourceProjects,
		})
	}
	return items
}

func (l *Loader) loadExperience() []ContextItem {
	data := l.readFile(experienceFile)
	if data == nil {
		return nil
	}

	var entries []Experience
	if err := jsonx.Unmarshal(data, &entries); err != nil {
		l.logger.Warn("skipping malformed experience file", zap.Error(err))
		return nil
	}

	items := make([]ContextItem, 0, len(entries))
	for _, e := range entries {
		var b strings.Builder
		fmt.Fprintf(&b, "Experience at %s: ", e.Company)
		fmt.Fprintf(&b, "Position: %s. ", e.Position)
		fmt.Fprintf(&b, "Description: %s. ", e.Description)
		if len(e.Achievements) > 0 {
			fmt.Fprintf(&b, "Achievements: %s. ", strings.Join(e.Achievements, ". "))
		}
		if len(e.Technologies) > 0 {
			fmt.Fprintf(&b, "Technologies used: %s. ", strings.Join(e.Technologies, ", "))
		}
		items = append(items, ContextItem{
			Content: b.String(),
			Type:    TypeExperience,
			Source:  sourceResume,
		})
	}
	return items
}

func (l *Loader) loadGeneralInfo() []ContextItem {
	data := l.readFile(generalFile)
	if data == nil {
		return nil
	}

	var info map[string]interface{}
	if err := jsonx.Unmarshal(data, &info); err != nil {
		l.logger.Warn("skipping malformed general info file", zap.Error(err))
		return nil
	}

	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var items []ContextItem
	for _, key := range keys {
		content, ok := generalContent(key, info[key])
		if !ok {
			continue
		}
		items = append(items, ContextItem{
			Content:  content,
			Type:     TypeGeneral,
			Category: key,
			Source:   sourceGeneral,
		})
	}
	return items
}

// generalContent renders one top-level general_info entry. String values
// become "key: value", string lists are comma-joined, anything else is
// skipped.
func generalContent(key string, value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return fmt.Sprintf("%s: %s", key, v), true
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, elem := range v {
			s, ok := elem.(string)
			if !ok {
				return "", false
			}
			parts = append(parts, s)
		}
		return fmt.Sprintf("%s: %s", key, strings.Join(parts, ", ")), true
	default:
		return "", false
	}
}

// defaultItems is the built-in context used when no data files are present.
func defaultItems() []ContextItem {
	return []ContextItem{
		{
			Content:  "I am a full-stack developer with experience in React, Node.js, Python, and MongoDB.",
			Type:     TypeSkills,
			Category: "technical",
			Source:   sourceDefault,
		},
		{
			Content:  "I have worked on various web applications, AI projects, and data analysis tools.",
			Type:     "projects",
			Category: "general",
			Source:   sourceDefault,
		},
		{
			Content:  "I have experience in software development, machine learning, and cloud technologies.",
			Type:     TypeExperience,
			Category: "general",
			Source:   sourceDefault,
		},
	}
}
