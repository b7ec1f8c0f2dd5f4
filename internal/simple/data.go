// Package simple is the self-contained fallback assistant: no embeddings, no
// generation model, just keyword-matched templates over the portfolio data.
package simple

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/portfolio-ai-assistant/internal/jsonx"
	"github.com/portfolio-ai-assistant/internal/knowledge"
)

// PortfolioData is the raw content of the four portfolio files.
type PortfolioData struct {
	General    map[string]interface{}
	Projects   []knowledge.Project
	Skills     knowledge.SkillsFile
	Experience []knowledge.Experience
}

// LoadData reads the portfolio files. Missing or broken files leave their
// section empty; the templates fall back to generic wording.
func LoadData(dataDir string, logger *zap.Logger) *PortfolioData {
	if logger == nil {
		logger = zap.NewNop()
	}

	data := &PortfolioData{
		General: map[string]interface{}{},
	}

	read := func(name string, v interface{}) {
		raw, err := os.ReadFile(filepath.Join(dataDir, name))
		if err != nil {
			if !os.IsNotExist(err) {
				logger.Warn("failed to read data file", zap.String("file", name), zap.Error(err))
			}
			return
		}
		if err := jsonx.Unmarshal(raw, v); err != nil {
			logger.Warn("skipping malformed data file", zap.String("file", name), zap.Error(err))
		}
	}

	read("general_info.json", &data.General)
	read("projects.json", &data.Projects)
	read("skills.json", &data.Skills)
	read("experience.json", &data.Experience)

	logger.Info("portfolio data loaded",
		zap.Int("projects", len(data.Projects)),
		zap.Int("experience", len(data.Experience)),
		zap.Int("general_keys", len(data.General)))

	return data
}

// OwnerName returns the portfolio owner's name from the general info, or a
// generic stand-in.
func (d *PortfolioData) OwnerName() string {
	if name, ok := d.General["name"].(string); ok && name != "" {
		return name
	}
	return "the portfolio owner"
}

// Email returns the contact email from the general info, if present.
func (d *PortfolioData) Email() string {
	if email, ok := d.General["email"].(string); ok {
		return email
	}
	return ""
}

// Specializations returns the owner's listed specializations, or a default
// set.
func (d *PortfolioData) Specializations() []string {
	if raw, ok := d.General["specializations"].([]interface{}); ok {
		out := make([]string, 0, len(raw))
		for _, v := range raw {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return []string{"Full-Stack Development", "AI/ML", "MERN Stack"}
}

// Degree returns the degree being pursued from the general info, if present.
func (d *PortfolioData) Degree() string {
	if edu, ok := d.General["education"].(map[string]interface{}); ok {
		if deg, ok := edu["degree"].(string); ok && deg != "" {
			return deg
		}
	}
	return "a degree"
}
