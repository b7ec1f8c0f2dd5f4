package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadSkills(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "skills.json", `{
		"technical": {"backend": [{"name": "Python", "level": "expert"}]},
		"soft": ["communication"]
	}`)

	loader := NewLoader(dir, zaptest.NewLogger(t))
	items, err := loader.Load()
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Technical skills in backend: Python (expert)", items[0].Content)
	assert.Equal(t, TypeSkills, items[0].Type)
	assert.Equal(t, "backend", items[0].Category)
	assert.Equal(t, "Skills Section", items[0].Source)

	assert.Equal(t, "Soft skills: communication", items[1].Content)
	assert.Equal(t, "soft", items[1].Category)
}

func TestLoadSkillsDefaultLevel(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "skills.json", `{"technical": {"frontend": [{"name": "React"}]}}`)

	loader := NewLoader(dir, zaptest.NewLogger(t))
	items, err := loader.Load()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Technical skills in frontend: React (intermediate)", items[0].Content)
}

func TestLoadProjects(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "projects.json", `[{
		"title": "Chatbot",
		"description": "A chat assistant",
		"technologies": ["Go", "Ollama"],
		"challenges": ["Latency"],
		"solutions": ["Caching"],
		"category": "ai"
	}]`)

	loader := NewLoader(dir, zaptest.NewLogger(t))
	items, err := loader.Load()
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, TypeProject, item.Type)
	assert.Equal(t, "ai", item.Category)
	assert.Equal(t, "Projects Section", item.Source)
	assert.Contains(t, item.Content, "Project: Chatbot. ")
	assert.Contains(t, item.Content, "Description: A chat assistant. ")
	assert.Contains(t, item.Content, "Technologies used: Go, Ollama. ")
	assert.Contains(t, item.Content, "Challenges: Latency. ")
	assert.Contains(t, item.Content, "Solutions: Caching. ")
}

func TestLoadExperience(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "experience.json", `[{
		"company": "Acme",
		"position": "Engineer",
		"description": "Built services",
		"achievements": ["Shipped v2"],
		"technologies": ["Go"]
	}]`)

	loader := NewLoader(dir, zaptest.NewLogger(t))
	items, err := loader.Load()
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, TypeExperience, item.Type)
	assert.Equal(t, "Resume Section", item.Source)
	assert.Contains(t, item.Content, "Experience at Acme: ")
	assert.Contains(t, item.Content, "Position: Engineer. ")
	assert.Contains(t, item.Content, "Achievements: Shipped v2. ")
}

func TestLoadGeneralInfo(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "general_info.json", `{
		"name": "Jamie",
		"specializations": ["Go", "ML"],
		"years": 5
	}`)

	loader := NewLoader(dir, zaptest.NewLogger(t))
	items, err := loader.Load()
	require.NoError(t, err)

	// Numeric values are skipped; keys are emitted in sorted order.
	require.Len(t, items, 2)
	assert.Equal(t, "name: Jamie", items[0].Content)
	assert.Equal(t, "name", items[0].Category)
	assert.Equal(t, "specializations: Go, ML", items[1].Content)
	assert.Equal(t, TypeGeneral, items[0].Type)
	assert.Equal(t, "General Information", items[0].Source)
}

func TestLoadDefaultsWhenNoFiles(t *testing.T) {
	loader := NewLoader(t.TempDir(), zaptest.NewLogger(t))
	items, err := loader.Load()
	require.NoError(t, err)

	require.Len(t, items, 3)
	for _, item := range items {
		assert.Equal(t, "Default Information", item.Source)
		assert.NotEmpty(t, item.Content)
	}
}

func TestLoadSkipsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "skills.json", `{not json`)
	writeFile(t, dir, "general_info.json", `{"name": "Jamie"}`)

	loader := NewLoader(dir, zaptest.NewLogger(t))
	items, err := loader.Load()
	require.NoError(t, err)

	// The broken skills file contributes nothing; general info still loads.
	require.Len(t, items, 1)
	assert.Equal(t, "name: Jamie", items[0].Content)
}
