package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeSkills_Basic(t *testing.T) {
	analysis := AnalyzeSkills(
		[]string{"python", "docker", "sql"},
		[]string{"python", "kubernetes", "sql", "go"},
	)

	assert.Equal(t, []string{"Python", "SQL"}, analysis.Matching)
	assert.Equal(t, []string{"GO", "Kubernetes"}, analysis.Missing)
	assert.Equal(t, []string{"Docker"}, analysis.Extra)
	assert.Equal(t, 50.0, analysis.MatchPercentage)
}

func TestAnalyzeSkills_CaseInsensitiveAndDuplicates(t *testing.T) {
	a := AnalyzeSkills(
		[]string{"Python", "PYTHON", " python "},
		[]string{"python"},
	)
	b := AnalyzeSkills(
		[]string{"python"},
		[]string{"Python", "PYTHON"},
	)

	// 大小写与重复折叠后两个方向应一致
	assert.Equal(t, a.Matching, b.Matching)
	assert.Equal(t, 100.0, a.MatchPercentage)
	assert.Equal(t, 100.0, b.MatchPercentage)
	assert.Empty(t, a.Missing)
	assert.Empty(t, a.Extra)
}

func TestAnalyzeSkills_EmptyTargetMeansFullMatch(t *testing.T) {
	analysis := AnalyzeSkills([]string{"go", "rust"}, nil)

	assert.Equal(t, 100.0, analysis.MatchPercentage)
	assert.Empty(t, analysis.Matching)
	assert.Empty(t, analysis.Missing)
	assert.Equal(t, []string{"GO", "Rust"}, analysis.Extra)
}

func TestAnalyzeSkills_EmptySubject(t *testing.T) {
	analysis := AnalyzeSkills(nil, []string{"go", "python"})

	assert.Equal(t, 0.0, analysis.MatchPercentage)
	assert.Equal(t, []string{"GO", "Python"}, analysis.Missing)
	assert.Empty(t, analysis.Matching)
	assert.Empty(t, analysis.Extra)
}

func TestAnalyzeSkills_PercentageRounding(t *testing.T) {
	// 1/3 → 33.333... → 33.3
	analysis := AnalyzeSkills([]string{"go"}, []string{"go", "python", "rust"})
	assert.Equal(t, 33.3, analysis.MatchPercentage)
}

func TestAnalyzeSkills_InputNotModified(t *testing.T) {
	subject := []string{"PYTHON", "Docker"}
	target := []string{"python"}
	AnalyzeSkills(subject, target)

	assert.Equal(t, []string{"PYTHON", "Docker"}, subject)
	assert.Equal(t, []string{"python"}, target)
}

func TestDisplaySkill(t *testing.T) {
	cases := map[string]string{
		"aws":              "AWS",
		"go":               "GO",
		"sql":              "SQL",
		"python":           "Python",
		"machine learning": "Machine Learning",
		"ci":               "CI",
	}
	for input, expected := range cases {
		assert.Equal(t, expected, displaySkill(input), "input=%q", input)
	}
}
