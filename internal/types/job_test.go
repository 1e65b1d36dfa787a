package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJobType(t *testing.T) {
	for _, valid := range []string{"full_time", "part_time", "contract", "internship", "remote"} {
		parsed, err := ParseJobType(valid)
		require.NoError(t, err, "input=%q", valid)
		assert.Equal(t, valid, parsed.String())
	}

	// 大小写与首尾空白被归一化
	parsed, err := ParseJobType("  Full_Time ")
	require.NoError(t, err)
	assert.Equal(t, JobTypeFullTime, parsed)

	_, err = ParseJobType("freelance")
	assert.Error(t, err)
	_, err = ParseJobType("")
	assert.Error(t, err)
}

func TestJobTypeValid(t *testing.T) {
	assert.True(t, JobTypeRemote.Valid())
	assert.False(t, JobType("gig").Valid())
}

func TestParseJobSource(t *testing.T) {
	for _, valid := range []string{"linkedin", "indeed", "company_website", "twitter", "reddit", "manual"} {
		parsed, err := ParseJobSource(valid)
		require.NoError(t, err, "input=%q", valid)
		assert.Equal(t, valid, parsed.String())
	}

	_, err := ParseJobSource("craigslist")
	assert.Error(t, err)
}

func TestJobEmbeddingText(t *testing.T) {
	salaryMin, salaryMax := 90000, 120000
	job := &Job{
		Title:           "Backend Engineer",
		Company:         "Acme",
		Location:        "Berlin",
		Description:     "Build APIs",
		SkillsRequired:  []string{"Go", "PostgreSQL"},
		ExperienceLevel: "senior",
		SalaryMin:       &salaryMin,
		SalaryMax:       &salaryMax,
	}

	text := job.EmbeddingText()
	assert.Contains(t, text, "Job Title: Backend Engineer")
	assert.Contains(t, text, "Required Skills: Go, PostgreSQL")
	assert.Contains(t, text, "Salary: $90000 - $120000")

	// 同一条记录总是产生相同文本
	assert.Equal(t, text, job.EmbeddingText())

	// 薪资不完整时不输出薪资段
	job.SalaryMax = nil
	assert.NotContains(t, job.EmbeddingText(), "Salary:")
}

func TestResumeEmbeddingText(t *testing.T) {
	resume := &Resume{
		ContentText:     "Seasoned backend developer",
		Skills:          []string{"Go", "Redis"},
		ExperienceYears: 7,
		Education:       []string{"BSc Computer Science"},
	}

	text := resume.EmbeddingText()
	assert.Contains(t, text, "Seasoned backend developer")
	assert.Contains(t, text, "Skills: Go, Redis")
	assert.Contains(t, text, "Experience: 7 years")
	assert.Contains(t, text, "Education: BSc Computer Science")
}
