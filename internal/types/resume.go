package types

import (
	"fmt"
	"strings"
	"time"
)

// Resume 简历领域模型。
// ContentText 为上游解析服务提取出的纯文本，本服务将其视为黑盒输入。
type Resume struct {
	ResumeID        string
	UserID          string
	Name            string
	FileURL         string
	FilePathOSS     string
	ContentText     string
	Skills          []string
	ExperienceYears int
	Education       []string
	IsPrimary       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	// EmbeddingID 是该简历在向量索引中的点ID，首次索引后复用
	EmbeddingID *string
}

// EmbeddingText 构建简历的规范化嵌入文本
func (r *Resume) EmbeddingText() string {
	skillsText := strings.Join(r.Skills, ", ")
	educationText := strings.Join(r.Education, ", ")

	return strings.TrimSpace(fmt.Sprintf(
		"%s\nSkills: %s\nExperience: %d years\nEducation: %s",
		r.ContentText, skillsText, r.ExperienceYears, educationText,
	))
}
