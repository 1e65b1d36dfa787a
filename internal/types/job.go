package types

import (
	"fmt"
	"strings"
	"time"
)

// JobType 岗位类型的封闭枚举
type JobType string

const (
	JobTypeFullTime   JobType = "full_time"
	JobTypePartTime   JobType = "part_time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
	JobTypeRemote     JobType = "remote"
)

// ParseJobType 解析岗位类型字符串，未知值返回错误
func ParseJobType(s string) (JobType, error) {
	switch JobType(strings.ToLower(strings.TrimSpace(s))) {
	case JobTypeFullTime:
		return JobTypeFullTime, nil
	case JobTypePartTime:
		return JobTypePartTime, nil
	case JobTypeContract:
		return JobTypeContract, nil
	case JobTypeInternship:
		return JobTypeInternship, nil
	case JobTypeRemote:
		return JobTypeRemote, nil
	}
	return "", fmt.Errorf("未知的岗位类型: %q", s)
}

// Valid 判断岗位类型是否为已知枚举值
func (t JobType) Valid() bool {
	_, err := ParseJobType(string(t))
	return err == nil
}

func (t JobType) String() string {
	return string(t)
}

// JobSource 岗位来源渠道的封闭枚举
type JobSource string

const (
	JobSourceLinkedIn       JobSource = "linkedin"
	JobSourceIndeed         JobSource = "indeed"
	JobSourceCompanyWebsite JobSource = "company_website"
	JobSourceTwitter        JobSource = "twitter"
	JobSourceReddit         JobSource = "reddit"
	JobSourceManual         JobSource = "manual"
)

// ParseJobSource 解析来源渠道，未知值返回错误
func ParseJobSource(s string) (JobSource, error) {
	switch JobSource(strings.ToLower(strings.TrimSpace(s))) {
	case JobSourceLinkedIn:
		return JobSourceLinkedIn, nil
	case JobSourceIndeed:
		return JobSourceIndeed, nil
	case JobSourceCompanyWebsite:
		return JobSourceCompanyWebsite, nil
	case JobSourceTwitter:
		return JobSourceTwitter, nil
	case JobSourceReddit:
		return JobSourceReddit, nil
	case JobSourceManual:
		return JobSourceManual, nil
	}
	return "", fmt.Errorf("未知的岗位来源: %q", s)
}

func (s JobSource) String() string {
	return string(s)
}

// Job 岗位领域模型
type Job struct {
	JobID           string
	Title           string
	Company         string
	Description     string
	Location        string
	SalaryMin       *int
	SalaryMax       *int
	JobType         JobType
	SkillsRequired  []string
	ExperienceLevel string
	Source          JobSource
	SourceURL       string
	CompanyLogoURL  string
	PostedAt        time.Time
	ExpiresAt       *time.Time
	IsActive        bool
	// EmbeddingID 是该岗位在向量索引中的点ID，首次索引后写回主存储并复用
	EmbeddingID *string
}

// EmbeddingText 构建岗位的规范化嵌入文本。
// 字段拼接顺序是确定性的，同一条记录总是产生相同文本。
func (j *Job) EmbeddingText() string {
	skillsText := strings.Join(j.SkillsRequired, ", ")
	var salaryText string
	if j.SalaryMin != nil && j.SalaryMax != nil {
		salaryText = fmt.Sprintf("\nSalary: $%d - $%d", *j.SalaryMin, *j.SalaryMax)
	}

	return strings.TrimSpace(fmt.Sprintf(
		"Job Title: %s\nCompany: %s\nLocation: %s\nDescription: %s\nRequired Skills: %s\nExperience Level: %s%s",
		j.Title, j.Company, j.Location, j.Description, skillsText, j.ExperienceLevel, salaryText,
	))
}
