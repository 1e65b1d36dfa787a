package models

import (
	"encoding/json"
	"fmt"
	"time"

	"career-match-go/internal/types"

	"gorm.io/datatypes"
)

// Job 岗位信息表
type Job struct {
	JobID           string         `gorm:"type:char(36);primaryKey"`
	Title           string         `gorm:"type:varchar(255);not null"`
	Company         string         `gorm:"type:varchar(255);not null;index:idx_jobs_company"`
	Description     string         `gorm:"type:text;not null"`
	Location        string         `gorm:"type:varchar(255);index:idx_jobs_location"`
	SalaryMin       *int           `gorm:"type:int"`
	SalaryMax       *int           `gorm:"type:int"`
	JobType         string         `gorm:"type:varchar(50);index:idx_jobs_job_type"`
	SkillsRequired  datatypes.JSON `gorm:"type:json"`
	ExperienceLevel string         `gorm:"type:varchar(50)"`
	Source          string         `gorm:"type:varchar(50)"`
	SourceURL       string         `gorm:"type:varchar(1024)"`
	CompanyLogoURL  string         `gorm:"type:varchar(1024)"`
	PostedAt        time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	ExpiresAt       *time.Time     `gorm:"type:datetime(6)"`
	IsActive        bool           `gorm:"default:true;index:idx_jobs_is_active"`
	// EmbeddingID 向量索引中的点ID，首次索引成功后回写
	EmbeddingID *string   `gorm:"type:char(36)"`
	CreatedAt   time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt   time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (Job) TableName() string {
	return "jobs"
}

// Resume 简历表。ContentText 为上游解析服务提取的纯文本。
type Resume struct {
	ResumeID        string         `gorm:"type:char(36);primaryKey"`
	UserID          string         `gorm:"type:char(36);not null;index:idx_resumes_user_id"`
	Name            string         `gorm:"type:varchar(255)"`
	FileURL         string         `gorm:"type:varchar(1024)"`
	FilePathOSS     string         `gorm:"type:varchar(1024)"`
	ContentText     string         `gorm:"type:text"`
	Skills          datatypes.JSON `gorm:"type:json"`
	ExperienceYears int            `gorm:"type:int;default:0"`
	Education       datatypes.JSON `gorm:"type:json"`
	IsPrimary       bool           `gorm:"default:false"`
	ContentMD5      string         `gorm:"type:char(32);index:idx_resumes_content_md5"`
	EmbeddingID     *string        `gorm:"type:char(36)"`
	CreatedAt       time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt       time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (Resume) TableName() string {
	return "resumes"
}

// ToDomain 将数据库记录转换为领域模型
func (j *Job) ToDomain() (*types.Job, error) {
	skills, err := jsonToStringSlice(j.SkillsRequired)
	if err != nil {
		return nil, fmt.Errorf("解析岗位技能列表失败: %w", err)
	}
	return &types.Job{
		JobID:           j.JobID,
		Title:           j.Title,
		Company:         j.Company,
		Description:     j.Description,
		Location:        j.Location,
		SalaryMin:       j.SalaryMin,
		SalaryMax:       j.SalaryMax,
		JobType:         types.JobType(j.JobType),
		SkillsRequired:  skills,
		ExperienceLevel: j.ExperienceLevel,
		Source:          types.JobSource(j.Source),
		SourceURL:       j.SourceURL,
		CompanyLogoURL:  j.CompanyLogoURL,
		PostedAt:        j.PostedAt,
		ExpiresAt:       j.ExpiresAt,
		IsActive:        j.IsActive,
		EmbeddingID:     j.EmbeddingID,
	}, nil
}

// JobFromDomain 将领域模型转换为数据库记录
func JobFromDomain(job *types.Job) (*Job, error) {
	skills, err := StringSliceToJSON(job.SkillsRequired)
	if err != nil {
		return nil, fmt.Errorf("序列化岗位技能列表失败: %w", err)
	}
	return &Job{
		JobID:           job.JobID,
		Title:           job.Title,
		Company:         job.Company,
		Description:     job.Description,
		Location:        job.Location,
		SalaryMin:       job.SalaryMin,
		SalaryMax:       job.SalaryMax,
		JobType:         job.JobType.String(),
		SkillsRequired:  skills,
		ExperienceLevel: job.ExperienceLevel,
		Source:          job.Source.String(),
		SourceURL:       job.SourceURL,
		CompanyLogoURL:  job.CompanyLogoURL,
		PostedAt:        job.PostedAt,
		ExpiresAt:       job.ExpiresAt,
		IsActive:        job.IsActive,
		EmbeddingID:     job.EmbeddingID,
	}, nil
}

// ToDomain 将数据库记录转换为领域模型
func (r *Resume) ToDomain() (*types.Resume, error) {
	skills, err := jsonToStringSlice(r.Skills)
	if err != nil {
		return nil, fmt.Errorf("解析简历技能列表失败: %w", err)
	}
	education, err := jsonToStringSlice(r.Education)
	if err != nil {
		return nil, fmt.Errorf("解析简历教育经历失败: %w", err)
	}
	return &types.Resume{
		ResumeID:        r.ResumeID,
		UserID:          r.UserID,
		Name:            r.Name,
		FileURL:         r.FileURL,
		FilePathOSS:     r.FilePathOSS,
		ContentText:     r.ContentText,
		Skills:          skills,
		ExperienceYears: r.ExperienceYears,
		Education:       education,
		IsPrimary:       r.IsPrimary,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		EmbeddingID:     r.EmbeddingID,
	}, nil
}

// ResumeFromDomain 将领域模型转换为数据库记录
func ResumeFromDomain(resume *types.Resume) (*Resume, error) {
	skills, err := StringSliceToJSON(resume.Skills)
	if err != nil {
		return nil, fmt.Errorf("序列化简历技能列表失败: %w", err)
	}
	education, err := StringSliceToJSON(resume.Education)
	if err != nil {
		return nil, fmt.Errorf("序列化简历教育经历失败: %w", err)
	}
	return &Resume{
		ResumeID:        resume.ResumeID,
		UserID:          resume.UserID,
		Name:            resume.Name,
		FileURL:         resume.FileURL,
		FilePathOSS:     resume.FilePathOSS,
		ContentText:     resume.ContentText,
		Skills:          skills,
		ExperienceYears: resume.ExperienceYears,
		Education:       education,
		IsPrimary:       resume.IsPrimary,
		EmbeddingID:     resume.EmbeddingID,
	}, nil
}

// StringSliceToJSON 将字符串切片序列化为datatypes.JSON，nil切片存为空数组
func StringSliceToJSON(s []string) (datatypes.JSON, error) {
	if s == nil {
		s = []string{}
	}
	bytes, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}

func jsonToStringSlice(data datatypes.JSON) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var result []string
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}
