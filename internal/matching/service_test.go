package matching

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"career-match-go/internal/types"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder 为每段文本返回固定向量
type fakeEmbedder struct {
	vector    []float64
	callCount int
	err       error
}

func (f *fakeEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	f.callCount++
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float64, len(texts))
	for i := range texts {
		vectors[i] = f.vector
	}
	return vectors, nil
}

// pairEmbedder 为两段文本返回不同向量，用于余弦相似度测试
type pairEmbedder struct {
	first, second []float64
}

func (f *pairEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	if len(texts) != 2 {
		return nil, fmt.Errorf("期望2段文本, 实际 %d", len(texts))
	}
	return [][]float64{f.first, f.second}, nil
}

// fakeIndex 内存向量索引
type fakeIndex struct {
	hits       []IndexHit
	points     map[string][]float64
	lastLimit  int
	lastFilter map[string]interface{}
	lastThresh float64
	searchErr  error
	upsertErr  error
}

func newFakeIndex(hits ...IndexHit) *fakeIndex {
	return &fakeIndex{hits: hits, points: make(map[string][]float64)}
}

func (f *fakeIndex) UpsertPoint(ctx context.Context, pointID string, vector []float64, payload map[string]interface{}) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.points[pointID] = vector
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, vector []float64, limit int, scoreThreshold float64, filter map[string]interface{}) ([]IndexHit, error) {
	f.lastLimit = limit
	f.lastFilter = filter
	f.lastThresh = scoreThreshold
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.hits, nil
}

func (f *fakeIndex) DeletePoint(ctx context.Context, pointID string) error {
	delete(f.points, pointID)
	return nil
}

func (f *fakeIndex) CountPoints(ctx context.Context) (int64, error) {
	return int64(len(f.points)), nil
}

// fakeStore 内存主存储
type fakeStore struct {
	jobs            map[string]*types.Job
	resumes         map[string]*types.Resume
	embeddingWrites map[string]string
	storeErr        error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobs:            make(map[string]*types.Job),
		resumes:         make(map[string]*types.Resume),
		embeddingWrites: make(map[string]string),
	}
}

func (f *fakeStore) GetJobByID(ctx context.Context, jobID string) (*types.Job, error) {
	if f.storeErr != nil {
		return nil, f.storeErr
	}
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("岗位 %s: %w", jobID, ErrNotFound)
	}
	return job, nil
}

func (f *fakeStore) UpdateJobEmbeddingID(ctx context.Context, jobID string, embeddingID string) error {
	f.embeddingWrites[jobID] = embeddingID
	return nil
}

func (f *fakeStore) GetResumeByID(ctx context.Context, resumeID string) (*types.Resume, error) {
	if f.storeErr != nil {
		return nil, f.storeErr
	}
	resume, ok := f.resumes[resumeID]
	if !ok {
		return nil, fmt.Errorf("简历 %s: %w", resumeID, ErrNotFound)
	}
	return resume, nil
}

func intPtr(v int) *int { return &v }

func newTestService(t *testing.T, emb TextEmbedder, jobIdx, resumeIdx VectorIndex, store *fakeStore) *MatchService {
	t.Helper()
	s, err := NewMatchService(emb, jobIdx, resumeIdx, store, store)
	require.NoError(t, err)
	return s
}

func testResume(id string, skills []string, years int) *types.Resume {
	return &types.Resume{
		ResumeID:        id,
		UserID:          "user-" + id,
		ContentText:     "experienced engineer",
		Skills:          skills,
		ExperienceYears: years,
	}
}

func testJob(id string, skills []string) *types.Job {
	return &types.Job{
		JobID:           id,
		Title:           "Backend Engineer",
		Company:         "Acme",
		Description:     "build backend services",
		Location:        "Berlin",
		JobType:         types.JobTypeFullTime,
		SkillsRequired:  skills,
		ExperienceLevel: "senior",
		IsActive:        true,
	}
}

func TestNewMatchService_NilDependencies(t *testing.T) {
	emb := &fakeEmbedder{vector: []float64{1}}
	idx := newFakeIndex()
	store := newFakeStore()

	_, err := NewMatchService(nil, idx, idx, store, store)
	assert.Error(t, err)
	_, err = NewMatchService(emb, nil, idx, store, store)
	assert.Error(t, err)
	_, err = NewMatchService(emb, idx, idx, nil, store)
	assert.Error(t, err)
	_, err = NewMatchService(emb, idx, idx, store, nil)
	assert.Error(t, err)
}

func TestFindMatchingJobs_ValidationBeforeAnyCall(t *testing.T) {
	emb := &fakeEmbedder{vector: []float64{1, 0}}
	store := newFakeStore()
	s := newTestService(t, emb, newFakeIndex(), newFakeIndex(), store)

	cases := []struct {
		resumeID string
		filters  JobMatchFilters
	}{
		{"", JobMatchFilters{Limit: 10}},
		{"r1", JobMatchFilters{Limit: 0}},
		{"r1", JobMatchFilters{Limit: 101}},
		{"r1", JobMatchFilters{Limit: 10, MinScore: -0.1}},
		{"r1", JobMatchFilters{Limit: 10, MinScore: 1.5}},
		{"r1", JobMatchFilters{Limit: 10, JobType: "freelance"}},
	}
	for _, tc := range cases {
		_, err := s.FindMatchingJobs(context.Background(), tc.resumeID, tc.filters)
		assert.ErrorIs(t, err, ErrValidation, "resumeID=%q filters=%+v", tc.resumeID, tc.filters)
	}
	// 校验失败时不应触发任何向量化调用
	assert.Equal(t, 0, emb.callCount)
}

func TestFindMatchingJobs_RankingAndTieBreak(t *testing.T) {
	store := newFakeStore()
	store.resumes["r1"] = testResume("r1", []string{"python", "go"}, 6)
	// 同分的两个岗位按ID升序，更高分的岗位排最前
	store.jobs["job-b"] = testJob("job-b", []string{"python", "go"})
	store.jobs["job-a"] = testJob("job-a", []string{"python", "go"})
	store.jobs["job-c"] = testJob("job-c", []string{"rust"})

	jobIdx := newFakeIndex(
		IndexHit{ID: "p-b", Score: 0.8, Payload: map[string]interface{}{"job_id": "job-b"}},
		IndexHit{ID: "p-c", Score: 0.9, Payload: map[string]interface{}{"job_id": "job-c"}},
		IndexHit{ID: "p-a", Score: 0.8, Payload: map[string]interface{}{"job_id": "job-a"}},
	)
	emb := &fakeEmbedder{vector: []float64{1, 0}}
	s := newTestService(t, emb, jobIdx, newFakeIndex(), store)

	ranked, err := s.FindMatchingJobs(context.Background(), "r1", JobMatchFilters{Limit: 10})
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	// job-a/job-b: 0.8*0.6 + 1.0*0.4 = 0.88 → 88.0
	// job-c:       0.9*0.6 + 0*0.4   = 0.54 → 54.0
	assert.Equal(t, "job-a", ranked[0].Job.JobID)
	assert.Equal(t, "job-b", ranked[1].Job.JobID)
	assert.Equal(t, "job-c", ranked[2].Job.JobID)
	assert.Equal(t, 88.0, ranked[0].MatchScore)
	assert.Equal(t, 88.0, ranked[1].MatchScore)
	assert.Equal(t, 54.0, ranked[2].MatchScore)
	assert.Equal(t, 80.0, ranked[0].SemanticScore)
	assert.Equal(t, 100.0, ranked[0].SkillMatchPercentage)

	// 超量取回：limit=10 时索引查询量为20
	assert.Equal(t, 20, jobIdx.lastLimit)
	assert.Equal(t, true, jobIdx.lastFilter["is_active"])
}

func TestFindMatchingJobs_DanglingHitSkipped(t *testing.T) {
	store := newFakeStore()
	store.resumes["r1"] = testResume("r1", []string{"go"}, 3)
	store.jobs["job-a"] = testJob("job-a", []string{"go"})

	jobIdx := newFakeIndex(
		IndexHit{ID: "p-gone", Score: 0.95, Payload: map[string]interface{}{"job_id": "job-gone"}},
		IndexHit{ID: "p-nopayload", Score: 0.9, Payload: map[string]interface{}{}},
		IndexHit{ID: "p-a", Score: 0.7, Payload: map[string]interface{}{"job_id": "job-a"}},
	)
	s := newTestService(t, &fakeEmbedder{vector: []float64{1}}, jobIdx, newFakeIndex(), store)

	ranked, err := s.FindMatchingJobs(context.Background(), "r1", JobMatchFilters{Limit: 10})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "job-a", ranked[0].Job.JobID)
}

func TestFindMatchingJobs_SalaryFilterAndLimit(t *testing.T) {
	store := newFakeStore()
	store.resumes["r1"] = testResume("r1", []string{"go"}, 3)

	lowPay := testJob("job-low", []string{"go"})
	lowPay.SalaryMax = intPtr(50000)
	highPay := testJob("job-high", []string{"go"})
	highPay.SalaryMax = intPtr(120000)
	noPay := testJob("job-nopay", []string{"go"})
	store.jobs["job-low"] = lowPay
	store.jobs["job-high"] = highPay
	store.jobs["job-nopay"] = noPay

	jobIdx := newFakeIndex(
		IndexHit{ID: "1", Score: 0.9, Payload: map[string]interface{}{"job_id": "job-low"}},
		IndexHit{ID: "2", Score: 0.8, Payload: map[string]interface{}{"job_id": "job-high"}},
		IndexHit{ID: "3", Score: 0.7, Payload: map[string]interface{}{"job_id": "job-nopay"}},
	)
	s := newTestService(t, &fakeEmbedder{vector: []float64{1}}, jobIdx, newFakeIndex(), store)

	// 薪资上限低于下限要求的岗位被过滤，薪资未知的岗位保留
	ranked, err := s.FindMatchingJobs(context.Background(), "r1",
		JobMatchFilters{Limit: 10, SalaryMin: intPtr(80000)})
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "job-high", ranked[0].Job.JobID)
	assert.Equal(t, "job-nopay", ranked[1].Job.JobID)

	// limit截断
	ranked, err = s.FindMatchingJobs(context.Background(), "r1", JobMatchFilters{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, ranked, 1)
}

func TestFindMatchingJobs_IndexFailureIsDependencyError(t *testing.T) {
	store := newFakeStore()
	store.resumes["r1"] = testResume("r1", []string{"go"}, 3)
	jobIdx := newFakeIndex()
	jobIdx.searchErr = errors.New("connection refused")
	s := newTestService(t, &fakeEmbedder{vector: []float64{1}}, jobIdx, newFakeIndex(), store)

	_, err := s.FindMatchingJobs(context.Background(), "r1", JobMatchFilters{Limit: 10})
	var depErr *DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "vector_index", depErr.Dependency)
}

func TestFindMatchingCandidates_ExperienceFilter(t *testing.T) {
	store := newFakeStore()
	store.jobs["j1"] = testJob("j1", []string{"go", "python"})
	store.resumes["r-junior"] = testResume("r-junior", []string{"go", "python"}, 2)
	store.resumes["r-senior"] = testResume("r-senior", []string{"go", "python"}, 8)

	resumeIdx := newFakeIndex(
		IndexHit{ID: "1", Score: 0.9, Payload: map[string]interface{}{"resume_id": "r-junior"}},
		IndexHit{ID: "2", Score: 0.8, Payload: map[string]interface{}{"resume_id": "r-senior"}},
	)
	s := newTestService(t, &fakeEmbedder{vector: []float64{1}}, newFakeIndex(), resumeIdx, store)

	ranked, err := s.FindMatchingCandidates(context.Background(), "j1",
		CandidateMatchFilters{Limit: 10, MinExperience: intPtr(5)})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "r-senior", ranked[0].ResumeID)
	assert.Equal(t, "user-r-senior", ranked[0].UserID)
	assert.Equal(t, 8, ranked[0].ExperienceYears)
}

func TestFindMatchingCandidates_UnknownJob(t *testing.T) {
	s := newTestService(t, &fakeEmbedder{vector: []float64{1}}, newFakeIndex(), newFakeIndex(), newFakeStore())

	_, err := s.FindMatchingCandidates(context.Background(), "missing", CandidateMatchFilters{Limit: 10})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCalculateMatchScore(t *testing.T) {
	store := newFakeStore()
	store.resumes["r1"] = testResume("r1", []string{"python", "go"}, 6)
	store.jobs["j1"] = testJob("j1", []string{"python", "go"})

	// 相同向量 → 余弦相似度1.0；技能全中、经验区间内 → overall = 100
	emb := &pairEmbedder{first: []float64{1, 2, 3}, second: []float64{1, 2, 3}}
	s := newTestService(t, emb, newFakeIndex(), newFakeIndex(), store)

	result, err := s.CalculateMatchScore(context.Background(), "r1", "j1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.OverallScore)
	assert.Equal(t, types.MatchLevelExcellent, result.MatchLevel)

	// 正交向量 → 语义0；overall = 0*0.5 + 1*0.35 + 1*0.15 = 50.0
	emb2 := &pairEmbedder{first: []float64{1, 0}, second: []float64{0, 1}}
	s2 := newTestService(t, emb2, newFakeIndex(), newFakeIndex(), store)
	result, err = s2.CalculateMatchScore(context.Background(), "r1", "j1")
	require.NoError(t, err)
	assert.Equal(t, 50.0, result.OverallScore)
	assert.Equal(t, 0.0, result.SemanticScore)
}

func TestCalculateMatchScore_Validation(t *testing.T) {
	s := newTestService(t, &fakeEmbedder{vector: []float64{1}}, newFakeIndex(), newFakeIndex(), newFakeStore())

	_, err := s.CalculateMatchScore(context.Background(), "", "j1")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.CalculateMatchScore(context.Background(), "r1", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSearchJobsSemantic_CompanyFilterAndLimit(t *testing.T) {
	store := newFakeStore()
	acme := testJob("j-acme", []string{"go"})
	acme.Company = "Acme Robotics"
	other := testJob("j-other", []string{"go"})
	other.Company = "Initech"
	second := testJob("j-acme2", []string{"go"})
	second.Company = "ACME Labs"
	store.jobs["j-acme"] = acme
	store.jobs["j-other"] = other
	store.jobs["j-acme2"] = second

	jobIdx := newFakeIndex(
		IndexHit{ID: "1", Score: 0.9, Payload: map[string]interface{}{"job_id": "j-acme"}},
		IndexHit{ID: "2", Score: 0.8, Payload: map[string]interface{}{"job_id": "j-other"}},
		IndexHit{ID: "3", Score: 0.7, Payload: map[string]interface{}{"job_id": "j-acme2"}},
	)
	s := newTestService(t, &fakeEmbedder{vector: []float64{1}}, jobIdx, newFakeIndex(), store)

	// 公司名过滤不区分大小写
	hits, err := s.SearchJobsSemantic(context.Background(), "robotics engineer",
		SearchFilters{Limit: 10, Company: "acme"})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "j-acme", hits[0].Job.JobID)
	assert.Equal(t, 90.0, hits[0].RelevanceScore)
	assert.Equal(t, "j-acme2", hits[1].Job.JobID)

	// 固定的索引侧相似度下限
	assert.Equal(t, semanticSearchThreshold, jobIdx.lastThresh)

	// limit到量即停
	hits, err = s.SearchJobsSemantic(context.Background(), "engineer", SearchFilters{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestSearchJobsSemantic_EmptyQuery(t *testing.T) {
	s := newTestService(t, &fakeEmbedder{vector: []float64{1}}, newFakeIndex(), newFakeIndex(), newFakeStore())

	_, err := s.SearchJobsSemantic(context.Background(), "   ", SearchFilters{Limit: 10})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestIndexJob_DeterministicAndIdempotent(t *testing.T) {
	store := newFakeStore()
	job := testJob("j1", []string{"go"})
	store.jobs["j1"] = job

	jobIdx := newFakeIndex()
	s := newTestService(t, &fakeEmbedder{vector: []float64{1, 2}}, jobIdx, newFakeIndex(), store)

	pointID, err := s.IndexJob(context.Background(), job)
	require.NoError(t, err)
	require.NotEmpty(t, pointID)

	// 嵌入ID回写主存储并保存在实体上
	assert.Equal(t, pointID, store.embeddingWrites["j1"])
	require.NotNil(t, job.EmbeddingID)
	assert.Equal(t, pointID, *job.EmbeddingID)

	// 重复索引落在同一个点上，索引中点数不增
	again, err := s.IndexJob(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, pointID, again)
	assert.Len(t, jobIdx.points, 1)

	// 即便嵌入ID丢失，点ID也从岗位ID确定性派生
	job.EmbeddingID = nil
	store.embeddingWrites = map[string]string{}
	recovered, err := s.IndexJob(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, pointID, recovered)
	assert.Len(t, jobIdx.points, 1)
}

func TestIndexResume_NoStoreWriteThrough(t *testing.T) {
	store := newFakeStore()
	resume := testResume("r1", []string{"go"}, 3)
	store.resumes["r1"] = resume

	resumeIdx := newFakeIndex()
	s := newTestService(t, &fakeEmbedder{vector: []float64{1}}, newFakeIndex(), resumeIdx, store)

	pointID, err := s.IndexResume(context.Background(), resume)
	require.NoError(t, err)
	assert.Len(t, resumeIdx.points, 1)
	require.NotNil(t, resume.EmbeddingID)
	assert.Equal(t, pointID, *resume.EmbeddingID)
	// 简历没有嵌入ID回写通道
	assert.Empty(t, store.embeddingWrites)

	again, err := s.IndexResume(context.Background(), resume)
	require.NoError(t, err)
	assert.Equal(t, pointID, again)
	assert.Len(t, resumeIdx.points, 1)
}

func TestIndexJob_EmbedderFailure(t *testing.T) {
	store := newFakeStore()
	job := testJob("j1", []string{"go"})
	emb := &fakeEmbedder{err: errors.New("quota exceeded")}
	s := newTestService(t, emb, newFakeIndex(), newFakeIndex(), store)

	_, err := s.IndexJob(context.Background(), job)
	var depErr *DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "embedder", depErr.Dependency)
	// 失败时不回写嵌入ID
	assert.Nil(t, job.EmbeddingID)
}

func TestStats(t *testing.T) {
	jobIdx := newFakeIndex()
	jobIdx.points["a"] = []float64{1}
	jobIdx.points["b"] = []float64{1}
	resumeIdx := newFakeIndex()
	resumeIdx.points["c"] = []float64{1}

	store := newFakeStore()
	s, err := NewMatchService(&fakeEmbedder{vector: []float64{1}}, jobIdx, resumeIdx, store, store,
		WithEmbeddingModelInfo("text-embedding-v3", 1024))
	require.NoError(t, err)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.IndexedJobs)
	assert.Equal(t, int64(1), stats.IndexedResumes)
	assert.Equal(t, "text-embedding-v3", stats.EmbeddingModel)
	assert.Equal(t, 1024, stats.EmbeddingDimension)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float64{1, 2}, []float64{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float64{1, 0}, []float64{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float64{0, 0}, []float64{1, 1}))
	assert.Equal(t, 0.0, cosineSimilarity([]float64{1}, []float64{1, 2}))
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
}
