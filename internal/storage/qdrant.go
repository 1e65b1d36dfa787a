package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"career-match-go/internal/config"
	"career-match-go/internal/matching"
	"career-match-go/internal/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// 定义Qdrant的专用tracer
var qdrantTracer = otel.Tracer("career-match-go/storage/qdrant")

// 确保Qdrant实现了匹配服务的向量索引接口
var _ matching.VectorIndex = (*Qdrant)(nil)

// Qdrant 单个集合的向量索引客户端。
// 岗位集合和简历集合各持有一个实例，互不共享状态。
type Qdrant struct {
	endpoint       string
	collectionName string
	vectorSize     int
	distanceMetric string
	httpClient     *http.Client
}

// QdrantOption 定义Qdrant构造函数选项
type QdrantOption func(*Qdrant)

// WithDistanceMetric 设置距离度量
func WithDistanceMetric(metric string) QdrantOption {
	return func(q *Qdrant) {
		q.distanceMetric = metric
	}
}

// WithHTTPTimeout 设置HTTP客户端超时
func WithHTTPTimeout(timeout time.Duration) QdrantOption {
	return func(q *Qdrant) {
		q.httpClient = &http.Client{Timeout: timeout}
	}
}

// NewQdrant 创建指定集合的Qdrant客户端，集合不存在时自动创建
func NewQdrant(cfg *config.QdrantConfig, collectionName string, opts ...QdrantOption) (*Qdrant, error) {
	if cfg == nil {
		return nil, fmt.Errorf("qdrant配置不能为空")
	}
	if collectionName == "" {
		return nil, fmt.Errorf("集合名不能为空")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:6333"
	}
	vectorSize := cfg.Dimension
	if vectorSize <= 0 {
		vectorSize = 1024 // 与阿里云Embedding默认维度一致
	}

	q := &Qdrant{
		endpoint:       endpoint,
		collectionName: collectionName,
		vectorSize:     vectorSize,
		distanceMetric: "Cosine",
		httpClient:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(q)
	}

	if err := q.ensureCollectionExists(context.Background()); err != nil {
		return nil, fmt.Errorf("确保集合 '%s' 存在失败: %w", collectionName, err)
	}

	log.Printf("成功连接到Qdrant服务器: %s，并确保集合 '%s' 存在", endpoint, collectionName)
	return q, nil
}

// Collection 返回该客户端绑定的集合名
func (q *Qdrant) Collection() string {
	return q.collectionName
}

// ensureCollectionExists 确保向量集合存在
func (q *Qdrant) ensureCollectionExists(ctx context.Context) error {
	ctx, span := qdrantTracer.Start(ctx, "Qdrant.EnsureCollectionExists",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("net.peer.name", q.endpoint),
		attribute.String("db.system", "qdrant"),
		attribute.String("db.operation", "check_collection"),
		attribute.String("db.collection", q.collectionName),
		attribute.Int("db.vector_size", q.vectorSize),
	)

	url := fmt.Sprintf("%s/collections/%s", q.endpoint, q.collectionName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("创建检查集合请求失败: %w", err)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := q.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("发送检查集合请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		span.AddEvent("collection_not_found", trace.WithAttributes(
			attribute.String("action", "create_collection"),
		))
		log.Printf("集合 '%s' 不存在，将创建新集合", q.collectionName)
		return q.createCollection(ctx)
	} else if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("检查集合失败，状态码: %d, 响应: %s", resp.StatusCode, string(body))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	var collectionInfo struct {
		Result struct {
			Config struct {
				Params struct {
					Vectors struct {
						Size     int    `json:"size"`
						Distance string `json:"distance"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("读取集合信息响应失败: %w", err)
	}
	if err := json.Unmarshal(body, &collectionInfo); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("解析集合信息失败: %w", err)
	}

	existingSize := collectionInfo.Result.Config.Params.Vectors.Size
	existingDistance := collectionInfo.Result.Config.Params.Vectors.Distance
	if existingSize != q.vectorSize || existingDistance != q.distanceMetric {
		log.Printf("警告: 现有集合配置与当前配置不匹配。现有: 维度=%d, 距离=%s; 当前: 维度=%d, 距离=%s",
			existingSize, existingDistance, q.vectorSize, q.distanceMetric)
		span.AddEvent("collection_config_mismatch", trace.WithAttributes(
			attribute.Int("expected_vector_size", q.vectorSize),
			attribute.String("expected_distance", q.distanceMetric),
		))
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// createCollection 创建新的向量集合
func (q *Qdrant) createCollection(ctx context.Context) error {
	ctx, span := qdrantTracer.Start(ctx, "Qdrant.CreateCollection",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("db.system", "qdrant"),
		attribute.String("db.operation", "create_collection"),
		attribute.String("db.collection", q.collectionName),
		attribute.Int("db.vector_size", q.vectorSize),
		attribute.String("db.vector.distance", q.distanceMetric),
	)

	createReqBody := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     q.vectorSize,
			"distance": q.distanceMetric,
		},
		"optimizers_config": map[string]interface{}{
			"default_segment_number": 2,
		},
	}

	var result struct {
		Status string  `json:"status"`
		Time   float64 `json:"time"`
	}
	if err := q.doRequest(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", q.collectionName), createReqBody, &result); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("创建集合失败: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	log.Printf("已成功创建Qdrant集合: %s，维度: %d", q.collectionName, q.vectorSize)
	return nil
}

// UpsertPoint 写入或更新单个向量点，wait=true保证写入对后续搜索立即可见
func (q *Qdrant) UpsertPoint(ctx context.Context, pointID string, vector []float64, payload map[string]interface{}) error {
	ctx, span := qdrantTracer.Start(ctx, "Qdrant.UpsertPoint",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("db.system", "qdrant"),
		attribute.String("db.operation", "upsert_point"),
		attribute.String("db.collection", q.collectionName),
		attribute.String("point.id", pointID),
	)

	if pointID == "" {
		err := fmt.Errorf("pointID 不能为空")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if len(vector) != q.vectorSize {
		err := fmt.Errorf("向量维度(%d)与配置维度(%d)不匹配", len(vector), q.vectorSize)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	requestBody := map[string]interface{}{
		"points": []map[string]interface{}{
			{
				"id":      pointID,
				"vector":  vector,
				"payload": payload,
			},
		},
	}

	var result struct {
		Result struct {
			Status string `json:"status"`
		} `json:"result"`
		Status string  `json:"status"`
		Time   float64 `json:"time"`
	}
	err := q.doRequest(ctx, http.MethodPut, fmt.Sprintf("/collections/%s/points?wait=true", q.collectionName), requestBody, &result)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(
		attribute.String("qdrant.response_status", result.Status),
		attribute.Float64("qdrant.response_time", result.Time),
	)
	span.SetStatus(codes.Ok, "")
	return nil
}

// Search 搜索与查询向量最相似的点。
// filter 为payload字段上的等值条件合取，scoreThreshold<=0 时不做索引侧过滤。
func (q *Qdrant) Search(ctx context.Context, vector []float64, limit int, scoreThreshold float64, filter map[string]interface{}) ([]matching.IndexHit, error) {
	ctx, span := qdrantTracer.Start(ctx, "Qdrant.Search",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("db.system", "qdrant"),
		attribute.String("db.operation", "search_points"),
		attribute.String("db.collection", q.collectionName),
		attribute.Int("search.limit", limit),
		attribute.Float64("search.score_threshold", scoreThreshold),
		attribute.Int("query_vector.size", len(vector)),
	)

	if len(vector) != q.vectorSize {
		err := fmt.Errorf("查询向量维度(%d)与配置维度(%d)不匹配", len(vector), q.vectorSize)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	searchReq := map[string]interface{}{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if scoreThreshold > 0 {
		searchReq["score_threshold"] = scoreThreshold
	}
	if qdrantFilter := buildEqualityFilter(filter); qdrantFilter != nil {
		searchReq["filter"] = qdrantFilter
	}

	var result struct {
		Result []struct {
			ID      string                 `json:"id"`
			Score   float64                `json:"score"`
			Payload map[string]interface{} `json:"payload"`
		} `json:"result"`
		Status string  `json:"status"`
		Time   float64 `json:"time"`
	}
	err := q.doRequest(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/search", q.collectionName), searchReq, &result)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	hits := make([]matching.IndexHit, 0, len(result.Result))
	for _, point := range result.Result {
		hits = append(hits, matching.IndexHit{
			ID:      point.ID,
			Score:   point.Score,
			Payload: point.Payload,
		})
	}

	span.SetAttributes(
		attribute.Int("search.results.count", len(hits)),
		attribute.String("qdrant.response_status", result.Status),
		attribute.Float64("qdrant.response_time", result.Time),
	)
	span.SetStatus(codes.Ok, "")
	return hits, nil
}

// DeletePoint 删除指定ID的向量点
func (q *Qdrant) DeletePoint(ctx context.Context, pointID string) error {
	ctx, span := qdrantTracer.Start(ctx, "Qdrant.DeletePoint",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("db.system", "qdrant"),
		attribute.String("db.operation", "delete_point"),
		attribute.String("db.collection", q.collectionName),
		attribute.String("point.id", pointID),
	)

	if pointID == "" {
		span.SetStatus(codes.Ok, "no point to delete")
		return nil
	}

	reqBody := map[string]interface{}{
		"points": []string{pointID},
	}
	var result struct {
		Status string  `json:"status"`
		Time   float64 `json:"time"`
	}
	err := q.doRequest(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/delete?wait=true", q.collectionName), reqBody, &result)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// CountPoints 精确统计集合中的点数量
func (q *Qdrant) CountPoints(ctx context.Context) (int64, error) {
	ctx, span := qdrantTracer.Start(ctx, "Qdrant.CountPoints",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("db.system", "qdrant"),
		attribute.String("db.operation", "count_points"),
		attribute.String("db.collection", q.collectionName),
	)

	countReqBody := map[string]interface{}{
		"exact": true,
	}
	var result struct {
		Result struct {
			Count int64 `json:"count"`
		} `json:"result"`
		Status string  `json:"status"`
		Time   float64 `json:"time"`
	}
	err := q.doRequest(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/count", q.collectionName), countReqBody, &result)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetAttributes(attribute.Int64("qdrant.points.count", result.Result.Count))
	span.SetStatus(codes.Ok, "")
	return result.Result.Count, nil
}

// buildEqualityFilter 将等值条件映射转换为Qdrant的must/match过滤器格式
func buildEqualityFilter(filter map[string]interface{}) map[string]interface{} {
	if len(filter) == 0 {
		return nil
	}
	must := make([]map[string]interface{}, 0, len(filter))
	for key, value := range filter {
		must = append(must, map[string]interface{}{
			"key": key,
			"match": map[string]interface{}{
				"value": value,
			},
		})
	}
	return map[string]interface{}{"must": must}
}

// doRequest 执行一次Qdrant REST调用，注入追踪上下文并解析响应
func (q *Qdrant) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	ctx, span := qdrantTracer.Start(ctx, fmt.Sprintf("%s %s", method, path),
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("net.peer.name", q.endpoint),
		attribute.String("db.system", "qdrant"),
		attribute.String("db.operation", path),
	)

	var req *http.Request
	var err error
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeVectorDB)
			return err
		}
		req, err = http.NewRequestWithContext(ctx, method, q.endpoint+path, bytes.NewBuffer(jsonBody))
		if err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeVectorDB)
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		span.SetAttributes(attribute.Int("http.request.body.size", len(jsonBody)))
	} else {
		req, err = http.NewRequestWithContext(ctx, method, q.endpoint+path, nil)
		if err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeVectorDB)
			return err
		}
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := q.httpClient.Do(req)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeHTTP)
		return err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeHTTP)
		return err
	}
	span.SetAttributes(attribute.Int("http.response.body.size", len(respBody)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err = fmt.Errorf("qdrant API error: status=%d, body=%s", resp.StatusCode, string(respBody))
		tracing.RecordHTTPError(span, err, resp.StatusCode)
		return err
	}

	if result != nil && len(respBody) > 0 {
		if err = json.Unmarshal(respBody, result); err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeVectorDB)
			return err
		}
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
