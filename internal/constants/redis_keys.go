package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// MatchModulePrefix 匹配模块
	MatchModulePrefix = "match"
	// FileModulePrefix 文件模块
	FileModulePrefix = "file"

	// EntityLock 分布式锁实体
	EntityLock = "lock"
	// EntityDedupSet 去重集合实体
	EntityDedupSet = "dedup_set"
	// EntityMD5ToID MD5到简历ID的映射实体
	EntityMD5ToID = "md5_to_id"

	// KeyIndexLock 索引写入分布式锁 (STRING)
	// 格式: app:match:lock:{entity_type}:{entity_id}
	KeyIndexLock = AppPrefix + ":" + MatchModulePrefix + ":" + EntityLock + ":%s:%s"

	// KeyUploadMD5Set 上传文件MD5集合，用于快速去重 (SET)
	// 格式: app:file:dedup_set
	KeyUploadMD5Set = AppPrefix + ":" + FileModulePrefix + ":" + EntityDedupSet

	// KeyMD5ToResumeID MD5到ResumeID的映射 (STRING)
	// 格式: app:file:md5_to_id:{md5}
	KeyMD5ToResumeID = AppPrefix + ":" + FileModulePrefix + ":" + EntityMD5ToID + ":%s"
)
