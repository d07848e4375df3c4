package cache

import (
	"strings"

	"quiz-ai-cache/internal/domain"
)

const (
	GlobalKeyPrefix = "quizaicache"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// ContentKey is the redis key of one generated content piece,
// e.g. "quizaicache:content:theory:17:vi".
func ContentKey(key domain.CacheKey) string {
	return GenerateCacheKey("content", string(key.Type), key.QuestionID, string(key.Language))
}
