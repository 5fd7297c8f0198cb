package middleware

import (
	"errors"
	"net/http"
	"strings"

	workerRepo "sewa/database/repository/worker"
	"sewa/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// WorkerIDKey is the gin context key holding the authenticated worker id.
const WorkerIDKey = "workerID"

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

// JWTAuthWorkerMiddleware validates worker tokens. A token is accepted only while it
// matches the hash stored on the worker; positive results are cached in authCache,
// which may be nil.
func JWTAuthWorkerMiddleware(repo workerRepo.WorkerRepository, authCache *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := zap.L()
		ctx := c.Request.Context()

		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}

		workerID, role, err := utils.ExtractSubject(tokenString)
		if err != nil || role != utils.RoleWorker {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		computedHash := utils.HashToken(tokenString)
		cacheKey := utils.AuthCachePrefix + computedHash

		if authCache != nil {
			cached, err := authCache.Get(ctx, cacheKey).Result()
			if err == nil && cached == workerID {
				// Sliding expiration.
				if err := authCache.Expire(ctx, cacheKey, utils.AuthCacheTTL).Err(); err != nil {
					logger.Error("Failed to refresh auth cache TTL", zap.Error(err))
				}
				c.Set(WorkerIDKey, workerID)
				c.Next()
				return
			} else if err != nil && !errors.Is(err, redis.Nil) {
				logger.Error("Error checking auth cache", zap.Error(err))
			}
		}

		w, err := repo.GetByID(ctx, workerID)
		if err != nil {
			logger.Warn("Worker not found when validating token", zap.String("workerID", workerID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Worker not found"})
			return
		}
		if w.TokenHash == "" || computedHash != w.TokenHash {
			logger.Warn("Token hash mismatch", zap.String("workerID", workerID))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token mismatch"})
			return
		}

		if authCache != nil {
			if err := authCache.Set(ctx, cacheKey, workerID, utils.AuthCacheTTL).Err(); err != nil {
				logger.Error("Failed to set auth cache", zap.Error(err))
			}
		}

		c.Set(WorkerIDKey, workerID)
		c.Next()
	}
}
