package cache

import (
	"context"
	"encoding/json"
	"time"

	"trendscope-backend/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	treeKey        = "trendscope:categories:tree"
	DefaultTreeTTL = 5 * time.Minute
)

// TreeCache stores the rendered public category tree. A nil *TreeCache or one
// without a client is a permanent miss, so callers need no redis in
// development. Errors are logged and treated as misses.
type TreeCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTreeCache(client *redis.Client, ttl time.Duration) *TreeCache {
	if ttl <= 0 {
		ttl = DefaultTreeTTL
	}
	return &TreeCache{client: client, ttl: ttl}
}

func (tc *TreeCache) enabled() bool {
	return tc != nil && tc.client != nil
}

func (tc *TreeCache) Get(ctx context.Context) ([]models.Category, bool) {
	if !tc.enabled() {
		return nil, false
	}
	raw, err := tc.client.Get(ctx, treeKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logrus.WithError(err).Warn("category tree cache get failed")
		return nil, false
	}

	var tree []models.Category
	if err := json.Unmarshal(raw, &tree); err != nil {
		logrus.WithError(err).Warn("category tree cache holds invalid JSON")
		return nil, false
	}
	return tree, true
}

func (tc *TreeCache) Set(ctx context.Context, tree []models.Category) {
	if !tc.enabled() {
		return
	}
	raw, err := json.Marshal(tree)
	if err != nil {
		logrus.WithError(err).Warn("category tree cache encode failed")
		return
	}
	if err := tc.client.Set(ctx, treeKey, raw, tc.ttl).Err(); err != nil {
		logrus.WithError(err).Warn("category tree cache set failed")
	}
}

// Invalidate drops the cached tree after any category change.
func (tc *TreeCache) Invalidate(ctx context.Context) {
	if !tc.enabled() {
		return
	}
	if err := tc.client.Del(ctx, treeKey).Err(); err != nil {
		logrus.WithError(err).Warn("category tree cache invalidate failed")
	}
}
