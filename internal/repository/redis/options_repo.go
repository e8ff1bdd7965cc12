package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	OptionsKeyPrefix = "options:component" // 缓存各组件的配置 JSON
	OptionsTTL       = time.Minute
)

// OptionsCacheRepository 配置的旁路缓存：读 miss 回源 MySQL 后 Set，
// 管理端写入后 Invalidate
type OptionsCacheRepository struct {
	ttl time.Duration
}

func NewOptionsCacheRepository() *OptionsCacheRepository {
	return &OptionsCacheRepository{ttl: OptionsTTL}
}

func (r *OptionsCacheRepository) key(component string) string {
	return fmt.Sprintf("%s:%s", OptionsKeyPrefix, component)
}

// Get 返回缓存的配置 JSON；第二个返回值表示是否命中
func (r *OptionsCacheRepository) Get(ctx context.Context, component string) ([]byte, bool, error) {
	val, err := Client.Get(ctx, r.key(component)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (r *OptionsCacheRepository) Set(ctx context.Context, component string, settings []byte) error {
	return Client.Set(ctx, r.key(component), settings, r.ttl).Err()
}

func (r *OptionsCacheRepository) Invalidate(ctx context.Context, component string) error {
	return Client.Del(ctx, r.key(component)).Err()
}
