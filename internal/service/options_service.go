package service

import (
	"context"
	"encoding/json"
	"errors"

	"neighbourhood/internal/model"
	"neighbourhood/internal/pkg"
	"neighbourhood/internal/repository/mysql"
	"neighbourhood/internal/repository/redis"

	"gorm.io/gorm"
)

// DefaultOptions 启动时补齐的默认配置
var DefaultOptions = map[string]string{
	model.OptionsFlags:      `{"vocabulary":["Inappropriate","Hate","Harassment or Bullying","Spam","Misinformation","Against Community Rules"]}`,
	model.OptionsEngagement: `{"post":5,"comment":1,"community":10}`,
	model.OptionsValidation: `{"min_title_length":3,"max_title_length":200,"min_username_length":3,"max_username_length":32,"disallowed_strings":["<script","javascript:"]}`,
}

// EngagementWeights 各内容事件的参与度权重
type EngagementWeights struct {
	Post      int64 `json:"post"`
	Comment   int64 `json:"comment"`
	Community int64 `json:"community"`
}

// ValidationRules 校验边界与禁用字符串
type ValidationRules struct {
	MinTitleLength    int      `json:"min_title_length"`
	MaxTitleLength    int      `json:"max_title_length"`
	MinUsernameLength int      `json:"min_username_length"`
	MaxUsernameLength int      `json:"max_username_length"`
	DisallowedStrings []string `json:"disallowed_strings"`
}

type flagOptions struct {
	Vocabulary []string `json:"vocabulary"`
}

type OptionsService struct {
	repo  *mysql.OptionsRepository
	cache *redis.OptionsCacheRepository // 可为 nil（测试或未接 redis）
}

func NewOptionsService(db *gorm.DB, cache *redis.OptionsCacheRepository) *OptionsService {
	return &OptionsService{
		repo:  &mysql.OptionsRepository{DB: db},
		cache: cache,
	}
}

// SeedDefaults 启动时调用，已有配置不覆盖
func (s *OptionsService) SeedDefaults() error {
	return s.repo.SeedDefaults(DefaultOptions)
}

// settings 旁路缓存读：miss 回源 MySQL 再回填；库里没有则用默认值
func (s *OptionsService) settings(ctx context.Context, component string) ([]byte, error) {
	if s.cache != nil {
		if val, ok, err := s.cache.Get(ctx, component); err == nil && ok {
			return val, nil
		}
	}

	opts, err := s.repo.Find(component)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		def, ok := DefaultOptions[component]
		if !ok {
			return nil, pkg.NotFound("options component %s not found", component)
		}
		return []byte(def), nil
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, component, opts.Settings)
	}
	return opts.Settings, nil
}

// Get 管理端读取原始配置
func (s *OptionsService) Get(ctx context.Context, component string) (map[string]any, error) {
	raw, err := s.settings(ctx, component)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update 管理端写入配置并失效缓存
func (s *OptionsService) Update(ctx context.Context, component string, settings map[string]any) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	if err := s.repo.Upsert(component, raw); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, component)
	}
	return nil
}

// FlagVocabulary 管理员配置的标记词表
func (s *OptionsService) FlagVocabulary(ctx context.Context) ([]string, error) {
	raw, err := s.settings(ctx, model.OptionsFlags)
	if err != nil {
		return nil, err
	}
	var opts flagOptions
	if err := json.Unmarshal(raw, &opts); err != nil {
		return nil, err
	}
	return opts.Vocabulary, nil
}

func (s *OptionsService) EngagementWeights(ctx context.Context) (EngagementWeights, error) {
	var w EngagementWeights
	raw, err := s.settings(ctx, model.OptionsEngagement)
	if err != nil {
		return w, err
	}
	err = json.Unmarshal(raw, &w)
	return w, err
}

func (s *OptionsService) Validation(ctx context.Context) (ValidationRules, error) {
	var rules ValidationRules
	raw, err := s.settings(ctx, model.OptionsValidation)
	if err != nil {
		return rules, err
	}
	err = json.Unmarshal(raw, &rules)
	return rules, err
}
