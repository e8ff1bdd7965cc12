package pkg

import "reflect"

// SanitizePatch 比对请求字段与当前值，返回需要写库的更新集。
// 命中 protected 字段直接返回 Forbidden，不产生任何写入；
// 与当前值相同的字段静默丢弃（视为未触碰）。
func SanitizePatch(updates map[string]any, current map[string]any, protected []string) (map[string]any, error) {
	blocked := make(map[string]struct{}, len(protected))
	for _, f := range protected {
		blocked[f] = struct{}{}
	}

	result := make(map[string]any)
	for key, value := range updates {
		if _, ok := blocked[key]; ok {
			return nil, Forbidden("field %s cannot be modified", key)
		}
		cur, exists := current[key]
		// 字段未设置或值有变化才进入更新集
		if !exists || !reflect.DeepEqual(cur, value) {
			result[key] = value
		}
	}
	return result, nil
}
