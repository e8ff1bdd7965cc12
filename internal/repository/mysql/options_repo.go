package mysql

import (
	"neighbourhood/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OptionsRepository struct {
	DB *gorm.DB
}

func (r *OptionsRepository) Find(component string) (*model.Options, error) {
	var opts model.Options
	err := r.DB.Where("component = ?", component).First(&opts).Error
	return &opts, err
}

// Upsert 管理端写入配置
func (r *OptionsRepository) Upsert(component string, settings []byte) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "component"}},
		DoUpdates: clause.AssignmentColumns([]string{"settings"}),
	}).Create(&model.Options{
		Component: component,
		Settings:  datatypes.JSON(settings),
	}).Error
}

// SeedDefaults 启动时补齐缺失的默认配置，已有配置不覆盖
func (r *OptionsRepository) SeedDefaults(defaults map[string]string) error {
	for component, settings := range defaults {
		if err := r.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "component"}},
			DoNothing: true,
		}).Create(&model.Options{
			Component: component,
			Settings:  datatypes.JSON(settings),
		}).Error; err != nil {
			return err
		}
	}
	return nil
}
