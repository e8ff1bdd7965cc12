package mysql

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var DB *gorm.DB

func InitDB(dsn string) error {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// lockForUpdate sqlite 方言不支持 FOR UPDATE，跳过行锁
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() != "mysql" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
