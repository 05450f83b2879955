package mysql

import "gorm.io/gorm"

// AutoMigrate creates or updates the ledger tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&accountModel{}, &transactionLogModel{}, &outboxEventModel{})
}

// DropAll drops the ledger tables.
func DropAll(db *gorm.DB) error {
	return db.Migrator().DropTable(&outboxEventModel{}, &transactionLogModel{}, &accountModel{})
}
