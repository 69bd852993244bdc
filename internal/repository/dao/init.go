package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&Product{},
		&Transaction{},
		&DeliveryToken{},
		&UserStats{},
		&CreditLedgerEntry{},
		&ServiceOffer{},
		&ServiceRequest{},
		&Notification{},
	)
}
