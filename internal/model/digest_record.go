package model

import (
	"time"
)

// DeliveryStatus defines the status of a digest delivery
type DeliveryStatus string

const (
	DeliveryStatusSuccess DeliveryStatus = "SUCCESS"
	DeliveryStatusFailed  DeliveryStatus = "FAILED"
)

// DigestRecord represents a record of a dashboard digest sent to a chat
type DigestRecord struct {
	ID             uint           `gorm:"primaryKey"`
	SubscriptionID uint           `gorm:"index;not null"`
	ChatID         int64          `gorm:"index;not null"`
	Period         string         `gorm:"size:32;index;not null"`
	Status         DeliveryStatus `gorm:"size:20;not null"`
	FailReason     string         `gorm:"size:500"`
	Rows           int
	DeliveredAt    time.Time
	CreatedAt      time.Time
}

// TableName returns the table name for DigestRecord
func (DigestRecord) TableName() string {
	return "digest_records"
}
