package models

import (
	"time"

	"cloud.google.com/go/civil"
)

// Notification warns that a stock row is about to expire.
type Notification struct {
	ID             string    `bson:"_id" json:"id"`
	StockID        int64     `bson:"stock_id" json:"stock_id"`
	IngredientName string    `bson:"ingredient_name" json:"ingredient_name"`
	ExpirationDate string    `bson:"expiration_date" json:"expiration_date"`
	ReadYet        bool      `bson:"read_yet" json:"read_yet"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}

// NotificationList is the notification inbox together with its unread count.
type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}

// SweepReport summarises one run of the daily expiry sweep.
type SweepReport struct {
	Date          civil.Date `json:"date"`
	Scanned       int        `json:"scanned"`
	Disabled      int        `json:"disabled"`
	Notified      int        `json:"notified"`
	Failed        int        `json:"failed"`
	ExpiringItems []string   `json:"expiring_items"`
}
