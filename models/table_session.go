package models

import "time"

// TrayItem adalah satu baris pesanan di tray. ItemName is the key inside a
// tray, price is snapshotted when the item is added and never re-read from
// the catalog.
type TrayItem struct {
	ItemName  string  `json:"itemName"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Confirmed bool    `json:"confirmed"`
	ImageURL  string  `json:"imageUrl,omitempty"`
}

// TableSession binds one table to one active customer party. ActiveKey holds
// the table number while the session is active and NULL after it ends; the
// unique index on it is what guarantees at most one active session per table
// even under concurrent creates.
type TableSession struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	TableNumber   string     `gorm:"type:varchar(50);not null;index" json:"tableNumber"`
	CustomerName  string     `gorm:"type:varchar(100);not null" json:"customerName"`
	CustomerPhone string     `gorm:"type:varchar(30);not null" json:"customerPhone"`
	PinHash       string     `gorm:"type:varchar(100);not null" json:"-"`
	Tray          []TrayItem `gorm:"serializer:json" json:"tray"`
	Active        bool       `gorm:"not null;default:true" json:"active"`
	ActiveKey     *string    `gorm:"type:varchar(50);uniqueIndex" json:"-"`
	CreatedAt     time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updatedAt"`
}
