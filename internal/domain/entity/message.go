package entity

import "time"

// Message is one entry of the persisted message log
type Message struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient_id"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	Channel     string    `json:"channel"`
	CreatedAt   time.Time `json:"created_at"`
}
