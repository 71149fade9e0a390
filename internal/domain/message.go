package domain

import (
	"context"
	"time"
)

// Message is one communication about a listing between two accounts.
type Message struct {
	ID            int64     `json:"id"`
	ListingID     int64     `json:"listingId"`
	FromAccountID int64     `json:"fromAccountId"`
	ToAccountID   int64     `json:"toAccountId"`
	FromName      string    `json:"fromName"`
	ToName        string    `json:"toName"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Thread is a listing together with its messages, oldest first.
type Thread struct {
	Listing  Listing   `json:"listing"`
	Messages []Message `json:"messages"`
}

// MessageRepository is the port for message persistence.
type MessageRepository interface {
	CreateMessage(ctx context.Context, m Message) (*Message, error)
	ListMessagesByListing(ctx context.Context, listingID int64) ([]Message, error)
}
