package dto

import "time"

type Bookmark struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	URL       string    `json:"url"`
	ShortURL  string    `json:"short_url"`
	Visits    int64     `json:"visits"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    string    `json:"user_id"`
	User      User      `json:"user"`
}

type BookmarkStat struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	ShortCode string `json:"short_code"`
	Visits    int64  `json:"visits"`
}
