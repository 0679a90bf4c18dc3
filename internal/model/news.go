package model

import "time"

// News is a feed item shown on the home screen. Items are created and
// managed by admin accounts; ordinary users only read them.
type News struct {
	ID        string    `json:"id"        db:"id"`
	Title     string    `json:"title"     db:"title"`
	Body      string    `json:"body"      db:"body"`
	ImagePath string    `json:"imagePath" db:"image_path"` // relative path of an attached image (may be empty)
	AuthorID  string    `json:"authorId"  db:"author_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
