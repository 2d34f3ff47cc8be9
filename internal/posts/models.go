package posts

import "time"

type Group struct {
	ID          string
	Title       string
	Slug        string
	Description string
}

type Post struct {
	ID             string
	Title          string
	Text           string
	ImagePath      string
	AuthorID       string
	AuthorUsername string
	GroupID        string
	GroupSlug      string
	GroupTitle     string
	CreatedAt      time.Time
}

type Comment struct {
	ID             string
	PostID         string
	AuthorID       string
	AuthorUsername string
	Text           string
	CreatedAt      time.Time
}

// Page is one slice of a post listing, newest first.
type Page struct {
	Posts      []Post
	Number     int
	TotalPages int
	TotalCount int
}

func (p Page) HasPrev() bool   { return p.Number > 1 }
func (p Page) HasNext() bool   { return p.Number < p.TotalPages }
func (p Page) PrevNumber() int { return p.Number - 1 }
func (p Page) NextNumber() int { return p.Number + 1 }
