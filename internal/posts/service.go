package posts

import (
	"context"
	"errors"
	"strconv"

	"backend-postline/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const PageSize = 10

const selectPosts = `
	SELECT p.id, COALESCE(p.title,''), p.text, COALESCE(p.image_path,''),
	       p.author_id, u.username,
	       COALESCE(p.group_id::text,''), COALESCE(g.slug,''), COALESCE(g.title,''),
	       p.created_at
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN groups g ON g.id = p.group_id`

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) IndexPage(ctx context.Context, rawPage string) (Page, error) {
	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts`).Scan(&total); err != nil {
		return Page{}, err
	}

	page := newPage(rawPage, total)
	rows, err := s.db.Query(ctx, selectPosts+`
		ORDER BY p.created_at DESC
		LIMIT $1 OFFSET $2
	`, PageSize, page.offset())
	if err != nil {
		return Page{}, err
	}
	return scanPage(page, rows)
}

func (s *Service) GroupPage(ctx context.Context, slug, rawPage string) (Group, Page, error) {
	group, err := s.GroupBySlug(ctx, slug)
	if err != nil {
		return Group{}, Page{}, err
	}

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts WHERE group_id=$1`, group.ID).Scan(&total); err != nil {
		return Group{}, Page{}, err
	}

	page := newPage(rawPage, total)
	rows, err := s.db.Query(ctx, selectPosts+`
		WHERE p.group_id=$1
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`, group.ID, PageSize, page.offset())
	if err != nil {
		return Group{}, Page{}, err
	}
	page, err = scanPage(page, rows)
	return group, page, err
}

func (s *Service) ProfilePage(ctx context.Context, authorID, rawPage string) (Page, error) {
	total, err := s.CountByAuthor(ctx, authorID)
	if err != nil {
		return Page{}, err
	}

	page := newPage(rawPage, total)
	rows, err := s.db.Query(ctx, selectPosts+`
		WHERE p.author_id=$1
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`, authorID, PageSize, page.offset())
	if err != nil {
		return Page{}, err
	}
	return scanPage(page, rows)
}

// FeedPage lists posts by authors the viewer follows.
func (s *Service) FeedPage(ctx context.Context, viewerID, rawPage string) (Page, error) {
	var total int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM posts
		WHERE author_id IN (SELECT author_id FROM follows WHERE user_id=$1)
	`, viewerID).Scan(&total)
	if err != nil {
		return Page{}, err
	}

	page := newPage(rawPage, total)
	rows, err := s.db.Query(ctx, selectPosts+`
		WHERE p.author_id IN (SELECT author_id FROM follows WHERE user_id=$1)
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`, viewerID, PageSize, page.offset())
	if err != nil {
		return Page{}, err
	}
	return scanPage(page, rows)
}

func (s *Service) CountByAuthor(ctx context.Context, authorID string) (int, error) {
	var total int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts WHERE author_id=$1`, authorID).Scan(&total)
	return total, err
}

func (s *Service) PostByID(ctx context.Context, id string) (Post, error) {
	row := s.db.QueryRow(ctx, selectPosts+` WHERE p.id=$1`, id)
	var p Post
	err := row.Scan(&p.ID, &p.Title, &p.Text, &p.ImagePath, &p.AuthorID, &p.AuthorUsername,
		&p.GroupID, &p.GroupSlug, &p.GroupTitle, &p.CreatedAt)
	if err != nil {
		// A malformed id fails the uuid cast (SQLSTATE 22P02); treat it
		// the same as an id that matches nothing.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
			return Post{}, pgx.ErrNoRows
		}
		return Post{}, err
	}
	return p, nil
}

func (s *Service) GroupBySlug(ctx context.Context, slug string) (Group, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, COALESCE(title,''), slug, description
		FROM groups WHERE slug=$1
	`, slug)
	var g Group
	if err := row.Scan(&g.ID, &g.Title, &g.Slug, &g.Description); err != nil {
		return Group{}, err
	}
	return g, nil
}

func (s *Service) GroupByID(ctx context.Context, id string) (Group, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, COALESCE(title,''), slug, description
		FROM groups WHERE id=$1
	`, id)
	var g Group
	if err := row.Scan(&g.ID, &g.Title, &g.Slug, &g.Description); err != nil {
		return Group{}, err
	}
	return g, nil
}

func (s *Service) Groups(ctx context.Context) ([]Group, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, COALESCE(title,''), slug, description
		FROM groups ORDER BY slug
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Title, &g.Slug, &g.Description); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (s *Service) CreatePost(ctx context.Context, input Post) (Post, error) {
	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO posts (id, title, text, image_path, author_id, group_id)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, input.ID, strPtr(input.Title), input.Text, strPtr(input.ImagePath), input.AuthorID, strPtr(input.GroupID))
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Post{}, err
	}
	return input, nil
}

// UpdatePost rewrites the mutable fields; created_at is never touched.
func (s *Service) UpdatePost(ctx context.Context, post Post) error {
	_, err := s.db.Exec(ctx, `
		UPDATE posts
		SET title=$2, text=$3, image_path=$4, author_id=$5, group_id=$6
		WHERE id=$1
	`, post.ID, strPtr(post.Title), post.Text, strPtr(post.ImagePath), post.AuthorID, strPtr(post.GroupID))
	return err
}

func (s *Service) Comments(ctx context.Context, postID string) ([]Comment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.post_id, c.author_id, u.username, c.text, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id=$1
		ORDER BY c.created_at DESC
	`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.AuthorUsername, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *Service) CreateComment(ctx context.Context, input Comment) (Comment, error) {
	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO comments (id, post_id, author_id, text)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, input.ID, input.PostID, input.AuthorID, input.Text)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Comment{}, err
	}
	return input, nil
}

// newPage clamps the raw page parameter: anything non-numeric or below 1
// falls back to the first page, anything past the end to the last page.
func newPage(rawPage string, total int) Page {
	totalPages := (total + PageSize - 1) / PageSize
	if totalPages < 1 {
		totalPages = 1
	}
	number, err := strconv.Atoi(rawPage)
	if err != nil || number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}
	return Page{Number: number, TotalPages: totalPages, TotalCount: total}
}

func (p Page) offset() int {
	return (p.Number - 1) * PageSize
}

func scanPage(page Page, rows pgx.Rows) (Page, error) {
	defer rows.Close()
	for rows.Next() {
		var p Post
		err := rows.Scan(&p.ID, &p.Title, &p.Text, &p.ImagePath, &p.AuthorID, &p.AuthorUsername,
			&p.GroupID, &p.GroupSlug, &p.GroupTitle, &p.CreatedAt)
		if err != nil {
			return Page{}, err
		}
		page.Posts = append(page.Posts, p)
	}
	return page, rows.Err()
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
