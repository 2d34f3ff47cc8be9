package follow

import (
	"context"

	"backend-postline/internal/db"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// Follow subscribes userID to authorID. Following yourself or an author you
// already follow is a no-op.
func (s *Service) Follow(ctx context.Context, userID, authorID string) error {
	if userID == authorID {
		return nil
	}
	following, err := s.IsFollowing(ctx, userID, authorID)
	if err != nil {
		return err
	}
	if following {
		return nil
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO follows (user_id, author_id)
		VALUES ($1,$2)
	`, userID, authorID)
	return err
}

// Unfollow removes the subscription; absent subscriptions are a no-op.
func (s *Service) Unfollow(ctx context.Context, userID, authorID string) error {
	following, err := s.IsFollowing(ctx, userID, authorID)
	if err != nil {
		return err
	}
	if !following {
		return nil
	}
	_, err = s.db.Exec(ctx, `
		DELETE FROM follows WHERE user_id=$1 AND author_id=$2
	`, userID, authorID)
	return err
}

func (s *Service) IsFollowing(ctx context.Context, userID, authorID string) (bool, error) {
	var n int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM follows WHERE user_id=$1 AND author_id=$2
	`, userID, authorID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Counts returns how many users follow the author and how many the author
// follows.
func (s *Service) Counts(ctx context.Context, authorID string) (followers, following int, err error) {
	err = s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM follows WHERE author_id=$1
	`, authorID).Scan(&followers)
	if err != nil {
		return 0, 0, err
	}
	err = s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM follows WHERE user_id=$1
	`, authorID).Scan(&following)
	if err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}
