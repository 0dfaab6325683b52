package posts

import (
	"context"
	"database/sql"

	"github.com/Ferdinando4570/content-forge-magic/internal/models"
)

// DBStore backs a Synchronizer with the generated_posts table.
type DBStore struct {
	DB *sql.DB
}

func (s *DBStore) List(ctx context.Context, userID int64) ([]models.GeneratedPost, error) {
	return models.ListGeneratedPosts(ctx, s.DB, userID)
}

func (s *DBStore) Insert(ctx context.Context, userID int64, content, platform, prompt string) (string, error) {
	return models.InsertGeneratedPost(ctx, s.DB, userID, content, platform, prompt)
}

func (s *DBStore) Delete(ctx context.Context, id string, userID int64) error {
	return models.DeleteGeneratedPost(ctx, s.DB, id, userID)
}
