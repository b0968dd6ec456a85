package storage

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/stelios-avg/locom/internal/adapter/storage/storetest"
)

// pgStore joins the post and comment stores over one pool
type pgStore struct {
	*PostStore
	*CommentStore
}

func TestPostgres_PostStoreSuite(t *testing.T) {
	dsn := os.Getenv("LOCOM_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("LOCOM_TEST_DATABASE_URL not set")
	}

	require.NoError(t, Migrate(dsn))

	ctx := context.Background()
	db, err := pgxpool.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	storetest.RunPostStoreTests(t, func(t *testing.T) storetest.Store {
		_, err := db.Exec(ctx, "TRUNCATE comments, posts")
		require.NoError(t, err)
		return pgStore{PostStore: NewPostStore(db), CommentStore: NewCommentStore(db)}
	})
}
