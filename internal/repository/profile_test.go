package repository

import (
	"context"
	"errors"
	"testing"

	"biolink/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRepository_GetProfile_Mock(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProfileRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "name", "bio", "youtube"}).
		AddRow(3, 7, "Ada", "Engineer", "https://youtube.com/@ada")
	mock.ExpectQuery(quote(`SELECT * FROM "profiles" WHERE user_id = $1 ORDER BY "profiles"."id" LIMIT $2`)).
		WithArgs(7, 1).
		WillReturnRows(rows)

	profile, err := repo.GetProfile(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Ada", profile.Name)
	assert.Equal(t, "https://youtube.com/@ada", profile.YouTube)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_SaveProfile_UsesUpsert(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "profiles" .* ON CONFLICT \("user_id"\) DO UPDATE SET "name"="excluded"."name"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.SaveProfile(context.Background(), 7, models.ProfileFields{Name: "Ada"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_SaveProfile_StoreError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "profiles"`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.SaveProfile(context.Background(), 7, models.ProfileFields{})
	assert.True(t, models.IsCode(err, models.CodeStore))
}

func TestProfileRepository_SaveProfile_IdempotentOverwrite(t *testing.T) {
	db := setupSQLite(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()
	user := createUser(t, db, "ada")

	missing, err := repo.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	fields := models.ProfileFields{Name: "Ada", Bio: "Engineer", GitHub: "https://github.com/ada"}
	require.NoError(t, repo.SaveProfile(ctx, user.ID, fields))
	require.NoError(t, repo.SaveProfile(ctx, user.ID, fields))

	var count int64
	require.NoError(t, db.Model(&models.Profile{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	profile, err := repo.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, fields, profile.ProfileFields)

	// Missing fields overwrite rather than merge.
	require.NoError(t, repo.SaveProfile(ctx, user.ID, models.ProfileFields{Name: "Ada L."}))
	profile, err = repo.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", profile.Name)
	assert.Empty(t, profile.Bio)
	assert.Empty(t, profile.GitHub)
}

func TestProfileRepository_ReplaceCustomLinks(t *testing.T) {
	db := setupSQLite(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()
	user := createUser(t, db, "ada")
	other := createUser(t, db, "grace")

	require.NoError(t, repo.ReplaceCustomLinks(ctx, other.ID, []models.LinkInput{{Label: "Site", URL: "https://grace.example"}}))

	t.Run("blank entries dropped", func(t *testing.T) {
		require.NoError(t, repo.ReplaceCustomLinks(ctx, user.ID, []models.LinkInput{
			{Label: "Blog", URL: "https://x.example"},
			{Label: "", URL: ""},
		}))
		links, err := repo.GetCustomLinks(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, "Blog", links[0].Label)
		assert.Equal(t, "https://x.example", links[0].URL)
	})

	t.Run("order preserved and trimmed", func(t *testing.T) {
		require.NoError(t, repo.ReplaceCustomLinks(ctx, user.ID, []models.LinkInput{
			{Label: " Shop ", URL: " https://shop.example "},
			{Label: "No url", URL: "   "},
			{Label: "Blog", URL: "https://x.example"},
		}))
		links, err := repo.GetCustomLinks(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, links, 2)
		assert.Equal(t, "Shop", links[0].Label)
		assert.Equal(t, "https://shop.example", links[0].URL)
		assert.Equal(t, 0, links[0].Position)
		assert.Equal(t, "Blog", links[1].Label)
		assert.Equal(t, 1, links[1].Position)
	})

	t.Run("empty list removes all", func(t *testing.T) {
		require.NoError(t, repo.ReplaceCustomLinks(ctx, user.ID, nil))
		links, err := repo.GetCustomLinks(ctx, user.ID)
		require.NoError(t, err)
		assert.NotNil(t, links)
		assert.Empty(t, links)
	})

	otherLinks, err := repo.GetCustomLinks(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, otherLinks, 1)
}

func TestProfileRepository_ReplaceCustomLinks_UnknownUser(t *testing.T) {
	db := setupSQLite(t)
	repo := NewProfileRepository(db)

	err := repo.ReplaceCustomLinks(context.Background(), 999, []models.LinkInput{{Label: "x", URL: "https://x"}})
	assert.True(t, models.IsCode(err, models.CodeStore))
}

func TestProfileRepository_Transaction_RollsBack(t *testing.T) {
	db := setupSQLite(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()
	user := createUser(t, db, "ada")

	require.NoError(t, repo.SaveProfile(ctx, user.ID, models.ProfileFields{Name: "Before"}))

	boom := errors.New("boom")
	err := repo.Transaction(ctx, func(tx ProfileRepository) error {
		if err := tx.SaveProfile(ctx, user.ID, models.ProfileFields{Name: "After"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	profile, err := repo.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Before", profile.Name)
}
