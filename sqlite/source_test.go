package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/digest"
	"github.com/fwojciec/digest/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceService_CreateSource(t *testing.T) {
	t.Parallel()

	t.Run("assigns ID and timestamps", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		s := sqlite.NewSourceService(db)

		source := &digest.Source{Name: "Tech Blog", FeedURL: "https://example.com/feed.xml", Active: true}
		err := s.CreateSource(context.Background(), source)

		require.NoError(t, err)
		assert.NotZero(t, source.ID)
		assert.False(t, source.CreatedAt.IsZero())
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		s := sqlite.NewSourceService(db)

		require.NoError(t, s.CreateSource(context.Background(), &digest.Source{Name: "Dupe"}))
		err := s.CreateSource(context.Background(), &digest.Source{Name: "Dupe"})

		require.Error(t, err)
		assert.Equal(t, digest.ECONFLICT, digest.ErrorCode(err))
	})

	t.Run("missing name is invalid", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		s := sqlite.NewSourceService(db)

		err := s.CreateSource(context.Background(), &digest.Source{})

		require.Error(t, err)
		assert.Equal(t, digest.EINVALID, digest.ErrorCode(err))
	})
}

func TestSourceService_FindSources(t *testing.T) {
	t.Parallel()

	db := MustOpenDB(t)
	s := sqlite.NewSourceService(db)

	mustCreateSource(t, db, &digest.Source{Name: "Active One", Active: true})
	mustCreateSource(t, db, &digest.Source{Name: "Inactive One", Active: false})

	t.Run("filters by active", func(t *testing.T) {
		active := true
		sources, err := s.FindSources(context.Background(), digest.SourceFilter{Active: &active})

		require.NoError(t, err)
		// The seeded source plus "Active One".
		require.Len(t, sources, 2)
		for _, src := range sources {
			assert.True(t, src.Active)
		}
	})

	t.Run("filters by name", func(t *testing.T) {
		name := "Inactive One"
		sources, err := s.FindSources(context.Background(), digest.SourceFilter{Name: &name})

		require.NoError(t, err)
		require.Len(t, sources, 1)
		assert.Equal(t, "Inactive One", sources[0].Name)
	})
}

func TestSourceService_UpdateSource(t *testing.T) {
	t.Parallel()

	t.Run("updates fields", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		s := sqlite.NewSourceService(db)
		source := mustCreateSource(t, db, &digest.Source{Name: "Before", Active: true})

		newName := "After"
		inactive := false
		got, err := s.UpdateSource(context.Background(), source.ID, digest.SourceUpdate{
			Name:   &newName,
			Active: &inactive,
		})

		require.NoError(t, err)
		assert.Equal(t, "After", got.Name)
		assert.False(t, got.Active)

		reloaded, err := s.FindSourceByID(context.Background(), source.ID)
		require.NoError(t, err)
		assert.Equal(t, "After", reloaded.Name)
	})

	t.Run("missing source", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		s := sqlite.NewSourceService(db)

		_, err := s.UpdateSource(context.Background(), 9999, digest.SourceUpdate{})

		require.Error(t, err)
		assert.Equal(t, digest.ENOTFOUND, digest.ErrorCode(err))
	})
}

func TestSourceService_DeleteSource(t *testing.T) {
	t.Parallel()

	db := MustOpenDB(t)
	s := sqlite.NewSourceService(db)
	source := mustCreateSource(t, db, &digest.Source{Name: "Doomed"})

	require.NoError(t, s.DeleteSource(context.Background(), source.ID))

	_, err := s.FindSourceByID(context.Background(), source.ID)
	assert.Equal(t, digest.ENOTFOUND, digest.ErrorCode(err))

	err = s.DeleteSource(context.Background(), source.ID)
	assert.Equal(t, digest.ENOTFOUND, digest.ErrorCode(err))
}
