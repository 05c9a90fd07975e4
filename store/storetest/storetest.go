// Package storetest opens throwaway in-memory stores for tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/yatube/clock"
	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/store"
)

// Epoch is the start time of the clocks handed out by this package.
var Epoch = time.Date(2021, 6, 1, 9, 0, 0, 0, time.UTC)

// New returns a migrated store over a private in-memory sqlite database.
// A nil clock means a Ticking clock starting at Epoch with one-second steps,
// so every stamped row gets a distinct time.
func New(t testing.TB, clk clock.Clock) *store.Store {
	t.Helper()
	if clk == nil {
		clk = clock.NewTicking(Epoch, time.Second)
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	// Every pooled connection to :memory: would see its own empty database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	s := store.New(db, clk)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

// Fixture creates rows with terse helpers that fail the test on error.
type Fixture struct {
	T     testing.TB
	Store *store.Store
}

// User creates a user with a throwaway hash.
func (f Fixture) User(username string) *models.User {
	f.T.Helper()
	u, err := f.Store.CreateUser(context.Background(), username, username+"@example.com", "x")
	require.NoError(f.T, err)
	return u
}

// Group creates a group whose title is derived from the slug.
func (f Fixture) Group(slug string) *models.Group {
	f.T.Helper()
	g := &models.Group{Title: "Group " + slug, Slug: slug}
	require.NoError(f.T, f.Store.CreateGroup(context.Background(), g))
	return g
}

// Post creates a post by author, optionally in group.
func (f Fixture) Post(author *models.User, text string, group *models.Group) *models.Post {
	f.T.Helper()
	in := store.PostInput{Text: text}
	if group != nil {
		in.GroupID = &group.ID
	}
	p, err := f.Store.CreatePost(context.Background(), author.ID, in)
	require.NoError(f.T, err)
	return p
}
