package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/store"
	"github.com/cppla/yatube/store/storetest"
)

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t, nil)

	u, err := s.CreateUser(ctx, "leo", "leo@example.com", "hash")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, storetest.Epoch, u.CreatedAt.UTC())

	t.Run("Duplicate username conflicts", func(t *testing.T) {
		_, err := s.CreateUser(ctx, "leo", "other@example.com", "hash")
		assert.True(t, store.IsConflict(err))
	})

	t.Run("Lookup by id and username", func(t *testing.T) {
		byID, err := s.UserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "leo", byID.Username)

		byName, err := s.UserByUsername(ctx, "leo")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byName.ID)
	})

	t.Run("Missing user is NotFound", func(t *testing.T) {
		_, err := s.UserByUsername(ctx, "nobody")
		assert.True(t, store.IsNotFound(err))
		_, err = s.UserByID(ctx, 999)
		assert.True(t, store.IsNotFound(err))
		assert.True(t, store.IsNotFound(s.DeleteUser(ctx, 999)))
	})
}

func TestGroups(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t, nil)
	f := storetest.Fixture{T: t, Store: s}

	cats := f.Group("cats")
	f.Group("aardvarks")

	err := s.CreateGroup(ctx, &models.Group{Title: "Cats again", Slug: "cats"})
	assert.True(t, store.IsConflict(err))

	got, err := s.GroupBySlug(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, cats.ID, got.ID)

	groups, err := s.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "aardvarks", groups[0].Slug)

	_, err = s.GroupBySlug(ctx, "dogs")
	assert.True(t, store.IsNotFound(err))
}

func TestDeleteGroupKeepsPosts(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t, nil)
	f := storetest.Fixture{T: t, Store: s}

	author := f.User("leo")
	cats := f.Group("cats")
	post := f.Post(author, "meow", cats)
	require.NotNil(t, post.Group)
	assert.Equal(t, "cats", post.Group.Slug)

	require.NoError(t, s.DeleteGroup(ctx, "cats"))

	got, err := s.PostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, got.GroupID)
	assert.Nil(t, got.Group)
	assert.True(t, store.IsNotFound(s.DeleteGroup(ctx, "cats")))
}

func TestPosts(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t, nil)
	f := storetest.Fixture{T: t, Store: s}

	author := f.User("leo")
	cats := f.Group("cats")

	t.Run("Create requires existing author and group", func(t *testing.T) {
		_, err := s.CreatePost(ctx, 999, store.PostInput{Text: "x"})
		assert.True(t, store.IsNotFound(err))

		missing := uint(999)
		_, err = s.CreatePost(ctx, author.ID, store.PostInput{Text: "x", GroupID: &missing})
		assert.True(t, store.IsNotFound(err))
	})

	t.Run("Update keeps pub_date", func(t *testing.T) {
		p := f.Post(author, "first", nil)
		updated, err := s.UpdatePost(ctx, p.ID, store.PostInput{Text: "second", GroupID: &cats.ID, Image: "a.png"})
		require.NoError(t, err)
		assert.Equal(t, "second", updated.Text)
		assert.Equal(t, "a.png", updated.Image)
		require.NotNil(t, updated.GroupID)
		assert.Equal(t, cats.ID, *updated.GroupID)
		assert.True(t, p.PubDate.Equal(updated.PubDate))
		assert.Equal(t, "leo", updated.Author.Username)

		cleared, err := s.UpdatePost(ctx, p.ID, store.PostInput{Text: "third"})
		require.NoError(t, err)
		assert.Nil(t, cleared.GroupID)
	})

	t.Run("Update of missing post is NotFound", func(t *testing.T) {
		_, err := s.UpdatePost(ctx, 999, store.PostInput{Text: "x"})
		assert.True(t, store.IsNotFound(err))
	})
}

func TestListPostsOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t, nil)
	f := storetest.Fixture{T: t, Store: s}

	a := f.User("a")
	b := f.User("b")
	cats := f.Group("cats")

	p1 := f.Post(a, "1", nil)
	p2 := f.Post(b, "2", cats)
	p3 := f.Post(a, "3", cats)

	all, err := s.ListPosts(ctx, store.PostFilter{}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{p3.ID, p2.ID, p1.ID}, postIDs(all))

	byA, err := s.ListPosts(ctx, store.PostFilter{AuthorIDs: []uint{a.ID}}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{p3.ID, p1.ID}, postIDs(byA))

	inCats, err := s.ListPosts(ctx, store.PostFilter{GroupID: &cats.ID}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{p2.ID}, postIDs(inCats))

	none, err := s.ListPosts(ctx, store.PostFilter{AuthorIDs: []uint{}}, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, none)

	n, err := s.CountPosts(ctx, store.PostFilter{GroupID: &cats.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = s.CountPosts(ctx, store.PostFilter{AuthorIDs: []uint{}})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestComments(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t, nil)
	f := storetest.Fixture{T: t, Store: s}

	a := f.User("a")
	b := f.User("b")
	p := f.Post(a, "post", nil)

	c1, err := s.CreateComment(ctx, p.ID, b.ID, "first")
	require.NoError(t, err)
	assert.Equal(t, "b", c1.Author.Username)
	c2, err := s.CreateComment(ctx, p.ID, a.ID, "second")
	require.NoError(t, err)

	comments, err := s.CommentsForPost(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, c1.ID, comments[0].ID)
	assert.Equal(t, c2.ID, comments[1].ID)

	_, err = s.CreateComment(ctx, 999, a.ID, "orphan")
	assert.True(t, store.IsNotFound(err))

	require.NoError(t, s.DeleteComment(ctx, c1.ID))
	assert.True(t, store.IsNotFound(s.DeleteComment(ctx, c1.ID)))
	_, err = s.CommentByID(ctx, c2.ID)
	assert.NoError(t, err)
}

func TestFollowEdgesAreIdempotent(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t, nil)
	f := storetest.Fixture{T: t, Store: s}

	a := f.User("a")
	b := f.User("b")

	created, err := s.CreateFollowIfAbsent(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.CreateFollowIfAbsent(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, created)

	edge, ok, err := s.FollowEdge(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, b.ID, edge.AuthorID)

	following, err := s.FollowingIDs(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID}, following)

	followers, err := s.FollowerIDs(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID}, followers)

	removed, err := s.DeleteFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = s.DeleteFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = s.CreateFollowIfAbsent(ctx, a.ID, 999)
	assert.True(t, store.IsNotFound(err))
}

func TestConcurrentFollowCreatesOneEdge(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t, nil)
	f := storetest.Fixture{T: t, Store: s}

	a := f.User("a")
	b := f.User("b")

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateFollowIfAbsent(ctx, a.ID, b.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts.Follows)
}

func TestLikes(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t, nil)
	f := storetest.Fixture{T: t, Store: s}

	a := f.User("a")
	b := f.User("b")
	p := f.Post(a, "post", nil)

	created, err := s.CreateLikeIfAbsent(ctx, b.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = s.CreateLikeIfAbsent(ctx, b.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, created)

	n, err := s.LikeCount(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	ok, err := s.LikeExists(ctx, b.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	removed, err := s.DeleteLike(ctx, b.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = s.DeleteLike(ctx, b.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = s.CreateLikeIfAbsent(ctx, b.ID, 999)
	assert.True(t, store.IsNotFound(err))
}

func TestDeletePostCascades(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t, nil)
	f := storetest.Fixture{T: t, Store: s}

	a := f.User("a")
	b := f.User("b")
	p := f.Post(a, "doomed", nil)
	keep := f.Post(a, "kept", nil)

	_, err := s.CreateComment(ctx, p.ID, b.ID, "c")
	require.NoError(t, err)
	_, err = s.CreateComment(ctx, keep.ID, b.ID, "c")
	require.NoError(t, err)
	_, err = s.CreateLikeIfAbsent(ctx, b.ID, p.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeletePost(ctx, p.ID))

	_, err = s.PostByID(ctx, p.ID)
	assert.True(t, store.IsNotFound(err))

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts.Posts)
	assert.EqualValues(t, 1, counts.Comments)
	assert.EqualValues(t, 0, counts.Likes)

	assert.True(t, store.IsNotFound(s.DeletePost(ctx, p.ID)))
}

func TestDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t, nil)
	f := storetest.Fixture{T: t, Store: s}

	a := f.User("a")
	b := f.User("b")
	c := f.User("c")

	pa := f.Post(a, "by a", nil)
	pb := f.Post(b, "by b", nil)

	// comments and likes on a's post by someone else
	_, err := s.CreateComment(ctx, pa.ID, b.ID, "on a")
	require.NoError(t, err)
	_, err = s.CreateLikeIfAbsent(ctx, c.ID, pa.ID)
	require.NoError(t, err)
	// a's own activity elsewhere
	_, err = s.CreateComment(ctx, pb.ID, a.ID, "by a on b")
	require.NoError(t, err)
	_, err = s.CreateLikeIfAbsent(ctx, a.ID, pb.ID)
	require.NoError(t, err)
	// unrelated activity that must survive
	_, err = s.CreateComment(ctx, pb.ID, c.ID, "by c on b")
	require.NoError(t, err)

	for _, e := range [][2]uint{{a.ID, b.ID}, {c.ID, a.ID}, {c.ID, b.ID}} {
		_, err := s.CreateFollowIfAbsent(ctx, e[0], e[1])
		require.NoError(t, err)
	}

	require.NoError(t, s.DeleteUser(ctx, a.ID))

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.Counts{
		Users:    2,
		Groups:   0,
		Posts:    1,
		Comments: 1,
		Follows:  1,
		Likes:    0,
	}, counts)

	followers, err := s.FollowerIDs(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{c.ID}, followers)
}

func postIDs(posts []models.Post) []uint {
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}
