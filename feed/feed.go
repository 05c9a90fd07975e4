// Package feed assembles paginated, reverse-chronological post listings:
// the global feed, group and profile feeds, and a viewer's personal feed
// built from the authors they follow.
package feed

import (
	"context"

	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/social"
	"github.com/cppla/yatube/store"
)

// Assembler builds feed pages from the store and the social graph.
type Assembler struct {
	store    *store.Store
	graph    *social.Graph
	pageSize int
}

// New creates an Assembler with the standard PageSize.
func New(s *store.Store, g *social.Graph) *Assembler {
	return &Assembler{store: s, graph: g, pageSize: PageSize}
}

// Global returns a page of all posts.
func (a *Assembler) Global(ctx context.Context, page string) (*Page, error) {
	return a.paginate(ctx, store.PostFilter{}, page)
}

// Group returns the group identified by slug and a page of its posts.
func (a *Assembler) Group(ctx context.Context, slug, page string) (*models.Group, *Page, error) {
	group, err := a.store.GroupBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	p, err := a.paginate(ctx, store.PostFilter{GroupID: &group.ID}, page)
	if err != nil {
		return nil, nil, err
	}
	return group, p, nil
}

// Profile returns the author identified by username and a page of their posts.
func (a *Assembler) Profile(ctx context.Context, username, page string) (*models.User, *Page, error) {
	author, err := a.store.UserByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	p, err := a.paginate(ctx, store.PostFilter{AuthorIDs: []uint{author.ID}}, page)
	if err != nil {
		return nil, nil, err
	}
	return author, p, nil
}

// FeedFor returns a page of posts by the authors viewerID follows. Following
// nobody gives an empty first page.
func (a *Assembler) FeedFor(ctx context.Context, viewerID uint, page string) (*Page, error) {
	following, err := a.graph.FollowingOf(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if len(following) == 0 {
		return Paginator{PageSize: a.pageSize}.Page(1, nil), nil
	}
	return a.paginate(ctx, store.PostFilter{AuthorIDs: following}, page)
}

func (a *Assembler) paginate(ctx context.Context, f store.PostFilter, raw string) (*Page, error) {
	count, err := a.store.CountPosts(ctx, f)
	if err != nil {
		return nil, err
	}
	p := Paginator{Count: count, PageSize: a.pageSize}
	number := p.Number(raw)
	if count == 0 {
		return p.Page(number, nil), nil
	}
	posts, err := a.store.ListPosts(ctx, f, p.Offset(number), a.pageSize)
	if err != nil {
		return nil, err
	}
	return p.Page(number, posts), nil
}
