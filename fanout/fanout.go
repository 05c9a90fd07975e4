// Package fanout is the hook that post mutations call after they commit.
package fanout

import (
	"context"

	"go.uber.org/zap"

	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/utils"
)

// Notifier is told about post mutations after the store commits them.
type Notifier interface {
	PostCreated(ctx context.Context, post *models.Post)
	PostUpdated(ctx context.Context, post *models.Post)
	PostDeleted(ctx context.Context, post *models.Post)
}

// Passthrough logs mutations and does nothing else. Cached listings stay
// stale until their window elapses.
type Passthrough struct {
	log *zap.Logger
}

// NewPassthrough creates a Passthrough. A nil logger means utils.Logger.
func NewPassthrough(log *zap.Logger) *Passthrough {
	return &Passthrough{log: log}
}

func (p *Passthrough) logger() *zap.Logger {
	if p == nil || p.log == nil {
		return utils.Logger
	}
	return p.log
}

// PostCreated implements Notifier.
func (p *Passthrough) PostCreated(_ context.Context, post *models.Post) {
	p.logger().Debug("post created", postFields(post)...)
}

// PostUpdated implements Notifier.
func (p *Passthrough) PostUpdated(_ context.Context, post *models.Post) {
	p.logger().Debug("post updated", postFields(post)...)
}

// PostDeleted implements Notifier.
func (p *Passthrough) PostDeleted(_ context.Context, post *models.Post) {
	p.logger().Debug("post deleted", postFields(post)...)
}

func postFields(post *models.Post) []zap.Field {
	fields := []zap.Field{zap.Uint("post_id", post.ID), zap.Uint("author_id", post.AuthorID)}
	if post.GroupID != nil {
		fields = append(fields, zap.Uint("group_id", *post.GroupID))
	}
	return fields
}
