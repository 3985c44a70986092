package conversation

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/conversation"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/infrastructure/database/entities"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/infrastructure/livefeed"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/utils/platformerrors"
)

// Repository persists conversation metadata.
type Repository struct {
	db   *gorm.DB
	feed livefeed.Publisher
}

// NewRepository builds a conversation repository. feed may be nil.
func NewRepository(db *gorm.DB, feed livefeed.Publisher) *Repository {
	return &Repository{db: db, feed: feed}
}

// Create inserts the conversation record.
func (r *Repository) Create(ctx context.Context, conv *domain.Conversation) error {
	entity := entities.NewSchemaConversation(conv)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to create conversation", err)
	}
	conv.CreatedAt = entity.CreatedAt
	conv.UpdatedAt = entity.UpdatedAt
	return nil
}

// FindByID fetches a conversation by its id.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Conversation, error) {
	var entity entities.Conversation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("conversation not found: %s", id), nil)
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to fetch conversation", err)
	}
	return entity.EtoD(), nil
}

// ListByUser returns the user's conversations, most recently active first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	var rows []entities.Conversation
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to list conversations", err)
	}
	result := make([]*domain.Conversation, len(rows))
	for i := range rows {
		result[i] = rows[i].EtoD()
	}
	return result, nil
}

// UpdateTitle sets the conversation title.
func (r *Repository) UpdateTitle(ctx context.Context, id, title string) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ?", id).
		Update("title", title)
	if result.Error != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to update title", result.Error)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("conversation not found: %s", id), nil)
	}
	return nil
}

// Touch bumps updated_at to mark recent activity.
func (r *Repository) Touch(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ?", id).
		Update("updated_at", gorm.Expr("NOW()")).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to touch conversation", err)
	}
	return nil
}

// Delete removes the conversation and, via ON DELETE CASCADE, its turns.
// Cascaded turn removals are published to the feed so subscribed controllers
// drop them from their local lists.
func (r *Repository) Delete(ctx context.Context, id string) error {
	var turns []entities.Turn
	if r.feed != nil {
		if err := r.db.WithContext(ctx).
			Where("conversation_id = ?", id).
			Find(&turns).Error; err != nil {
			return platformerrors.NewError(ctx, platformerrors.LayerRepository,
				platformerrors.ErrorTypeDatabaseError, "failed to load turns for delete", err)
		}
	}

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Conversation{})
	if result.Error != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to delete conversation", result.Error)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("conversation not found: %s", id), nil)
	}

	if r.feed != nil {
		for i := range turns {
			r.feed.Publish(livefeed.TableTurns, livefeed.Event{
				Type: livefeed.EventDelete,
				Turn: turns[i].EtoD(),
			})
		}
	}
	return nil
}

// Ensure interface compliance.
var _ domain.Repository = (*Repository)(nil)
