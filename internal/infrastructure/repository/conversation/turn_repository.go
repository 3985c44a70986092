package conversation

import (
	"context"

	"gorm.io/gorm"

	domain "github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/conversation"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/infrastructure/database/entities"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/infrastructure/livefeed"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/utils/platformerrors"
)

// TurnRepository persists turns and mirrors each committed change onto the live
// feed so subscribed controllers converge on the stored order.
type TurnRepository struct {
	db   *gorm.DB
	feed livefeed.Publisher
}

// NewTurnRepository builds a turn repository. feed may be nil.
func NewTurnRepository(db *gorm.DB, feed livefeed.Publisher) *TurnRepository {
	return &TurnRepository{db: db, feed: feed}
}

// Insert appends the turn and publishes the insert event after the write
// succeeds. The database row is the source of truth; the feed only echoes it.
func (r *TurnRepository) Insert(ctx context.Context, turn *domain.Turn) error {
	entity := entities.NewSchemaTurn(turn)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to insert turn", err)
	}
	turn.CreatedAt = entity.CreatedAt

	if r.feed != nil {
		r.feed.Publish(livefeed.TableTurns, livefeed.Event{
			Type: livefeed.EventInsert,
			Turn: entity.EtoD(),
		})
	}
	return nil
}

// ListByConversationID returns turns in chronological order; the monotonic
// seq column breaks created_at ties in insertion order.
func (r *TurnRepository) ListByConversationID(ctx context.Context, conversationID string) ([]domain.Turn, error) {
	var rows []entities.Turn
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, seq ASC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to list turns", err)
	}
	turns := make([]domain.Turn, len(rows))
	for i := range rows {
		turns[i] = rows[i].EtoD()
	}
	return turns, nil
}

// CountByConversationID returns the number of turns in the conversation.
func (r *TurnRepository) CountByConversationID(ctx context.Context, conversationID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Turn{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error; err != nil {
		return 0, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to count turns", err)
	}
	return count, nil
}

// Ensure interface compliance.
var _ domain.TurnRepository = (*TurnRepository)(nil)
