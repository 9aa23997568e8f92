package implementation

import (
	"context"
	"slices"

	"ai-knowledge-bot/internal/entity"
	"ai-knowledge-bot/internal/mapper"
	"ai-knowledge-bot/internal/model"
	"ai-knowledge-bot/internal/repository/contract"
	"ai-knowledge-bot/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatTurnRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewChatTurnRepository(db *gorm.DB) contract.ChatTurnRepository {
	return &ChatTurnRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *ChatTurnRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatTurnRepositoryImpl) Create(ctx context.Context, turn *entity.ChatTurn) error {
	if turn.Id == uuid.Nil {
		turn.Id = uuid.New()
	}
	m := r.mapper.ChatTurnToModel(turn)
	// seq orders a user's turns; timestamps can tie
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int64
		if err := tx.Model(&model.ChatTurn{}).
			Where("user_id = ?", m.UserId).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&last).Error; err != nil {
			return err
		}
		m.Seq = last + 1
		return tx.Create(m).Error
	})
	if err != nil {
		return err
	}
	*turn = *r.mapper.ChatTurnToEntity(m)
	return nil
}

func (r *ChatTurnRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatTurn, error) {
	var models []*model.ChatTurn
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ChatTurnsToEntities(models), nil
}

func (r *ChatTurnRepositoryImpl) FindRecent(ctx context.Context, userId string, limit int) ([]*entity.ChatTurn, error) {
	turns, err := r.FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "seq", Desc: true},
		specification.Pagination{Limit: limit},
	)
	if err != nil {
		return nil, err
	}
	slices.Reverse(turns)
	return turns, nil
}

func (r *ChatTurnRepositoryImpl) TrimToLatest(ctx context.Context, userId string, keep int) error {
	if keep <= 0 {
		return r.DeleteByUserId(ctx, userId)
	}
	newest := r.db.Model(&model.ChatTurn{}).
		Select("id").
		Where("user_id = ?", userId).
		Order("seq DESC").
		Limit(keep)
	return r.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Where("id NOT IN (?)", newest).
		Delete(&model.ChatTurn{}).Error
}

func (r *ChatTurnRepositoryImpl) DeleteByUserId(ctx context.Context, userId string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userId).Delete(&model.ChatTurn{}).Error
}

func (r *ChatTurnRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ChatTurn{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
