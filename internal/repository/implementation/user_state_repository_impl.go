package implementation

import (
	"context"
	"errors"

	"ai-knowledge-bot/internal/entity"
	"ai-knowledge-bot/internal/mapper"
	"ai-knowledge-bot/internal/model"
	"ai-knowledge-bot/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserStateRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewUserStateRepository(db *gorm.DB) contract.UserStateRepository {
	return &UserStateRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *UserStateRepositoryImpl) Get(ctx context.Context, userId string) (*entity.UserState, error) {
	var m model.UserState
	if err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.UserStateToEntity(&m), nil
}

func (r *UserStateRepositoryImpl) Upsert(ctx context.Context, state *entity.UserState) error {
	m := r.mapper.UserStateToModel(state)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return err
	}
	*state = *r.mapper.UserStateToEntity(m)
	return nil
}

func (r *UserStateRepositoryImpl) Delete(ctx context.Context, userId string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userId).Delete(&model.UserState{}).Error
}
