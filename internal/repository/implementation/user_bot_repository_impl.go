package implementation

import (
	"context"
	"errors"

	"ai-knowledge-bot/internal/entity"
	"ai-knowledge-bot/internal/mapper"
	"ai-knowledge-bot/internal/model"
	"ai-knowledge-bot/internal/repository/contract"
	"ai-knowledge-bot/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserBotRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewUserBotRepository(db *gorm.DB) contract.UserBotRepository {
	return &UserBotRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *UserBotRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// Upsert keys on user_id; the row id and created_at survive later updates.
func (r *UserBotRepositoryImpl) Upsert(ctx context.Context, bot *entity.UserBot) error {
	if bot.Id == uuid.Nil {
		bot.Id = uuid.New()
	}
	m := r.mapper.UserBotToModel(bot)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"index_dir", "chunk_count", "trained_at", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return err
	}

	stored, err := r.FindOne(ctx, specification.ByUserID{UserID: bot.UserId})
	if err != nil {
		return err
	}
	if stored != nil {
		*bot = *stored
	}
	return nil
}

func (r *UserBotRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserBot, error) {
	var m model.UserBot
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.UserBotToEntity(&m), nil
}

func (r *UserBotRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UserBot, error) {
	var models []*model.UserBot
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.UserBot, len(models))
	for i, m := range models {
		entities[i] = r.mapper.UserBotToEntity(m)
	}
	return entities, nil
}

func (r *UserBotRepositoryImpl) DeleteByUserId(ctx context.Context, userId string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userId).Delete(&model.UserBot{}).Error
}

func (r *UserBotRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.UserBot{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
