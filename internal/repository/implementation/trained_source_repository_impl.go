package implementation

import (
	"context"

	"ai-knowledge-bot/internal/entity"
	"ai-knowledge-bot/internal/mapper"
	"ai-knowledge-bot/internal/model"
	"ai-knowledge-bot/internal/repository/contract"
	"ai-knowledge-bot/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TrainedSourceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewTrainedSourceRepository(db *gorm.DB) contract.TrainedSourceRepository {
	return &TrainedSourceRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *TrainedSourceRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *TrainedSourceRepositoryImpl) Create(ctx context.Context, source *entity.TrainedSource) error {
	if source.Id == uuid.Nil {
		source.Id = uuid.New()
	}
	m := r.mapper.TrainedSourceToModel(source)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*source = *r.mapper.TrainedSourceToEntity(m)
	return nil
}

func (r *TrainedSourceRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TrainedSource, error) {
	var models []*model.TrainedSource
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.TrainedSourcesToEntities(models), nil
}

func (r *TrainedSourceRepositoryImpl) DeleteByUserId(ctx context.Context, userId string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userId).Delete(&model.TrainedSource{}).Error
}

func (r *TrainedSourceRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.TrainedSource{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
