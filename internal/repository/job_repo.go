package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/everwith_go_server/internal/model"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(job *model.ProcessingJob) error {
	return r.db.Create(job).Error
}

func (r *JobRepository) GetByID(id int64) (*model.ProcessingJob, error) {
	var job model.ProcessingJob
	err := r.db.Where("id = ?", id).First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) Update(job *model.ProcessingJob) error {
	return r.db.Save(job).Error
}

func (r *JobRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.ProcessingJob{}).Where("id = ?", id).Updates(fields).Error
}

// ListByUser 用户任务历史，按创建时间倒序
func (r *JobRepository) ListByUser(userID int64, page, pageSize int) ([]model.ProcessingJob, int64, error) {
	var jobs []model.ProcessingJob
	var total int64

	if err := r.db.Model(&model.ProcessingJob{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&jobs).Error
	return jobs, total, err
}
