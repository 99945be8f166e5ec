package repository

import (
	"context"

	"gorm.io/gorm"

	"SellerCare/internal/model"
)

// TemplateRepository 消息模板的 gorm 实现
type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) Templates(ctx context.Context, cookieID string, actionType model.ActionType) ([]*model.MessageTemplate, error) {
	var templates []*model.MessageTemplate
	err := r.db.WithContext(ctx).
		Where("cookie_id = ? AND action_type = ?", cookieID, actionType).
		Order("sort_order ASC, id ASC").
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *TemplateRepository) Template(ctx context.Context, id int64) (*model.MessageTemplate, error) {
	var tpl model.MessageTemplate
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tpl).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *TemplateRepository) CreateTemplate(ctx context.Context, tpl *model.MessageTemplate) error {
	return r.db.WithContext(ctx).Create(tpl).Error
}

func (r *TemplateRepository) UpdateTemplate(ctx context.Context, id int64, content string, sortOrder int) error {
	return r.db.WithContext(ctx).
		Model(&model.MessageTemplate{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"content":    content,
			"sort_order": sortOrder,
		}).Error
}

func (r *TemplateRepository) DeleteTemplate(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.MessageTemplate{}, id).Error
}
