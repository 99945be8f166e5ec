package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"SellerCare/internal/model"
)

// FollowUpRepository 跟进记录、设置与审计的 gorm 实现
type FollowUpRepository struct {
	db *gorm.DB
}

func NewFollowUpRepository(db *gorm.DB) *FollowUpRepository {
	return &FollowUpRepository{db: db}
}

func (r *FollowUpRepository) EnabledAccounts(ctx context.Context, actionType model.ActionType) ([]string, error) {
	var accounts []string
	err := r.db.WithContext(ctx).
		Model(&model.FollowUpSettings{}).
		Where("action_type = ? AND enabled = ?", actionType, true).
		Distinct().
		Pluck("cookie_id", &accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *FollowUpRepository) Settings(ctx context.Context, cookieID string, actionType model.ActionType) (*model.FollowUpSettings, error) {
	var settings model.FollowUpSettings
	err := r.db.WithContext(ctx).
		Where("cookie_id = ? AND action_type = ?", cookieID, actionType).
		First(&settings).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpsertSettings 管理端保存设置，(cookie_id, action_type) 唯一
func (r *FollowUpRepository) UpsertSettings(ctx context.Context, settings *model.FollowUpSettings) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cookie_id"}, {Name: "action_type"}},
			UpdateAll: true,
		}).
		Create(settings).Error
}

// CreateRecord 幂等建单，撞 (order_id, action_type) 唯一索引时返回 false
func (r *FollowUpRepository) CreateRecord(ctx context.Context, rec *model.FollowUpRecord) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "action_type"}},
			DoNothing: true,
		}).
		Create(rec)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *FollowUpRepository) DueRecords(ctx context.Context, cookieID string, actionType model.ActionType, now time.Time) ([]*model.FollowUpRecord, error) {
	var records []*model.FollowUpRecord
	err := r.db.WithContext(ctx).
		Where("cookie_id = ? AND action_type = ? AND status = ? AND next_due_at <= ?",
			cookieID, actionType, model.FollowUpStatusPending, now).
		Order("next_due_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateRecord 只更新仍为 pending 的记录，终态不可被覆盖
func (r *FollowUpRepository) UpdateRecord(ctx context.Context, recordID int64, status model.FollowUpStatus, attemptCount int, nextDueAt *time.Time, note string) error {
	return r.db.WithContext(ctx).
		Model(&model.FollowUpRecord{}).
		Where("id = ? AND status = ?", recordID, model.FollowUpStatusPending).
		Updates(map[string]interface{}{
			"status":        status,
			"attempt_count": attemptCount,
			"next_due_at":   nextDueAt,
			"note":          note,
		}).Error
}

func (r *FollowUpRepository) CompleteForOrder(ctx context.Context, orderID string, types []model.ActionType, note string) error {
	return r.db.WithContext(ctx).
		Model(&model.FollowUpRecord{}).
		Where("order_id = ? AND action_type IN ? AND status = ?",
			orderID, types, model.FollowUpStatusPending).
		Updates(map[string]interface{}{
			"status": model.FollowUpStatusCompleted,
			"note":   note,
		}).Error
}

func (r *FollowUpRepository) AppendAudit(ctx context.Context, audit *model.FollowUpAudit) error {
	return r.db.WithContext(ctx).Create(audit).Error
}

// Records 管理端分页查询
func (r *FollowUpRepository) Records(ctx context.Context, cookieID string, actionType model.ActionType, status model.FollowUpStatus, page, pageSize int) ([]*model.FollowUpRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}
	query := r.db.WithContext(ctx).Model(&model.FollowUpRecord{}).Where("cookie_id = ?", cookieID)
	if actionType != "" {
		query = query.Where("action_type = ?", actionType)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var records []*model.FollowUpRecord
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// Audits 某条记录的执行审计，按发送时间升序
func (r *FollowUpRepository) Audits(ctx context.Context, recordID int64) ([]*model.FollowUpAudit, error) {
	var audits []*model.FollowUpAudit
	err := r.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Order("sent_at ASC").
		Find(&audits).Error
	if err != nil {
		return nil, err
	}
	return audits, nil
}
