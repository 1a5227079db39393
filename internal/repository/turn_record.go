package repository

import (
	"context"
	"time"

	"github.com/wfunc/survival-game/internal/models"
	"gorm.io/gorm"
)

// TurnRecordRepository 回合日志仓储接口
type TurnRecordRepository interface {
	BaseRepository
	Create(ctx context.Context, record *models.TurnRecord) error
	FindBySessionID(ctx context.Context, sessionID string, p *Pagination) ([]*models.TurnRecord, error)
	LastBySessionID(ctx context.Context, sessionID string) (*models.TurnRecord, error)
	CountBySessionID(ctx context.Context, sessionID string) (int64, error)
	DeleteBySessionID(ctx context.Context, sessionID string) (int64, error)
}

// turnRecordRepo 回合日志仓储实现
type turnRecordRepo struct {
	*BaseRepo
}

// NewTurnRecordRepository 创建回合日志仓储
func NewTurnRecordRepository(db *gorm.DB) TurnRecordRepository {
	return &turnRecordRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Create 追加回合日志
func (r *turnRecordRepo) Create(ctx context.Context, record *models.TurnRecord) error {
	start := time.Now()
	err := r.conn(ctx).Create(record).Error
	return observe("create", record.TableName(), start, err)
}

// FindBySessionID 按回合顺序分页查询会话日志
func (r *turnRecordRepo) FindBySessionID(ctx context.Context, sessionID string, p *Pagination) ([]*models.TurnRecord, error) {
	var records []*models.TurnRecord

	r.conn(ctx).
		Model(&models.TurnRecord{}).
		Where("session_id = ?", sessionID).
		Count(&p.Total)

	err := r.conn(ctx).
		Where("session_id = ?", sessionID).
		Order("turn asc, id asc").
		Scopes(Paginate(p)).
		Find(&records).Error

	return records, err
}

// LastBySessionID 获取会话最后一条日志
func (r *turnRecordRepo) LastBySessionID(ctx context.Context, sessionID string) (*models.TurnRecord, error) {
	var record models.TurnRecord
	err := r.conn(ctx).
		Where("session_id = ?", sessionID).
		Order("id desc").
		First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// CountBySessionID 统计会话回合数
func (r *turnRecordRepo) CountBySessionID(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := r.conn(ctx).
		Model(&models.TurnRecord{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

// DeleteBySessionID 删除会话日志
func (r *turnRecordRepo) DeleteBySessionID(ctx context.Context, sessionID string) (int64, error) {
	result := r.conn(ctx).
		Unscoped().
		Where("session_id = ?", sessionID).
		Delete(&models.TurnRecord{})
	return result.RowsAffected, result.Error
}

// WithTx 使用事务
func (r *turnRecordRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &turnRecordRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
