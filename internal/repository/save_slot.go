package repository

import (
	"context"
	"errors"
	"time"

	"github.com/wfunc/survival-game/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaveSlotRepository 存档槽仓储接口
type SaveSlotRepository interface {
	BaseRepository
	Upsert(ctx context.Context, slot *models.SaveSlot) error
	FindByName(ctx context.Context, name string) (*models.SaveSlot, error)
	Exists(ctx context.Context, name string) (bool, error)
	DeleteByName(ctx context.Context, name string) (bool, error)
	List(ctx context.Context, p *Pagination) ([]*models.SaveSlot, error)
}

// saveSlotRepo 存档槽仓储实现
type saveSlotRepo struct {
	*BaseRepo
}

// NewSaveSlotRepository 创建存档槽仓储
func NewSaveSlotRepository(db *gorm.DB) SaveSlotRepository {
	return &saveSlotRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Upsert 按槽名写入存档，已存在时覆盖
func (r *saveSlotRepo) Upsert(ctx context.Context, slot *models.SaveSlot) error {
	start := time.Now()
	err := r.conn(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"schema_version", "turn_counter", "player_name", "archetype",
				"ambient", "payload", "saved_at", "updated_at",
			}),
		}).
		Create(slot).Error
	return observe("upsert", slot.TableName(), start, err)
}

// FindByName 根据槽名查找，不存在时返回 gorm.ErrRecordNotFound
func (r *saveSlotRepo) FindByName(ctx context.Context, name string) (*models.SaveSlot, error) {
	var slot models.SaveSlot
	err := r.conn(ctx).
		Where("name = ?", name).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// Exists 检查槽位是否存在
func (r *saveSlotRepo) Exists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Model(&models.SaveSlot{}).
		Where("name = ?", name).
		Count(&count).Error
	return count > 0, err
}

// DeleteByName 删除槽位，返回是否确有记录被删除
func (r *saveSlotRepo) DeleteByName(ctx context.Context, name string) (bool, error) {
	start := time.Now()
	result := r.conn(ctx).
		Where("name = ?", name).
		Delete(&models.SaveSlot{})
	return result.RowsAffected > 0, observe("delete", "save_slots", start, result.Error)
}

// List 分页列出存档（不加载存档内容）
func (r *saveSlotRepo) List(ctx context.Context, p *Pagination) ([]*models.SaveSlot, error) {
	var slots []*models.SaveSlot

	if err := r.conn(ctx).
		Model(&models.SaveSlot{}).
		Count(&p.Total).Error; err != nil {
		return nil, err
	}

	err := r.conn(ctx).
		Omit("payload").
		Order("saved_at desc").
		Scopes(Paginate(p)).
		Find(&slots).Error

	return slots, err
}

// WithTx 使用事务
func (r *saveSlotRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &saveSlotRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// IsNotFound 判断是否为记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
