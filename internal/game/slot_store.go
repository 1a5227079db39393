package game

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/wfunc/survival-game/internal/errors"
	"github.com/wfunc/survival-game/internal/models"
	"github.com/wfunc/survival-game/internal/repository"
)

// SlotStore 存档槽存储，槽名对核心来说是不透明的键
// 读取不存在的槽返回 ErrSlotNotFound；删除不存在的槽无操作
type SlotStore interface {
	WriteNamedSlot(ctx context.Context, name string, data []byte) error
	ReadNamedSlot(ctx context.Context, name string) ([]byte, error)
	Exists(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, name string) error
}

// MemorySlotStore 内存存储（测试与缓存层）
type MemorySlotStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemorySlotStore 创建内存存储
func NewMemorySlotStore() *MemorySlotStore {
	return &MemorySlotStore{slots: make(map[string][]byte)}
}

// WriteNamedSlot 保存存档
func (s *MemorySlotStore) WriteNamedSlot(ctx context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 拷贝数据，调用方之后修改切片不影响存档
	s.slots[name] = append([]byte(nil), data...)
	return nil
}

// ReadNamedSlot 读取存档
func (s *MemorySlotStore) ReadNamedSlot(ctx context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.slots[name]
	if !ok {
		return nil, errors.New(errors.ErrSlotNotFound, name)
	}
	return append([]byte(nil), data...), nil
}

// Exists 是否存在
func (s *MemorySlotStore) Exists(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.slots[name]
	return ok, nil
}

// Delete 删除存档
func (s *MemorySlotStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, name)
	return nil
}

// FileSlotStore 文件存储，每个槽一个 JSON 文件
type FileSlotStore struct {
	dir string
}

// NewFileSlotStore 创建文件存储
func NewFileSlotStore(dir string) (*FileSlotStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrStorageIO, "创建存档目录 %s 失败", dir)
	}
	return &FileSlotStore{dir: dir}, nil
}

// path 槽名对应的文件路径
func (s *FileSlotStore) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", errors.Newf(errors.ErrInvalidParam, "无效的槽名 %q", name)
	}
	return filepath.Join(s.dir, name+".json"), nil
}

// WriteNamedSlot 先写临时文件再重命名
func (s *FileSlotStore) WriteNamedSlot(ctx context.Context, name string, data []byte) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return errors.Wrap(err, errors.ErrStorageIO, "创建临时存档失败")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.ErrStorageIO, "写入存档失败")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrStorageIO, "写入存档失败")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, errors.ErrStorageIO, "替换存档失败")
	}
	return nil
}

// ReadNamedSlot 读取存档
func (s *FileSlotStore) ReadNamedSlot(ctx context.Context, name string) ([]byte, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrSlotNotFound, name)
		}
		return nil, errors.Wrap(err, errors.ErrStorageIO, "读取存档失败")
	}
	return data, nil
}

// Exists 是否存在
func (s *FileSlotStore) Exists(ctx context.Context, name string) (bool, error) {
	path, err := s.path(name)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrStorageIO)
	}
	return true, nil
}

// Delete 删除存档
func (s *FileSlotStore) Delete(ctx context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.ErrStorageIO, "删除存档失败")
	}
	return nil
}

// DatabaseSlotStore 数据库存储，列表字段从存档摘要中提取
type DatabaseSlotStore struct {
	repo repository.SaveSlotRepository
}

// NewDatabaseSlotStore 创建数据库存储
func NewDatabaseSlotStore(repo repository.SaveSlotRepository) *DatabaseSlotStore {
	return &DatabaseSlotStore{repo: repo}
}

// WriteNamedSlot 保存存档（存在则覆盖）
func (s *DatabaseSlotStore) WriteNamedSlot(ctx context.Context, name string, data []byte) error {
	slot := &models.SaveSlot{
		Name:          name,
		SchemaVersion: SchemaVersion,
		Payload:       data,
		SavedAt:       time.Now().UTC(),
	}
	// 无法解析摘要的数据照样保存，读取时再判定损坏
	if h, err := Peek(data); err == nil {
		slot.SchemaVersion = h.SchemaVersion
		slot.TurnCounter = h.Turn
		slot.PlayerName = h.Player
		slot.Archetype = h.Archetype
		slot.Ambient = h.Ambient
		slot.SavedAt = h.SavedAt
	}
	if err := s.repo.Upsert(ctx, slot); err != nil {
		return errors.Wrap(err, errors.ErrStorageIO, "保存存档失败")
	}
	return nil
}

// ReadNamedSlot 读取存档
func (s *DatabaseSlotStore) ReadNamedSlot(ctx context.Context, name string) ([]byte, error) {
	slot, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.New(errors.ErrSlotNotFound, name)
		}
		return nil, errors.Wrap(err, errors.ErrStorageIO, "读取存档失败")
	}
	return slot.Payload, nil
}

// Exists 是否存在
func (s *DatabaseSlotStore) Exists(ctx context.Context, name string) (bool, error) {
	ok, err := s.repo.Exists(ctx, name)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrStorageIO)
	}
	return ok, nil
}

// Delete 删除存档
func (s *DatabaseSlotStore) Delete(ctx context.Context, name string) error {
	if _, err := s.repo.DeleteByName(ctx, name); err != nil {
		return errors.Wrap(err, errors.ErrStorageIO, "删除存档失败")
	}
	return nil
}

// CacheSlotStore 带缓存的存储（装饰器模式）
type CacheSlotStore struct {
	cache   SlotStore // 缓存层
	storage SlotStore // 存储层
}

// NewCacheSlotStore 创建带缓存的存储
func NewCacheSlotStore(cache, storage SlotStore) *CacheSlotStore {
	return &CacheSlotStore{cache: cache, storage: storage}
}

// WriteNamedSlot 先写存储层再写缓存
func (s *CacheSlotStore) WriteNamedSlot(ctx context.Context, name string, data []byte) error {
	if err := s.storage.WriteNamedSlot(ctx, name, data); err != nil {
		return err
	}
	// 缓存失败不影响主流程
	_ = s.cache.WriteNamedSlot(ctx, name, data)
	return nil
}

// ReadNamedSlot 优先读缓存
func (s *CacheSlotStore) ReadNamedSlot(ctx context.Context, name string) ([]byte, error) {
	if data, err := s.cache.ReadNamedSlot(ctx, name); err == nil {
		return data, nil
	}
	data, err := s.storage.ReadNamedSlot(ctx, name)
	if err != nil {
		return nil, err
	}
	_ = s.cache.WriteNamedSlot(ctx, name, data)
	return data, nil
}

// Exists 以存储层为准
func (s *CacheSlotStore) Exists(ctx context.Context, name string) (bool, error) {
	return s.storage.Exists(ctx, name)
}

// Delete 同时删除缓存和存储
func (s *CacheSlotStore) Delete(ctx context.Context, name string) error {
	_ = s.cache.Delete(ctx, name)
	return s.storage.Delete(ctx, name)
}
