// Package app 按配置组装游戏运行所需的组件
package app

import (
	"github.com/wfunc/survival-game/internal/config"
	"github.com/wfunc/survival-game/internal/database"
	"github.com/wfunc/survival-game/internal/errors"
	"github.com/wfunc/survival-game/internal/game"
	"github.com/wfunc/survival-game/internal/game/catalog"
	"github.com/wfunc/survival-game/internal/logger"
	"github.com/wfunc/survival-game/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 已初始化的组件
// DB、Slots、Records 只在数据库存储下存在
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Catalog *catalog.Catalog
	DB      *gorm.DB
	Store   game.SlotStore
	Slots   repository.SaveSlotRepository
	Records repository.TurnRecordRepository
	Journal game.Journal
}

// New 初始化目录与存档存储
func New(cfg *config.Config) (*App, error) {
	a := &App{
		Config:  cfg,
		Logger:  logger.GetLogger(),
		Journal: game.NopJournal{},
	}

	if err := a.loadCatalog(); err != nil {
		return nil, err
	}
	if err := a.openStore(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// loadCatalog 加载内容目录，未配置路径时使用内置目录
func (a *App) loadCatalog() error {
	var (
		c   *catalog.Catalog
		err error
	)
	if path := a.Config.Game.CatalogPath; path != "" {
		c, err = catalog.Load(path)
	} else {
		c, err = catalog.Default()
	}
	if err != nil {
		return err
	}
	a.Catalog = c
	a.Logger.Info("内容目录已加载",
		zap.Int("archetypes", len(c.Archetypes)),
		zap.Int("ambients", len(c.Ambients)),
		zap.Int("events", len(c.Events)))
	return nil
}

// openStore 按驱动创建存档存储
func (a *App) openStore() error {
	cfg := a.Config
	var store game.SlotStore

	switch cfg.Storage.Driver {
	case "memory":
		store = game.NewMemorySlotStore()

	case "file":
		fs, err := game.NewFileSlotStore(cfg.Storage.Dir)
		if err != nil {
			return err
		}
		store = fs

	case "database":
		if err := database.Init(&cfg.Database); err != nil {
			return errors.Wrap(err, errors.ErrDatabaseConnect, "初始化数据库连接失败")
		}
		a.DB = database.GetDB()
		if cfg.Database.AutoMigrate {
			if err := database.AutoMigrate(); err != nil {
				return errors.Wrap(err, errors.ErrDatabaseConnect, "数据库迁移失败")
			}
		}
		manager := repository.NewManager(a.DB)
		a.Slots = manager.SaveSlot()
		a.Records = manager.TurnRecord()
		a.Journal = game.NewDatabaseJournal(a.Records)
		store = game.NewDatabaseSlotStore(a.Slots)

	default:
		return errors.Newf(errors.ErrConfigValidate, "不支持的存档存储: %s", cfg.Storage.Driver)
	}

	// 内存存储本身就是缓存
	if cfg.Storage.Cache && cfg.Storage.Driver != "memory" {
		store = game.NewCacheSlotStore(game.NewMemorySlotStore(), store)
	}
	a.Store = store

	a.Logger.Info("存档存储已就绪",
		zap.String("driver", cfg.Storage.Driver),
		zap.Bool("cache", cfg.Storage.Cache))
	return nil
}

// Runtime 组装会话运行时
func (a *App) Runtime(input game.Input, presenter game.Presenter) game.Runtime {
	return game.Runtime{
		Catalog:   a.Catalog,
		Config:    &a.Config.Game,
		Store:     a.Store,
		Input:     input,
		Presenter: presenter,
		Journal:   a.Journal,
		Logger:    logger.GetModuleLogger("game"),
	}
}

// Recovery 自动存档恢复
func (a *App) Recovery() *game.RecoveryManager {
	return game.NewRecoveryManager(logger.GetModuleLogger("persistence"), a.Store, a.Config.Game.AutosaveSlot)
}

// Defaults 配置中的开局选项
func (a *App) Defaults() game.NewGameOptions {
	g := a.Config.Game
	return game.NewGameOptions{
		PlayerName: g.PlayerName,
		Archetype:  g.Archetype,
		Seed:       g.Seed,
		Ambient:    g.StartAmbient,
	}
}

// Close 关闭数据库连接
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	a.DB = nil
	return database.Close()
}
