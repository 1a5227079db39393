package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Game      GameConfig      `mapstructure:"game"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr 监听地址
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// WebSocketConfig WebSocket配置
type WebSocketConfig struct {
	Path              string        `mapstructure:"path"`
	ReadBufferSize    int           `mapstructure:"read_buffer_size"`
	WriteBufferSize   int           `mapstructure:"write_buffer_size"`
	MaxMessageSize    int64         `mapstructure:"max_message_size"`
	PingInterval      time.Duration `mapstructure:"ping_interval"`
	EnableCompression bool          `mapstructure:"enable_compression"`
}

// StorageConfig 存档存储配置
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // memory, file, database
	Dir    string `mapstructure:"dir"`    // file 模式下的存档目录
	Cache  bool   `mapstructure:"cache"`  // 是否在存储层前加内存缓存
}

// GameConfig 游戏规则配置
type GameConfig struct {
	Seed         int64  `mapstructure:"seed"` // 0 表示使用当前时间
	AutosaveSlot string `mapstructure:"autosave_slot"`
	StartAmbient string `mapstructure:"start_ambient"`
	Archetype    string `mapstructure:"archetype"`
	PlayerName   string `mapstructure:"player_name"`
	CatalogPath  string `mapstructure:"catalog_path"` // 为空时使用内置目录

	Decay              DecayConfig    `mapstructure:"decay"`
	StarvationDamage   float64        `mapstructure:"starvation_damage"`
	SanityFailureTurns int            `mapstructure:"sanity_failure_turns"`
	ObjectiveTurns     int            `mapstructure:"objective_turns"`
	MaxCombatRounds    int            `mapstructure:"max_combat_rounds"`
	Rest               RestConfig     `mapstructure:"rest"`
	ActionCosts        map[string]int `mapstructure:"action_costs"`
}

// DecayConfig 每回合衰减速率
type DecayConfig struct {
	Hunger float64 `mapstructure:"hunger"`
	Thirst float64 `mapstructure:"thirst"`
	Energy float64 `mapstructure:"energy"`
	Sanity float64 `mapstructure:"sanity"`
}

// RestConfig 休息恢复量
type RestConfig struct {
	Energy float64 `mapstructure:"energy"`
	Sanity float64 `mapstructure:"sanity"`
}

// ActionCost 获取行动体力消耗，未配置时返回0
func (g *GameConfig) ActionCost(action string) int {
	if g.ActionCosts == nil {
		return 0
	}
	return g.ActionCosts[action]
}

// LogConfig 日志配置
type LogConfig struct {
	Level   string            `mapstructure:"level"`
	Format  string            `mapstructure:"format"`
	Output  string            `mapstructure:"output"`
	File    LogFileConfig     `mapstructure:"file"`
	Modules map[string]string `mapstructure:"modules"`
}

// LogFileConfig 日志文件配置
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

var (
	cfg  *Config
	once sync.Once
	mu   sync.RWMutex
	v    *viper.Viper
)

// Init 初始化配置
func Init(configPath string) error {
	var err error
	once.Do(func() {
		v = viper.New()

		// 设置配置文件路径
		if configPath != "" {
			v.SetConfigFile(configPath)
		} else {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath("./config")
			v.AddConfigPath(".")
		}

		// 设置环境变量前缀
		v.SetEnvPrefix("SURVIVAL")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		SetDefaults(v)

		// 读取配置文件
		if err = v.ReadInConfig(); err != nil {
			// 如果配置文件不存在，使用默认配置
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return
			}
			err = nil
		}

		loaded := &Config{}
		if err = v.Unmarshal(loaded); err != nil {
			return
		}
		if err = Validate(loaded); err != nil {
			return
		}

		mu.Lock()
		cfg = loaded
		mu.Unlock()
	})

	return err
}

// SetDefaults 设置默认配置值
func SetDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// 数据库默认配置
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./data/survival.db")
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_open_conns", 4)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.auto_migrate", true)

	// WebSocket默认配置
	v.SetDefault("websocket.path", "/ws")
	v.SetDefault("websocket.read_buffer_size", 1024)
	v.SetDefault("websocket.write_buffer_size", 1024)
	v.SetDefault("websocket.max_message_size", 8192)
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.enable_compression", true)

	// 存档默认配置
	v.SetDefault("storage.driver", "database")
	v.SetDefault("storage.dir", "./saves")
	v.SetDefault("storage.cache", true)

	// 游戏规则默认配置
	v.SetDefault("game.seed", 0)
	v.SetDefault("game.autosave_slot", "autosave")
	v.SetDefault("game.start_ambient", "forest")
	v.SetDefault("game.archetype", "survivor")
	v.SetDefault("game.player_name", "Wanderer")
	v.SetDefault("game.catalog_path", "")
	v.SetDefault("game.decay.hunger", 4)
	v.SetDefault("game.decay.thirst", 6)
	v.SetDefault("game.decay.energy", 3)
	v.SetDefault("game.decay.sanity", 2)
	v.SetDefault("game.starvation_damage", 5)
	v.SetDefault("game.sanity_failure_turns", 3)
	v.SetDefault("game.objective_turns", 30)
	v.SetDefault("game.max_combat_rounds", 10)
	v.SetDefault("game.rest.energy", 30)
	v.SetDefault("game.rest.sanity", 5)
	v.SetDefault("game.action_costs", DefaultActionCosts())

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "file")
	v.SetDefault("log.file.path", "./logs")
	v.SetDefault("log.file.filename", "survival.log")
	v.SetDefault("log.file.max_size", 50)
	v.SetDefault("log.file.max_age", 30)
	v.SetDefault("log.file.max_backups", 5)
	v.SetDefault("log.file.compress", true)
}

// DefaultActionCosts 默认行动体力消耗
func DefaultActionCosts() map[string]int {
	return map[string]int{
		"explore":   15,
		"rest":      0,
		"inventory": 2,
		"quit":      0,
		"travel":    20,
		"trade":     5,
	}
}

// Default 返回仅含默认值的配置（测试与无配置文件场景）
func Default() *Config {
	dv := viper.New()
	SetDefaults(dv)
	c := &Config{}
	if err := dv.Unmarshal(c); err != nil {
		panic(fmt.Sprintf("默认配置解析失败: %v", err))
	}
	return c
}

// Validate 校验配置
func Validate(c *Config) error {
	if c.Game.AutosaveSlot == "" {
		return fmt.Errorf("game.autosave_slot 不能为空")
	}
	if c.Game.SanityFailureTurns <= 0 {
		return fmt.Errorf("game.sanity_failure_turns 必须大于0")
	}
	if c.Game.MaxCombatRounds <= 0 {
		return fmt.Errorf("game.max_combat_rounds 必须大于0")
	}
	for action, cost := range c.Game.ActionCosts {
		if cost < 0 {
			return fmt.Errorf("game.action_costs.%s 不能为负数", action)
		}
	}
	switch c.Storage.Driver {
	case "memory", "file", "database":
	default:
		return fmt.Errorf("不支持的存档存储: %s", c.Storage.Driver)
	}
	return nil
}

// Get 获取配置实例
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Watch 监听配置文件变化
// 新的游戏规则在下一次开局时生效，进行中的回合不受影响
func Watch(callback func(*Config)) {
	if v == nil {
		return
	}
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		newCfg := &Config{}
		if err := v.Unmarshal(newCfg); err != nil {
			fmt.Printf("配置重载失败: %v\n", err)
			return
		}
		if err := Validate(newCfg); err != nil {
			fmt.Printf("配置重载校验失败: %v\n", err)
			return
		}

		mu.Lock()
		cfg = newCfg
		mu.Unlock()

		if callback != nil {
			callback(newCfg)
		}

		fmt.Printf("配置已重新加载: %s\n", e.Name)
	})
}

// GetString 获取字符串配置
func GetString(key string) string {
	return v.GetString(key)
}

// GetInt 获取整数配置
func GetInt(key string) int {
	return v.GetInt(key)
}

// IsSet 检查配置项是否存在
func IsSet(key string) bool {
	return v.IsSet(key)
}

// Set 动态设置配置值
func Set(key string, value interface{}) {
	v.Set(key, value)
}
