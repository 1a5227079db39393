// Package catalog 内置与自定义的游戏内容目录
package catalog

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/wfunc/survival-game/internal/errors"
	"github.com/wfunc/survival-game/internal/game/ambient"
	"github.com/wfunc/survival-game/internal/game/entity"
	"github.com/wfunc/survival-game/internal/game/event"
	"gopkg.in/yaml.v3"
)

//go:embed data/default.yaml
var defaultYAML []byte

// Catalog 游戏内容目录，加载后只读
type Catalog struct {
	Archetypes map[string]*entity.Archetype    `yaml:"archetypes"`
	Items      map[string]*entity.Item         `yaml:"items"`
	Creatures  map[string]*entity.CreatureKind `yaml:"creatures"`
	Events     map[string]*event.Event         `yaml:"events"`
	Factions   map[string]*entity.Faction      `yaml:"factions"`
	Ambients   map[string]*ambient.Definition  `yaml:"ambients"`
}

// Default 加载内置目录
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// Load 从文件加载目录，path 为空时使用内置目录
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCatalogInvalid, "读取目录文件 %s 失败", path)
	}
	return Parse(data)
}

// Parse 解析并校验目录
func Parse(data []byte) (*Catalog, error) {
	c := &Catalog{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, errors.ErrCatalogInvalid)
	}
	c.index()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// index 用映射键回填名称
func (c *Catalog) index() {
	for key, a := range c.Archetypes {
		a.Kind = entity.ArchetypeKind(key)
	}
	for key, it := range c.Items {
		it.Template = key
		it.Normalize()
	}
	for key, k := range c.Creatures {
		k.Kind = key
	}
	for key, ev := range c.Events {
		ev.Name = key
	}
	for key, f := range c.Factions {
		f.ID = key
	}
	for key, d := range c.Ambients {
		d.Name = key
	}
}

// Validate 校验所有引用都能解析
func (c *Catalog) Validate() error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(c.Archetypes) == 0 {
		add("至少需要一个职业")
	}
	if len(c.Ambients) == 0 {
		add("至少需要一个区域")
	}

	for _, key := range sortedKeys(c.Archetypes) {
		a := c.Archetypes[key]
		if _, err := entity.ParseArchetype(key); err != nil {
			add("职业 %s: %v", key, err)
		}
		for _, item := range a.StartingItems {
			if _, ok := c.Items[item]; !ok {
				add("职业 %s: 初始物品 %s 不存在", key, item)
			}
		}
		if a.Ability.Item != "" {
			if _, ok := c.Items[a.Ability.Item]; !ok {
				add("职业 %s: 特技物品 %s 不存在", key, a.Ability.Item)
			}
		}
	}

	for _, key := range sortedKeys(c.Items) {
		it := c.Items[key]
		if !it.PayloadMatches() {
			add("物品 %s: 种类 %s 缺少对应参数", key, it.Kind)
		}
		if it.Tool != nil && it.Tool.Yield != "" {
			if _, ok := c.Items[it.Tool.Yield]; !ok {
				add("物品 %s: 产出 %s 不存在", key, it.Tool.Yield)
			}
		}
	}

	for _, key := range sortedKeys(c.Creatures) {
		for _, loot := range c.Creatures[key].Loot {
			if _, ok := c.Items[loot.Item]; !ok {
				add("生物 %s: 掉落 %s 不存在", key, loot.Item)
			}
		}
	}

	for _, key := range sortedKeys(c.Events) {
		ev := c.Events[key]
		if ev.FollowUp != "" {
			if _, ok := c.Events[ev.FollowUp]; !ok {
				add("事件 %s: 后续事件 %s 不存在", key, ev.FollowUp)
			}
		}
		for _, impact := range ev.Impacts {
			switch impact.Attribute {
			case event.AttrReputation:
				if _, ok := c.Factions[impact.Target]; !ok {
					add("事件 %s: 阵营 %s 不存在", key, impact.Target)
				}
			case event.AttrResources:
				if _, ok := c.Items[impact.Target]; !ok {
					add("事件 %s: 资源 %s 不存在", key, impact.Target)
				}
			case event.AttrWeather:
				if impact.Target == "" {
					add("事件 %s: 天气影响缺少目标", key)
				}
			default:
				if !impact.Attribute.CharacterScoped() {
					add("事件 %s: 未知属性 %s", key, impact.Attribute)
				}
			}
		}
	}

	for _, key := range sortedKeys(c.Factions) {
		f := c.Factions[key]
		for _, item := range f.Trades {
			if _, ok := c.Items[item]; !ok {
				add("阵营 %s: 交易物品 %s 不存在", key, item)
			}
		}
		for _, a := range f.Ambients {
			if _, ok := c.Ambients[a]; !ok {
				add("阵营 %s: 区域 %s 不存在", key, a)
			}
		}
	}

	for _, key := range sortedKeys(c.Ambients) {
		d := c.Ambients[key]
		for _, r := range d.Resources {
			if _, ok := c.Items[r.Item]; !ok {
				add("区域 %s: 资源 %s 不存在", key, r.Item)
			}
		}
		for _, kind := range d.Creatures {
			if _, ok := c.Creatures[kind]; !ok {
				add("区域 %s: 生物 %s 不存在", key, kind)
			}
		}
		for _, w := range d.Events {
			if _, ok := c.Events[w.Event]; !ok {
				add("区域 %s: 事件 %s 不存在", key, w.Event)
			}
		}
		for _, n := range d.Neighbors {
			if _, ok := c.Ambients[n]; !ok {
				add("区域 %s: 相邻区域 %s 不存在", key, n)
			}
		}
	}

	if len(problems) > 0 {
		return errors.New(errors.ErrCatalogInvalid, problems...)
	}
	return nil
}

// newID 从 rng 读取随机字节生成实例 ID，rng 为空时使用系统随机源
func newID(rng io.Reader) string {
	if rng == nil {
		return uuid.New().String()
	}
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// NewItem 按模板生成物品实例，ID 取自 rng
func (c *Catalog) NewItem(template string, rng io.Reader) (*entity.Item, bool) {
	tpl, ok := c.Items[template]
	if !ok {
		return nil, false
	}
	it := tpl.Clone()
	it.ID = newID(rng)
	it.Template = template
	return it, true
}

// NewCreature 按种类生成生物实例，ID 取自 rng
func (c *Catalog) NewCreature(kind string, rng io.Reader) (*entity.Creature, bool) {
	k, ok := c.Creatures[kind]
	if !ok {
		return nil, false
	}
	return entity.NewCreature(newID(rng), k), true
}

// Factory 绑定随机源的实例工厂
// 同一随机序列生成的实例 ID 相同，存档回放因此可复现
type Factory struct {
	catalog *Catalog
	rng     io.Reader
}

// Factory 创建绑定 rng 的工厂
func (c *Catalog) Factory(rng io.Reader) *Factory {
	return &Factory{catalog: c, rng: rng}
}

// NewItem 按模板生成物品实例
func (f *Factory) NewItem(template string) (*entity.Item, bool) {
	return f.catalog.NewItem(template, f.rng)
}

// NewCreature 按种类生成生物实例
func (f *Factory) NewCreature(kind string) (*entity.Creature, bool) {
	return f.catalog.NewCreature(kind, f.rng)
}

// NewCharacter 按职业创建角色并发放初始物品，物品 ID 取自 rng
func (c *Catalog) NewCharacter(name string, archetype string, rng io.Reader) (*entity.Character, error) {
	kind, err := entity.ParseArchetype(archetype)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidParam)
	}
	a, ok := c.Archetypes[string(kind)]
	if !ok {
		return nil, errors.Newf(errors.ErrInvalidParam, "目录中没有职业 %s", kind)
	}
	ch := entity.NewCharacter(name, a)
	for _, template := range a.StartingItems {
		it, ok := c.NewItem(template, rng)
		if !ok {
			continue
		}
		if err := ch.Carry(it); err != nil {
			return nil, errors.Wrapf(err, errors.ErrCatalogInvalid, "职业 %s 初始物品超重", kind)
		}
	}
	return ch, nil
}

// Definitions 区域模板
func (c *Catalog) Definitions() map[string]*ambient.Definition {
	return c.Ambients
}

// ArchetypeNames 全部职业名，已排序
func (c *Catalog) ArchetypeNames() []string {
	return sortedKeys(c.Archetypes)
}

func sortedKeys[V any](in map[string]V) []string {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
