package entity

// Hostility 生物敌意状态
type Hostility string

const (
	Hostile Hostility = "HOSTILE"
	Neutral Hostility = "NEUTRAL"
	Fleeing Hostility = "FLEEING"
	Passive Hostility = "PASSIVE"
)

// 默认激怒参数
const (
	DefaultEnrageThreshold  = 0.5
	DefaultEnrageMultiplier = 1.5
)

// LootEntry 掉落项，每项独立判定
type LootEntry struct {
	Item     string  `json:"item" yaml:"item"`
	Chance   float64 `json:"chance" yaml:"chance"`
	Quantity int     `json:"quantity,omitempty" yaml:"quantity"`
}

// CreatureKind 生物种类参数
type CreatureKind struct {
	Kind             string      `yaml:"-"`
	Name             string      `yaml:"name"`
	Hostility        Hostility   `yaml:"hostility"`
	MaxHealth        float64     `yaml:"max_health"`
	AttackDamage     float64     `yaml:"attack_damage"`
	Variance         float64     `yaml:"variance"`
	Speed            int         `yaml:"speed"`
	EnrageThreshold  float64     `yaml:"enrage_threshold"`
	EnrageMultiplier float64     `yaml:"enrage_multiplier"`
	Evasive          bool        `yaml:"evasive"`
	Loot             []LootEntry `yaml:"loot"`
}

// Creature 生物实例
type Creature struct {
	ID               string      `json:"id"`
	Kind             string      `json:"kind"`
	Name             string      `json:"name"`
	MaxHealth        float64     `json:"max_health"`
	Health           float64     `json:"health"`
	AttackDamage     float64     `json:"attack_damage"`
	Variance         float64     `json:"variance"`
	Speed            int         `json:"speed"`
	Hostility        Hostility   `json:"hostility"`
	EnrageThreshold  float64     `json:"enrage_threshold"`
	EnrageMultiplier float64     `json:"enrage_multiplier"`
	Evasive          bool        `json:"evasive,omitempty"`
	Enraged          bool        `json:"enraged,omitempty"`
	LootDropped      bool        `json:"loot_dropped,omitempty"`
	Loot             []LootEntry `json:"loot,omitempty"`
	X                int         `json:"x"`
	Y                int         `json:"y"`
}

// NewCreature 按种类创建生物
func NewCreature(id string, k *CreatureKind) *Creature {
	threshold := k.EnrageThreshold
	if threshold == 0 {
		threshold = DefaultEnrageThreshold
	}
	multiplier := k.EnrageMultiplier
	if multiplier == 0 {
		multiplier = DefaultEnrageMultiplier
	}
	hostility := k.Hostility
	if hostility == "" {
		hostility = Neutral
	}
	maxHealth := k.MaxHealth
	if maxHealth <= 0 {
		maxHealth = 1
	}
	var loot []LootEntry
	if len(k.Loot) > 0 {
		loot = make([]LootEntry, len(k.Loot))
		copy(loot, k.Loot)
	}
	return &Creature{
		ID:               id,
		Kind:             k.Kind,
		Name:             k.Name,
		MaxHealth:        maxHealth,
		Health:           maxHealth,
		AttackDamage:     k.AttackDamage,
		Variance:         k.Variance,
		Speed:            k.Speed,
		Hostility:        hostility,
		EnrageThreshold:  ClampUnit(threshold),
		EnrageMultiplier: multiplier,
		Evasive:          k.Evasive,
		Loot:             loot,
	}
}

// SetHealth 设置生命，限制在 [0, MaxHealth]
func (c *Creature) SetHealth(v float64) {
	c.Health = clampOr(v, c.Health, 0, c.MaxHealth)
}

// Heal 恢复生命，不会改变敌意状态
func (c *Creature) Heal(amount float64) {
	if amount > 0 {
		c.SetHealth(c.Health + amount)
	}
}

// ReceiveDamage 扣除生命，返回实际扣除量
func (c *Creature) ReceiveDamage(amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	before := c.Health
	c.SetHealth(before - amount)
	return before - c.Health
}

// Alive 是否存活
func (c *Creature) Alive() bool {
	return c.Health > 0
}

// HealthFraction 剩余生命比例
func (c *Creature) HealthFraction() float64 {
	if c.MaxHealth <= 0 {
		return 0
	}
	return c.Health / c.MaxHealth
}

// Damage 当前攻击力，激怒后乘以倍率
func (c *Creature) Damage() float64 {
	if c.Enraged {
		return c.AttackDamage * c.EnrageMultiplier
	}
	return c.AttackDamage
}

// Attacks 只有敌对生物会主动攻击
func (c *Creature) Attacks() bool {
	return c.Hostility == Hostile && c.Alive()
}
