package entity

// ItemKind 物品种类
type ItemKind string

const (
	KindFood     ItemKind = "food"
	KindMaterial ItemKind = "material"
	KindMedicine ItemKind = "medicine"
	KindTool     ItemKind = "tool"
	KindWeapon   ItemKind = "weapon"
)

// SpoiledSicknessChance 腐坏食物的最低致病概率
const SpoiledSicknessChance = 0.6

// Item 物品，Kind 决定哪个载荷字段有效
type Item struct {
	ID       string   `json:"id" yaml:"-"`
	Template string   `json:"template" yaml:"-"`
	Name     string   `json:"name" yaml:"name"`
	Kind     ItemKind `json:"kind" yaml:"kind"`
	Weight   float64  `json:"weight" yaml:"weight"`
	Value    int      `json:"value" yaml:"value"`

	Food     *Food     `json:"food,omitempty" yaml:"food,omitempty"`
	Material *Material `json:"material,omitempty" yaml:"material,omitempty"`
	Medicine *Medicine `json:"medicine,omitempty" yaml:"medicine,omitempty"`
	Tool     *Tool     `json:"tool,omitempty" yaml:"tool,omitempty"`
	Weapon   *Weapon   `json:"weapon,omitempty" yaml:"weapon,omitempty"`
}

// Food 食物
type Food struct {
	Nutrition      float64 `json:"nutrition" yaml:"nutrition"`
	Hydration      float64 `json:"hydration,omitempty" yaml:"hydration"`
	SpoilTurns     int     `json:"spoil_turns,omitempty" yaml:"spoil_turns"` // 0 表示不会腐坏
	Age            int     `json:"age,omitempty" yaml:"-"`
	Raw            bool    `json:"raw,omitempty" yaml:"raw"`
	Spoiled        bool    `json:"spoiled,omitempty" yaml:"-"`
	SicknessChance float64 `json:"sickness_chance,omitempty" yaml:"sickness_chance"`
}

// MaterialKind 材料种类
type MaterialKind string

const (
	MaterialWood  MaterialKind = "wood"
	MaterialStone MaterialKind = "stone"
	MaterialHide  MaterialKind = "hide"
	MaterialFiber MaterialKind = "fiber"
	MaterialBone  MaterialKind = "bone"
	MaterialWater MaterialKind = "water"
)

// Material 材料，可堆叠
type Material struct {
	Kind     MaterialKind `json:"kind" yaml:"kind"`
	Quantity int          `json:"quantity" yaml:"quantity"`
}

// MedicineEffect 药效
type MedicineEffect string

const (
	EffectHeal      MedicineEffect = "heal"
	EffectCalm      MedicineEffect = "calm"
	EffectStimulant MedicineEffect = "stimulant"
)

// Medicine 药品
type Medicine struct {
	Effect  MedicineEffect `json:"effect" yaml:"effect"`
	Potency float64        `json:"potency" yaml:"potency"`
	Uses    int            `json:"uses" yaml:"uses"`
	MaxUses int            `json:"max_uses" yaml:"max_uses"`
}

// ToolKind 工具种类
type ToolKind string

const (
	ToolAxe        ToolKind = "axe"
	ToolFishingRod ToolKind = "fishing_rod"
	ToolFireKit    ToolKind = "fire_kit"
)

// Tool 工具
type Tool struct {
	Kind          ToolKind `json:"kind" yaml:"kind"`
	Durability    float64  `json:"durability" yaml:"durability"`
	MaxDurability float64  `json:"max_durability" yaml:"max_durability"`
	WearPerUse    float64  `json:"wear_per_use" yaml:"wear_per_use"`
	Yield         string   `json:"yield,omitempty" yaml:"yield"` // 使用后产出的物品模板
}

// Weapon 武器
type Weapon struct {
	Damage        float64 `json:"damage" yaml:"damage"`
	AttackSpeed   float64 `json:"attack_speed" yaml:"attack_speed"`
	Durability    float64 `json:"durability" yaml:"durability"`
	MaxDurability float64 `json:"max_durability" yaml:"max_durability"`
	WearPerUse    float64 `json:"wear_per_use" yaml:"wear_per_use"`
}

// Normalize 把所有数值限制在合法范围
func (it *Item) Normalize() {
	it.Weight = Clamp(it.Weight, 0, maxFloat)
	if it.Food != nil {
		it.Food.SicknessChance = ClampUnit(it.Food.SicknessChance)
		if it.Food.SpoilTurns < 0 {
			it.Food.SpoilTurns = 0
		}
	}
	if it.Material != nil && it.Material.Quantity < 0 {
		it.Material.Quantity = 0
	}
	if it.Medicine != nil {
		if it.Medicine.MaxUses <= 0 {
			it.Medicine.MaxUses = 1
		}
		it.Medicine.Uses = clampInt(it.Medicine.Uses, 0, it.Medicine.MaxUses)
	}
	if it.Tool != nil {
		if it.Tool.MaxDurability <= 0 {
			it.Tool.MaxDurability = StatMax
		}
		it.Tool.Durability = Clamp(it.Tool.Durability, 0, it.Tool.MaxDurability)
	}
	if it.Weapon != nil {
		if it.Weapon.MaxDurability <= 0 {
			it.Weapon.MaxDurability = StatMax
		}
		it.Weapon.Durability = Clamp(it.Weapon.Durability, 0, it.Weapon.MaxDurability)
	}
}

// PayloadMatches 种类与载荷是否一致
func (it *Item) PayloadMatches() bool {
	switch it.Kind {
	case KindFood:
		return it.Food != nil
	case KindMaterial:
		return it.Material != nil
	case KindMedicine:
		return it.Medicine != nil
	case KindTool:
		return it.Tool != nil
	case KindWeapon:
		return it.Weapon != nil
	}
	return false
}

// Depleted 耗尽的物品会在下一次访问背包时移除
func (it *Item) Depleted() bool {
	switch it.Kind {
	case KindMaterial:
		return it.Material == nil || it.Material.Quantity <= 0
	case KindMedicine:
		return it.Medicine == nil || it.Medicine.Uses <= 0
	case KindTool:
		return it.Tool == nil || it.Tool.Durability <= 0
	case KindWeapon:
		return it.Weapon == nil || it.Weapon.Durability <= 0
	}
	return false
}

// TotalWeight 总重量，材料按数量计
func (it *Item) TotalWeight() float64 {
	if it.Kind == KindMaterial && it.Material != nil {
		return it.Weight * float64(it.Material.Quantity)
	}
	return it.Weight
}

// Wear 磨损工具或武器
func (it *Item) Wear() {
	switch {
	case it.Tool != nil:
		it.Tool.Durability = Clamp(it.Tool.Durability-it.Tool.WearPerUse, 0, it.Tool.MaxDurability)
	case it.Weapon != nil:
		it.Weapon.Durability = Clamp(it.Weapon.Durability-it.Weapon.WearPerUse, 0, it.Weapon.MaxDurability)
	}
}

// ConsumeUse 消耗一次药品使用次数
func (it *Item) ConsumeUse() bool {
	if it.Medicine == nil || it.Medicine.Uses <= 0 {
		return false
	}
	it.Medicine.Uses--
	return true
}

// AgeFood 食物老化一回合，返回是否在本回合变质
func (it *Item) AgeFood() bool {
	f := it.Food
	if f == nil || f.SpoilTurns <= 0 || f.Spoiled {
		return false
	}
	f.Age++
	if f.Age >= f.SpoilTurns {
		f.Spoiled = true
		return true
	}
	return false
}

// Sickness 食用后的致病概率
func (it *Item) Sickness() float64 {
	if it.Food == nil {
		return 0
	}
	if it.Food.Spoiled && it.Food.SicknessChance < SpoiledSicknessChance {
		return SpoiledSicknessChance
	}
	if it.Food.Raw || it.Food.Spoiled {
		return it.Food.SicknessChance
	}
	return 0
}

// Clone 深拷贝
func (it *Item) Clone() *Item {
	c := *it
	if it.Food != nil {
		f := *it.Food
		c.Food = &f
	}
	if it.Material != nil {
		m := *it.Material
		c.Material = &m
	}
	if it.Medicine != nil {
		m := *it.Medicine
		c.Medicine = &m
	}
	if it.Tool != nil {
		t := *it.Tool
		c.Tool = &t
	}
	if it.Weapon != nil {
		w := *it.Weapon
		c.Weapon = &w
	}
	return &c
}

const maxFloat = 1e9

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
