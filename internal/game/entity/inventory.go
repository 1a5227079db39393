package entity

import (
	"strings"

	"github.com/wfunc/survival-game/internal/errors"
)

// Inventory 背包，按放入顺序保存
// 耗尽的物品在任何一次访问时被清理
type Inventory struct {
	Items []*Item `json:"items"`
}

// NewInventory 创建背包
func NewInventory() *Inventory {
	return &Inventory{Items: []*Item{}}
}

// Prune 清理耗尽的物品，返回清理数量
func (inv *Inventory) Prune() int {
	kept := inv.Items[:0]
	removed := 0
	for _, it := range inv.Items {
		if it.Depleted() {
			removed++
			continue
		}
		kept = append(kept, it)
	}
	for i := len(kept); i < len(inv.Items); i++ {
		inv.Items[i] = nil
	}
	inv.Items = kept
	return removed
}

// List 返回当前物品
func (inv *Inventory) List() []*Item {
	inv.Prune()
	return inv.Items
}

// Len 物品数量
func (inv *Inventory) Len() int {
	inv.Prune()
	return len(inv.Items)
}

// Weight 当前总重量
func (inv *Inventory) Weight() float64 {
	inv.Prune()
	total := 0.0
	for _, it := range inv.Items {
		total += it.TotalWeight()
	}
	return total
}

// Fits 判断放入后是否超重
func (inv *Inventory) Fits(it *Item, maxWeight float64) bool {
	return inv.Weight()+it.TotalWeight() <= maxWeight
}

// Add 放入物品，超重时不放入并返回 ErrCannotCarry
// 同模板材料合并数量
func (inv *Inventory) Add(it *Item, maxWeight float64) error {
	if it == nil {
		return errors.New(errors.ErrInvalidParam, "空物品")
	}
	if !inv.Fits(it, maxWeight) {
		return errors.Newf(errors.ErrCannotCarry, "%s 重 %.1f, 剩余 %.1f", it.Name, it.TotalWeight(), maxWeight-inv.Weight())
	}
	if it.Kind == KindMaterial && it.Material != nil {
		for _, existing := range inv.Items {
			if existing.Kind == KindMaterial && existing.Template == it.Template && existing.Material != nil {
				existing.Material.Quantity += it.Material.Quantity
				return nil
			}
		}
	}
	inv.Items = append(inv.Items, it)
	return nil
}

// Remove 移除物品，物品不存在时无操作
func (inv *Inventory) Remove(id string) (*Item, bool) {
	inv.Prune()
	for i, it := range inv.Items {
		if it.ID == id {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
			return it, true
		}
	}
	return nil, false
}

// Get 按实例ID获取
func (inv *Inventory) Get(id string) *Item {
	inv.Prune()
	for _, it := range inv.Items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// Find 按实例ID、模板或名称查找第一个匹配的物品
func (inv *Inventory) Find(ref string) *Item {
	inv.Prune()
	ref = strings.TrimSpace(ref)
	for _, it := range inv.Items {
		if it.ID == ref || it.Template == ref || strings.EqualFold(it.Name, ref) {
			return it
		}
	}
	return nil
}

// CountMaterial 统计某类材料数量
func (inv *Inventory) CountMaterial(kind MaterialKind) int {
	inv.Prune()
	n := 0
	for _, it := range inv.Items {
		if it.Material != nil && it.Material.Kind == kind {
			n += it.Material.Quantity
		}
	}
	return n
}

// TakeMaterial 扣除材料，数量不足时不扣除
func (inv *Inventory) TakeMaterial(kind MaterialKind, n int) bool {
	if n <= 0 {
		return true
	}
	if inv.CountMaterial(kind) < n {
		return false
	}
	for _, it := range inv.Items {
		if n == 0 {
			break
		}
		if it.Material == nil || it.Material.Kind != kind {
			continue
		}
		take := it.Material.Quantity
		if take > n {
			take = n
		}
		it.Material.Quantity -= take
		n -= take
	}
	inv.Prune()
	return true
}

// Foods 背包中的食物
func (inv *Inventory) Foods() []*Item {
	inv.Prune()
	var foods []*Item
	for _, it := range inv.Items {
		if it.Kind == KindFood {
			foods = append(foods, it)
		}
	}
	return foods
}
