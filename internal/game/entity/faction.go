package entity

// Disposition 阵营默认态度
type Disposition string

const (
	DispositionHostile  Disposition = "HOSTILE"
	DispositionNeutral  Disposition = "NEUTRAL"
	DispositionFriendly Disposition = "FRIENDLY"
	DispositionGuarded  Disposition = "GUARDED"
)

// Faction 阵营
type Faction struct {
	ID          string         `json:"id" yaml:"-"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Disposition Disposition    `json:"disposition" yaml:"disposition"`
	Trades      []string       `json:"trades" yaml:"trades"`   // 可交易物品模板
	Desires     []MaterialKind `json:"desires" yaml:"desires"` // 接受的支付材料
	Ambients    []string       `json:"ambients" yaml:"ambients"`
}

// Sells 是否出售该模板
func (f *Faction) Sells(template string) bool {
	for _, t := range f.Trades {
		if t == template {
			return true
		}
	}
	return false
}

// Accepts 是否接受该材料
func (f *Faction) Accepts(kind MaterialKind) bool {
	for _, d := range f.Desires {
		if d == kind {
			return true
		}
	}
	return false
}

// PresentIn 是否出没于该区域
func (f *Faction) PresentIn(ambient string) bool {
	for _, a := range f.Ambients {
		if a == ambient {
			return true
		}
	}
	return false
}
