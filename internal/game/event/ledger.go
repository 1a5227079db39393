package event

import "sort"

// ActiveEvent 持续中的事件
type ActiveEvent struct {
	Name           string `json:"name"`
	TurnsRemaining int    `json:"turns_remaining"`
}

// Ledger 事件账本，随存档持久化
type Ledger struct {
	Disabled []string      `json:"disabled"`
	Active   []ActiveEvent `json:"active"`
	Pending  []string      `json:"pending"`
}

// NewLedger 创建空账本
func NewLedger() *Ledger {
	return &Ledger{Disabled: []string{}, Active: []ActiveEvent{}, Pending: []string{}}
}

// Disable 禁用事件，重复禁用无副作用
func (l *Ledger) Disable(name string) {
	if l.IsDisabled(name) {
		return
	}
	l.Disabled = append(l.Disabled, name)
	sort.Strings(l.Disabled)
}

// Normalize 补齐空切片，禁用列表排序去重
func (l *Ledger) Normalize() {
	if l.Disabled == nil {
		l.Disabled = []string{}
	}
	if l.Active == nil {
		l.Active = []ActiveEvent{}
	}
	if l.Pending == nil {
		l.Pending = []string{}
	}
	sort.Strings(l.Disabled)
	kept := l.Disabled[:0]
	for _, name := range l.Disabled {
		if len(kept) > 0 && kept[len(kept)-1] == name {
			continue
		}
		kept = append(kept, name)
	}
	l.Disabled = kept
}

// IsDisabled 是否已禁用，要求 Disabled 有序
func (l *Ledger) IsDisabled(name string) bool {
	i := sort.SearchStrings(l.Disabled, name)
	return i < len(l.Disabled) && l.Disabled[i] == name
}

// Enqueue 加入待触发队列
func (l *Ledger) Enqueue(name string) {
	l.Pending = append(l.Pending, name)
}

// popPending 取出队首
func (l *Ledger) popPending() (string, bool) {
	if len(l.Pending) == 0 {
		return "", false
	}
	name := l.Pending[0]
	l.Pending = l.Pending[1:]
	return name, true
}

// activate 登记持续事件，同名事件刷新剩余回合
func (l *Ledger) activate(name string, turns int) {
	for i := range l.Active {
		if l.Active[i].Name == name {
			l.Active[i].TurnsRemaining = turns
			return
		}
	}
	l.Active = append(l.Active, ActiveEvent{Name: name, TurnsRemaining: turns})
}
