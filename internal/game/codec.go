package game

import (
	"encoding/json"
	"time"

	"github.com/wfunc/survival-game/internal/errors"
)

// SchemaVersion 当前存档格式版本
const SchemaVersion = 1

// SaveHeader 存档摘要，不需要解码完整状态即可读取
type SaveHeader struct {
	SchemaVersion int       `json:"schema_version"`
	SavedAt       time.Time `json:"-"`
	Turn          int       `json:"turn"`
	Player        string    `json:"player"`
	Archetype     string    `json:"archetype"`
	Ambient       string    `json:"ambient"`
}

// envelope 存档外层结构
// 时间统一为 UTC 的 RFC3339 文本
type envelope struct {
	SchemaVersion int             `json:"schema_version"`
	SavedAt       string          `json:"saved_at"`
	Meta          SaveHeader      `json:"meta"`
	State         json.RawMessage `json:"state"`
}

// Snapshot 已解码但未绑定运行时的存档
// 只能通过 Bind 得到可以游玩的会话
type Snapshot struct {
	header SaveHeader
	state  *GameState
}

// Header 存档摘要
func (s *Snapshot) Header() SaveHeader {
	return s.header
}

// Encode 编码游戏状态
func Encode(state *GameState, savedAt time.Time) ([]byte, error) {
	if state == nil || state.Player == nil {
		return nil, errors.New(errors.ErrInvalidParam, "空的游戏状态")
	}
	body, err := json.Marshal(state)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSaveCorrupt, "编码游戏状态失败")
	}
	env := envelope{
		SchemaVersion: SchemaVersion,
		SavedAt:       savedAt.UTC().Format(time.RFC3339),
		Meta:          headerOf(state),
		State:         body,
	}
	env.Meta.SchemaVersion = SchemaVersion
	data, err := json.Marshal(env)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSaveCorrupt, "编码存档失败")
	}
	return data, nil
}

// headerOf 从状态提取摘要
func headerOf(state *GameState) SaveHeader {
	h := SaveHeader{Turn: state.TurnCounter}
	if p := state.Player; p != nil {
		h.Player = p.Name
		h.Archetype = string(p.Archetype)
	}
	if state.Ambients != nil {
		h.Ambient = state.Ambients.Current
	}
	return h
}

// Peek 只解析存档外层
func Peek(data []byte) (SaveHeader, error) {
	env, err := openEnvelope(data)
	if err != nil {
		return SaveHeader{}, err
	}
	return env.Meta, nil
}

// openEnvelope 解析外层并检查版本
func openEnvelope(data []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrSaveCorrupt, "存档无法解析")
	}
	if env.SchemaVersion != SchemaVersion {
		return nil, errors.Newf(errors.ErrSchemaMismatch, "存档版本 %d, 当前版本 %d", env.SchemaVersion, SchemaVersion)
	}
	savedAt, err := time.Parse(time.RFC3339, env.SavedAt)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSaveCorrupt, "保存时间无法解析")
	}
	env.Meta.SchemaVersion = env.SchemaVersion
	env.Meta.SavedAt = savedAt.UTC()
	return &env, nil
}

// Decode 解码存档，返回的快照必须 Bind 后才能使用
func Decode(data []byte) (*Snapshot, error) {
	env, err := openEnvelope(data)
	if err != nil {
		return nil, err
	}
	if len(env.State) == 0 {
		return nil, errors.New(errors.ErrSaveCorrupt, "缺少游戏状态")
	}

	state := &GameState{}
	if err := json.Unmarshal(env.State, state); err != nil {
		return nil, errors.Wrap(err, errors.ErrSaveCorrupt, "游戏状态无法解析")
	}
	switch {
	case state.Player == nil:
		return nil, errors.New(errors.ErrSaveCorrupt, "缺少玩家角色")
	case state.Ambients == nil || state.Ambients.Current == "":
		return nil, errors.New(errors.ErrSaveCorrupt, "缺少区域数据")
	case state.TurnCounter < 1:
		return nil, errors.Newf(errors.ErrSaveCorrupt, "回合计数无效: %d", state.TurnCounter)
	}
	if err := state.normalize(); err != nil {
		return nil, err
	}

	return &Snapshot{header: env.Meta, state: state}, nil
}
