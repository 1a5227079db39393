package game

import (
	"context"
	"strings"

	"github.com/wfunc/survival-game/internal/errors"
	"github.com/wfunc/survival-game/internal/game/entity"
	"github.com/wfunc/survival-game/internal/models"
	"github.com/wfunc/survival-game/internal/repository"
)

// JournalEntry 一个回合的日志
type JournalEntry struct {
	SessionID string
	Turn      int
	Action    string
	Accepted  bool
	Reason    string
	Events    []string
	Ambient   string
	Stats     entity.Stats
	Outcome   Outcome
}

// Journal 回合日志，写入失败只记录警告，不影响游戏
type Journal interface {
	Record(ctx context.Context, entry *JournalEntry) error
}

// NopJournal 不记录
type NopJournal struct{}

// Record 丢弃日志
func (NopJournal) Record(context.Context, *JournalEntry) error { return nil }

// DatabaseJournal 写入 turn_records 表
type DatabaseJournal struct {
	repo repository.TurnRecordRepository
}

// NewDatabaseJournal 创建数据库回合日志
func NewDatabaseJournal(repo repository.TurnRecordRepository) *DatabaseJournal {
	return &DatabaseJournal{repo: repo}
}

// Record 保存一条回合日志
func (j *DatabaseJournal) Record(ctx context.Context, entry *JournalEntry) error {
	record := &models.TurnRecord{
		SessionID: entry.SessionID,
		Turn:      entry.Turn,
		Action:    truncate(entry.Action, 64),
		Accepted:  entry.Accepted,
		Reason:    truncate(entry.Reason, 255),
		Event:     truncate(strings.Join(entry.Events, ","), 64),
		Ambient:   entry.Ambient,
		Health:    entry.Stats.Health,
		Hunger:    entry.Stats.Hunger,
		Thirst:    entry.Stats.Thirst,
		Energy:    entry.Stats.Energy,
		Sanity:    entry.Stats.Sanity,
		Outcome:   string(entry.Outcome),
	}
	if err := j.repo.Create(ctx, record); err != nil {
		return errors.Wrap(err, errors.ErrDatabaseInsert, "写入回合日志失败")
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
