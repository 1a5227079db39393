package game

import (
	"bufio"
	"context"
	"io"
	"sync"

	"github.com/wfunc/survival-game/internal/errors"
)

// Input 行动来源，每个 ACTION 阶段取一个行动
// 不持久化，读档后由调用方重新提供
type Input interface {
	Next(ctx context.Context) (Action, error)
}

// ScriptedInput 预设行动序列，用完后返回 quit
type ScriptedInput struct {
	mu      sync.Mutex
	actions []Action
}

// NewScriptedInput 按文本创建预设行动
func NewScriptedInput(tokens ...string) (*ScriptedInput, error) {
	in := &ScriptedInput{}
	for _, tok := range tokens {
		a, err := ParseAction(tok)
		if err != nil {
			return nil, err
		}
		in.actions = append(in.actions, a)
	}
	return in, nil
}

// Next 取下一个行动
func (in *ScriptedInput) Next(ctx context.Context) (Action, error) {
	if err := ctx.Err(); err != nil {
		return Action{}, errors.Wrap(err, errors.ErrCanceled)
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	if len(in.actions) == 0 {
		return Action{Kind: ActionQuit}, nil
	}
	a := in.actions[0]
	in.actions = in.actions[1:]
	return a, nil
}

// Remaining 剩余行动数
func (in *ScriptedInput) Remaining() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.actions)
}

// ReaderInput 按行读取文本行动，读到结尾视为 quit
type ReaderInput struct {
	scanner *bufio.Scanner
	prompt  io.Writer
}

// NewReaderInput 创建文本输入，prompt 为空时不输出提示符
func NewReaderInput(r io.Reader, prompt io.Writer) *ReaderInput {
	return &ReaderInput{scanner: bufio.NewScanner(r), prompt: prompt}
}

// Next 读取一行，空行跳过，无法识别时返回 ErrUnknownAction
func (in *ReaderInput) Next(ctx context.Context) (Action, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Action{}, errors.Wrap(err, errors.ErrCanceled)
		}
		if in.prompt != nil {
			_, _ = io.WriteString(in.prompt, "> ")
		}
		if !in.scanner.Scan() {
			if err := in.scanner.Err(); err != nil {
				return Action{}, errors.Wrap(err, errors.ErrUnknown, "读取输入失败")
			}
			return Action{Kind: ActionQuit}, nil
		}
		line := in.scanner.Text()
		if len(line) == 0 {
			continue
		}
		return ParseAction(line)
	}
}

// ChannelInput 由外部推送行动（HTTP 接口）
type ChannelInput struct {
	ch chan Action
}

// NewChannelInput 创建通道输入
func NewChannelInput(buffer int) *ChannelInput {
	return &ChannelInput{ch: make(chan Action, buffer)}
}

// Submit 推送行动，通道满时等待或随 ctx 取消
func (in *ChannelInput) Submit(ctx context.Context, a Action) error {
	select {
	case in.ch <- a:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), errors.ErrTimeout, "行动队列已满")
	}
}

// Next 等待下一个行动
func (in *ChannelInput) Next(ctx context.Context) (Action, error) {
	select {
	case a := <-in.ch:
		return a, nil
	case <-ctx.Done():
		return Action{}, errors.Wrap(ctx.Err(), errors.ErrCanceled, "等待行动时取消")
	}
}
