package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/wfunc/survival-game/internal/app"
	"github.com/wfunc/survival-game/internal/config"
	"github.com/wfunc/survival-game/internal/game"
	"github.com/wfunc/survival-game/internal/logger"
	"go.uber.org/zap"
)

// 版本信息
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// 命令行参数
	var (
		configPath  = flag.String("config", "", "配置文件路径")
		player      = flag.String("name", "", "角色名字")
		archetype   = flag.String("archetype", "", "角色职业")
		seed        = flag.Int64("seed", 0, "随机种子，0 表示使用配置或当前时间")
		fresh       = flag.Bool("new", false, "忽略自动存档，开始新游戏")
		showVersion = flag.Bool("version", false, "显示版本信息")
	)
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	// 加载配置
	if err := config.Init(*configPath); err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Get()

	// 初始化日志系统
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Cleanup()

	if err := run(cfg, *player, *archetype, *seed, *fresh); err != nil {
		logger.LogError(err, "游戏异常退出")
		fmt.Printf("游戏异常退出: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, player, archetype string, seed int64, fresh bool) error {
	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	// Ctrl+C 在等待输入时取消，未结束的游戏已在上一回合自动存档
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt := a.Runtime(
		game.NewReaderInput(os.Stdin, os.Stdout),
		game.MultiPresenter{game.NewTextPresenter(os.Stdout), game.LogPresenter{}},
	)

	opts := a.Defaults()
	if player != "" {
		opts.PlayerName = player
	}
	if archetype != "" {
		opts.Archetype = archetype
	}
	if seed != 0 {
		opts.Seed = seed
	}

	var (
		session *game.Session
		resumed bool
	)
	if fresh {
		session, err = game.NewGame(rt, opts)
	} else {
		session, resumed, err = a.Recovery().ResumeOrNew(ctx, rt, opts)
	}
	if err != nil {
		return err
	}
	if resumed {
		fmt.Printf("继续存档: 第 %d 回合\n", session.State().TurnCounter)
	}

	outcome, err := session.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("\n游戏已中断")
			return nil
		}
		return err
	}

	logger.Info("游戏结束",
		zap.String("session_id", session.ID),
		zap.String("outcome", string(outcome)))
	return nil
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("荒野求生\n")
	fmt.Printf("版本: %s\n", Version)
	fmt.Printf("构建时间: %s\n", BuildTime)
	fmt.Printf("Git提交: %s\n", GitCommit)
	fmt.Printf("Go版本: %s\n", runtime.Version())
	fmt.Printf("操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
