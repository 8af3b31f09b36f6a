package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

// main 是 suiaictl 命令行工具的入口。
func main() {
	// .env 文件可选，缺失时直接使用进程环境变量。
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		printError(err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		printError(err)
		stop()
		os.Exit(1)
	}
}
