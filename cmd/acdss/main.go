package main

import (
	"fmt"
	"os"

	"github.com/OrbitrumConnect/medcannlab5-sub003/internal/config"
	"github.com/OrbitrumConnect/medcannlab5-sub003/internal/logger"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "acdss")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	// 3. 执行命令
	if err := newRootCmd(cfg, log).Execute(); err != nil {
		os.Exit(1)
	}
}
