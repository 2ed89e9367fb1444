// Package main 系统初始化入口：建表与向量集合
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"agent-writer-api/internal/config"
	"agent-writer-api/internal/domain/entity"
	"agent-writer-api/internal/wire"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. 初始化数据层
	dataLayer, cleanup, err := wire.InitializeDataLayer(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize data layer: %v", err)
	}
	defer cleanup()

	// 3. 迁移数据库表
	fmt.Println("Migrating database schema...")
	err = dataLayer.PgClient.DB().AutoMigrate(
		&entity.Plot{},
		&entity.Author{},
		&entity.WorldBuilding{},
		&entity.CharacterCast{},
		&entity.ConversationSession{},
		&entity.Interaction{},
		&entity.ImprovementSession{},
		&entity.Iteration{},
		&entity.DecisionRecord{},
	)
	if err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
	fmt.Println("Database schema migrated.")

	// 4. 创建向量集合与索引
	fmt.Println("Ensuring content summaries collection...")
	if err := dataLayer.VectorRepo.EnsureContentSummariesCollection(ctx); err != nil {
		log.Fatalf("failed to ensure content summaries collection: %v", err)
	}
	fmt.Println("Content summaries collection ready.")

	fmt.Println("Bootstrap completed successfully.")
}
