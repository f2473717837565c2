package main

import (
	"context"
	"fmt"
	"log"

	"coursehub/internal/config"
	"coursehub/internal/models"
	"coursehub/internal/services/recommend"
	"coursehub/internal/store"
)

func main() {
	fmt.Println("🎓 Coursehub - 课程推荐引擎")
	fmt.Println("=============================")

	// 1. 初始化配置（内存数据库，演示用）
	fmt.Println("📋 初始化配置...")
	cfg := config.Default()
	cfg.Database.Path = ":memory:"

	// 2. 打开数据库并写入演示数据
	fmt.Println("💾 准备演示目录...")
	dataStore, err := store.Open(cfg.Database)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer dataStore.Close()

	ctx := context.Background()
	alice := seedDemoData(ctx, dataStore)

	// 3. 构建推荐引擎，依次演示四种策略
	engine := recommend.NewEngine(dataStore, cfg.Recommendation)

	fmt.Println("\n🔍 基于内容的推荐:")
	contentResp, err := engine.RecommendContentBased(ctx, alice, recommend.ContentOptions{})
	printResponse(contentResp, err)

	fmt.Println("\n👥 协同过滤推荐:")
	collabResp, err := engine.RecommendCollaborative(ctx, alice, recommend.CollaborativeOptions{})
	printResponse(collabResp, err)

	fmt.Println("\n🔀 混合推荐:")
	hybridResp, err := engine.RecommendHybrid(ctx, alice, recommend.HybridOptions{})
	printResponse(hybridResp, err)

	fmt.Println("\n🔥 热门课程:")
	popularResp, err := engine.RecommendPopular(ctx, recommend.PopularOptions{})
	printResponse(popularResp, err)
}

// seedDemoData 写入一个小型演示目录，返回演示用户ID
func seedDemoData(ctx context.Context, dataStore *store.Store) string {
	courses := []struct {
		title, description string
		tags               []string
		level              models.CourseLevel
		rating             float64
		enrollment         int
	}{
		{"Go入门", "Go语言基础语法与并发编程入门", []string{"go", "backend"}, models.CourseLevelBeginner, 4.5, 1200},
		{"Go微服务实战", "用Go构建生产级微服务", []string{"go", "microservices", "backend"}, models.CourseLevelIntermediate, 4.8, 800},
		{"Python数据分析", "Pandas与NumPy数据分析实战", []string{"python", "data"}, models.CourseLevelBeginner, 4.2, 2000},
		{"分布式系统设计", "一致性、容错与分布式存储", []string{"backend", "distributed"}, models.CourseLevelAdvanced, 4.9, 350},
		{"Web前端基础", "HTML/CSS/JavaScript入门", []string{"frontend", "web"}, models.CourseLevelBeginner, 3.9, 3000},
	}

	courseIDs := make([]string, 0, len(courses))
	for _, c := range courses {
		course := models.NewCourse(c.title, c.description, c.level)
		course.SetTags(c.tags)
		course.Status = models.CourseStatusPublished
		course.IsApproved = true
		course.AverageRating = c.rating
		course.EnrollmentCount = c.enrollment
		if err := dataStore.CreateCourse(ctx, course); err != nil {
			log.Fatalf("failed to seed course: %v", err)
		}
		courseIDs = append(courseIDs, course.ID)
	}

	alice := models.NewUser("Alice")
	alice.Enroll(courseIDs[0])
	if err := dataStore.CreateUser(ctx, alice); err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	if err := dataStore.CreateProgress(ctx, models.NewProgress(alice.ID, courseIDs[0], 95)); err != nil {
		log.Fatalf("failed to seed progress: %v", err)
	}

	bob := models.NewUser("Bob")
	bob.Enroll(courseIDs[0])
	bob.Enroll(courseIDs[1])
	bob.Enroll(courseIDs[3])
	if err := dataStore.CreateUser(ctx, bob); err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	if err := dataStore.CreateProgress(ctx, models.NewProgress(bob.ID, courseIDs[1], 85)); err != nil {
		log.Fatalf("failed to seed progress: %v", err)
	}

	return alice.ID
}

// printResponse 打印推荐结果
func printResponse(resp *recommend.Response, err error) {
	if err != nil {
		fmt.Printf("   ❌ %v\n", err)
		return
	}
	if resp.Message != "" {
		fmt.Printf("   ℹ️  %s\n", resp.Message)
	}
	fmt.Printf("   策略: %s, 结果数: %d\n", resp.Strategy, resp.Count)

	switch data := resp.Data.(type) {
	case []*recommend.ContentScore:
		for i, item := range data {
			fmt.Printf("   %d. %s (综合分 %.2f)\n", i+1, item.Course.Title, item.CombinedScore)
		}
	case []*recommend.CollaborativeScore:
		for i, item := range data {
			fmt.Printf("   %d. %s (预测评分 %.1f)\n", i+1, item.Course.Title, item.PredictedRating)
		}
	case []*recommend.HybridScore:
		for i, item := range data {
			fmt.Printf("   %d. %s (混合分 %.2f, 来源 %v)\n", i+1, item.Course.Title, item.HybridScore, item.Sources)
		}
	case []*recommend.PopularityScore:
		for i, item := range data {
			fmt.Printf("   %d. %s (热门度 %.2f)\n", i+1, item.Course.Title, item.PopularityScore)
		}
	}
}
