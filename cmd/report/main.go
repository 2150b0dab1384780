package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/bossshopp/internal/config"
	"github.com/bossshopp/internal/logger"
	"github.com/bossshopp/internal/models"
	"github.com/bossshopp/internal/repository"
	"github.com/bossshopp/internal/service"
)

type summary struct {
	GeneratedAt time.Time               `json:"generated_at"`
	Sales       service.SalesStatistics `json:"sales"`
	TopProducts []service.TopProduct    `json:"top_products"`
	Users       service.UserStatistics  `json:"users"`
	DailySales  []service.DailySales    `json:"daily_sales"`
}

func main() {
	var (
		check bool
		top   int
		days  int
	)
	flag.BoolVar(&check, "check", false, "仅输出各表行数（连通性检查）")
	flag.IntVar(&top, "top", 10, "热销商品数量")
	flag.IntVar(&days, "days", 30, "每日销售回溯天数")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	db, err := models.Open(cfg.Database.ToDBOptions())
	if err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	defer func() { _ = models.Close(db) }()

	svc := service.NewReportService(repository.NewReportRepository(db), cfg.Database.StatementTimeout())
	ctx := context.Background()

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	if check {
		counts, err := svc.TableCounts(ctx)
		if err != nil {
			stdLog.Fatalf("Failed to count tables: %v", err)
		}
		if err := encoder.Encode(counts); err != nil {
			stdLog.Fatalf("Failed to write output: %v", err)
		}
		return
	}

	out := summary{GeneratedAt: time.Now()}
	if out.Sales, err = svc.SalesStatistics(ctx, nil, nil); err != nil {
		stdLog.Fatalf("Failed to load sales statistics: %v", err)
	}
	if out.TopProducts, err = svc.TopProducts(ctx, top); err != nil {
		stdLog.Fatalf("Failed to load top products: %v", err)
	}
	if out.Users, err = svc.UserStatistics(ctx); err != nil {
		stdLog.Fatalf("Failed to load user statistics: %v", err)
	}
	if out.DailySales, err = svc.DailySales(ctx, days); err != nil {
		stdLog.Fatalf("Failed to load daily sales: %v", err)
	}
	if err := encoder.Encode(out); err != nil {
		stdLog.Fatalf("Failed to write output: %v", err)
	}
}
