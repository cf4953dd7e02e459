package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"woolcrafts-backend/cache"
	"woolcrafts-backend/logging"
	"woolcrafts-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	recentOrdersLimit = 5
	lowStockLimit     = 10
)

var dashboardCacheKey = cache.Key("stats", "dashboard")

type DashboardStats struct {
	TotalProducts    int64            `json:"totalProducts"`
	TotalOrders      int64            `json:"totalOrders"`
	TotalUsers       int64            `json:"totalUsers"`
	TotalCategories  int64            `json:"totalCategories"`
	TotalRevenue     float64          `json:"totalRevenue"`
	RecentOrders     []models.Order   `json:"recentOrders"`
	LowStockProducts []models.Product `json:"lowStockProducts"`
	OrdersByStatus   map[string]int64 `json:"ordersByStatus"`
}

type StatsService struct {
	db                *gorm.DB
	cache             cache.Cache
	ttl               time.Duration
	lowStockThreshold int
}

func NewStatsService(db *gorm.DB, c cache.Cache, ttl time.Duration, lowStockThreshold int) *StatsService {
	return &StatsService{db: db, cache: c, ttl: ttl, lowStockThreshold: lowStockThreshold}
}

// GetDashboardStats serves from cache when possible. The figures are a point-in-time
// read and may trail concurrent writes by up to the cache TTL.
func (s *StatsService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	log := logging.FromContext(ctx)

	if s.cache != nil && s.ttl > 0 {
		var cached DashboardStats
		ok, err := cache.GetJSON(ctx, s.cache, dashboardCacheKey, &cached)
		if err != nil {
			log.Warn("stats cache read failed", "error", err)
		} else if ok {
			return &cached, nil
		}
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.ttl > 0 {
		if err := cache.SetJSON(ctx, s.cache, dashboardCacheKey, stats, s.ttl); err != nil {
			log.Warn("stats cache write failed", "error", err)
		}
	}
	return stats, nil
}

func (s *StatsService) compute(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	stats := &DashboardStats{OrdersByStatus: map[string]int64{}}

	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.Product{}, &stats.TotalProducts},
		{&models.Order{}, &stats.TotalOrders},
		{&models.User{}, &stats.TotalUsers},
		{&models.Category{}, &stats.TotalCategories},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("count: %w", err)
		}
	}

	var revenue float64
	err := db.Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0)").
		Where("status <> ?", models.OrderStatusCancelled).
		Scan(&revenue).Error
	if err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}
	stats.TotalRevenue = decimal.NewFromFloat(revenue).Round(2).InexactFloat64()

	stats.RecentOrders = []models.Order{}
	if err := db.Preload("Items").Order("created_at DESC").Limit(recentOrdersLimit).Find(&stats.RecentOrders).Error; err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}

	low, err := s.LowStockProducts(ctx, s.lowStockThreshold, lowStockLimit)
	if err != nil {
		return nil, err
	}
	stats.LowStockProducts = low

	for _, st := range models.OrderStatuses {
		stats.OrdersByStatus[strings.ToLower(string(st))] = 0
	}
	var rows []struct {
		Status string
		Count  int64
	}
	if err := db.Model(&models.Order{}).Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("orders by status: %w", err)
	}
	for _, r := range rows {
		stats.OrdersByStatus[strings.ToLower(r.Status)] += r.Count
	}

	return stats, nil
}

// LowStockProducts lists products with stock at or below threshold, emptiest first.
// A limit of zero means no limit.
func (s *StatsService) LowStockProducts(ctx context.Context, threshold, limit int) ([]models.Product, error) {
	q := s.db.WithContext(ctx).Where("stock <= ?", threshold).Order("stock ASC, name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	products := []models.Product{}
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("low stock products: %w", err)
	}
	return products, nil
}

// Invalidate drops the cached dashboard so the next read recomputes it.
func (s *StatsService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, dashboardCacheKey); err != nil {
		logging.FromContext(ctx).Warn("stats cache invalidate failed", "error", err)
	}
}
