package app

import (
	"time"

	"go.uber.org/zap"

	"github.com/orderdesk/orderdesk/internal/domain"
	"github.com/orderdesk/orderdesk/pkg/common"
)

// checkDemoProducts seeds a small demo catalog when enabled and the
// catalog is empty. Demo rows carry no image asset.
func (a *Application) checkDemoProducts() {
	if !a.appConfig.System.DemoData {
		return
	}

	defaultProducts := []domain.Product{
		{Name: "demo-sneaker", Description: "Canvas sneaker, demo item", Price: 59.9},
		{Name: "demo-backpack", Description: "20L backpack, demo item", Price: 34.5},
		{Name: "demo-bottle", Description: "Steel bottle, demo item", Price: 12.0},
	}

	for _, p := range defaultProducts {
		var count int64
		a.gormDB.Model(&domain.Product{}).Where("name = ?", p.Name).Count(&count)
		if count == 0 {
			p.ID = common.UUIDint64()
			p.CreatedAt = time.Now()
			p.UpdatedAt = time.Now()
			if err := a.gormDB.Create(&p).Error; err != nil {
				zap.L().Error("failed to create demo product", zap.String("name", p.Name), zap.Error(err))
			} else {
				zap.L().Info("initialized demo product", zap.String("name", p.Name))
			}
		}
	}
}
