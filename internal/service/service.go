package service

import (
	"gorm.io/gorm"

	"SellerCare/internal/followup"
	"SellerCare/internal/repository"
)

// 服务层共享依赖，进程启动时注入一次
var deps struct {
	supervisor *followup.Supervisor
	followUps  *repository.FollowUpRepository
	orders     *repository.OrderRepository
	templates  *repository.TemplateRepository
	accounts   *repository.AccountRepository
}

// Init 注入服务层依赖，需在路由注册前调用
func Init(sv *followup.Supervisor, db *gorm.DB) {
	deps.supervisor = sv
	deps.followUps = repository.NewFollowUpRepository(db)
	deps.orders = repository.NewOrderRepository(db)
	deps.templates = repository.NewTemplateRepository(db)
	deps.accounts = repository.NewAccountRepository(db)
}
