package service

import (
	"github.com/netbill/netbill/internal/cache"
	"github.com/netbill/netbill/internal/config"
	"github.com/netbill/netbill/internal/domain/connection"
	"github.com/netbill/netbill/internal/domain/discount"
	"github.com/netbill/netbill/internal/domain/plan"
	"github.com/netbill/netbill/internal/domain/subscription"
	"github.com/netbill/netbill/internal/integration/razorpay"
	"github.com/netbill/netbill/internal/logger"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	Cache  cache.Cache

	// Repositories
	PlanRepo     plan.Repository
	ConnRepo     connection.Repository
	SubRepo      subscription.Repository
	DiscountRepo discount.Repository

	// Integrations
	Gateway razorpay.Gateway
}
