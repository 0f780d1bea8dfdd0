package repository

import (
	"github.com/netbill/netbill/internal/domain/connection"
	"github.com/netbill/netbill/internal/domain/discount"
	"github.com/netbill/netbill/internal/domain/plan"
	"github.com/netbill/netbill/internal/domain/subscription"
	"github.com/netbill/netbill/internal/logger"
	"github.com/netbill/netbill/internal/mongo"
	repo "github.com/netbill/netbill/internal/repository/mongo"
)

func NewPlanRepository(client *mongo.Client, logger *logger.Logger) plan.Repository {
	return repo.NewPlanRepository(client, logger)
}

func NewConnectionRepository(client *mongo.Client, logger *logger.Logger) connection.Repository {
	return repo.NewConnectionRepository(client, logger)
}

func NewSubscriptionRepository(client *mongo.Client, logger *logger.Logger) subscription.Repository {
	return repo.NewSubscriptionRepository(client, logger)
}

func NewDiscountRepository(client *mongo.Client, logger *logger.Logger) discount.Repository {
	return repo.NewDiscountRepository(client, logger)
}
