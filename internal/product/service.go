package product

import (
	"context"
	"strings"

	"orderdesk-be/internal/apperror"
	"orderdesk-be/internal/logger"

	"go.uber.org/zap"
)

const (
	DefaultLimit = defaultLimit
	MaxLimit     = maxLimit
)

// ParseStatus accepts a product status in any letter case.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusActive, StatusInactive:
		return st, true
	}
	return "", false
}

// Service is the staff-facing catalog lookup used while taking an order.
type Service interface {
	ListProducts(ctx context.Context, q Query) ([]*Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListProducts(ctx context.Context, q Query) ([]*Product, error) {
	products, err := s.repo.Find(ctx, q)
	if err != nil {
		logger.FromCtx(ctx).With(
			zap.String("layer", "service"),
			zap.String("method", "ListProducts"),
		).Error("failed to list products", zap.Error(err))
		return nil, apperror.Internal(err)
	}
	if products == nil {
		products = []*Product{}
	}
	return products, nil
}
