package service

import (
	"context"

	"mathematico-payments/internal/model"
	"mathematico-payments/internal/repository"
)

type EnrollmentService interface {
	GetEnrollments(ctx context.Context, userID string) ([]*model.EnrollmentGrant, error)
}

type enrollmentServiceImpl struct {
	enrollmentRepo repository.EnrollmentRepository
}

func NewEnrollmentService(
	enrollmentRepo repository.EnrollmentRepository,
) EnrollmentService {
	return &enrollmentServiceImpl{
		enrollmentRepo: enrollmentRepo,
	}
}

func (s *enrollmentServiceImpl) GetEnrollments(ctx context.Context, userID string) ([]*model.EnrollmentGrant, error) {
	return s.enrollmentRepo.ListByUser(ctx, userID)
}
