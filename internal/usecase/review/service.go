package review

import (
	"github.com/ajschmidt2/bluebeam-consolidator/internal/bootstrap/config"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/ports"
)

// Service wires the review-consolidation usecases over the repository,
// transaction boundary, verdict cache and triage classifier.
type Service struct {
	repo       ports.ReviewRepository
	uow        ports.UnitOfWork
	cache      ports.Cache
	classifier ports.Classifier
	cfg        config.Config
}

func NewService(
	repo ports.ReviewRepository,
	uow ports.UnitOfWork,
	cache ports.Cache,
	classifier ports.Classifier,
	cfg config.Config,
) *Service {
	return &Service{
		repo:       repo,
		uow:        uow,
		cache:      cache,
		classifier: classifier,
		cfg:        cfg,
	}
}
