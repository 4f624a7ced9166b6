package review

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ajschmidt2/bluebeam-consolidator/internal/errs"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/ports"
)

var (
	errProjectNameRequired   = errors.New("project name is required")
	errMilestoneNameRequired = errors.New("milestone name is required")
)

type CreateProjectInput struct {
	Name     string `json:"name"`
	Client   string `json:"client"`
	Location string `json:"location"`
}

func (s *Service) CreateProject(ctx context.Context, input CreateProjectInput) (ports.Project, error) {
	if ctx == nil {
		return ports.Project{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.Project{}, errs.Wrap(err, "check context")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ports.Project{}, errProjectNameRequired
	}

	project, err := s.repo.CreateProject(ctx, ports.Project{
		Name:      name,
		Client:    strings.TrimSpace(input.Client),
		Location:  strings.TrimSpace(input.Location),
		IsActive:  true,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return ports.Project{}, errs.Wrap(err, "create project")
	}
	return project, nil
}

func (s *Service) ListProjects(ctx context.Context, includeArchived bool) ([]ports.Project, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	return s.repo.ListProjects(ctx, includeArchived)
}

func (s *Service) GetProject(ctx context.Context, projectID uint64) (ports.Project, error) {
	if ctx == nil {
		return ports.Project{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.Project{}, errs.Wrap(err, "check context")
	}
	return s.repo.GetProject(ctx, projectID)
}

func (s *Service) ArchiveProject(ctx context.Context, projectID uint64) error {
	return s.setProjectActive(ctx, projectID, false)
}

func (s *Service) RestoreProject(ctx context.Context, projectID uint64) error {
	return s.setProjectActive(ctx, projectID, true)
}

func (s *Service) setProjectActive(ctx context.Context, projectID uint64, active bool) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	if _, err := s.repo.GetProject(ctx, projectID); err != nil {
		return errs.Wrap(err, "load project")
	}
	if err := s.repo.SetProjectActive(ctx, projectID, active); err != nil {
		return errs.Wrap(err, "set project active flag")
	}
	return nil
}

type CreateMilestoneInput struct {
	ProjectID  uint64 `json:"project_id"`
	Name       string `json:"name"`
	TargetDate string `json:"target_date"`
}

func (s *Service) CreateMilestone(ctx context.Context, input CreateMilestoneInput) (ports.Milestone, error) {
	if ctx == nil {
		return ports.Milestone{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.Milestone{}, errs.Wrap(err, "check context")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ports.Milestone{}, errMilestoneNameRequired
	}

	if _, err := s.repo.GetProject(ctx, input.ProjectID); err != nil {
		return ports.Milestone{}, errs.Wrap(err, "load project")
	}

	milestone, err := s.repo.CreateMilestone(ctx, ports.Milestone{
		ProjectID:  input.ProjectID,
		Name:       name,
		TargetDate: strings.TrimSpace(input.TargetDate),
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return ports.Milestone{}, errs.Wrap(err, "create milestone")
	}
	return milestone, nil
}

func (s *Service) ListMilestones(ctx context.Context, projectID uint64) ([]ports.Milestone, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	return s.repo.ListMilestones(ctx, projectID)
}

func (s *Service) ListImportBatches(ctx context.Context, projectID uint64) ([]ports.ImportBatch, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	return s.repo.ListImportBatches(ctx, projectID)
}
