package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/ajschmidt2/bluebeam-consolidator/internal/bootstrap/config"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "github.com/ajschmidt2/bluebeam-consolidator/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "github.com/ajschmidt2/bluebeam-consolidator/internal/infrastructure/persistence/sqlite/uow"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/ports"
)

type testCache struct {
	data map[string]string
}

func newTestCache() *testCache {
	return &testCache{data: make(map[string]string)}
}

func (c *testCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *testCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.data[key] = value
	return nil
}

func (c *testCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

// fakeClassifier returns a fixed verdict and counts calls.
type fakeClassifier struct {
	enabled bool
	verdict ports.TriageResult
	err     error
	calls   int
}

func (f *fakeClassifier) Available() bool { return f.enabled }

func (f *fakeClassifier) Classify(_ context.Context, _ ports.ClassifyInput) (ports.TriageResult, error) {
	f.calls++
	if !f.enabled {
		return ports.TriageResult{}, ports.ErrClassifierUnavailable
	}
	if f.err != nil {
		return ports.TriageResult{}, f.err
	}
	return f.verdict, nil
}

func testConfig() config.Config {
	cfg := config.Config{}
	cfg.OpenAI.Model = "test-model"
	cfg.Import.DefaultTracked = true
	return cfg
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&model.AppSetting{},
		&model.Project{},
		&model.Milestone{},
		&model.ImportBatch{},
		&model.Comment{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func setupService(t *testing.T) (*Service, *testCache, *fakeClassifier, *gorm.DB) {
	t.Helper()

	db := openTestDB(t)
	cache := newTestCache()
	classifier := &fakeClassifier{enabled: true, verdict: ports.TriageResult{
		Track:            true,
		Tag:              "COORD",
		Risk:             "MED",
		RequiredResponse: "Confirm with the design team.",
	}}

	repo := sqliterepo.NewReviewRepository(db)
	uow := sqliteuow.NewUnitOfWork(db)
	svc := NewService(repo, uow, cache, classifier, testConfig())
	return svc, cache, classifier, db
}

func mustProject(t *testing.T, svc *Service) ports.Project {
	t.Helper()
	project, err := svc.CreateProject(context.Background(), CreateProjectInput{Name: "Tower A"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return project
}

func mustMilestone(t *testing.T, svc *Service, projectID uint64) ports.Milestone {
	t.Helper()
	milestone, err := svc.CreateMilestone(context.Background(), CreateMilestoneInput{
		ProjectID: projectID,
		Name:      "50% DD",
	})
	if err != nil {
		t.Fatalf("create milestone: %v", err)
	}
	return milestone
}

func TestCreateProjectRequiresName(t *testing.T) {
	svc, _, _, _ := setupService(t)

	if _, err := svc.CreateProject(context.Background(), CreateProjectInput{Name: "   "}); err == nil {
		t.Fatal("expected error for blank name")
	}
}

func TestCreateMilestoneRequiresProject(t *testing.T) {
	svc, _, _, _ := setupService(t)

	_, err := svc.CreateMilestone(context.Background(), CreateMilestoneInput{ProjectID: 42, Name: "DD"})
	if !errors.Is(err, ports.ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestArchiveAndRestoreProject(t *testing.T) {
	svc, _, _, _ := setupService(t)
	ctx := context.Background()
	project := mustProject(t, svc)

	if err := svc.ArchiveProject(ctx, project.ProjectID); err != nil {
		t.Fatalf("archive: %v", err)
	}
	active, err := svc.ListProjects(ctx, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 0 {
		t.Fatal("archived project still active")
	}

	if err := svc.RestoreProject(ctx, project.ProjectID); err != nil {
		t.Fatalf("restore: %v", err)
	}
	active, err = svc.ListProjects(ctx, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 1 {
		t.Fatal("restored project not active")
	}
}
