package review

import (
	"context"
	"errors"
	"fmt"
	"testing"

	domainreview "github.com/ajschmidt2/bluebeam-consolidator/internal/domain/review"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/infrastructure/persistence/sqlite/model"
	sqliteuow "github.com/ajschmidt2/bluebeam-consolidator/internal/infrastructure/persistence/sqlite/uow"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/ports"
)

const sampleCSV = `Subject,Page Label,Author,Date,Comments,Markup ID
Cloud+,E101,J. Smith,3/14/2024 2:30 PM,Verify fixture schedule,m-001
Callout,A-201,P. Jones,3/14/2024 3:00 PM,Door swing conflict with casework,m-002
Text,A-201,P. Jones,3/14/2024 3:05 PM,,m-003
`

func TestImportCSVFirstImport(t *testing.T) {
	svc, _, _, _ := setupService(t)
	ctx := context.Background()
	project := mustProject(t, svc)
	milestone := mustMilestone(t, svc, project.ProjectID)

	result, err := svc.ImportCSV(ctx, ImportCSVInput{
		ProjectID:      project.ProjectID,
		MilestoneID:    milestone.MilestoneID,
		SourceFilename: "markups.csv",
		Raw:            []byte(sampleCSV),
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if result.RowCount != 3 || result.Inserted != 2 || result.Skipped != 0 || result.Excluded != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if result.BatchRef == "" {
		t.Fatal("batch ref not assigned")
	}

	comments, err := svc.ListComments(ctx, ports.CommentFilter{ProjectID: project.ProjectID})
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments))
	}
	for _, c := range comments {
		if c.Status != "Open" {
			t.Fatalf("default status: got %q", c.Status)
		}
		if !c.Tracked {
			t.Fatal("default tracked flag not applied")
		}
		if c.ImportBatchID != result.BatchID {
			t.Fatal("comment not linked to batch")
		}
	}

	batches, err := svc.ListImportBatches(ctx, project.ProjectID)
	if err != nil {
		t.Fatalf("list batches: %v", err)
	}
	if len(batches) != 1 || batches[0].InsertedCount != 2 || batches[0].SkippedCount != 0 {
		t.Fatalf("unexpected batch: %+v", batches)
	}
}

func TestImportCSVReimportIsIdempotent(t *testing.T) {
	svc, _, _, _ := setupService(t)
	ctx := context.Background()
	project := mustProject(t, svc)

	input := ImportCSVInput{
		ProjectID:      project.ProjectID,
		SourceFilename: "markups.csv",
		Raw:            []byte(sampleCSV),
	}

	first, err := svc.ImportCSV(ctx, input)
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	if first.Inserted != 2 || first.Skipped != 0 {
		t.Fatalf("first import counts: %+v", first)
	}

	second, err := svc.ImportCSV(ctx, input)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if second.Inserted != 0 || second.Skipped != 2 {
		t.Fatalf("second import counts: %+v", second)
	}

	comments, err := svc.ListComments(ctx, ports.CommentFilter{ProjectID: project.ProjectID})
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("re-import created duplicates: %d comments", len(comments))
	}
}

func TestImportCSVDuplicateWithinSameFile(t *testing.T) {
	svc, _, _, _ := setupService(t)
	ctx := context.Background()
	project := mustProject(t, svc)

	raw := []byte(`Page Label,Author,Date,Comments
E101,J. Smith,3/14/2024 2:30 PM,Same comment
E101,J. Smith,3/14/2024 2:30 PM,Same comment
`)

	result, err := svc.ImportCSV(ctx, ImportCSVInput{
		ProjectID:      project.ProjectID,
		SourceFilename: "dup.csv",
		Raw:            raw,
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Inserted != 1 || result.Skipped != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
}

func TestImportCSVScopedByMilestone(t *testing.T) {
	svc, _, _, _ := setupService(t)
	ctx := context.Background()
	project := mustProject(t, svc)
	milestone := mustMilestone(t, svc, project.ProjectID)

	input := ImportCSVInput{
		ProjectID:      project.ProjectID,
		SourceFilename: "markups.csv",
		Raw:            []byte(sampleCSV),
	}

	if _, err := svc.ImportCSV(ctx, input); err != nil {
		t.Fatalf("import without milestone: %v", err)
	}

	input.MilestoneID = milestone.MilestoneID
	second, err := svc.ImportCSV(ctx, input)
	if err != nil {
		t.Fatalf("import with milestone: %v", err)
	}
	// Same content under a different milestone is a distinct review cycle.
	if second.Inserted != 2 || second.Skipped != 0 {
		t.Fatalf("unexpected counts: %+v", second)
	}
}

func TestImportCSVMalformedInput(t *testing.T) {
	svc, _, _, _ := setupService(t)
	ctx := context.Background()
	project := mustProject(t, svc)

	for name, raw := range map[string][]byte{
		"empty":       nil,
		"header only": []byte("Sheet,Comment\n"),
	} {
		_, err := svc.ImportCSV(ctx, ImportCSVInput{
			ProjectID:      project.ProjectID,
			SourceFilename: name + ".csv",
			Raw:            raw,
		})
		if !errors.Is(err, domainreview.ErrMalformedInput) {
			t.Fatalf("%s: expected ErrMalformedInput, got %v", name, err)
		}
	}

	batches, err := svc.ListImportBatches(ctx, project.ProjectID)
	if err != nil {
		t.Fatalf("list batches: %v", err)
	}
	if len(batches) != 0 {
		t.Fatalf("malformed input must not create batches, got %d", len(batches))
	}
}

func TestImportCSVUnknownProject(t *testing.T) {
	svc, _, _, _ := setupService(t)

	_, err := svc.ImportCSV(context.Background(), ImportCSVInput{
		ProjectID:      42,
		SourceFilename: "markups.csv",
		Raw:            []byte(sampleCSV),
	})
	if !errors.Is(err, ports.ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestImportCSVMilestoneOfOtherProject(t *testing.T) {
	svc, _, _, _ := setupService(t)
	ctx := context.Background()
	projectA := mustProject(t, svc)
	projectB, err := svc.CreateProject(ctx, CreateProjectInput{Name: "Tower B"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	milestoneB := mustMilestone(t, svc, projectB.ProjectID)

	_, err = svc.ImportCSV(ctx, ImportCSVInput{
		ProjectID:      projectA.ProjectID,
		MilestoneID:    milestoneB.MilestoneID,
		SourceFilename: "markups.csv",
		Raw:            []byte(sampleCSV),
	})
	if !errors.Is(err, ports.ErrMilestoneNotFound) {
		t.Fatalf("expected ErrMilestoneNotFound, got %v", err)
	}
}

func TestImportCSVMappingOverride(t *testing.T) {
	svc, _, _, _ := setupService(t)
	ctx := context.Background()
	project := mustProject(t, svc)

	raw := []byte(`Weird Header,Author
Fix the door,J. Smith
`)

	result, err := svc.ImportCSV(ctx, ImportCSVInput{
		ProjectID:       project.ProjectID,
		SourceFilename:  "odd.csv",
		Raw:             raw,
		MappingOverride: domainreview.Mapping{Comment: "Weird Header"},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Inserted != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}

	comments, err := svc.ListComments(ctx, ports.CommentFilter{ProjectID: project.ProjectID})
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if comments[0].CommentText != "Fix the door" {
		t.Fatalf("override not applied: %+v", comments[0])
	}
}

// failingRepo wraps the real repository and fails the batch-count update,
// which runs last inside the import transaction.
type failingRepo struct {
	ports.ReviewRepository
}

func (f *failingRepo) SetImportBatchCounts(context.Context, uint64, int, int) error {
	return fmt.Errorf("disk full")
}

func TestImportCSVRollsBackOnFailure(t *testing.T) {
	svc, cache, classifier, db := setupService(t)
	ctx := context.Background()
	project := mustProject(t, svc)

	failing := NewService(
		&failingRepo{ReviewRepository: svc.repo},
		sqliteuow.NewUnitOfWork(db),
		cache,
		classifier,
		testConfig(),
	)

	_, err := failing.ImportCSV(ctx, ImportCSVInput{
		ProjectID:      project.ProjectID,
		SourceFilename: "markups.csv",
		Raw:            []byte(sampleCSV),
	})
	if err == nil {
		t.Fatal("expected import failure")
	}

	var batchCount, commentCount int64
	if err := db.Model(&model.ImportBatch{}).Count(&batchCount).Error; err != nil {
		t.Fatalf("count batches: %v", err)
	}
	if err := db.Model(&model.Comment{}).Count(&commentCount).Error; err != nil {
		t.Fatalf("count comments: %v", err)
	}
	if batchCount != 0 || commentCount != 0 {
		t.Fatalf("failed import left rows behind: batches=%d comments=%d", batchCount, commentCount)
	}

	// The same file imports cleanly afterwards.
	result, err := svc.ImportCSV(ctx, ImportCSVInput{
		ProjectID:      project.ProjectID,
		SourceFilename: "markups.csv",
		Raw:            []byte(sampleCSV),
	})
	if err != nil {
		t.Fatalf("retry import: %v", err)
	}
	if result.Inserted != 2 || result.Skipped != 0 {
		t.Fatalf("retry behaved as re-import: %+v", result)
	}
}
