package review

import (
	"context"
	"errors"
	"testing"

	"github.com/ajschmidt2/bluebeam-consolidator/internal/ports"
)

func importSample(t *testing.T, svc *Service, projectID uint64) {
	t.Helper()
	if _, err := svc.ImportCSV(context.Background(), ImportCSVInput{
		ProjectID:      projectID,
		SourceFilename: "markups.csv",
		Raw:            []byte(sampleCSV),
	}); err != nil {
		t.Fatalf("import: %v", err)
	}
}

func TestTriageAppliesVerdicts(t *testing.T) {
	svc, _, classifier, _ := setupService(t)
	ctx := context.Background()
	project := mustProject(t, svc)
	importSample(t, svc, project.ProjectID)

	summary, err := svc.TriageComments(ctx, TriageInput{ProjectID: project.ProjectID})
	if err != nil {
		t.Fatalf("triage: %v", err)
	}
	if summary.Considered != 2 || summary.Classified != 2 || summary.CacheHits != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if classifier.calls != 2 {
		t.Fatalf("expected 2 classifier calls, got %d", classifier.calls)
	}

	comments, err := svc.ListComments(ctx, ports.CommentFilter{ProjectID: project.ProjectID})
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	for _, c := range comments {
		if c.Tag != "COORD" || c.Risk != "MED" || c.RequiredResponse == "" {
			t.Fatalf("verdict not applied: %+v", c)
		}
	}
}

func TestTriageUsesCacheOnRerun(t *testing.T) {
	svc, _, classifier, _ := setupService(t)
	ctx := context.Background()
	project := mustProject(t, svc)
	importSample(t, svc, project.ProjectID)

	if _, err := svc.TriageComments(ctx, TriageInput{ProjectID: project.ProjectID}); err != nil {
		t.Fatalf("first triage: %v", err)
	}

	summary, err := svc.TriageComments(ctx, TriageInput{ProjectID: project.ProjectID})
	if err != nil {
		t.Fatalf("second triage: %v", err)
	}
	if summary.CacheHits != 2 {
		t.Fatalf("expected 2 cache hits, got %+v", summary)
	}
	if classifier.calls != 2 {
		t.Fatalf("classifier called again despite cache: %d calls", classifier.calls)
	}
}

func TestTriageOnlyUntaggedSkipsTagged(t *testing.T) {
	svc, _, classifier, _ := setupService(t)
	ctx := context.Background()
	project := mustProject(t, svc)
	importSample(t, svc, project.ProjectID)

	if _, err := svc.TriageComments(ctx, TriageInput{ProjectID: project.ProjectID}); err != nil {
		t.Fatalf("first triage: %v", err)
	}
	calls := classifier.calls

	summary, err := svc.TriageComments(ctx, TriageInput{ProjectID: project.ProjectID, OnlyUntagged: true})
	if err != nil {
		t.Fatalf("second triage: %v", err)
	}
	if summary.Considered != 0 {
		t.Fatalf("tagged comments reconsidered: %+v", summary)
	}
	if classifier.calls != calls {
		t.Fatal("classifier called for tagged comments")
	}
}

func TestTriageUnavailableClassifier(t *testing.T) {
	svc, _, classifier, _ := setupService(t)
	classifier.enabled = false
	project := mustProject(t, svc)

	_, err := svc.TriageComments(context.Background(), TriageInput{ProjectID: project.ProjectID})
	if !errors.Is(err, ports.ErrClassifierUnavailable) {
		t.Fatalf("expected ErrClassifierUnavailable, got %v", err)
	}
}

func TestTriageToleratesPerCommentFailure(t *testing.T) {
	svc, _, classifier, _ := setupService(t)
	ctx := context.Background()
	project := mustProject(t, svc)
	importSample(t, svc, project.ProjectID)

	classifier.err = errors.New("rate limited")
	summary, err := svc.TriageComments(ctx, TriageInput{ProjectID: project.ProjectID})
	if err != nil {
		t.Fatalf("triage must not abort on per-comment failure: %v", err)
	}
	if summary.Failed != 2 || summary.Classified != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestTriageLimit(t *testing.T) {
	svc, _, _, _ := setupService(t)
	ctx := context.Background()
	project := mustProject(t, svc)
	importSample(t, svc, project.ProjectID)

	summary, err := svc.TriageComments(ctx, TriageInput{ProjectID: project.ProjectID, Limit: 1})
	if err != nil {
		t.Fatalf("triage: %v", err)
	}
	if summary.Considered != 1 || summary.Classified != 1 {
		t.Fatalf("limit not honored: %+v", summary)
	}
}
