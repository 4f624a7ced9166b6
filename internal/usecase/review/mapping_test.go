package review

import (
	"context"
	"testing"
)

func TestPreviewMappingDoesNotImport(t *testing.T) {
	svc, _, _, _ := setupService(t)
	ctx := context.Background()
	project := mustProject(t, svc)

	preview, err := svc.PreviewMapping(ctx, []byte(sampleCSV), nil)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if preview.Mapping.Comment != "Comments" || preview.Mapping.Sheet != "Page Label" {
		t.Fatalf("unexpected mapping: %+v", preview.Mapping)
	}
	if len(preview.Columns) != 6 {
		t.Fatalf("unexpected columns: %v", preview.Columns)
	}
	if len(preview.Unmapped) != 0 {
		t.Fatalf("unexpected unmapped fields: %v", preview.Unmapped)
	}

	batches, err := svc.ListImportBatches(ctx, project.ProjectID)
	if err != nil {
		t.Fatalf("list batches: %v", err)
	}
	if len(batches) != 0 {
		t.Fatal("preview must not create batches")
	}
}

func TestLastMappingPersistedByImport(t *testing.T) {
	svc, _, _, _ := setupService(t)
	ctx := context.Background()
	project := mustProject(t, svc)

	if _, ok, err := svc.LastMapping(ctx); err != nil || ok {
		t.Fatalf("expected no last mapping, got ok=%t err=%v", ok, err)
	}

	importSample(t, svc, project.ProjectID)

	mapping, ok, err := svc.LastMapping(ctx)
	if err != nil {
		t.Fatalf("last mapping: %v", err)
	}
	if !ok {
		t.Fatal("last mapping not persisted")
	}
	if mapping.Comment != "Comments" || mapping.CreatedAt != "Date" {
		t.Fatalf("unexpected last mapping: %+v", mapping)
	}
}
