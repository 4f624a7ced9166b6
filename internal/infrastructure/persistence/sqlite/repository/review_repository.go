package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ajschmidt2/bluebeam-consolidator/internal/errs"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/infrastructure/persistence/sqlite/model"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/ports"
)

type ReviewRepository struct {
	db *gorm.DB
}

var _ ports.ReviewRepository = (*ReviewRepository)(nil)

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func nowUTCString() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ---- projects ----

func (r *ReviewRepository) CreateProject(ctx context.Context, project ports.Project) (ports.Project, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Project{}, err
	}

	row := model.Project{
		Name:      project.Name,
		Client:    project.Client,
		Location:  project.Location,
		IsActive:  project.IsActive,
		CreatedAt: firstNonEmpty(project.CreatedAt, nowUTCString()),
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Project{}, errs.Wrap(err, "insert project")
	}
	return mapProject(row), nil
}

func (r *ReviewRepository) ListProjects(ctx context.Context, includeArchived bool) ([]ports.Project, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Project{})
	if !includeArchived {
		query = query.Where("is_active = ?", true)
	}

	var rows []model.Project
	if err := query.Order("is_active desc, name asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query projects")
	}

	items := make([]ports.Project, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapProject(row))
	}
	return items, nil
}

func (r *ReviewRepository) GetProject(ctx context.Context, projectID uint64) (ports.Project, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Project{}, err
	}

	var row model.Project
	if err := db.Where("project_id = ?", projectID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Project{}, ports.ErrProjectNotFound
		}
		return ports.Project{}, errs.Wrap(err, "query project")
	}
	return mapProject(row), nil
}

func (r *ReviewRepository) SetProjectActive(ctx context.Context, projectID uint64, active bool) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.Project{}).Where("project_id = ?", projectID).Update("is_active", active)
	if result.Error != nil {
		return errs.Wrap(result.Error, "update project active flag")
	}
	if result.RowsAffected == 0 {
		return ports.ErrProjectNotFound
	}
	return nil
}

// ---- milestones ----

func (r *ReviewRepository) CreateMilestone(ctx context.Context, milestone ports.Milestone) (ports.Milestone, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Milestone{}, err
	}

	row := model.Milestone{
		ProjectID:  milestone.ProjectID,
		Name:       milestone.Name,
		TargetDate: milestone.TargetDate,
		CreatedAt:  firstNonEmpty(milestone.CreatedAt, nowUTCString()),
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Milestone{}, errs.Wrap(err, "insert milestone")
	}
	return mapMilestone(row), nil
}

func (r *ReviewRepository) ListMilestones(ctx context.Context, projectID uint64) ([]ports.Milestone, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Milestone
	if err := db.
		Where("project_id = ?", projectID).
		Order("created_at desc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query milestones")
	}

	items := make([]ports.Milestone, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapMilestone(row))
	}
	return items, nil
}

func (r *ReviewRepository) GetMilestone(ctx context.Context, milestoneID uint64) (ports.Milestone, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Milestone{}, err
	}

	var row model.Milestone
	if err := db.Where("milestone_id = ?", milestoneID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Milestone{}, ports.ErrMilestoneNotFound
		}
		return ports.Milestone{}, errs.Wrap(err, "query milestone")
	}
	return mapMilestone(row), nil
}

// ---- import batches ----

func (r *ReviewRepository) CreateImportBatch(ctx context.Context, batch ports.ImportBatch) (ports.ImportBatch, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.ImportBatch{}, err
	}

	row := model.ImportBatch{
		BatchRef:       batch.BatchRef,
		ProjectID:      batch.ProjectID,
		MilestoneID:    batch.MilestoneID,
		SourceFilename: batch.SourceFilename,
		Discipline:     batch.Discipline,
		RowCount:       batch.RowCount,
		InsertedCount:  batch.InsertedCount,
		SkippedCount:   batch.SkippedCount,
		ImportedAt:     firstNonEmpty(batch.ImportedAt, nowUTCString()),
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.ImportBatch{}, errs.Wrap(err, "insert import batch")
	}
	return mapImportBatch(row), nil
}

func (r *ReviewRepository) ListImportBatches(ctx context.Context, projectID uint64) ([]ports.ImportBatch, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.ImportBatch
	if err := db.
		Where("project_id = ?", projectID).
		Order("batch_id desc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query import batches")
	}

	items := make([]ports.ImportBatch, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapImportBatch(row))
	}
	return items, nil
}

func (r *ReviewRepository) SetImportBatchCounts(ctx context.Context, batchID uint64, inserted int, skipped int) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.Model(&model.ImportBatch{}).
		Where("batch_id = ?", batchID).
		Updates(map[string]any{
			"inserted_count": inserted,
			"skipped_count":  skipped,
		}).Error; err != nil {
		return errs.Wrap(err, "update import batch counts")
	}
	return nil
}

// ---- comments ----

func (r *ReviewRepository) FingerprintExists(ctx context.Context, fingerprint string) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	var count int64
	if err := db.Model(&model.Comment{}).
		Where("fingerprint = ?", fingerprint).
		Count(&count).Error; err != nil {
		return false, errs.Wrap(err, "query fingerprint")
	}
	return count > 0, nil
}

func (r *ReviewRepository) CreateComment(ctx context.Context, comment ports.Comment) (ports.Comment, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Comment{}, err
	}

	row := commentToModel(comment)
	if err := db.Create(&row).Error; err != nil {
		return ports.Comment{}, errs.Wrap(err, "insert comment")
	}
	return mapComment(row), nil
}

func (r *ReviewRepository) ListComments(ctx context.Context, filter ports.CommentFilter) ([]ports.Comment, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Comment{})
	if filter.ProjectID != 0 {
		query = query.Where("project_id = ?", filter.ProjectID)
	}
	if filter.MilestoneID != nil {
		query = query.Where("milestone_id = ?", *filter.MilestoneID)
	}
	if filter.Discipline != "" {
		query = query.Where("discipline = ?", filter.Discipline)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Tracked != nil {
		query = query.Where("tracked = ?", *filter.Tracked)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"lower(comment_text) LIKE ? OR lower(sheet) LIKE ? OR lower(author) LIKE ? OR lower(tag) LIKE ? OR lower(required_response) LIKE ?",
			like, like, like, like, like,
		)
	}

	var rows []model.Comment
	if err := query.Order("created_at desc, comment_id desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query comments")
	}

	items := make([]ports.Comment, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapComment(row))
	}
	return items, nil
}

func (r *ReviewRepository) GetComment(ctx context.Context, commentID uint64) (ports.Comment, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Comment{}, err
	}

	var row model.Comment
	if err := db.Where("comment_id = ?", commentID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Comment{}, ports.ErrCommentNotFound
		}
		return ports.Comment{}, errs.Wrap(err, "query comment")
	}
	return mapComment(row), nil
}

func (r *ReviewRepository) UpdateComment(ctx context.Context, commentID uint64, update ports.CommentUpdate) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	assignments := updateAssignments(update)
	if len(assignments) == 0 {
		return nil
	}

	result := db.Model(&model.Comment{}).Where("comment_id = ?", commentID).Updates(assignments)
	if result.Error != nil {
		return errs.Wrap(result.Error, "update comment")
	}
	if result.RowsAffected == 0 {
		return ports.ErrCommentNotFound
	}
	return nil
}

func (r *ReviewRepository) BulkUpdateComments(ctx context.Context, commentIDs []uint64, update ports.CommentUpdate) (int, error) {
	if len(commentIDs) == 0 {
		return 0, nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	assignments := updateAssignments(update)
	if len(assignments) == 0 {
		return 0, nil
	}

	result := db.Model(&model.Comment{}).Where("comment_id IN ?", commentIDs).Updates(assignments)
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "bulk update comments")
	}
	return int(result.RowsAffected), nil
}

// ---- settings ----

func (r *ReviewRepository) GetSetting(ctx context.Context, key string) (string, bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return "", false, err
	}

	var row model.AppSetting
	if err := db.Where("key = ?", key).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, errs.Wrap(err, "query setting")
	}
	return row.Value, true, nil
}

func (r *ReviewRepository) SetSetting(ctx context.Context, key string, value string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.AppSetting{
		Key:       key,
		Value:     value,
		UpdatedAt: nowUTCString(),
	}
	if err := db.Save(&row).Error; err != nil {
		return errs.Wrap(err, "upsert setting")
	}
	return nil
}

// ---- mapping helpers ----

func updateAssignments(update ports.CommentUpdate) map[string]any {
	assignments := make(map[string]any, 7)
	if update.Status != nil {
		assignments["status"] = *update.Status
	}
	if update.Tracked != nil {
		assignments["tracked"] = *update.Tracked
	}
	if update.Owner != nil {
		assignments["owner"] = *update.Owner
	}
	if update.DueDate != nil {
		assignments["due_date"] = *update.DueDate
	}
	if update.Tag != nil {
		assignments["tag"] = *update.Tag
	}
	if update.Risk != nil {
		assignments["risk"] = *update.Risk
	}
	if update.RequiredResponse != nil {
		assignments["required_response"] = *update.RequiredResponse
	}
	return assignments
}

func commentToModel(comment ports.Comment) model.Comment {
	return model.Comment{
		ImportBatchID:    comment.ImportBatchID,
		ProjectID:        comment.ProjectID,
		MilestoneID:      comment.MilestoneID,
		Discipline:       comment.Discipline,
		Sheet:            comment.Sheet,
		Subject:          comment.Subject,
		Author:           comment.Author,
		CreatedAt:        comment.CreatedAt,
		CommentText:      comment.CommentText,
		MarkupID:         comment.MarkupID,
		StatusRaw:        comment.StatusRaw,
		Status:           comment.Status,
		Tracked:          comment.Tracked,
		Owner:            comment.Owner,
		DueDate:          comment.DueDate,
		Tag:              comment.Tag,
		Risk:             comment.Risk,
		RequiredResponse: comment.RequiredResponse,
		Fingerprint:      comment.Fingerprint,
	}
}

func mapComment(row model.Comment) ports.Comment {
	return ports.Comment{
		CommentID:        row.CommentID,
		ImportBatchID:    row.ImportBatchID,
		ProjectID:        row.ProjectID,
		MilestoneID:      row.MilestoneID,
		Discipline:       row.Discipline,
		Sheet:            row.Sheet,
		Subject:          row.Subject,
		Author:           row.Author,
		CreatedAt:        row.CreatedAt,
		CommentText:      row.CommentText,
		MarkupID:         row.MarkupID,
		StatusRaw:        row.StatusRaw,
		Status:           row.Status,
		Tracked:          row.Tracked,
		Owner:            row.Owner,
		DueDate:          row.DueDate,
		Tag:              row.Tag,
		Risk:             row.Risk,
		RequiredResponse: row.RequiredResponse,
		Fingerprint:      row.Fingerprint,
	}
}

func mapProject(row model.Project) ports.Project {
	return ports.Project{
		ProjectID: row.ProjectID,
		Name:      row.Name,
		Client:    row.Client,
		Location:  row.Location,
		IsActive:  row.IsActive,
		CreatedAt: row.CreatedAt,
	}
}

func mapMilestone(row model.Milestone) ports.Milestone {
	return ports.Milestone{
		MilestoneID: row.MilestoneID,
		ProjectID:   row.ProjectID,
		Name:        row.Name,
		TargetDate:  row.TargetDate,
		CreatedAt:   row.CreatedAt,
	}
}

func mapImportBatch(row model.ImportBatch) ports.ImportBatch {
	return ports.ImportBatch{
		BatchID:        row.BatchID,
		BatchRef:       row.BatchRef,
		ProjectID:      row.ProjectID,
		MilestoneID:    row.MilestoneID,
		SourceFilename: row.SourceFilename,
		Discipline:     row.Discipline,
		RowCount:       row.RowCount,
		InsertedCount:  row.InsertedCount,
		SkippedCount:   row.SkippedCount,
		ImportedAt:     row.ImportedAt,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
