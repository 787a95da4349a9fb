package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"hrportal_backend/internals/constants"
	assignmentModel "hrportal_backend/internals/features/training/assignments/model"
	batchModel "hrportal_backend/internals/features/training/batches/model"
	sessionModel "hrportal_backend/internals/features/training/sessions/model"
	userModel "hrportal_backend/internals/features/users/user/model"
	helper "hrportal_backend/internals/helpers"
)

const SectionPageSize = 10

type Stats struct {
	ActiveBatchesCount int64 `json:"active_batches_count"`
	TotalSessions      int64 `json:"total_sessions"`
	PendingAssignments int64 `json:"pending_assignments"`
	EnrolledEmployees  int64 `json:"enrolled_employees"`
}

// LoadStats runs the four dashboard counts concurrently.
func LoadStats(ctx context.Context, db *gorm.DB) (Stats, error) {
	var s Stats
	g, gctx := errgroup.WithContext(ctx)
	q := func() *gorm.DB { return db.WithContext(gctx) }

	g.Go(func() error {
		return q().Model(&batchModel.BatchModel{}).Where("batch_status = ?", batchModel.BatchOngoing).Count(&s.ActiveBatchesCount).Error
	})
	g.Go(func() error {
		return q().Model(&sessionModel.TrainingSessionModel{}).Count(&s.TotalSessions).Error
	})
	g.Go(func() error {
		return q().Model(&assignmentModel.AssignmentModel{}).Where("assignment_status = ?", assignmentModel.AssignmentPending).Count(&s.PendingAssignments).Error
	})
	g.Go(func() error {
		return q().Model(&userModel.UserModel{}).
			Where("role = ?", constants.RoleEmployee).
			Where("id IN (SELECT user_id FROM " + batchModel.TableBatchEmployees + ")").
			Count(&s.EnrolledEmployees).Error
	})
	return s, g.Wait()
}

// Section is one paginated list on the management dashboard.
type Section struct {
	Items      any               `json:"items"`
	Pagination helper.Pagination `json:"pagination"`
}

type PageParams struct {
	Query           string
	BatchesPage     string
	SessionsPage    string
	AssignmentsPage string
}

type Overview struct {
	Batches     Section `json:"batches"`
	Sessions    Section `json:"sessions"`
	Assignments Section `json:"assignments"`
	Stats       Stats   `json:"stats"`
	SearchQuery string  `json:"search_query"`
}

func likeArg(q string) string {
	return "%" + strings.ToLower(q) + "%"
}

// page counts the query, clamps the requested page and loads it into dest.
func page(q *gorm.DB, raw, order string, dest any, preloads ...string) (helper.Pagination, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.Pagination{}, err
	}
	p := helper.ClampPage(raw, total, SectionPageSize)
	q = q.Order(order).Offset(p.Offset).Limit(p.Limit)
	for _, rel := range preloads {
		q = q.Preload(rel)
	}
	if err := q.Find(dest).Error; err != nil {
		return helper.Pagination{}, err
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return pg, nil
}

// LoadOverview builds the management dashboard: three searchable paginated
// lists plus the quick stats.
func LoadOverview(ctx context.Context, db *gorm.DB, params PageParams) (*Overview, error) {
	search := strings.TrimSpace(params.Query)
	out := &Overview{SearchQuery: search}

	bq := db.Model(&batchModel.BatchModel{})
	if search != "" {
		like := likeArg(search)
		bq = bq.Where("LOWER(batch_name) LIKE ? OR LOWER(batch_code) LIKE ?", like, like)
	}
	var batches []batchModel.BatchModel
	pg, err := page(bq, params.BatchesPage, "batch_start_date DESC", &batches)
	if err != nil {
		return nil, err
	}
	pg.Count = len(batches)
	out.Batches = Section{Items: batches, Pagination: pg}

	sq := db.Model(&sessionModel.TrainingSessionModel{}).
		Joins("JOIN batches ON batches.batch_id = training_sessions.training_session_batch_id")
	if search != "" {
		like := likeArg(search)
		sq = sq.Where("LOWER(training_sessions.training_session_title) LIKE ? OR LOWER(batches.batch_name) LIKE ?", like, like)
	}
	var sessions []sessionModel.TrainingSessionModel
	pg, err = page(sq, params.SessionsPage, "training_sessions.training_session_date_time DESC", &sessions, "Batch")
	if err != nil {
		return nil, err
	}
	pg.Count = len(sessions)
	out.Sessions = Section{Items: sessions, Pagination: pg}

	aq := db.Model(&assignmentModel.AssignmentModel{}).
		Joins("JOIN batches ON batches.batch_id = assignments.assignment_batch_id")
	if search != "" {
		like := likeArg(search)
		aq = aq.Where("LOWER(assignments.assignment_title) LIKE ? OR LOWER(batches.batch_name) LIKE ?", like, like)
	}
	var assignments []assignmentModel.AssignmentModel
	pg, err = page(aq, params.AssignmentsPage, "assignments.assignment_due_date DESC", &assignments, "Batch")
	if err != nil {
		return nil, err
	}
	pg.Count = len(assignments)
	out.Assignments = Section{Items: assignments, Pagination: pg}

	if out.Stats, err = LoadStats(ctx, db); err != nil {
		return nil, err
	}
	return out, nil
}

const myBatchIDs = "SELECT batch_id FROM " + batchModel.TableBatchEmployees + " WHERE user_id = ?"

type MyTraining struct {
	Batches            []batchModel.BatchModel             `json:"my_batches"`
	UpcomingSessions   []sessionModel.TrainingSessionModel `json:"upcoming_sessions"`
	PendingAssignments []assignmentModel.AssignmentModel   `json:"pending_assignments"`
}

// LoadMyTraining lists an employee's batches, next five sessions and open assignments.
func LoadMyTraining(db *gorm.DB, userID uuid.UUID, now time.Time) (*MyTraining, error) {
	out := &MyTraining{}
	if err := db.Where("batch_id IN ("+myBatchIDs+")", userID).
		Order("batch_start_date DESC").
		Find(&out.Batches).Error; err != nil {
		return nil, err
	}
	if err := db.Preload("Batch").
		Where("training_session_batch_id IN ("+myBatchIDs+")", userID).
		Where("training_session_date_time >= ?", now).
		Order("training_session_date_time ASC").
		Limit(5).
		Find(&out.UpcomingSessions).Error; err != nil {
		return nil, err
	}
	if err := db.Preload("Batch").
		Where("assignment_batch_id IN ("+myBatchIDs+")", userID).
		Where("assignment_status = ?", assignmentModel.AssignmentPending).
		Order("assignment_due_date ASC").
		Find(&out.PendingAssignments).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type MySummary struct {
	Batches            int64 `json:"batches"`
	UpcomingSessions   int64 `json:"upcoming_sessions"`
	PendingAssignments int64 `json:"pending_assignments"`
	Submissions        int64 `json:"submissions"`
}

// LoadMySummary is the count-only view of LoadMyTraining for the employee dashboard.
func LoadMySummary(ctx context.Context, db *gorm.DB, userID uuid.UUID, now time.Time) (MySummary, error) {
	var s MySummary
	g, gctx := errgroup.WithContext(ctx)
	q := func() *gorm.DB { return db.WithContext(gctx) }

	g.Go(func() error {
		return q().Table(batchModel.TableBatchEmployees).Where("user_id = ?", userID).Count(&s.Batches).Error
	})
	g.Go(func() error {
		return q().Model(&sessionModel.TrainingSessionModel{}).
			Where("training_session_batch_id IN ("+myBatchIDs+")", userID).
			Where("training_session_date_time >= ?", now).
			Count(&s.UpcomingSessions).Error
	})
	g.Go(func() error {
		return q().Model(&assignmentModel.AssignmentModel{}).
			Where("assignment_batch_id IN ("+myBatchIDs+")", userID).
			Where("assignment_status = ?", assignmentModel.AssignmentPending).
			Count(&s.PendingAssignments).Error
	})
	g.Go(func() error {
		return q().Model(&assignmentModel.SubmissionModel{}).Where("submission_employee_id = ?", userID).Count(&s.Submissions).Error
	})
	return s, g.Wait()
}
