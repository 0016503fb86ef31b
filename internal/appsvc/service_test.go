package appsvc

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobdeck/jobdeck-be/internal/domain"
	"github.com/jobdeck/jobdeck-be/internal/rpc"
	"github.com/jobdeck/jobdeck-be/internal/store"
	"github.com/jobdeck/jobdeck-be/shared/logger"
)

type fakeNotifier struct {
	published []*domain.Notification
}

func (f *fakeNotifier) Publish(ctx context.Context, n *domain.Notification) {
	f.published = append(f.published, n)
}

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock, *fakeNotifier) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	st := store.NewStore(sqlx.NewDb(mockDB, "postgres"), logger.NewDefault().Logger)
	notifier := &fakeNotifier{}
	return NewService(st, notifier, logger.NewDefault().Logger), mock, notifier
}

func applicationRows(status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"application_id", "job_id", "seeker_id", "cover_letter", "status", "created_at", "updated_at",
	}).AddRow("a1", "j1", "seeker-1", "hello", status, now, now)
}

func jobRows(recruiterID string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"job_id", "recruiter_id", "company_id", "title", "description",
		"requirements", "skills", "location", "deadline", "views", "created_at", "updated_at",
	}).AddRow("j1", recruiterID, "c1", "Backend Engineer", "build things",
		"{}", "{go}", "Hanoi", now.Add(24*time.Hour), int64(0), now, now)
}

func updateStatusReq(actorID, status string) *rpc.Request {
	args, _ := json.Marshal(UpdateStatusArgs{ApplicationID: "a1", Status: status})
	return &rpc.Request{
		Op:        "application.updateStatus",
		ActorID:   actorID,
		ActorRole: "recruiter",
		Args:      args,
	}
}

func TestUpdateStatus_HappyPath(t *testing.T) {
	svc, mock, notifier := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM applications")).
		WithArgs("a1").
		WillReturnRows(applicationRows(domain.ApplicationPending))
	mock.ExpectQuery(regexp.QuoteMeta("FROM jobs")).
		WithArgs("j1").
		WillReturnRows(jobRows("recruiter-1"))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications")).
		WithArgs(domain.ApplicationShortlisted, sqlmock.AnyArg(), "a1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := svc.UpdateStatus(context.Background(), updateStatusReq("recruiter-1", domain.ApplicationShortlisted))
	require.NoError(t, err)

	app := result.(*domain.Application)
	assert.Equal(t, domain.ApplicationShortlisted, app.Status)

	// exactly one notification, addressed to the seeker, pushed after commit
	require.Len(t, notifier.published, 1)
	assert.Equal(t, "seeker-1", notifier.published[0].UserID)
	assert.Equal(t, domain.NotifyApplication, notifier.published[0].Type)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_TerminalIsConflict(t *testing.T) {
	tests := []string{domain.ApplicationAccepted, domain.ApplicationRejected}

	for _, terminal := range tests {
		t.Run(terminal, func(t *testing.T) {
			svc, mock, notifier := newTestService(t)

			mock.ExpectQuery(regexp.QuoteMeta("FROM applications")).
				WithArgs("a1").
				WillReturnRows(applicationRows(terminal))
			mock.ExpectQuery(regexp.QuoteMeta("FROM jobs")).
				WithArgs("j1").
				WillReturnRows(jobRows("recruiter-1"))

			_, err := svc.UpdateStatus(context.Background(), updateStatusReq("recruiter-1", domain.ApplicationReviewed))
			require.Error(t, err)
			assert.Equal(t, domain.KindConflict, domain.KindOf(err))
			assert.Empty(t, notifier.published)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUpdateStatus_IllegalTransitionIsConflict(t *testing.T) {
	svc, mock, notifier := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM applications")).
		WithArgs("a1").
		WillReturnRows(applicationRows(domain.ApplicationShortlisted))
	mock.ExpectQuery(regexp.QuoteMeta("FROM jobs")).
		WithArgs("j1").
		WillReturnRows(jobRows("recruiter-1"))

	_, err := svc.UpdateStatus(context.Background(), updateStatusReq("recruiter-1", domain.ApplicationPending))
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	assert.Empty(t, notifier.published)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_NonOwnerIsForbidden(t *testing.T) {
	svc, mock, notifier := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM applications")).
		WithArgs("a1").
		WillReturnRows(applicationRows(domain.ApplicationPending))
	mock.ExpectQuery(regexp.QuoteMeta("FROM jobs")).
		WithArgs("j1").
		WillReturnRows(jobRows("someone-else"))

	_, err := svc.UpdateStatus(context.Background(), updateStatusReq("recruiter-1", domain.ApplicationReviewed))
	require.Error(t, err)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	assert.Empty(t, notifier.published)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_UnknownStatusIsBadRequest(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.UpdateStatus(context.Background(), updateStatusReq("recruiter-1", "HIRED"))
	require.Error(t, err)
	assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))
}

func TestUpdateStatus_NotificationFailureRollsBack(t *testing.T) {
	svc, mock, notifier := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM applications")).
		WithArgs("a1").
		WillReturnRows(applicationRows(domain.ApplicationPending))
	mock.ExpectQuery(regexp.QuoteMeta("FROM jobs")).
		WithArgs("j1").
		WillReturnRows(jobRows("recruiter-1"))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := svc.UpdateStatus(context.Background(), updateStatusReq("recruiter-1", domain.ApplicationReviewed))
	require.Error(t, err)

	// nothing committed, nothing pushed
	assert.Empty(t, notifier.published)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_StrangerIsForbidden(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM applications")).
		WithArgs("a1").
		WillReturnRows(applicationRows(domain.ApplicationPending))
	mock.ExpectQuery(regexp.QuoteMeta("FROM jobs")).
		WithArgs("j1").
		WillReturnRows(jobRows("recruiter-1"))

	args, _ := json.Marshal(GetByIDArgs{ApplicationID: "a1"})
	_, err := svc.GetByID(context.Background(), &rpc.Request{
		Op:      "application.getById",
		ActorID: "stranger",
		Args:    args,
	})

	require.Error(t, err)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_SeekerCanRead(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM applications")).
		WithArgs("a1").
		WillReturnRows(applicationRows(domain.ApplicationPending))

	args, _ := json.Marshal(GetByIDArgs{ApplicationID: "a1"})
	result, err := svc.GetByID(context.Background(), &rpc.Request{
		Op:      "application.getById",
		ActorID: "seeker-1",
		Args:    args,
	})

	require.NoError(t, err)
	assert.Equal(t, "a1", result.(*domain.Application).ApplicationID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListNotifications_RequiresIdentity(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ListNotifications(context.Background(), &rpc.Request{
		Op:   "notification.list",
		Args: json.RawMessage(`{}`),
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}
