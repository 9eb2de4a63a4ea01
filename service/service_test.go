package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"finreport/database/databasetest"
	"finreport/dto"
	"finreport/models"
	"finreport/pkg/crud"
	"finreport/pkg/nullable"
	"finreport/service"

	"github.com/go-playground/assert/v2"
	"gorm.io/gorm"
)

func strp(s string) *string { return &s }

func intp(i int) *int { return &i }

func floatp(f float64) *float64 { return &f }

func newServices(t *testing.T) (*service.Services, *gorm.DB) {
	t.Helper()
	db := databasetest.New(t)
	return service.New(db), db
}

func mustReport(t *testing.T, svc *service.Services, in dto.ReportCreateInput) dto.Report {
	t.Helper()
	out, err := svc.Reports.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create report: %v", err)
	}
	return out
}

func mustItem(t *testing.T, svc *service.Services, in dto.FinancialDataCreateInput) dto.FinancialData {
	t.Helper()
	out, err := svc.FinancialDataItems.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create financial data: %v", err)
	}
	return out
}

func itemIDs(items []dto.FinancialData) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func reportIDs(reports []dto.Report) []string {
	out := make([]string, len(reports))
	for i, r := range reports {
		out[i] = r.ID
	}
	return out
}

func TestReports_CreateThenGet(t *testing.T) {
	ctx := context.Background()
	svc, _ := newServices(t)
	published := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	created := mustReport(t, svc, dto.ReportCreateInput{ID: strp("r1"), Title: strp("Q1"), PublishedDate: &published})
	assert.Equal(t, "r1", created.ID)

	got, err := svc.Reports.Get(ctx, "r1")
	assert.Equal(t, nil, err)
	assert.Equal(t, "Q1", *got.Title)
	assert.Equal(t, true, got.Content == nil)
	assert.Equal(t, true, got.PublishedDate.Equal(published))
	assert.Equal(t, false, got.CreatedAt.IsZero())
	assert.Equal(t, []string{}, got.FinancialDataItems)
	assert.Equal(t, []string{}, got.Summaries)
}

func TestReports_CreateKeepsCallerTimestamps(t *testing.T) {
	svc, _ := newServices(t)
	at := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	created := mustReport(t, svc, dto.ReportCreateInput{CreatedAt: &at, UpdatedAt: &at})
	assert.NotEqual(t, "", created.ID)
	assert.Equal(t, true, created.CreatedAt.Equal(at))
	assert.Equal(t, true, created.UpdatedAt.Equal(at))
}

func TestReports_CreateDuplicateID(t *testing.T) {
	svc, _ := newServices(t)
	mustReport(t, svc, dto.ReportCreateInput{ID: strp("r1")})
	_, err := svc.Reports.Create(context.Background(), dto.ReportCreateInput{ID: strp("r1")})
	assert.Equal(t, true, errors.Is(err, crud.ErrAlreadyExists))
}

func TestReports_CreateAttachesResolvableChildren(t *testing.T) {
	svc, _ := newServices(t)
	mustItem(t, svc, dto.FinancialDataCreateInput{ID: strp("f1")})
	mustItem(t, svc, dto.FinancialDataCreateInput{ID: strp("f2")})

	created := mustReport(t, svc, dto.ReportCreateInput{
		ID:                 strp("r1"),
		FinancialDataItems: dto.IDList{"f2", "missing", "f1"},
	})
	assert.Equal(t, []string{"f1", "f2"}, created.FinancialDataItems)
}

func TestReports_PartialUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newServices(t)
	mustReport(t, svc, dto.ReportCreateInput{ID: strp("r1"), Title: strp("Q1"), Content: strp("body")})

	err := svc.Reports.Update(ctx, "r1", dto.ReportUpdateInput{Title: nullable.Of("Q2")})
	assert.Equal(t, nil, err)
	got, _ := svc.Reports.Get(ctx, "r1")
	assert.Equal(t, "Q2", *got.Title)
	assert.Equal(t, "body", *got.Content)

	err = svc.Reports.Update(ctx, "r1", dto.ReportUpdateInput{Content: nullable.Null[string]()})
	assert.Equal(t, nil, err)
	got, _ = svc.Reports.Get(ctx, "r1")
	assert.Equal(t, "Q2", *got.Title)
	assert.Equal(t, true, got.Content == nil)
}

func TestReports_UpdateMissing(t *testing.T) {
	svc, _ := newServices(t)
	err := svc.Reports.Update(context.Background(), "nope", dto.ReportUpdateInput{Title: nullable.Of("x")})
	assert.Equal(t, true, errors.Is(err, crud.ErrNotFound))
}

func TestReports_UpdateRejectsLongTitle(t *testing.T) {
	svc, _ := newServices(t)
	mustReport(t, svc, dto.ReportCreateInput{ID: strp("r1")})
	long := make([]byte, dto.MaxTextLength+1)
	for i := range long {
		long[i] = 'a'
	}
	err := svc.Reports.Update(context.Background(), "r1", dto.ReportUpdateInput{Title: nullable.Of(string(long))})
	assert.Equal(t, true, errors.Is(err, dto.ErrValidation))
}

func TestReports_UpdateReplacesChildren(t *testing.T) {
	ctx := context.Background()
	svc, _ := newServices(t)
	mustReport(t, svc, dto.ReportCreateInput{ID: strp("r1")})
	mustItem(t, svc, dto.FinancialDataCreateInput{ID: strp("f1"), ReportID: strp("r1")})
	mustItem(t, svc, dto.FinancialDataCreateInput{ID: strp("f2")})

	err := svc.Reports.Update(ctx, "r1", dto.ReportUpdateInput{FinancialDataItems: dto.IDList{"f2"}})
	assert.Equal(t, nil, err)
	got, _ := svc.Reports.Get(ctx, "r1")
	assert.Equal(t, []string{"f2"}, got.FinancialDataItems)
}

func TestReports_ListFilterSortPage(t *testing.T) {
	ctx := context.Background()
	svc, _ := newServices(t)
	for _, in := range []dto.ReportCreateInput{
		{ID: strp("a"), Title: strp("Q1"), Content: strp("x")},
		{ID: strp("b"), Title: strp("Q1"), Content: strp("y")},
		{ID: strp("c"), Title: strp("Q1"), Content: strp("x")},
		{ID: strp("d"), Title: strp("Q2"), Content: strp("x")},
	} {
		mustReport(t, svc, in)
	}

	where := dto.ReportWhereInput{Title: strp("Q1"), Content: strp("x")}
	rows, err := svc.Reports.List(ctx, dto.FindManyArgs[dto.ReportWhereInput]{Where: where})
	assert.Equal(t, nil, err)
	assert.Equal(t, []string{"a", "c"}, reportIDs(rows))

	meta, err := svc.Reports.Meta(ctx, where)
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(len(rows)), meta.Count)

	all := dto.FindManyArgs[dto.ReportWhereInput]{SortBy: map[string]string{"id": "desc"}, Skip: intp(1), Take: intp(2)}
	rows, err = svc.Reports.List(ctx, all)
	assert.Equal(t, nil, err)
	assert.Equal(t, []string{"c", "b"}, reportIDs(rows))

	all.Skip = intp(10)
	rows, err = svc.Reports.List(ctx, all)
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(rows))

	_, err = svc.Reports.List(ctx, dto.FindManyArgs[dto.ReportWhereInput]{SortBy: map[string]string{"secret": "asc"}})
	assert.Equal(t, true, errors.Is(err, crud.ErrInvalidQuery))
}

func TestReports_DeleteThenGet(t *testing.T) {
	ctx := context.Background()
	svc, _ := newServices(t)
	mustReport(t, svc, dto.ReportCreateInput{ID: strp("r1")})
	mustItem(t, svc, dto.FinancialDataCreateInput{ID: strp("f1"), ReportID: strp("r1")})

	assert.Equal(t, nil, svc.Reports.Delete(ctx, "r1"))
	_, err := svc.Reports.Get(ctx, "r1")
	assert.Equal(t, true, errors.Is(err, crud.ErrNotFound))
	assert.Equal(t, true, errors.Is(svc.Reports.Delete(ctx, "r1"), crud.ErrNotFound))

	// no cascade: the child keeps pointing at the removed report
	item, err := svc.FinancialDataItems.Get(ctx, "f1")
	assert.Equal(t, nil, err)
	assert.Equal(t, "r1", *item.ReportID)
}

func TestReports_ChildrenConnectDisconnect(t *testing.T) {
	ctx := context.Background()
	svc, _ := newServices(t)
	mustReport(t, svc, dto.ReportCreateInput{ID: strp("r1"), Title: strp("Q1")})
	mustItem(t, svc, dto.FinancialDataCreateInput{ID: strp("f1"), ReportID: strp("r1")})

	var none dto.FindManyArgs[dto.FinancialDataWhereInput]
	items, err := svc.Reports.FinancialDataItems.Find(ctx, "r1", none)
	assert.Equal(t, nil, err)
	assert.Equal(t, []string{"f1"}, itemIDs(items))

	assert.Equal(t, nil, svc.Reports.FinancialDataItems.Connect(ctx, "r1", []string{"f1"}))
	items, _ = svc.Reports.FinancialDataItems.Find(ctx, "r1", none)
	assert.Equal(t, []string{"f1"}, itemIDs(items))

	assert.Equal(t, nil, svc.Reports.FinancialDataItems.Disconnect(ctx, "r1", []string{"f1"}))
	items, _ = svc.Reports.FinancialDataItems.Find(ctx, "r1", none)
	assert.Equal(t, 0, len(items))

	assert.Equal(t, nil, svc.Reports.FinancialDataItems.Disconnect(ctx, "r1", []string{"f1", "never"}))
}

func TestReports_ChildrenNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newServices(t)
	mustReport(t, svc, dto.ReportCreateInput{ID: strp("r1")})
	mustItem(t, svc, dto.FinancialDataCreateInput{ID: strp("f1")})

	err := svc.Reports.FinancialDataItems.Connect(ctx, "missing", []string{"f1"})
	assert.Equal(t, true, errors.Is(err, crud.ErrNotFound))
	err = svc.Reports.FinancialDataItems.Connect(ctx, "r1", []string{"ghost"})
	assert.Equal(t, true, errors.Is(err, crud.ErrNotFound))
	err = svc.Reports.FinancialDataItems.Replace(ctx, "r1", nil)
	assert.Equal(t, true, errors.Is(err, crud.ErrNotFound))
	err = svc.Reports.Summaries.Disconnect(ctx, "missing", []string{"s1"})
	assert.Equal(t, true, errors.Is(err, crud.ErrNotFound))

	items, err := svc.Reports.FinancialDataItems.Find(ctx, "missing", dto.FindManyArgs[dto.FinancialDataWhereInput]{})
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(items))
}

func TestReports_ChildrenFindFilters(t *testing.T) {
	ctx := context.Background()
	svc, _ := newServices(t)
	mustReport(t, svc, dto.ReportCreateInput{ID: strp("r1")})
	mustItem(t, svc, dto.FinancialDataCreateInput{ID: strp("f1"), DataPoint: floatp(10), ReportID: strp("r1")})
	mustItem(t, svc, dto.FinancialDataCreateInput{ID: strp("f2"), DataPoint: floatp(20), ReportID: strp("r1")})
	mustItem(t, svc, dto.FinancialDataCreateInput{ID: strp("f3"), DataPoint: floatp(30), ReportID: strp("r1")})
	mustItem(t, svc, dto.FinancialDataCreateInput{ID: strp("f4"), DataPoint: floatp(20)})

	args := dto.FindManyArgs[dto.FinancialDataWhereInput]{
		Where:  dto.FinancialDataWhereInput{DataPointGte: floatp(15)},
		SortBy: map[string]string{"dataPoint": "desc"},
	}
	items, err := svc.Reports.FinancialDataItems.Find(ctx, "r1", args)
	assert.Equal(t, nil, err)
	assert.Equal(t, []string{"f3", "f2"}, itemIDs(items))
}

func TestFinancialData_ParentLink(t *testing.T) {
	ctx := context.Background()
	svc, _ := newServices(t)
	mustReport(t, svc, dto.ReportCreateInput{ID: strp("r1"), Title: strp("Q1")})
	mustReport(t, svc, dto.ReportCreateInput{ID: strp("r2")})

	orphan := mustItem(t, svc, dto.FinancialDataCreateInput{ID: strp("f1"), ReportID: strp("ghost")})
	assert.Equal(t, true, orphan.ReportID == nil)
	_, err := svc.FinancialDataItems.Report(ctx, "f1")
	assert.Equal(t, true, errors.Is(err, crud.ErrNotFound))

	assert.Equal(t, nil, svc.FinancialDataItems.Update(ctx, "f1", dto.FinancialDataUpdateInput{ReportID: nullable.Of("r1")}))
	parent, err := svc.FinancialDataItems.Report(ctx, "f1")
	assert.Equal(t, nil, err)
	assert.Equal(t, "r1", parent.ID)
	assert.Equal(t, []string{"f1"}, parent.FinancialDataItems)

	// an unknown report id leaves the link alone
	assert.Equal(t, nil, svc.FinancialDataItems.Update(ctx, "f1", dto.FinancialDataUpdateInput{ReportID: nullable.Of("ghost")}))
	item, _ := svc.FinancialDataItems.Get(ctx, "f1")
	assert.Equal(t, "r1", *item.ReportID)

	assert.Equal(t, nil, svc.FinancialDataItems.Update(ctx, "f1", dto.FinancialDataUpdateInput{ReportID: nullable.Null[string]()}))
	item, _ = svc.FinancialDataItems.Get(ctx, "f1")
	assert.Equal(t, true, item.ReportID == nil)

	_, err = svc.FinancialDataItems.Report(ctx, "missing")
	assert.Equal(t, true, errors.Is(err, crud.ErrNotFound))
}

func TestFinancialData_UpdateRange(t *testing.T) {
	svc, _ := newServices(t)
	mustItem(t, svc, dto.FinancialDataCreateInput{ID: strp("f1"), DataPoint: floatp(1)})
	err := svc.FinancialDataItems.Update(context.Background(), "f1", dto.FinancialDataUpdateInput{DataPoint: nullable.Of(1e10)})
	assert.Equal(t, true, errors.Is(err, dto.ErrValidation))
}

func TestSummaries_CreateUpdateReport(t *testing.T) {
	ctx := context.Background()
	svc, _ := newServices(t)
	mustReport(t, svc, dto.ReportCreateInput{ID: strp("r1")})
	generated := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

	s, err := svc.Summaries.Create(ctx, dto.SummaryCreateInput{SummaryContent: strp("up 4%"), GeneratedDate: &generated, ReportID: strp("r1")})
	assert.Equal(t, nil, err)
	assert.Equal(t, "r1", *s.ReportID)

	assert.Equal(t, nil, svc.Summaries.Update(ctx, s.ID, dto.SummaryUpdateInput{GeneratedDate: nullable.Null[time.Time]()}))
	got, _ := svc.Summaries.Get(ctx, s.ID)
	assert.Equal(t, "up 4%", *got.SummaryContent)
	assert.Equal(t, true, got.GeneratedDate == nil)

	parent, err := svc.Summaries.Report(ctx, s.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, []string{s.ID}, parent.Summaries)
}

func TestUpdate_VersionConflict(t *testing.T) {
	ctx := context.Background()
	svc, db := newServices(t)
	mustReport(t, svc, dto.ReportCreateInput{ID: strp("r1")})

	repo := crud.NewRepository[models.Report](db, crud.Schema{Name: "Report"})
	version, err := repo.Version(ctx, "r1")
	assert.Equal(t, nil, err)

	// a write that lands first makes the stale version lose
	assert.Equal(t, nil, svc.Reports.Update(ctx, "r1", dto.ReportUpdateInput{Title: nullable.Of("first")}))
	res, err := repo.UpdateIf(ctx, "r1", version, map[string]any{"title": "second"})
	assert.Equal(t, nil, err)
	assert.Equal(t, crud.UpdateConflict, res)

	got, _ := svc.Reports.Get(ctx, "r1")
	assert.Equal(t, "first", *got.Title)
}

func TestUsers_CreateAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newServices(t)

	u, err := svc.Users.Create(ctx, dto.UserCreateInput{Username: " ana ", Password: "secret1", Roles: []string{"analyst"}})
	assert.Equal(t, nil, err)
	assert.Equal(t, "ana", u.Username)
	assert.Equal(t, []string{"analyst"}, u.Roles)

	_, err = svc.Users.Create(ctx, dto.UserCreateInput{Username: "ana", Password: "secret2"})
	assert.Equal(t, true, errors.Is(err, crud.ErrAlreadyExists))

	_, err = svc.Users.Create(ctx, dto.UserCreateInput{Username: "bob", Password: "123"})
	assert.Equal(t, true, errors.Is(err, dto.ErrValidation))

	got, err := svc.Users.Authenticate(ctx, "ana", "secret1")
	assert.Equal(t, nil, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Users.Authenticate(ctx, "ana", "wrong")
	assert.Equal(t, service.ErrInvalidCredentials, err)
	_, err = svc.Users.Authenticate(ctx, "nobody", "secret1")
	assert.Equal(t, service.ErrInvalidCredentials, err)

	assert.Equal(t, nil, svc.Users.Update(ctx, u.ID, dto.UserUpdateInput{Password: strp("changed1")}))
	_, err = svc.Users.Authenticate(ctx, "ana", "changed1")
	assert.Equal(t, nil, err)
}
