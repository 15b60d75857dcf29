package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/warp/planning-engine/planning"
	"github.com/warp/planning-engine/planning/store"
)

func newTestServer(t *testing.T) (*store.Memory, *httptest.Server) {
	t.Helper()
	mem := store.NewMemory()
	srv := httptest.NewServer(NewRouter(NewHandler(mem)))
	t.Cleanup(srv.Close)
	return mem, srv
}

func decodeBody(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
}

// rosterUpload builds a multipart body carrying a minimal week-sheet
// workbook plus the target-period fields.
func rosterUpload(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Semaine 1"))
	require.NoError(t, f.SetCellValue("Semaine 1", "D8", "Alice"))
	require.NoError(t, f.SetCellValue("Semaine 1", "A9", "Lundi"))
	require.NoError(t, f.SetCellValue("Semaine 1", "C9", "09:00-09:30"))
	require.NoError(t, f.SetCellValue("Semaine 1", "D9", "Tel"))
	workbook, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", "roster.xlsx")
	require.NoError(t, err)
	_, err = part.Write(workbook.Bytes())
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestImportWorkbook(t *testing.T) {
	// GIVEN: a valid workbook targeting cycle 9/2026 starting 2026-09-07
	// WHEN: POSTing the multipart upload
	// THEN: 200 with an import summary, rows visible through the read path
	mem, srv := newTestServer(t)

	body, contentType := rosterUpload(t, map[string]string{
		"cycle_number": "9",
		"year":         "2026",
		"monday":       "2026-09-07",
		"team_id":      "team-1",
	})
	resp, err := http.Post(srv.URL+"/api/admin/import", contentType, body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary struct {
		EmployeesCreated    int    `json:"employees_created"`
		AssignmentsImported int    `json:"assignments_imported"`
		CycleID             string `json:"cycle_id"`
		WeekISONumbers      []int  `json:"week_iso_numbers"`
	}
	decodeBody(t, resp, &summary)
	assert.Equal(t, 1, summary.EmployeesCreated)
	assert.Equal(t, 1, summary.AssignmentsImported)
	assert.Equal(t, []int{37, 38, 39, 40}, summary.WeekISONumbers)

	weeks, err := mem.WeeksByCycle(context.Background(), planning.CycleID(summary.CycleID))
	require.NoError(t, err)
	require.Len(t, weeks, 4)
}

func TestImportWorkbook_ISOWeekResolution(t *testing.T) {
	// The Monday can be given as year + iso_week instead of a date.
	_, srv := newTestServer(t)

	body, contentType := rosterUpload(t, map[string]string{
		"cycle_number": "9",
		"year":         "2026",
		"iso_week":     "37",
	})
	resp, err := http.Post(srv.URL+"/api/admin/import", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestImportWorkbook_MissingPeriod(t *testing.T) {
	_, srv := newTestServer(t)

	body, contentType := rosterUpload(t, map[string]string{
		"cycle_number": "9",
		"year":         "2026",
	})
	resp, err := http.Post(srv.URL+"/api/admin/import", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestImportWorkbook_UnusableWorkbookIs422(t *testing.T) {
	// A structurally valid xlsx with no recognizable roster layout.
	_, srv := newTestServer(t)

	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "not a roster"))
	workbook, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", "junk.xlsx")
	require.NoError(t, err)
	_, err = part.Write(workbook.Bytes())
	require.NoError(t, err)
	for k, v := range map[string]string{"cycle_number": "9", "year": "2026", "monday": "2026-09-07"} {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/api/admin/import", mw.FormDataContentType(), body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestBootstrapAndActivateCycle(t *testing.T) {
	// GIVEN: no cycles
	// WHEN: bootstrapping cycle 9/2026, then activating it
	// THEN: 201 with 4 derived weeks, then exactly one active cycle
	_, srv := newTestServer(t)

	payload := `{"year": 2026, "cycle_number": 9, "monday": "2026-09-07"}`
	resp, err := http.Post(srv.URL+"/api/admin/cycles", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Cycle CycleDTO  `json:"cycle"`
		Weeks []WeekDTO `json:"weeks"`
	}
	decodeBody(t, resp, &created)
	require.Len(t, created.Weeks, 4)
	assert.Equal(t, "2026-09-07", created.Weeks[0].StartDate)
	assert.Equal(t, "2026-10-04", created.Weeks[3].EndDate)
	assert.False(t, created.Cycle.Active)

	resp, err = http.Post(srv.URL+"/api/admin/cycles/"+created.Cycle.ID+"/activate", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/cycles")
	require.NoError(t, err)
	var cycles []CycleDTO
	decodeBody(t, resp, &cycles)
	require.Len(t, cycles, 1)
	assert.True(t, cycles[0].Active)
}

func TestBootstrapCycle_RejectsNonMonday(t *testing.T) {
	_, srv := newTestServer(t)

	payload := `{"year": 2026, "cycle_number": 9, "monday": "2026-09-08"}`
	resp, err := http.Post(srv.URL+"/api/admin/cycles", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestActivateCycle_UnknownIs404(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/admin/cycles/no-such-id/activate", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// seedWeek persists one cycle with weeks and returns the first week.
func seedWeek(t *testing.T, mem *store.Memory) planning.Week {
	t.Helper()
	ctx := context.Background()

	monday := time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC)
	cycle, err := mem.UpsertCycle(ctx, planning.Cycle{
		Year: 2026, Number: 9,
		StartDate: monday, EndDate: planning.CycleEnd(monday),
	})
	require.NoError(t, err)
	require.NoError(t, mem.UpsertWeeks(ctx, planning.CycleWeeks(cycle.ID, monday)))

	weeks, err := mem.WeeksByCycle(ctx, cycle.ID)
	require.NoError(t, err)
	return weeks[0]
}

func TestNeedsBulkAndCoverage(t *testing.T) {
	// GIVEN: a week with a CALL need of 2 and one CALL assignment
	// WHEN: reading its coverage
	// THEN: one row with required=2 assigned=1 gap=-1
	mem, srv := newTestServer(t)
	week := seedWeek(t, mem)

	needs := `{"needs": [
		{"week_id": "` + string(week.ID) + `", "day_of_week": 1, "start_time": "09:00", "end_time": "09:30", "category": "CALL", "required_count": 2}
	]}`
	resp, err := http.Post(srv.URL+"/api/admin/needs/bulk", "application/json", strings.NewReader(needs))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var upserted map[string]int
	decodeBody(t, resp, &upserted)
	assert.Equal(t, 1, upserted["upserted"])

	require.NoError(t, mem.UpsertEmployees(context.Background(), []planning.Employee{
		{FullName: "Alice", Type: planning.EmployeeAdvisor, Active: true},
	}))
	employees, err := mem.EmployeesByName(context.Background(), []string{"Alice"})
	require.NoError(t, err)
	require.NoError(t, mem.UpsertAssignments(context.Background(), []planning.Assignment{
		{WeekID: week.ID, EmployeeID: employees[0].ID, Day: 1, Start: "09:00", End: "09:30", Category: planning.CategoryCall},
	}))

	resp, err = http.Get(srv.URL + "/api/weeks/" + string(week.ID) + "/coverage")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rows []CoverageRowDTO
	decodeBody(t, resp, &rows)
	require.Len(t, rows, 1)
	require.Len(t, rows[0].ByCategory, 1)
	cell := rows[0].ByCategory[0]
	assert.Equal(t, "CALL", cell.Category)
	assert.Equal(t, 2, cell.Required)
	assert.Equal(t, 1, cell.Assigned)
	assert.Equal(t, -1, cell.Gap)
}

func TestNeedsBulk_RejectsUnknownCategory(t *testing.T) {
	mem, srv := newTestServer(t)
	week := seedWeek(t, mem)

	needs := `{"needs": [
		{"week_id": "` + string(week.ID) + `", "day_of_week": 1, "start_time": "09:00", "end_time": "09:30", "category": "BRICOLAGE", "required_count": 1}
	]}`
	resp, err := http.Post(srv.URL+"/api/admin/needs/bulk", "application/json", strings.NewReader(needs))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetWeek(t *testing.T) {
	mem, srv := newTestServer(t)
	week := seedWeek(t, mem)

	require.NoError(t, mem.UpsertNeedSlots(context.Background(), []planning.NeedSlot{
		{WeekID: week.ID, Day: 1, Start: "09:00", End: "09:30", Category: planning.CategoryCall, Required: 1},
	}))

	resp, err := http.Get(srv.URL + "/api/weeks/" + string(week.ID))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var detail WeekDetailDTO
	decodeBody(t, resp, &detail)
	assert.Equal(t, string(week.ID), detail.Week.ID)
	require.Len(t, detail.Needs, 1)
	assert.Equal(t, "CALL", detail.Needs[0].Category)
	assert.Empty(t, detail.Assignments)

	resp, err = http.Get(srv.URL + "/api/weeks/no-such-id")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListEmployees_InactiveFilter(t *testing.T) {
	mem, srv := newTestServer(t)

	require.NoError(t, mem.UpsertEmployees(context.Background(), []planning.Employee{
		{FullName: "Alice", Type: planning.EmployeeAdvisor, Active: true},
		{FullName: "Bob", Type: planning.EmployeeAdvisor, Active: false},
	}))

	resp, err := http.Get(srv.URL + "/api/employees")
	require.NoError(t, err)
	var active []EmployeeDTO
	decodeBody(t, resp, &active)
	assert.Len(t, active, 1)

	resp, err = http.Get(srv.URL + "/api/employees?include_inactive=true")
	require.NoError(t, err)
	var all []EmployeeDTO
	decodeBody(t, resp, &all)
	assert.Len(t, all, 2)
}
