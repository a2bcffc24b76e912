package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/claude/fitlog/internal/ingest"
	"github.com/claude/fitlog/internal/ingest/alpha"
	"github.com/claude/fitlog/internal/library"
	"github.com/claude/fitlog/internal/storage"
	"github.com/xuri/excelize/v2"
)

// TestHandleMeDefault verifies the /api/v1/me endpoint returns the dev user
// identity when no Tailscale middleware is active.
func TestHandleMeDefault(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	ctx := context.WithValue(req.Context(), userInfoKey, UserInfo{Login: "local", DisplayName: "Local Dev User"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "local" {
		t.Errorf("login = %q, want %q", info.Login, "local")
	}
	if info.DisplayName != "Local Dev User" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Local Dev User")
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := storage.OpenSQLite(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	lib := library.New(db, log)
	return New(lib, alpha.NewProvider(lib, log), nil, "secret", log)
}

// do sends a request with the API key and decodes a JSON response into out.
func do(t *testing.T, s *Server, method, path, body string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 {
		if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return rec
}

func createRoutine(t *testing.T, s *Server) string {
	t.Helper()
	var v library.RoutineView
	if rec := do(t, s, http.MethodPost, "/api/v1/routines", `{"name":"Split"}`, &v); rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	base := "/api/v1/routines/" + v.ID.String()
	for _, name := range []string{"Push", "Pull"} {
		if rec := do(t, s, http.MethodPost, base+"/workouts", `{"name":"`+name+`"}`, nil); rec.Code != http.StatusCreated {
			t.Fatalf("add workout status = %d: %s", rec.Code, rec.Body)
		}
	}
	body := `{"name":"Bench Press","target_reps":10,"weight":65,"mode":"dumbbell","reps":[10,10,8]}`
	if rec := do(t, s, http.MethodPost, base+"/workouts/0/exercises", body, nil); rec.Code != http.StatusCreated {
		t.Fatalf("add exercise status = %d: %s", rec.Code, rec.Body)
	}
	return base
}

// TestRoutineLifecycle drives the main editing routes and checks the rendered result.
func TestRoutineLifecycle(t *testing.T) {
	s := newTestServer(t)
	base := createRoutine(t, s)

	steps := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPost, base + "/workouts/1/exercises", `{"name":"Row","sets":2,"target_reps":12,"weight":50,"mode":"CABLE"}`, http.StatusCreated},
		{http.MethodPut, base + "/workouts/1/exercises/0/sets/1", `{"reps":11}`, http.StatusOK},
		{http.MethodPatch, base + "/workouts/0/exercises/0", `{"weight":67.5}`, http.StatusOK},
		{http.MethodPatch, base + "/workouts/1", `{"name":"Pull A"}`, http.StatusOK},
		{http.MethodPost, base + "/workouts/reorder", `{"from":1,"to":0}`, http.StatusOK},
		{http.MethodPatch, base, `{"name":"Upper"}`, http.StatusOK},
	}
	for _, st := range steps {
		if rec := do(t, s, st.method, st.path, st.body, nil); rec.Code != st.want {
			t.Fatalf("%s %s: status = %d, want %d: %s", st.method, st.path, rec.Code, st.want, rec.Body)
		}
	}

	rec := do(t, s, http.MethodGet, base+"/render", "", nil)
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %q", ct)
	}
	want := "Routine \"Upper\":\n" +
		"1. Pull A:\n1. Row 2x12@50.00 (Reps per set: [Set 1: 0, Set 2: 11])\n\n" +
		"2. Push:\n1. Bench Press 3x10@67.50 (Reps per set: [Set 1: 10, Set 2: 10, Set 3: 8])\n\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("render =\n%s\nwant\n%s", got, want)
	}
}

// TestRemoveAndRestoreRoutes verifies soft delete and restore for workouts and exercises.
func TestRemoveAndRestoreRoutes(t *testing.T) {
	s := newTestServer(t)
	base := createRoutine(t, s)
	do(t, s, http.MethodPost, base+"/workouts/0/exercises", `{"name":"Dip","sets":3,"target_reps":8,"weight":0,"mode":"BODYWEIGHT"}`, nil)

	var v library.RoutineView
	do(t, s, http.MethodDelete, base+"/workouts/0/exercises/0", "", &v)
	if len(v.Workouts[0].Exercises) != 1 || len(v.Workouts[0].DeletedExercises) != 1 {
		t.Fatalf("after exercise delete = %+v", v.Workouts[0])
	}
	do(t, s, http.MethodPost, base+"/workouts/0/deleted-exercises/0/restore", "", &v)
	if names := exerciseNames(v.Workouts[0]); !equalStrings(names, []string{"Dip", "Bench Press"}) {
		t.Errorf("after restore = %v", names)
	}

	do(t, s, http.MethodDelete, base+"/workouts/1", "", &v)
	if len(v.Workouts) != 1 || len(v.DeletedWorkouts) != 1 {
		t.Fatalf("after workout delete = %+v", v)
	}
	do(t, s, http.MethodPost, base+"/deleted-workouts/0/restore", "", &v)
	if len(v.Workouts) != 2 || v.Workouts[1].Name != "Pull" {
		t.Errorf("after workout restore = %+v", v.Workouts)
	}

	do(t, s, http.MethodPost, base+"/clear", "", &v)
	if len(v.Workouts) != 0 || len(v.DeletedWorkouts) != 0 {
		t.Errorf("after clear = %+v", v)
	}
}

// TestErrorStatuses verifies domain errors map to 400, 404 and 409.
func TestErrorStatuses(t *testing.T) {
	s := newTestServer(t)
	base := createRoutine(t, s)
	missing := "/api/v1/routines/00000000-0000-0000-0000-000000000001"

	tests := []struct {
		name, method, path, body string
		want                     int
	}{
		{"bad id", http.MethodGet, "/api/v1/routines/nope", "", http.StatusBadRequest},
		{"bad index", http.MethodDelete, base + "/workouts/x", "", http.StatusBadRequest},
		{"bad json", http.MethodPost, base + "/workouts", `{`, http.StatusBadRequest},
		{"empty name", http.MethodPost, "/api/v1/routines", `{"name":""}`, http.StatusBadRequest},
		{"unknown mode", http.MethodPost, base + "/workouts/0/exercises", `{"name":"X","sets":1,"target_reps":1,"mode":"KETTLEBELL"}`, http.StatusBadRequest},
		{"index out of range", http.MethodDelete, base + "/workouts/0/exercises/7", "", http.StatusBadRequest},
		{"missing reps", http.MethodPut, base + "/workouts/0/exercises/0/sets/0", `{}`, http.StatusBadRequest},
		{"missing reorder", http.MethodPost, base + "/workouts/reorder", `{"from":0}`, http.StatusBadRequest},
		{"not found", http.MethodGet, missing, "", http.StatusNotFound},
		{"delete not found", http.MethodDelete, missing, "", http.StatusNotFound},
		{"last exercise", http.MethodDelete, base + "/workouts/0/exercises/0", "", http.StatusConflict},
		{"same reps", http.MethodPut, base + "/workouts/0/exercises/0/sets/0", `{"reps":10}`, http.StatusBadRequest},
		{"no-op patch", http.MethodPatch, base + "/workouts/0/exercises/0", `{}`, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, tt.body, nil)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body["error"] == "" {
				t.Errorf("error body = %v (%v)", body, err)
			}
		})
	}
}

// TestListAndDeleteRoutes verifies the routine list and deletion.
func TestListAndDeleteRoutes(t *testing.T) {
	s := newTestServer(t)

	var list []storage.RoutineSummary
	if rec := do(t, s, http.MethodGet, "/api/v1/routines", "", nil); strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("empty list = %s", rec.Body)
	}

	base := createRoutine(t, s)
	do(t, s, http.MethodGet, "/api/v1/routines", "", &list)
	if len(list) != 1 || list[0].Name != "Split" || list[0].Workouts != 2 {
		t.Fatalf("list = %+v", list)
	}

	if rec := do(t, s, http.MethodDelete, base, "", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, base, "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", rec.Code)
	}
}

// TestRoutesRequireAPIKey verifies the API rejects requests without a key.
func TestRoutesRequireAPIKey(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/routines", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

const alphaCSV = `
"Push · Day 1 · Week 4";"2026-02-17 5:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps";"WU1 · 22,5 kg · 10 reps"
#;KG;REPS;RIR
1;102,5;6;0
2;100;6;0
`

// TestAlphaImportRoute verifies a CSV import adds the session once.
func TestAlphaImportRoute(t *testing.T) {
	s := newTestServer(t)
	base := createRoutine(t, s)

	var res ingest.Result
	if rec := do(t, s, http.MethodPost, base+"/import/alpha", alphaCSV, &res); rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if res.SessionsReceived != 1 || res.WorkoutsAdded != 1 || res.ExercisesAdded != 1 {
		t.Errorf("first import = %+v", res)
	}

	res = ingest.Result{}
	do(t, s, http.MethodPost, base+"/import/alpha", alphaCSV, &res)
	if res.WorkoutsAdded != 0 || res.WorkoutsSkipped != 1 {
		t.Errorf("second import = %+v", res)
	}

	var v library.RoutineView
	do(t, s, http.MethodGet, base, "", &v)
	if len(v.Workouts) != 3 || v.Workouts[2].Exercises[0].Text != "Bench Press 2x6@102.50 (Reps per set: [Set 1: 6, Set 2: 6])" {
		t.Errorf("imported workouts = %+v", v.Workouts)
	}
}

// TestExportXLSXRoute verifies the export returns a readable workbook.
func TestExportXLSXRoute(t *testing.T) {
	s := newTestServer(t)
	base := createRoutine(t, s)

	rec := do(t, s, http.MethodGet, base+"/export.xlsx", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="Split.xlsx"` {
		t.Errorf("content disposition = %q", cd)
	}
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows("Split")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1][2] != "Bench Press" {
		t.Errorf("rows = %v", rows)
	}
}

func exerciseNames(w library.WorkoutView) []string {
	var names []string
	for _, e := range w.Exercises {
		names = append(names, e.Name)
	}
	return names
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
