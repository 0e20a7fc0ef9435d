package store

import (
	"errors"
	"testing"

	"github.com/kittclouds/postag/pkg/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testModel() *model.Model {
	return model.FromCounts(model.TagCount{
		"lend": {"VB": 18, "VBP": 5},
		"that": {"IN": 50, "DT": 30, "WDT": 20},
		"dog":  {"NN": 10},
	})
}

func TestSaveAndLoadModel(t *testing.T) {
	s := newTestStore(t)
	m := testModel()

	info, err := s.SaveModel("wsj", m)
	if err != nil {
		t.Fatalf("SaveModel failed: %v", err)
	}
	if info.ID == "" || info.Words != 3 || info.Entries != 6 {
		t.Fatalf("unexpected info: %+v", info)
	}

	loaded, err := s.LoadModel(info.ID)
	if err != nil {
		t.Fatalf("LoadModel failed: %v", err)
	}
	got, want := loaded.Entries(), m.Entries()
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
	if tag, _ := loaded.TopTag("lend"); tag != "VB" {
		t.Errorf("expected VB for lend, got %s", tag)
	}
}

func TestLoadMissingModel(t *testing.T) {
	s := newTestStore(t)

	_, err := s.LoadModel("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	info, err := s.GetModel("nope")
	if err != nil || info != nil {
		t.Fatalf("expected nil info and nil error, got %+v, %v", info, err)
	}
}

func TestSaveModelRequiresName(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.SaveModel("", testModel()); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestLatestModelAndList(t *testing.T) {
	s := newTestStore(t)

	first, err := s.SaveModel("wsj", testModel())
	if err != nil {
		t.Fatalf("SaveModel failed: %v", err)
	}
	second, err := s.SaveModel("wsj", model.FromCounts(model.TagCount{"dog": {"NN": 1}}))
	if err != nil {
		t.Fatalf("SaveModel failed: %v", err)
	}
	if _, err := s.SaveModel("brown", testModel()); err != nil {
		t.Fatalf("SaveModel failed: %v", err)
	}

	latest, err := s.LatestModel("wsj")
	if err != nil {
		t.Fatalf("LatestModel failed: %v", err)
	}
	if latest == nil || latest.ID != second.ID {
		t.Fatalf("expected latest %s, got %+v", second.ID, latest)
	}

	missing, err := s.LatestModel("none")
	if err != nil || missing != nil {
		t.Fatalf("expected no model, got %+v, %v", missing, err)
	}

	models, err := s.ListModels()
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if len(models) != 3 {
		t.Fatalf("expected 3 models, got %d", len(models))
	}
	if models[len(models)-1].ID != first.ID {
		t.Errorf("expected oldest model last")
	}
}

func TestRunsAndDelete(t *testing.T) {
	s := newTestStore(t)

	info, err := s.SaveModel("wsj", testModel())
	if err != nil {
		t.Fatalf("SaveModel failed: %v", err)
	}

	acc := 0.93
	scored := &Run{ModelID: info.ID, Mode: "enhanced", Source: "test.txt", Tokens: 100, Unknown: 4, Accuracy: &acc}
	if err := s.RecordRun(scored); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	if scored.ID == "" || scored.CreatedAt == 0 {
		t.Fatalf("expected ID and CreatedAt to be filled, got %+v", scored)
	}
	if err := s.RecordRun(&Run{ModelID: info.ID, Mode: "baseline", Tokens: 10}); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	runs, err := s.ListRuns(info.ID)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Accuracy == nil || *runs[0].Accuracy != acc {
		t.Errorf("expected accuracy %v, got %v", acc, runs[0].Accuracy)
	}
	if runs[1].Accuracy != nil {
		t.Errorf("expected unscored run, got %v", *runs[1].Accuracy)
	}

	if err := s.DeleteModel(info.ID); err != nil {
		t.Fatalf("DeleteModel failed: %v", err)
	}
	count, _ := s.CountModels()
	if count != 0 {
		t.Errorf("expected 0 models, got %d", count)
	}
	runs, _ = s.ListRuns(info.ID)
	if len(runs) != 0 {
		t.Errorf("expected runs to be deleted, got %d", len(runs))
	}
}

func TestExportImport(t *testing.T) {
	s := newTestStore(t)

	info, err := s.SaveModel("wsj", testModel())
	if err != nil {
		t.Fatalf("SaveModel failed: %v", err)
	}
	if err := s.RecordRun(&Run{ModelID: info.ID, Mode: "enhanced", Tokens: 5}); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	data, err := s.Export(info.ID)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Exported data is empty")
	}

	// Fresh store to simulate a reload
	s2 := newTestStore(t)
	imported, err := s2.Import(data)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if imported.ID != info.ID {
		t.Errorf("expected ID %s, got %s", info.ID, imported.ID)
	}

	m, err := s2.LoadModel(info.ID)
	if err != nil {
		t.Fatalf("LoadModel failed: %v", err)
	}
	if tag, _ := m.TopTag("that"); tag != "IN" {
		t.Errorf("expected IN for that, got %s", tag)
	}
	runs, _ := s2.ListRuns(info.ID)
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}

	// Importing twice replaces rather than duplicates
	if _, err := s2.Import(data); err != nil {
		t.Fatalf("second Import failed: %v", err)
	}
	runs, _ = s2.ListRuns(info.ID)
	if len(runs) != 1 {
		t.Errorf("expected 1 run after re-import, got %d", len(runs))
	}

	if _, err := s.Export("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestImportRejectsBadData(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name string
		data string
	}{
		{"null run", `{"model":{"id":"m1","name":"wsj"},"entries":[{"word":"dog","tag":"NN","prob":1}],"runs":[null]}`},
		{"probability above one", `{"model":{"id":"m1","name":"wsj"},"entries":[{"word":"dog","tag":"NN","prob":1.5}]}`},
		{"zero probability", `{"model":{"id":"m1","name":"wsj"},"entries":[{"word":"dog","tag":"NN","prob":0}]}`},
		{"empty tag", `{"model":{"id":"m1","name":"wsj"},"entries":[{"word":"dog","tag":"","prob":1}]}`},
		{"missing id", `{"model":{"name":"wsj"}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Import([]byte(tc.data)); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}

	count, err := s.CountModels()
	if err != nil {
		t.Fatalf("CountModels failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected nothing imported, got %d models", count)
	}
}
