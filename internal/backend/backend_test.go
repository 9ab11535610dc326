package backend

import (
	"context"
	"path/filepath"
	"testing"

	"feesbook/internal/config"
	"feesbook/internal/core"
)

func TestTypeIsValid(t *testing.T) {
	for _, typ := range Types() {
		if !typ.IsValid() {
			t.Errorf("%s should be valid", typ)
		}
	}
	if Type("sheets").IsValid() {
		t.Error("sheets is not a persistence backend")
	}
	if Type("").IsValid() {
		t.Error("empty type should be invalid")
	}
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	cfg := &config.Config{DataBackend: "postgres"}

	if _, err := Open(cfg, nil); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestOpenMemory(t *testing.T) {
	cfg := &config.Config{DataBackend: "memory"}

	res, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer res.Close()

	students, err := res.Students.ListStudents(context.Background())
	if err != nil {
		t.Fatalf("ListStudents: %v", err)
	}
	if len(students) != 0 {
		t.Errorf("memory backend should start empty, got %d students", len(students))
	}
}

func TestOpenSQLite(t *testing.T) {
	cfg := &config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: filepath.Join(t.TempDir(), "feesbook.db"),
	}

	res, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer res.Close()

	st, err := res.Students.InsertStudent(context.Background(), core.Student{
		RollNo:     "R-001",
		Name:       "Aarav Sharma",
		FatherName: "Vikram Sharma",
		ContactNo:  "9876543210",
		Class:      "8th",
		MonthlyFee: core.Rupees(1500),
	})
	if err != nil {
		t.Fatalf("InsertStudent: %v", err)
	}
	if st.ID == "" {
		t.Error("sqlite backend should assign an id")
	}
}
