package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func TestDriverInfo(t *testing.T) {
	info := GetInfo()
	if info.DriverName != DriverName() {
		t.Errorf("DriverName = %q, want %q", info.DriverName, DriverName())
	}
	if info.DriverType != DriverType() {
		t.Errorf("DriverType = %q, want %q", info.DriverType, DriverType())
	}
	if info.IsCGO != IsCGO() {
		t.Errorf("IsCGO = %v, want %v", info.IsCGO, IsCGO())
	}
	if info.Package == "" {
		t.Error("Package should not be empty")
	}
}

func TestDriverTypeConsistency(t *testing.T) {
	switch DriverType() {
	case "purego":
		if IsCGO() {
			t.Error("IsCGO() = true for purego driver")
		}
		if DriverName() != "sqlite" {
			t.Errorf("DriverName() = %q, want %q", DriverName(), "sqlite")
		}
	case "cgo":
		if !IsCGO() {
			t.Error("IsCGO() = false for cgo driver")
		}
		if DriverName() != "sqlite3" {
			t.Errorf("DriverName() = %q, want %q", DriverName(), "sqlite3")
		}
	default:
		t.Errorf("unknown driver type: %s", DriverType())
	}
}

func TestOpenAndReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := Ping(context.Background(), db); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE books (ord INTEGER PRIMARY KEY, short_name TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO books (ord, short_name) VALUES (?, ?)`, 41, "Мф"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	db.Close()

	ro, err := OpenReadOnly(path)
	if err != nil {
		t.Fatalf("OpenReadOnly() error = %v", err)
	}
	defer ro.Close()

	var name string
	if err := ro.QueryRow(`SELECT short_name FROM books WHERE ord = 41`).Scan(&name); err != nil {
		t.Fatalf("query: %v", err)
	}
	if name != "Мф" {
		t.Errorf("short_name = %q, want %q", name, "Мф")
	}
	if _, err := ro.Exec(`INSERT INTO books (ord, short_name) VALUES (42, 'Лк')`); err == nil {
		t.Error("insert on read-only database succeeded, want error")
	}
}

func TestMustOpen(t *testing.T) {
	db := MustOpen(filepath.Join(t.TempDir(), "must.db"))
	db.Close()
}
