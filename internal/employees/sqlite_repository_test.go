package employees_test

import (
	"context"
	"errors"
	"testing"

	"github.com/raysh454/employeesapp/internal/employees"
	"github.com/raysh454/employeesapp/internal/testutil"
)

func newRepo(t *testing.T, seed bool) *employees.SQLiteRepository {
	t.Helper()
	repo, err := employees.NewSQLiteRepository(context.Background(),
		employees.StoreConfig{DSN: employees.DefaultDSN, Seed: seed}, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteRepository_SeedsEmptyStore(t *testing.T) {
	t.Parallel()
	repo := newRepo(t, true)

	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 seeded employees, got %d", len(list))
	}
	if list[0].Name != "Mark Miller" || list[1].Name != "Evelin Cooper" {
		t.Errorf("unexpected seed order: %+v", list)
	}
	for _, e := range list {
		if e.ID == "" {
			t.Errorf("seeded employee %q has no id", e.Name)
		}
	}
}

func TestSQLiteRepository_NoSeed(t *testing.T) {
	t.Parallel()
	repo := newRepo(t, false)

	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty store, got %d", len(list))
	}
}

func TestSQLiteRepository_CreateAndGet(t *testing.T) {
	t.Parallel()
	repo := newRepo(t, false)
	ctx := context.Background()

	created, err := repo.Create(ctx, employees.Employee{Name: "New Employee", Age: 25, AccountNumber: "214-5874986532-21"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected an id to be assigned")
	}

	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != created {
		t.Errorf("Get = %+v, want %+v", got, created)
	}
}

func TestSQLiteRepository_ListKeepsInsertionOrder(t *testing.T) {
	t.Parallel()
	repo := newRepo(t, true)
	ctx := context.Background()

	if _, err := repo.Create(ctx, employees.Employee{Name: "Zed", Age: 40, AccountNumber: "111-2222222222-33"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 || list[2].Name != "Zed" {
		t.Errorf("expected new employee last, got %+v", list)
	}
}

func TestSQLiteRepository_DuplicateID(t *testing.T) {
	t.Parallel()
	repo := newRepo(t, false)
	ctx := context.Background()
	e := employees.Employee{ID: "fixed", Name: "A", Age: 30, AccountNumber: "111-2222222222-33"}

	if _, err := repo.Create(ctx, e); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, e); err == nil {
		t.Fatal("expected primary key violation")
	}
}

func TestSQLiteRepository_GetUnknown(t *testing.T) {
	t.Parallel()
	repo := newRepo(t, false)

	if _, err := repo.Get(context.Background(), "nope"); !errors.Is(err, employees.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteRepository_SeparateInstancesAreIsolated(t *testing.T) {
	t.Parallel()
	a := newRepo(t, false)
	b := newRepo(t, false)
	ctx := context.Background()

	if _, err := a.Create(ctx, employees.Employee{Name: "Only A", Age: 30, AccountNumber: "111-2222222222-33"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	list, err := b.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("in-memory stores leaked between instances: %+v", list)
	}
}

func TestNewSQLiteRepository_NilLogger(t *testing.T) {
	t.Parallel()
	if _, err := employees.NewSQLiteRepository(context.Background(), employees.DefaultStoreConfig(), nil); err == nil {
		t.Fatal("expected error for nil logger")
	}
}
