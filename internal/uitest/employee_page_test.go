package uitest_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/raysh454/employeesapp/internal/antiforgery"
	"github.com/raysh454/employeesapp/internal/employees"
	"github.com/raysh454/employeesapp/internal/server"
	"github.com/raysh454/employeesapp/internal/testutil"
	"github.com/raysh454/employeesapp/internal/uitest"
	"github.com/raysh454/employeesapp/internal/webclient"
)

func newPage(t *testing.T) *uitest.EmployeePage {
	t.Helper()

	browser, err := webclient.NewChromedpClient(webclient.DefaultConfig(), &testutil.DummyLogger{})
	if err != nil {
		t.Skipf("Skipping UI test (environment does not support chromedp): %v", err)
	}
	t.Cleanup(func() { _ = browser.Close() })

	repo, err := employees.NewSQLiteRepository(context.Background(), employees.DefaultStoreConfig(), &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	s, err := server.NewServer(server.DefaultConfig(), repo, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)

	page, closeTab, err := uitest.NewEmployeePage(browser, srv.URL, 20*time.Second)
	if err != nil {
		t.Fatalf("NewEmployeePage: %v", err)
	}
	t.Cleanup(closeTab)
	return page
}

func TestEmployeePage_CreateForm(t *testing.T) {
	page := newPage(t)

	if err := page.Navigate("/Employees/Create"); err != nil {
		t.Fatal(err)
	}
	title, err := page.Title()
	if err != nil {
		t.Fatal(err)
	}
	if title != "Create - EmployeesApp" {
		t.Errorf("title = %q", title)
	}
	src, err := page.Source()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(src, "Please provide a new employee data") {
		t.Error("create form heading missing")
	}

	c, err := page.Cookie(antiforgery.DefaultCookieName)
	if err != nil {
		t.Fatalf("Cookie: %v", err)
	}
	if !c.HTTPOnly {
		t.Error("anti-forgery cookie should be HttpOnly")
	}
}

func TestEmployeePage_CreateValidEmployee(t *testing.T) {
	page := newPage(t)

	if err := page.Navigate("/Employees/Create"); err != nil {
		t.Fatal(err)
	}
	for _, step := range []func() error{
		func() error { return page.PopulateName("New Employee") },
		func() error { return page.PopulateAge("25") },
		func() error { return page.PopulateAccountNumber("214-5874986532-21") },
		page.ClickCreate,
	} {
		if err := step(); err != nil {
			t.Fatal(err)
		}
	}

	title, err := page.Title()
	if err != nil {
		t.Fatal(err)
	}
	if title != "Index - EmployeesApp" {
		t.Errorf("title after create = %q", title)
	}
	src, _ := page.Source()
	if !strings.Contains(src, "214-5874986532-21") {
		t.Error("new employee not listed")
	}
}

func TestEmployeePage_InvalidAccountNumber(t *testing.T) {
	page := newPage(t)

	if err := page.Navigate("/Employees/Create"); err != nil {
		t.Fatal(err)
	}
	if err := page.PopulateName("New Employee"); err != nil {
		t.Fatal(err)
	}
	if err := page.PopulateAge("34"); err != nil {
		t.Fatal(err)
	}
	if err := page.ClickCreate(); err != nil {
		t.Fatal(err)
	}

	msg, err := page.AccountNumberErrorMessage()
	if err != nil {
		t.Fatal(err)
	}
	if msg != "Account number is required" {
		t.Errorf("error message = %q", msg)
	}
}

func TestEmployeePage_MissingCookie(t *testing.T) {
	page := newPage(t)

	if err := page.Navigate("/Employees"); err != nil {
		t.Fatal(err)
	}
	if _, err := page.Cookie("NoSuchCookie"); !errors.Is(err, uitest.ErrCookieNotFound) {
		t.Errorf("expected ErrCookieNotFound, got %v", err)
	}
}
