// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/raysh454/employeesapp/internal/employees"
	"github.com/raysh454/employeesapp/internal/logging"
	"github.com/raysh454/employeesapp/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// WarnCount returns the number of warnings recorded so far.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient implements webclient.WebClient.
// Responses are keyed by "METHOD URL". Unscripted requests get body
// "ok:<url>" with status 200. Set FailURLs[url] = true to force an error.
type DummyWebClient struct {
	ResponseDelay time.Duration
	FailURLs      map[string]bool
	Responses     map[string]*webclient.Response
	mu            sync.Mutex
	Requests      []*webclient.Request
}

// Script registers resp for method and url.
func (d *DummyWebClient) Script(method, url string, resp *webclient.Response) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Responses == nil {
		d.Responses = map[string]*webclient.Response{}
	}
	d.Responses[strings.ToUpper(method)+" "+url] = resp
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	scripted := d.Responses[strings.ToUpper(req.Method)+" "+req.URL]
	d.mu.Unlock()

	if d.FailURLs != nil && d.FailURLs[req.URL] {
		return nil, &errString{"dummy fetch fail for " + req.URL}
	}

	if scripted != nil {
		out := *scripted
		out.Request = req
		if out.FetchedAt.IsZero() {
			out.FetchedAt = time.Now()
		}
		return &out, nil
	}

	return &webclient.Response{
		Request:    req,
		Headers:    http.Header{},
		Body:       []byte("ok:" + req.URL),
		StatusCode: 200,
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) Get(ctx context.Context, url string) (*webclient.Response, error) {
	return d.Do(ctx, &webclient.Request{Method: "GET", URL: url})
}

func (d *DummyWebClient) Close() error { return nil }

// LastRequest returns the most recent request, or nil.
func (d *DummyWebClient) LastRequest() *webclient.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.Requests) == 0 {
		return nil
	}
	return d.Requests[len(d.Requests)-1]
}

// ─── Repository ────────────────────────────────────────────────────────

// DummyRepository implements employees.Repository in memory.
type DummyRepository struct {
	mu        sync.Mutex
	Employees map[string]employees.Employee
	CreateErr error
	ListErr   error
}

func (r *DummyRepository) List(_ context.Context) ([]employees.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ListErr != nil {
		return nil, r.ListErr
	}
	out := make([]employees.Employee, 0, len(r.Employees))
	for _, e := range r.Employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *DummyRepository) Get(_ context.Context, id string) (employees.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.Employees[id]
	if !ok {
		return employees.Employee{}, employees.ErrNotFound
	}
	return e, nil
}

func (r *DummyRepository) Create(_ context.Context, e employees.Employee) (employees.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateErr != nil {
		return employees.Employee{}, r.CreateErr
	}
	if r.Employees == nil {
		r.Employees = map[string]employees.Employee{}
	}
	if e.ID == "" {
		e.ID = "dummy-" + e.Name
	}
	r.Employees[e.ID] = e
	return e, nil
}

func (r *DummyRepository) Close() error { return nil }

// ─── helpers ───────────────────────────────────────────────────────────

type errString struct{ s string }

func (e *errString) Error() string { return e.s }
