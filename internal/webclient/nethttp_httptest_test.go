package webclient_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/raysh454/employeesapp/internal/testutil"
	"github.com/raysh454/employeesapp/internal/webclient"
)

func newClient(t *testing.T, cfg webclient.Config, hc *http.Client) *webclient.NetHTTPClient {
	t.Helper()
	client, err := webclient.NewNetHTTPClient(cfg, &testutil.DummyLogger{}, hc)
	if err != nil {
		t.Fatalf("NewNetHTTPClient: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// ─── Do: real HTTP round-trip via httptest ──────────────────────────────

func TestNetHTTPClient_Do_GET_ReturnsBody(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Custom", "hello")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "response body")
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{}, ts.Client())

	resp, err := client.Do(context.Background(), &webclient.Request{
		Method: "GET",
		URL:    ts.URL + "/test",
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Text() != "response body" {
		t.Errorf("expected 'response body', got %q", resp.Body)
	}
	if resp.Headers.Get("X-Custom") != "hello" {
		t.Errorf("expected X-Custom header 'hello', got %q", resp.Headers.Get("X-Custom"))
	}
	if !resp.IsSuccess() {
		t.Error("expected IsSuccess for 200")
	}
}

func TestNetHTTPClient_Do_FormRequest_SendsEncodedBody(t *testing.T) {
	t.Parallel()
	var gotName, gotAge, gotContentType string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		gotName = r.PostForm.Get("Name")
		gotAge = r.PostForm.Get("Age")
		w.WriteHeader(http.StatusCreated)
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{}, ts.Client())

	form := url.Values{"Name": {"New Employee"}, "Age": {"25"}}
	resp, err := client.Do(context.Background(), webclient.NewFormRequest(ts.URL, form))
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("expected 201, got %d", resp.StatusCode)
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Errorf("unexpected content type %q", gotContentType)
	}
	if gotName != "New Employee" || gotAge != "25" {
		t.Errorf("form not received: Name=%q Age=%q", gotName, gotAge)
	}
}

func TestNetHTTPClient_Do_ForwardsHeaders(t *testing.T) {
	t.Parallel()
	var receivedCookie string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedCookie = r.Header.Get("Cookie")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{}, ts.Client())

	hdrs := http.Header{}
	hdrs.Set("Cookie", "AntiForgeryTokenCookie=abc")

	_, err := client.Do(context.Background(), &webclient.Request{
		Method:  "GET",
		URL:     ts.URL,
		Headers: hdrs,
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	if receivedCookie != "AntiForgeryTokenCookie=abc" {
		t.Errorf("expected Cookie header forwarded, got %q", receivedCookie)
	}
}

func TestNetHTTPClient_Do_PropagatesStatusCode(t *testing.T) {
	t.Parallel()
	codes := []int{200, 302, 400, 500}

	for _, code := range codes {
		t.Run(http.StatusText(code), func(t *testing.T) {
			t.Parallel()
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if code == http.StatusFound {
					w.Header().Set("Location", "/elsewhere")
				}
				w.WriteHeader(code)
			}))
			defer ts.Close()

			client := newClient(t, webclient.Config{DisableRedirects: true}, ts.Client())

			resp, err := client.Do(context.Background(), &webclient.Request{
				Method: "GET",
				URL:    ts.URL,
			})
			if err != nil {
				t.Fatalf("Do: %v", err)
			}
			if resp.StatusCode != code {
				t.Errorf("expected %d, got %d", code, resp.StatusCode)
			}
		})
	}
}

func TestNetHTTPClient_Do_FollowsRedirectAndRecordsFinalURL(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/end", http.StatusFound)
	})
	mux.HandleFunc("/end", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "landed")
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := newClient(t, webclient.Config{}, ts.Client())

	resp, err := client.Get(context.Background(), ts.URL+"/start")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.Text() != "landed" {
		t.Errorf("expected redirect to be followed, got %q", resp.Body)
	}
	if resp.FinalURL != ts.URL+"/end" {
		t.Errorf("expected final URL %s/end, got %s", ts.URL, resp.FinalURL)
	}
}

func TestNetHTTPClient_CookieJar_ReplaysCookies(t *testing.T) {
	t.Parallel()
	var second string
	mux := http.NewServeMux()
	mux.HandleFunc("/set", func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "xyz", Path: "/"})
	})
	mux.HandleFunc("/check", func(_ http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err == nil {
			second = c.Value
		}
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := newClient(t, webclient.Config{CookieJar: true}, ts.Client())

	if _, err := client.Get(context.Background(), ts.URL+"/set"); err != nil {
		t.Fatalf("Get /set: %v", err)
	}
	if _, err := client.Get(context.Background(), ts.URL+"/check"); err != nil {
		t.Fatalf("Get /check: %v", err)
	}
	if second != "xyz" {
		t.Errorf("expected jar to replay session cookie, got %q", second)
	}
}

func TestNetHTTPClient_NoJar_DoesNotReplayCookies(t *testing.T) {
	t.Parallel()
	var second string
	mux := http.NewServeMux()
	mux.HandleFunc("/set", func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "xyz", Path: "/"})
	})
	mux.HandleFunc("/check", func(_ http.ResponseWriter, r *http.Request) {
		second = r.Header.Get("Cookie")
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := newClient(t, webclient.Config{}, ts.Client())

	resp, err := client.Get(context.Background(), ts.URL+"/set")
	if err != nil {
		t.Fatalf("Get /set: %v", err)
	}
	if got := resp.SetCookies(); len(got) != 1 {
		t.Fatalf("expected one Set-Cookie header, got %v", got)
	}
	if _, err := client.Get(context.Background(), ts.URL+"/check"); err != nil {
		t.Fatalf("Get /check: %v", err)
	}
	if second != "" {
		t.Errorf("expected no Cookie header without a jar, got %q", second)
	}
}

func TestNetHTTPClient_InjectedClientNotMutated(t *testing.T) {
	t.Parallel()
	hc := &http.Client{}
	_ = newClient(t, webclient.Config{CookieJar: true, DisableRedirects: true}, hc)

	if hc.Jar != nil {
		t.Error("injected client's Jar was modified")
	}
	if hc.CheckRedirect != nil {
		t.Error("injected client's CheckRedirect was modified")
	}
}

func TestNetHTTPClient_Do_NilRequest_ReturnsError(t *testing.T) {
	t.Parallel()
	client := newClient(t, webclient.Config{}, nil)

	_, err := client.Do(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error for nil request")
	}
}

func TestNetHTTPClient_Do_ConnectionRefused_ReturnsError(t *testing.T) {
	t.Parallel()
	client := newClient(t, webclient.Config{}, &http.Client{Timeout: 1 * time.Second})

	_, err := client.Do(context.Background(), &webclient.Request{
		Method: "GET",
		URL:    "http://127.0.0.1:1", // port 1 is unlikely to be open
	})
	if err == nil {
		t.Fatal("expected error for connection refused")
	}
}

func TestNetHTTPClient_Do_ContextCanceled_ReturnsError(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(200)
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{}, ts.Client())

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	_, err := client.Do(ctx, &webclient.Request{
		Method: "GET",
		URL:    ts.URL,
	})
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
}

// ─── Get convenience method ────────────────────────────────────────────

func TestNetHTTPClient_Get_ReturnsBody(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			t.Errorf("expected GET, got %s", r.Method)
		}
		_, _ = io.WriteString(w, "get-response")
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{}, ts.Client())

	resp, err := client.Get(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !resp.Contains("get-response") {
		t.Errorf("expected 'get-response', got %q", resp.Body)
	}
}
