package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/raysh454/employeesapp/internal/antiforgery"
	"github.com/raysh454/employeesapp/internal/employees"
	"github.com/raysh454/employeesapp/internal/logging"
	"github.com/raysh454/employeesapp/internal/webclient"
)

var errSmokeFailed = errors.New("smoke checks failed")

type checkResult struct {
	Name   string
	Err    error
	Took   time.Duration
	Detail string
}

// smokeRun drives the anti-forgery scenarios against a running app.
type smokeRun struct {
	client    webclient.WebClient
	extractor *antiforgery.Extractor
	handshake *antiforgery.Handshake
	baseURL   string
}

func newSmokeCmd(opts *rootOptions) *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Run the anti-forgery handshake scenarios against a running app",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load("smoke")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			// the scenarios POST and read 302s, which only nethttp can do
			wcCfg := cfg.WebClient
			wcCfg.Client = webclient.ClientNetHTTP
			wcCfg.DisableRedirects = true
			wcCfg.CookieJar = false

			client, err := webclient.New(wcCfg, logger)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			results, err := runSmoke(ctx, client, cfg.AntiForgery(), baseURL, logger)
			if err != nil {
				return err
			}
			return printResults(cmd.OutOrStdout(), baseURL, results)
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "http://localhost:8080", "Base URL of the running app")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "Overall deadline for all checks")
	return cmd
}

func runSmoke(ctx context.Context, client webclient.WebClient, af antiforgery.Config, baseURL string, logger logging.Logger) ([]checkResult, error) {
	ex, err := antiforgery.NewExtractor(af)
	if err != nil {
		return nil, err
	}
	s := &smokeRun{
		client:    client,
		extractor: ex,
		handshake: antiforgery.NewHandshake(client, ex, logger),
		baseURL:   strings.TrimRight(baseURL, "/"),
	}

	checks := []struct {
		name string
		fn   func(context.Context) (string, error)
	}{
		{"index lists employees", s.checkIndex},
		{"create form carries the anti-forgery pair", s.checkForm},
		{"create with the pair succeeds", s.checkCreate},
		{"invalid model without the pair shows validation", s.checkInvalidModel},
		{"valid model without the pair is rejected", s.checkMissingPair},
	}

	results := make([]checkResult, 0, len(checks))
	for _, c := range checks {
		start := time.Now()
		detail, err := c.fn(ctx)
		results = append(results, checkResult{Name: c.name, Err: err, Took: time.Since(start), Detail: detail})
	}
	return results, nil
}

func (s *smokeRun) url(path string) string { return s.baseURL + path }

func (s *smokeRun) checkIndex(ctx context.Context) (string, error) {
	resp, err := s.client.Get(ctx, s.url("/Employees"))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	if !resp.Contains(`id="employees"`) {
		return "", errors.New("employees table not found")
	}
	return "200", nil
}

func (s *smokeRun) checkForm(ctx context.Context) (string, error) {
	pair, _, err := s.handshake.Fetch(ctx, s.url("/Employees/Create"))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("cookie %d bytes, token %d bytes", len(pair.CookieValue), len(pair.FieldValue)), nil
}

func (s *smokeRun) checkCreate(ctx context.Context) (string, error) {
	form := url.Values{
		employees.FieldName:          {"New Employee"},
		employees.FieldAge:           {"25"},
		employees.FieldAccountNumber: {"214-5874986532-21"},
	}
	resp, err := s.handshake.Submit(ctx, s.url("/Employees/Create"), s.url("/Employees/Create"), form)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusFound {
		return "", fmt.Errorf("expected 302, got %d", resp.StatusCode)
	}

	index, err := s.client.Get(ctx, s.url("/Employees"))
	if err != nil {
		return "", err
	}
	if !index.Contains("214-5874986532-21") {
		return "", errors.New("created employee not listed")
	}
	return "302 -> " + resp.Headers.Get("Location"), nil
}

func (s *smokeRun) checkInvalidModel(ctx context.Context) (string, error) {
	form := url.Values{
		employees.FieldName: {"Test Employee"},
		employees.FieldAge:  {"34"},
	}
	resp, err := s.client.Do(ctx, webclient.NewFormRequest(s.url("/Employees/Create"), form))
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return "", fmt.Errorf("server error %d", resp.StatusCode)
	}
	if !resp.Contains("Account number is required") {
		return "", fmt.Errorf("validation message missing (status %d)", resp.StatusCode)
	}
	return fmt.Sprintf("%d", resp.StatusCode), nil
}

func (s *smokeRun) checkMissingPair(ctx context.Context) (string, error) {
	form := url.Values{
		employees.FieldName:          {"Forged Employee"},
		employees.FieldAge:           {"30"},
		employees.FieldAccountNumber: {"123-1234567890-12"},
	}
	resp, err := s.client.Do(ctx, webclient.NewFormRequest(s.url("/Employees/Create"), form))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusBadRequest {
		return "", fmt.Errorf("expected 400, got %d", resp.StatusCode)
	}
	return "400", nil
}

func printResults(w io.Writer, baseURL string, results []checkResult) error {
	headerColor.Fprintf(w, "Smoke checks against %s\n", baseURL)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			errorColor.Fprint(w, "  FAIL ")
			fmt.Fprintf(w, "%s: %v\n", r.Name, r.Err)
			continue
		}
		successColor.Fprint(w, "  PASS ")
		fmt.Fprintf(w, "%s (%s, %s)\n", r.Name, r.Detail, r.Took.Round(time.Millisecond))
	}

	fmt.Fprintf(w, "%d/%d checks passed\n", len(results)-failed, len(results))
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errSmokeFailed, failed, len(results))
	}
	return nil
}
