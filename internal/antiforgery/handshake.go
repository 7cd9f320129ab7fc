package antiforgery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/raysh454/employeesapp/internal/logging"
	"github.com/raysh454/employeesapp/internal/webclient"
)

var ErrUnexpectedStatus = errors.New("unexpected status from form endpoint")

// Handshake runs the GET -> extract -> POST sequence against one server.
// Each call is independent; nothing is carried between calls.
type Handshake struct {
	client    webclient.WebClient
	extractor *Extractor
	logger    logging.Logger
}

func NewHandshake(client webclient.WebClient, extractor *Extractor, logger logging.Logger) *Handshake {
	return &Handshake{
		client:    client,
		extractor: extractor,
		logger:    logger.With(logging.Field{Key: "component", Value: "handshake"}),
	}
}

// Fetch GETs formURL and extracts the pair from the response.
func (h *Handshake) Fetch(ctx context.Context, formURL string) (Pair, *webclient.Response, error) {
	resp, err := h.client.Get(ctx, formURL)
	if err != nil {
		return Pair{}, nil, fmt.Errorf("get form %s: %w", formURL, err)
	}
	if !resp.IsSuccess() {
		return Pair{}, resp, fmt.Errorf("%w: GET %s returned %d", ErrUnexpectedStatus, formURL, resp.StatusCode)
	}

	pair, err := h.extractor.Extract(resp)
	if err != nil {
		h.logger.Warn("anti-forgery extraction failed",
			logging.Field{Key: "url", Value: formURL},
			logging.Err(err))
		return Pair{}, resp, err
	}

	h.logger.Debug("anti-forgery pair extracted", logging.Field{Key: "url", Value: formURL})
	return pair, resp, nil
}

// Submit fetches a fresh pair from formURL and POSTs form to postURL with
// both halves attached. The POST response is returned whatever its status;
// judging it is up to the caller.
func (h *Handshake) Submit(ctx context.Context, formURL, postURL string, form url.Values) (*webclient.Response, error) {
	pair, _, err := h.Fetch(ctx, formURL)
	if err != nil {
		return nil, err
	}

	req := &webclient.Request{Method: http.MethodPost, URL: postURL}
	h.extractor.Attach(req, pair, form)

	resp, err := h.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("post form %s: %w", postURL, err)
	}

	h.logger.Info("form submitted",
		logging.Field{Key: "url", Value: postURL},
		logging.Field{Key: "status", Value: resp.StatusCode})
	return resp, nil
}
