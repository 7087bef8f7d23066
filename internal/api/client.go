// Package api implements the HTTP client for the remote CRMS backend.
//
// Every call attaches a bearer token from the injected token source, tags the
// request with an X-Request-Id, and maps error bodies of the conventional
// {"message": "..."} shape onto Go errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/refbridge/crms/internal/errs"
	"github.com/refbridge/crms/internal/model"
)

const basePath = "/api/user"

// TokenSource yields the current bearer token, empty when unauthenticated.
type TokenSource func() string

// Client talks to the CRMS backend over JSON/multipart HTTP.
type Client struct {
	baseURL string
	hc      *http.Client
	log     *zap.Logger
	token   TokenSource
}

// New constructs a Client. token may be nil for an always-anonymous client.
func New(baseURL string, timeout time.Duration, log *zap.Logger, token TokenSource) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
		log:     log,
		token:   token,
	}
}

// ---- auth ----

type loginResponse struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

// Login exchanges credentials for a user and an access token.
func (c *Client) Login(ctx context.Context, email, password string) (model.User, string, error) {
	body := map[string]string{"email": email, "password": password}
	var out loginResponse
	if err := c.doJSON(ctx, http.MethodPost, basePath+"/login", body, &out); err != nil {
		return model.User{}, "", err
	}
	if out.Token == "" {
		return model.User{}, "", fmt.Errorf("login: missing token: %w", errs.ErrBadResponse)
	}
	return out.User, out.Token, nil
}

// Signup creates an account. It does not authenticate.
func (c *Client) Signup(ctx context.Context, in model.RegisterInput) error {
	return c.doJSON(ctx, http.MethodPost, basePath+"/signup", in, nil)
}

// RequestPasswordReset asks the backend to mail a reset link.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.doJSON(ctx, http.MethodPost, basePath+"/reset-password", map[string]string{"email": email}, nil)
}

// ChangePassword sets a new password using a reset token from the mail link.
func (c *Client) ChangePassword(ctx context.Context, newPassword, resetToken string) error {
	p := basePath + "/request-password-change?token=" + url.QueryEscape(resetToken)
	return c.doJSON(ctx, http.MethodPost, p, map[string]string{"newPassword": newPassword}, nil)
}

// ---- referrals ----

// MyReferrals lists records referred by the current user.
func (c *Client) MyReferrals(ctx context.Context) ([]model.Candidate, error) {
	return c.listReferrals(ctx, basePath+"/my-referrals")
}

// AllReferrals lists every record (admin only).
func (c *Client) AllReferrals(ctx context.Context) ([]model.Candidate, error) {
	return c.listReferrals(ctx, basePath+"/admin/referrals")
}

func (c *Client) listReferrals(ctx context.Context, path string) ([]model.Candidate, error) {
	var out []model.Candidate
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	for i := range out {
		if _, err := model.ParseStatus(string(out[i].Status)); err != nil {
			return nil, fmt.Errorf("referral %q: %v: %w", out[i].Key(), err, errs.ErrBadResponse)
		}
	}
	return out, nil
}

// SubmitReferral posts a new referral as a multipart form. The resume goes as
// a file part when a local path is given, otherwise as the link field.
func (c *Client) SubmitReferral(ctx context.Context, in model.ReferralInput) (model.Candidate, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := map[string]string{
		"name":       in.Name,
		"email":      in.Email,
		"phone":      in.Phone,
		"jobTitle":   in.JobTitle,
		"experience": in.Experience,
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return model.Candidate{}, err
		}
	}
	if in.ResumeFile != "" {
		f, err := os.Open(in.ResumeFile)
		if err != nil {
			return model.Candidate{}, fmt.Errorf("resume file: %w", err)
		}
		defer f.Close()
		part, err := mw.CreateFormFile("resume", filepath.Base(in.ResumeFile))
		if err != nil {
			return model.Candidate{}, err
		}
		if _, err := io.Copy(part, f); err != nil {
			return model.Candidate{}, err
		}
	} else if err := mw.WriteField("resume", in.Resume); err != nil {
		return model.Candidate{}, err
	}
	if err := mw.Close(); err != nil {
		return model.Candidate{}, err
	}

	var out model.Candidate
	err := c.do(ctx, http.MethodPost, basePath+"/referal-submit", &buf, mw.FormDataContentType(), &out)
	if err != nil {
		return model.Candidate{}, err
	}
	return out, nil
}

// UpdateStatus moves one referral to a new lifecycle state (admin only).
func (c *Client) UpdateStatus(ctx context.Context, id string, status model.Status) (model.Candidate, error) {
	p := fmt.Sprintf("%s/admin/referrals/%s/status", basePath, url.PathEscape(id))
	var out model.Candidate
	if err := c.doJSON(ctx, http.MethodPut, p, map[string]model.Status{"status": status}, &out); err != nil {
		return model.Candidate{}, err
	}
	return out, nil
}

// BulkUpdateStatus applies one batched status change (admin only).
func (c *Client) BulkUpdateStatus(ctx context.Context, updates []model.StatusUpdate) error {
	body := map[string][]model.StatusUpdate{"updates": updates}
	return c.doJSON(ctx, http.MethodPut, basePath+"/admin/referrals/bulk-status-update", body, nil)
}

// DeleteReferral removes one referral (admin only).
func (c *Client) DeleteReferral(ctx context.Context, id string) error {
	p := fmt.Sprintf("%s/admin/referrals/%s", basePath, url.PathEscape(id))
	return c.doJSON(ctx, http.MethodDelete, p, nil, nil)
}

// ---- analytics ----

// Analytics fetches one analytics report by graph type. Shape validation of
// the discriminated payload happens in the analytics package.
func (c *Client) Analytics(ctx context.Context, graphType string) (model.AnalyticsReport, error) {
	p := basePath + "/admin/analytics?type=" + url.QueryEscape(graphType)
	var out model.AnalyticsReport
	if err := c.doJSON(ctx, http.MethodGet, p, nil, &out); err != nil {
		return model.AnalyticsReport{}, err
	}
	return out, nil
}

// ---- transport ----

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	return c.do(ctx, method, path, body, "application/json", out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	reqID := requestID()
	req.Header.Set("X-Request-Id", reqID)

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Warn("http",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", reqID),
			zap.Error(err),
		)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Info("http",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("dur", time.Since(start)),
		zap.String("request_id", reqID),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.asError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %v: %w", method, path, err, errs.ErrBadResponse)
	}
	return nil
}

// asError extracts the conventional {"message"} body, falling back to the
// HTTP status text, and tags 401/404 with their sentinels.
func (c *Client) asError(resp *http.Response) error {
	msg := http.StatusText(resp.StatusCode)
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var e struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(b, &e) == nil && e.Message != "" {
		msg = e.Message
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", msg, errs.ErrUnauthorized)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", msg, errs.ErrNotFound)
	}
	return fmt.Errorf("%s (status %d)", msg, resp.StatusCode)
}

func requestID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return "unknown"
	}
	return id.String()
}
