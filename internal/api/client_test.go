package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/refbridge/crms/internal/errs"
	"github.com/refbridge/crms/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, zap.NewNop(), func() string { return token })
}

func TestLogin_AdminStub(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/user/login", r.URL.Path)
		require.NotEmpty(t, r.Header.Get("X-Request-Id"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "admin@gmail.com", in["email"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"user":  map[string]string{"role": "admin"},
			"token": "t",
		})
	}, "")

	u, tok, err := c.Login(context.Background(), "admin@gmail.com", "admin@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, "t", tok)
	assert.Equal(t, model.RoleAdmin, u.Role)
}

func TestLogin_MissingTokenIsBadResponse(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"user": map[string]string{"role": "user"}})
	}, "")

	_, _, err := c.Login(context.Background(), "a@b.io", "pw")
	assert.ErrorIs(t, err, errs.ErrBadResponse)
}

func TestErrorBody_MessageExtraction(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
	}, "")

	_, _, err := c.Login(context.Background(), "a@b.io", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestErrorBody_StatusTextFallback(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream down")
	}, "")

	err := c.DeleteReferral(context.Background(), "x1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bad Gateway")
	assert.Contains(t, err.Error(), "502")
}

func TestBearerToken_Attached(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]model.Candidate{})
	}, "tok-1")

	_, err := c.MyReferrals(context.Background())
	require.NoError(t, err)
}

func TestListReferrals_RejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/user/admin/referrals", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"_id": "a", "name": "ok", "status": "Pending"},
			{"_id": "b", "name": "bad", "status": "Archived"},
		})
	}, "tok")

	_, err := c.AllReferrals(context.Background())
	assert.ErrorIs(t, err, errs.ErrBadResponse)
}

func TestUpdateStatus_PathAndBody(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/user/admin/referrals/abc1/status", r.URL.Path)
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "Hired", in["status"])
		_ = json.NewEncoder(w).Encode(model.Candidate{ID: "abc1", Status: model.StatusHired})
	}, "tok")

	out, err := c.UpdateStatus(context.Background(), "abc1", model.StatusHired)
	require.NoError(t, err)
	assert.Equal(t, model.StatusHired, out.Status)
}

func TestBulkUpdateStatus_PayloadShape(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/user/admin/referrals/bulk-status-update", r.URL.Path)
		var in struct {
			Updates []model.StatusUpdate `json:"updates"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Len(t, in.Updates, 2)
		require.Equal(t, "r1", in.Updates[0].ReferralID)
		require.Equal(t, model.StatusReviewed, in.Updates[0].Status)
		w.WriteHeader(http.StatusOK)
	}, "tok")

	err := c.BulkUpdateStatus(context.Background(), []model.StatusUpdate{
		{ReferralID: "r1", Status: model.StatusReviewed},
		{ReferralID: "r2", Status: model.StatusReviewed},
	})
	require.NoError(t, err)
}

func TestSubmitReferral_MultipartFields(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/user/referal-submit", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Jane Doe", r.FormValue("name"))
		assert.Equal(t, "jane@x.io", r.FormValue("email"))
		assert.Equal(t, "Frontend Developer", r.FormValue("jobTitle"))
		assert.Equal(t, "https://cv.example.com/jane", r.FormValue("resume"))
		_ = json.NewEncoder(w).Encode(model.Candidate{ID: "new-1", Status: model.StatusPending})
	}, "tok")

	out, err := c.SubmitReferral(context.Background(), model.ReferralInput{
		Name:     "Jane Doe",
		Email:    "jane@x.io",
		JobTitle: "Frontend Developer",
		Resume:   "https://cv.example.com/jane",
	})
	require.NoError(t, err)
	assert.Equal(t, "new-1", out.ID)
}

func TestSubmitReferral_ResumeFilePart(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cv.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-stub"), 0o600))

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("resume")
		require.NoError(t, err)
		defer f.Close()
		b, _ := io.ReadAll(f)
		assert.Equal(t, "cv.pdf", hdr.Filename)
		assert.Equal(t, "%PDF-stub", string(b))
		_ = json.NewEncoder(w).Encode(model.Candidate{ID: "new-2", Status: model.StatusPending})
	}, "tok")

	_, err := c.SubmitReferral(context.Background(), model.ReferralInput{
		Name:       "Jane Doe",
		Email:      "jane@x.io",
		JobTitle:   "QA Engineer",
		ResumeFile: path,
	})
	require.NoError(t, err)
}

func TestAnalytics_QueryParam(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/user/admin/analytics", r.URL.Path)
		require.Equal(t, "pie", r.URL.Query().Get("type"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type":   "pie",
			"data":   []map[string]any{{"values": []int{1, 2}}},
			"layout": map[string]any{"title": "Experience Distribution"},
		})
	}, "tok")

	out, err := c.Analytics(context.Background(), "pie")
	require.NoError(t, err)
	assert.Equal(t, "pie", out.Type)
	assert.NotEmpty(t, out.Data)
	assert.NotEmpty(t, out.Layout)
}

func TestNotFoundSentinel(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Referral not found"})
	}, "tok")

	err := c.DeleteReferral(context.Background(), "ghost")
	assert.True(t, errors.Is(err, errs.ErrNotFound), "got %v", err)
}
