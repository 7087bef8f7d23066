// Package store keeps the in-memory candidate collection in lockstep with
// the remote backend: every mutation calls the API first and reconciles
// local state only on success, replacing whole snapshots rather than
// patching records in place.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/refbridge/crms/internal/errs"
	"github.com/refbridge/crms/internal/model"
)

// API is the slice of the backend the store depends on.
type API interface {
	MyReferrals(ctx context.Context) ([]model.Candidate, error)
	AllReferrals(ctx context.Context) ([]model.Candidate, error)
	SubmitReferral(ctx context.Context, in model.ReferralInput) (model.Candidate, error)
	UpdateStatus(ctx context.Context, id string, status model.Status) (model.Candidate, error)
	BulkUpdateStatus(ctx context.Context, updates []model.StatusUpdate) error
	DeleteReferral(ctx context.Context, id string) error
}

// DefaultCategory is the initial search field, matching the original UI.
const DefaultCategory = "jobTitle"

// Store holds the full candidate collection plus the filtered view derived
// from the current search term and category.
type Store struct {
	api API

	candidates []model.Candidate
	filtered   []model.Candidate
	term       string
	category   string

	lastErr string
	success *notice
}

// New constructs a Store around the injected API.
func New(api API) *Store {
	return &Store{
		api:      api,
		category: DefaultCategory,
		success:  newNotice(noticeTTL),
	}
}

// Fetch populates the collection: admins see every record, users only their
// own referrals. The filtered view is recomputed against the current filter.
func (s *Store) Fetch(ctx context.Context, role model.Role) error {
	var (
		list []model.Candidate
		err  error
	)
	if role == model.RoleAdmin {
		list, err = s.api.AllReferrals(ctx)
	} else {
		list, err = s.api.MyReferrals(ctx)
	}
	if err != nil {
		s.lastErr = "Failed to fetch candidates"
		return err
	}
	s.replace(list)
	s.lastErr = ""
	return nil
}

// Add submits a referral and, on success, appends the created record with
// status forced to Pending. On failure the collection is untouched.
func (s *Store) Add(ctx context.Context, in model.ReferralInput) (model.Candidate, error) {
	created, err := s.api.SubmitReferral(ctx, in)
	if err != nil {
		s.lastErr = "Failed to add candidate"
		return model.Candidate{}, err
	}
	if created.Key() == "" {
		// backend returned no usable record, synthesize from the input
		created = model.Candidate{
			Name:       in.Name,
			Email:      in.Email,
			Phone:      in.Phone,
			JobTitle:   in.JobTitle,
			Experience: in.Experience,
			Resume:     in.Resume,
		}
	}
	created.Status = model.StatusPending

	next := make([]model.Candidate, 0, len(s.candidates)+1)
	next = append(next, s.candidates...)
	next = append(next, created)
	s.replace(next)

	s.lastErr = ""
	s.success.set("Candidate referred successfully!")
	return created, nil
}

// UpdateStatus moves one record to a new state, remote first. Matching uses
// either identifier key.
func (s *Store) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	if _, err := model.ParseStatus(string(status)); err != nil {
		s.lastErr = err.Error()
		return fmt.Errorf("%v: %w", err, errs.ErrValidation)
	}
	if _, err := s.api.UpdateStatus(ctx, id, status); err != nil {
		s.lastErr = "Failed to update candidate status"
		return err
	}

	next := make([]model.Candidate, len(s.candidates))
	copy(next, s.candidates)
	for i := range next {
		if next[i].Matches(id) {
			next[i].Status = status
		}
	}
	s.replace(next)

	s.lastErr = ""
	s.success.set(fmt.Sprintf("Candidate status updated to %s", status))
	return nil
}

// BulkUpdateStatus applies one status to every id in the set through a single
// batched call. An empty set or status never reaches the network; it is a
// local validation warning. Local state flips all-or-nothing with the call.
func (s *Store) BulkUpdateStatus(ctx context.Context, ids []string, status model.Status) error {
	if len(ids) == 0 || status == "" {
		s.lastErr = "Please select candidates and a status to update"
		return fmt.Errorf("select candidates and a status: %w", errs.ErrValidation)
	}
	if _, err := model.ParseStatus(string(status)); err != nil {
		s.lastErr = err.Error()
		return fmt.Errorf("%v: %w", err, errs.ErrValidation)
	}

	updates := make([]model.StatusUpdate, 0, len(ids))
	for _, id := range ids {
		updates = append(updates, model.StatusUpdate{ReferralID: id, Status: status})
	}
	if err := s.api.BulkUpdateStatus(ctx, updates); err != nil {
		s.lastErr = "Failed to update status: " + err.Error()
		return err
	}

	selected := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		selected[id] = struct{}{}
	}
	next := make([]model.Candidate, len(s.candidates))
	copy(next, s.candidates)
	for i := range next {
		// the set may hold either identifier key
		if _, ok := selected[next[i].ID]; ok {
			next[i].Status = status
		} else if _, ok := selected[next[i].LegacyID]; ok {
			next[i].Status = status
		}
	}
	s.replace(next)

	s.lastErr = ""
	s.success.set("Bulk status update successful")
	return nil
}

// Delete removes one record after the backend confirms.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteReferral(ctx, id); err != nil {
		s.lastErr = "Failed to delete candidate"
		return err
	}

	next := make([]model.Candidate, 0, len(s.candidates))
	for _, c := range s.candidates {
		if !c.Matches(id) {
			next = append(next, c)
		}
	}
	s.replace(next)

	s.lastErr = ""
	s.success.set("Candidate deleted successfully!")
	return nil
}

// SetFilter updates the search term and category and recomputes the view.
func (s *Store) SetFilter(term, category string) {
	s.term = term
	if category != "" {
		s.category = category
	}
	s.filtered = filter(s.candidates, s.term, s.category)
}

// Candidates returns the full collection snapshot.
func (s *Store) Candidates() []model.Candidate {
	return append([]model.Candidate(nil), s.candidates...)
}

// Filtered returns the current filtered view.
func (s *Store) Filtered() []model.Candidate {
	return append([]model.Candidate(nil), s.filtered...)
}

// Get looks a record up by either identifier key.
func (s *Store) Get(id string) (model.Candidate, bool) {
	for _, c := range s.candidates {
		if c.Matches(id) {
			return c, true
		}
	}
	return model.Candidate{}, false
}

// Stats aggregates the local collection per lifecycle state.
func (s *Store) Stats() model.StatusCounts {
	var out model.StatusCounts
	for _, c := range s.candidates {
		out.Total++
		switch c.Status {
		case model.StatusPending:
			out.Pending++
		case model.StatusReviewed:
			out.Reviewed++
		case model.StatusHired:
			out.Hired++
		case model.StatusRejected:
			out.Rejected++
		}
	}
	return out
}

// Err returns the last operation error message, empty when none.
func (s *Store) Err() string { return s.lastErr }

// Success returns the transient success message, empty once it self-clears.
func (s *Store) Success() string { return s.success.get() }

// ClearMessages drops both transient messages.
func (s *Store) ClearMessages() {
	s.lastErr = ""
	s.success.clear()
}

// replace swaps in a new collection snapshot and re-derives the view.
func (s *Store) replace(list []model.Candidate) {
	s.candidates = list
	s.filtered = filter(list, s.term, s.category)
}

// filter returns the subset whose category field contains term,
// case-insensitively. A blank term keeps the collection as is, order intact.
func filter(list []model.Candidate, term, category string) []model.Candidate {
	if strings.TrimSpace(term) == "" {
		return list
	}
	needle := strings.ToLower(term)
	out := make([]model.Candidate, 0, len(list))
	for _, c := range list {
		if strings.Contains(strings.ToLower(fieldByCategory(c, category)), needle) {
			out = append(out, c)
		}
	}
	return out
}

// fieldByCategory maps a search category name onto a record field. Unknown
// categories match nothing.
func fieldByCategory(c model.Candidate, category string) string {
	switch category {
	case "name":
		return c.Name
	case "email":
		return c.Email
	case "phone":
		return c.Phone
	case "jobTitle":
		return c.JobTitle
	case "experience":
		return c.Experience
	case "status":
		return string(c.Status)
	}
	return ""
}
