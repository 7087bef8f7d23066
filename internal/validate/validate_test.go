package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/refbridge/crms/internal/errs"
	"github.com/refbridge/crms/internal/model"
)

func TestLogin(t *testing.T) {
	t.Parallel()
	v := New()

	if err := v.Login(model.LoginInput{Email: "a@b.io", Password: "secret1"}); err != nil {
		t.Fatalf("valid login rejected: %v", err)
	}

	err := v.Login(model.LoginInput{Email: "not-an-email", Password: "secret1"})
	if err == nil || !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("bad email must be a validation error: %v", err)
	}
	if !strings.Contains(err.Error(), "valid email") {
		t.Fatalf("message: %v", err)
	}

	err = v.Login(model.LoginInput{Email: "a@b.io", Password: "short"})
	if err == nil || !strings.Contains(err.Error(), "at least 6") {
		t.Fatalf("short password: %v", err)
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()
	v := New()

	ok := model.RegisterInput{
		Name:            "Jane Doe",
		Email:           "jane@x.io",
		Password:        "Str0ng!pass",
		ConfirmPassword: "Str0ng!pass",
		Role:            model.RoleUser,
	}
	if err := v.Register(ok); err != nil {
		t.Fatalf("valid register rejected: %v", err)
	}

	cases := []struct {
		name string
		mut  func(*model.RegisterInput)
		want string
	}{
		{"digits in name", func(in *model.RegisterInput) { in.Name = "Jane99" }, "letters and spaces"},
		{"weak password", func(in *model.RegisterInput) { in.Password = "alllowercase1!"; in.ConfirmPassword = in.Password }, "upper and lower"},
		{"mismatch", func(in *model.RegisterInput) { in.ConfirmPassword = "Different1!" }, "don't match"},
		{"bad role", func(in *model.RegisterInput) { in.Role = "root" }, "user or admin"},
	}
	for _, tc := range cases {
		in := ok
		tc.mut(&in)
		err := v.Register(in)
		if err == nil || !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("%s: want validation error, got %v", tc.name, err)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: message %q should mention %q", tc.name, err, tc.want)
		}
	}
}

func TestReferral(t *testing.T) {
	t.Parallel()
	v := New()

	ok := model.ReferralInput{
		Name:     "John Smith",
		Email:    "john@x.io",
		JobTitle: "Frontend Developer",
		Resume:   "https://drive.example.com/r/1",
	}
	if err := v.Referral(ok); err != nil {
		t.Fatalf("valid referral rejected: %v", err)
	}

	in := ok
	in.JobTitle = ""
	if err := v.Referral(in); err == nil || !strings.Contains(err.Error(), "Job title") {
		t.Fatalf("missing job title: %v", err)
	}

	in = ok
	in.Resume = "not a url"
	if err := v.Referral(in); err == nil || !strings.Contains(err.Error(), "valid URL") {
		t.Fatalf("bad resume link: %v", err)
	}

	// resume is optional
	in = ok
	in.Resume = ""
	if err := v.Referral(in); err != nil {
		t.Fatalf("empty resume should pass: %v", err)
	}
}
