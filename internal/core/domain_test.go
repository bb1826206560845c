package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func validDraft() Draft {
	return Draft{
		Description: "Coffee",
		Amount:      Money{Cents: 15000},
		Type:        TypeExpense,
		Category:    CategoryFood,
		Date:        NewDate(2024, 1, 1),
	}
}

func TestDraftValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Draft)
		want   error
	}{
		{"valid", func(d *Draft) {}, nil},
		{"empty description", func(d *Draft) { d.Description = "  " }, ErrEmptyDescription},
		{"zero amount", func(d *Draft) { d.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(d *Draft) { d.Amount = Money{Cents: -100} }, ErrInvalidAmount},
		{"bad type", func(d *Draft) { d.Type = "transfer" }, ErrInvalidType},
		{"bad category", func(d *Draft) { d.Category = "crypto" }, ErrInvalidCategory},
		{"zero date", func(d *Draft) { d.Date = Date{} }, ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := validDraft()
			tc.mutate(&d)
			err := d.Validate()
			if tc.want == nil {
				if err != nil {
					t.Fatalf("expected ok, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) && err != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestDraftValidateIsValidationError(t *testing.T) {
	d := validDraft()
	d.Description = ""
	var verr *ValidationError
	if !errors.As(d.Validate(), &verr) {
		t.Fatal("expected a *ValidationError")
	}
	if verr.Field != "description" {
		t.Fatalf("expected description field, got %q", verr.Field)
	}
}

func TestDraftNormalizeIncomeImpliesSalary(t *testing.T) {
	d := validDraft()
	d.Type = TypeIncome
	d.Category = CategoryFood
	d = d.Normalize()
	if d.Category != CategorySalary {
		t.Fatalf("expected salary, got %q", d.Category)
	}
}

func TestExpenseCannotUseSalaryCategory(t *testing.T) {
	d := validDraft()
	d.Category = CategorySalary
	if d.Validate() == nil {
		t.Fatal("expected error for expense in salary category")
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-01-01", true},
		{" 2025-12-31 ", true},
		{"2024-13-01", false},
		{"01/02/2024", false},
		{"", false},
	}
	for _, tc := range cases {
		_, err := ParseDate(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("%q expected ok, got %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2024, 1, 1)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2024-01-01"` {
		t.Fatalf("unexpected encoding %s", b)
	}
	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("round trip mismatch: %v != %v", back, d)
	}
}

func TestSnapshotClone(t *testing.T) {
	s := Snapshot{
		Transactions: []Transaction{{ID: "a"}},
		Points:       10,
		Badges:       []Badge{{Name: "Novice Tracker"}},
	}
	c := s.Clone()
	c.Transactions[0].ID = "b"
	c.Badges[0].Name = "changed"
	if s.Transactions[0].ID != "a" || s.Badges[0].Name != "Novice Tracker" {
		t.Fatal("clone aliases the original slices")
	}
}
