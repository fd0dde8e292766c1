package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultAdults     = 2
	DefaultTripStatus = "planning"
	MaxChildAge       = 18
)

// Budget is the coarse budget class chosen by the family.
type Budget string

const (
	BudgetLow    Budget = "low"
	BudgetMedium Budget = "medium"
	BudgetHigh   Budget = "high"
)

// Valid accepts the three known classes and the empty value.
func (b Budget) Valid() bool {
	switch b {
	case "", BudgetLow, BudgetMedium, BudgetHigh:
		return true
	}
	return false
}

// Label is the single Dutch rendering of a budget, shared by prompts and documents.
func (b Budget) Label() string {
	switch Budget(strings.ToLower(strings.TrimSpace(string(b)))) {
	case BudgetLow:
		return "beperkt"
	case BudgetMedium:
		return "gemiddeld"
	case BudgetHigh:
		return "ruim"
	default:
		return "geen voorkeur"
	}
}

type FamilyComposition struct {
	Adults   int     `json:"adults"`
	Children IntList `json:"children"`
}

func (f FamilyComposition) Value() (driver.Value, error) {
	if f.Children == nil {
		f.Children = IntList{}
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (f *FamilyComposition) Scan(src any) error {
	if err := scanJSON(src, f); err != nil {
		return fmt.Errorf("family_composition: %w", err)
	}
	if f.Children == nil {
		f.Children = IntList{}
	}
	return nil
}

// Preferences keeps interests and budget typed; any other key is carried in Extra
// and written back next to them.
type Preferences struct {
	Interests StringList
	Budget    Budget
	Extra     map[string]any
}

func (p Preferences) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+2)
	for k, v := range p.Extra {
		out[k] = v
	}
	if p.Interests != nil {
		out["interests"] = []string(p.Interests)
	}
	if p.Budget != "" {
		out["budget"] = string(p.Budget)
	}
	return json.Marshal(out)
}

func (p *Preferences) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = Preferences{}
	for k, v := range raw {
		switch k {
		case "interests":
			if err := json.Unmarshal(v, &p.Interests); err != nil {
				return fmt.Errorf("interests: %w", err)
			}
		case "budget":
			var s *string
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("budget: %w", err)
			}
			if s != nil {
				p.Budget = Budget(strings.ToLower(strings.TrimSpace(*s)))
			}
		default:
			var val any
			if err := json.Unmarshal(v, &val); err != nil {
				return err
			}
			if p.Extra == nil {
				p.Extra = map[string]any{}
			}
			p.Extra[k] = val
		}
	}
	return nil
}

func (p Preferences) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *Preferences) Scan(src any) error {
	if err := scanJSON(src, p); err != nil {
		return fmt.Errorf("preferences: %w", err)
	}
	return nil
}

func scanJSON(src any, dst any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}

// Trip is one planned family vacation, owned by exactly one user.
type Trip struct {
	ID                string            `json:"id" db:"id"`
	UserID            string            `json:"user_id" db:"user_id"`
	Title             string            `json:"title" db:"title"`
	Destination       string            `json:"destination" db:"destination"`
	StartDate         *string           `json:"start_date" db:"start_date"`
	EndDate           *string           `json:"end_date" db:"end_date"`
	FamilyComposition FamilyComposition `json:"family_composition" db:"family_composition"`
	Preferences       Preferences       `json:"preferences" db:"preferences"`
	Status            string            `json:"status" db:"status"`
	TotalBudget       *float64          `json:"total_budget" db:"total_budget"`
	IsPublic          bool              `json:"is_public" db:"is_public"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at" db:"updated_at"`
}

// TripInput is the client payload for create and update.
type TripInput struct {
	Title             string             `json:"title"`
	Destination       string             `json:"destination"`
	StartDate         string             `json:"start_date"`
	EndDate           string             `json:"end_date"`
	FamilyComposition *FamilyComposition `json:"family_composition"`
	Preferences       *Preferences       `json:"preferences"`
	Status            string             `json:"status"`
	TotalBudget       *float64           `json:"total_budget"`
	IsPublic          *bool              `json:"is_public"`
}
