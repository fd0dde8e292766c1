package models

import (
	"strings"

	"github.com/samber/lo"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FamilyContext is request-scoped family information used to enrich a prompt.
// Ages is the older field name sent by the web client.
type FamilyContext struct {
	ChildAges           IntList    `json:"childAges"`
	Ages                IntList    `json:"ages,omitempty"`
	DietaryRestrictions StringList `json:"dietaryRestrictions"`
	Interests           StringList `json:"interests"`
	Budget              Budget     `json:"budget"`
}

// Normalized merges the legacy ages field, trims entries and drops duplicates
// from the set-valued fields while keeping first-seen order.
func (f FamilyContext) Normalized() FamilyContext {
	ages := f.ChildAges
	if len(ages) == 0 {
		ages = f.Ages
	}
	return FamilyContext{
		ChildAges:           append(IntList{}, ages...),
		DietaryRestrictions: cleanSet(f.DietaryRestrictions),
		Interests:           cleanSet(f.Interests),
		Budget:              Budget(strings.ToLower(strings.TrimSpace(string(f.Budget)))),
	}
}

func cleanSet(in StringList) StringList {
	trimmed := lo.FilterMap(in, func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	})
	return StringList(lo.Uniq(trimmed))
}

// FamilyContextFromTrip derives a prompt context from a stored trip.
func FamilyContextFromTrip(t Trip) FamilyContext {
	return FamilyContext{
		ChildAges: append(IntList{}, t.FamilyComposition.Children...),
		Interests: append(StringList{}, t.Preferences.Interests...),
		Budget:    t.Preferences.Budget,
	}.Normalized()
}

type ChatRequest struct {
	Messages   []ChatMessage  `json:"messages"`
	FamilyInfo *FamilyContext `json:"familyInfo"`
	TripID     string         `json:"tripId"`
}
