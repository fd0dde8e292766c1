package prompts

import (
	"strconv"
	"strings"

	"familytrip/internal/domain/models"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Restaurant keywords are checked before activity keywords.
var (
	restaurantKeywords = []string{"restaurant", "eten", "lunch", "diner"}
	activityKeywords   = []string{"activiteit", "bezienswaardigheden", "doen"}
)

// Selection is the outcome of prompt routing.
type Selection struct {
	Variant      Variant
	SystemPrompt string
}

// Select picks the system prompt for a conversation and appends the family
// context block when one is given. It is a pure function of its inputs.
func Select(conversation []models.ChatMessage, family *models.FamilyContext) Selection {
	v := Route(lastUserContent(conversation))
	prompt := Template(v)
	if family != nil {
		prompt += ContextBlock(*family)
	}
	return Selection{Variant: v, SystemPrompt: prompt}
}

// Route classifies one message by keyword membership.
func Route(message string) Variant {
	// A Caser keeps state, so each call gets its own.
	msg := cases.Lower(language.Dutch).String(message)
	switch {
	case containsAny(msg, restaurantKeywords):
		return RestaurantExpert
	case containsAny(msg, activityKeywords):
		return ActivityGuide
	default:
		return TripPlanner
	}
}

func containsAny(s string, keywords []string) bool {
	return lo.SomeBy(keywords, func(k string) bool { return strings.Contains(s, k) })
}

// lastUserContent returns the newest non-blank user message, or the newest
// message of any role when there is none.
func lastUserContent(conversation []models.ChatMessage) string {
	if len(conversation) == 0 {
		return ""
	}
	if m, _, ok := lo.FindLastIndexOf(conversation, func(m models.ChatMessage) bool {
		return m.Role == models.RoleUser && strings.TrimSpace(m.Content) != ""
	}); ok {
		return m.Content
	}
	return conversation[len(conversation)-1].Content
}

// ContextBlock renders the family context appended to a system prompt.
func ContextBlock(family models.FamilyContext) string {
	f := family.Normalized()

	var b strings.Builder
	b.WriteString("\n\nFamilie context voor deze conversatie:\n")
	b.WriteString("- Kinderen: " + ChildrenLabel(f.ChildAges) + "\n")
	b.WriteString("- Dieetbeperkingen: " + joinOr(f.DietaryRestrictions, "geen") + "\n")
	b.WriteString("- Interesses: " + joinOr(f.Interests, "algemeen") + "\n")
	b.WriteString("- Budget: " + f.Budget.Label())
	return b.String()
}

// ChildrenLabel renders ages as "5, 8 jaar oud", or "geen kinderen".
func ChildrenLabel(ages []int) string {
	if len(ages) == 0 {
		return "geen kinderen"
	}
	return strings.Join(lo.Map(ages, func(a int, _ int) string { return strconv.Itoa(a) }), ", ") + " jaar oud"
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}
