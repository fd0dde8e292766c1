package prompts

import (
	"fmt"
	"strings"

	"familytrip/internal/domain/models"
)

// TaskKind is a quick action the web client offers next to free chat.
type TaskKind string

const (
	TaskRestaurants TaskKind = "restaurants"
	TaskActivities  TaskKind = "activities"
	TaskEmergency   TaskKind = "emergency"
	TaskItinerary   TaskKind = "itinerary"
)

const defaultItineraryDays = 3

// TaskInput carries what a task prompt needs from a stored trip.
type TaskInput struct {
	Destination string
	Family      models.FamilyContext
	Weather     string
	Days        int
}

// ParseTaskKind accepts the kind case-insensitively.
func ParseTaskKind(s string) (TaskKind, bool) {
	k := TaskKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case TaskRestaurants, TaskActivities, TaskEmergency, TaskItinerary:
		return k, true
	}
	return "", false
}

// TaskPrompt renders the user prompt for a quick action.
func TaskPrompt(kind TaskKind, in TaskInput) (string, error) {
	f := in.Family.Normalized()
	dest := strings.TrimSpace(in.Destination)
	if dest == "" {
		return "", fmt.Errorf("destination required")
	}

	switch kind {
	case TaskRestaurants:
		return fmt.Sprintf(`
Zoek familie-vriendelijke restaurants in %s.

Familie details:
- Kinderen: %s
- Dieetbeperkingen: %s
- Budget: %s

Geef 3-5 restaurants met voor elk:
1. **Naam** en adres
2. **Type keuken**
3. **Prijsklasse** (€/€€/€€€)
4. **Kindvriendelijke aspecten**
5. **Kindermenu** (ja/nee + voorbeelden)
6. **Praktische info** (openingstijden, reservering)
7. **Waarom perfect voor dit gezin**

Focus op veiligheid, hygiëne en een gezellige sfeer voor families.
`, dest, ChildrenLabel(f.ChildAges), joinOr(f.DietaryRestrictions, "geen"), f.Budget.Label()), nil

	case TaskActivities:
		weather := strings.TrimSpace(in.Weather)
		if weather == "" {
			weather = "onbekend"
		}
		return fmt.Sprintf(`
Suggereer familie-activiteiten in %s.

Familie details:
- Kinderen: %s
- Interesses: %s
- Weer: %s

Geef 3-5 activiteiten met voor elk:
1. **Activiteit naam** en locatie
2. **Leeftijdsgeschiktheid** (min/max leeftijd)
3. **Duur** en beste tijdstip
4. **Kosten** per persoon/gezin
5. **Wat te verwachten**
6. **Veiligheidsinformatie**
7. **Boekingsinformatie**

Prioriteer veilige, educatieve en leuke ervaringen die geschikt zijn voor de hele familie.
`, dest, ChildrenLabel(f.ChildAges), joinOr(f.Interests, "algemeen"), weather), nil

	case TaskEmergency:
		return fmt.Sprintf(`
Geef belangrijke nood- en veiligheidsinformatie voor gezinnen in %s.

Inclusief:
1. **Alarmnummers** (lokaal alarmnummer)
2. **Ziekenhuis** met pediatrische afdeling (naam, adres, telefoon)
3. **Apotheek** (24-uur indien beschikbaar)
4. **Politie** (dichtstbijzijnde bureau)
5. **Nederlandse vertegenwoordiging** (ambassade/consulaat)
6. **Belangrijke zinnen** in lokale taal
7. **Documentverlies** (wat te doen bij verloren paspoort)
8. **Veiligheidstips** specifiek voor families

Geef concrete contactgegevens en praktische stappen.
`, dest), nil

	case TaskItinerary:
		days := in.Days
		if days <= 0 {
			days = defaultItineraryDays
		}
		return fmt.Sprintf(`
Maak een %d-daagse reisroute voor een gezin naar %s.

Familie details:
- Kinderen: %s
- Interesses: %s
- Budget: %s

Voor elke dag, geef:
1. **Ochtend activiteit** (9:00-12:00)
2. **Lunch suggestie**
3. **Middag activiteit** (13:00-17:00)
4. **Diner optie**
5. **Rust momenten** voor kinderen
6. **Alternatief bij slecht weer**

Houd rekening met:
- Vermoeidheid van kinderen
- Reistijd tussen locaties
- Lunch- en slaappauzes
- Flexibiliteit voor spontane momenten
`, days, dest, ChildrenLabel(f.ChildAges), joinOr(f.Interests, "algemeen"), f.Budget.Label()), nil
	}

	return "", fmt.Errorf("unknown task %q", kind)
}
