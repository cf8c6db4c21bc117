package gameserver

import (
	"math"

	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/inventory"
	"github.com/cory-johannsen/charsheet/internal/game/stat"
)

// AbilityLine is one ability row of a Sheet.
type AbilityLine struct {
	ID       stat.ID
	Base     float64
	Total    float64
	Modifier int
	// Save is the saving throw bonus: Modifier plus proficiency.
	Save            int
	SaveProficiency stat.Proficiency
}

// SkillLine is one skill row of a Sheet.
type SkillLine struct {
	ID      stat.ID
	Ability stat.ID
	// Total is the aggregated skill stat, which already includes the ability modifier.
	Total       float64
	Proficiency stat.Proficiency
	// Bonus is the roll bonus: floor(Total) plus proficiency.
	Bonus int
}

// EquippedLine is one attached item of a Sheet.
type EquippedLine struct {
	InstanceID string
	Name       string
	Slot       inventory.Slot
}

// Sheet is a read model of one unit taken on the dispatcher goroutine. It holds no
// references into the world.
type Sheet struct {
	UnitID     string
	SavedID    int64
	Name       string
	PlayerName string
	Race       string
	Class      string
	Background string
	Alignment  string
	Enemy      bool

	Level            int
	ProficiencyBonus int
	Health           int

	Abilities []AbilityLine
	Skills    []SkillLine

	ArmorClass float64
	MaxHealth  float64
	Speed      float64
	DarkVision float64

	Equipped []EquippedLine
}

// Snapshot reads the current state of unitRef into a Sheet.
func (w *World) Snapshot(unitRef string) (Sheet, error) {
	e, err := w.resolveUnit(unitRef)
	if err != nil {
		return Sheet{}, err
	}
	u, rec := e.unit, e.record
	pb := rec.ProficiencyBonus()

	sh := Sheet{
		UnitID:           u.ID,
		SavedID:          rec.ID,
		Name:             u.Name,
		PlayerName:       rec.PlayerName,
		Race:             rec.Race,
		Class:            rec.Class,
		Background:       rec.Background,
		Alignment:        rec.Alignment.Label(),
		Enemy:            e.enemy,
		Level:            max(1, rec.Level),
		ProficiencyBonus: pb,
		Health:           rec.Health,
	}
	if r, ok := w.rules.Race(rec.Race); ok {
		sh.Race = r.Name
	}
	if c, ok := w.rules.Class(rec.Class); ok {
		sh.Class = c.Name
	}
	if b, ok := w.rules.Background(rec.Background); ok {
		sh.Background = b.Name
	}

	for _, id := range stat.Abilities() {
		s, err := u.Stat(id)
		if err != nil {
			return Sheet{}, err
		}
		mod := stat.AbilityModifier(s.Total)
		p := u.Proficiency(id)
		sh.Abilities = append(sh.Abilities, AbilityLine{
			ID:              id,
			Base:            s.Base,
			Total:           s.Total,
			Modifier:        mod,
			Save:            mod + p.Multiplier()*pb,
			SaveProficiency: p,
		})
	}
	for _, id := range stat.Skills() {
		total, err := u.Total(id)
		if err != nil {
			return Sheet{}, err
		}
		gov, _ := stat.GoverningAbility(id)
		p := u.Proficiency(id)
		sh.Skills = append(sh.Skills, SkillLine{
			ID:          id,
			Ability:     gov,
			Total:       total,
			Proficiency: p,
			Bonus:       int(math.Floor(total)) + p.Multiplier()*pb,
		})
	}
	for id, dst := range map[stat.ID]*float64{
		stat.ArmorClass: &sh.ArmorClass,
		stat.MaxHealth:  &sh.MaxHealth,
		stat.Speed:      &sh.Speed,
		stat.DarkVision: &sh.DarkVision,
	} {
		v, err := u.Total(id)
		if err != nil {
			return Sheet{}, err
		}
		*dst = v
	}
	for _, it := range e.equipped {
		sh.Equipped = append(sh.Equipped, EquippedLine{InstanceID: it.InstanceID, Name: it.Def.Name, Slot: it.Def.Slot})
	}
	return sh, nil
}

// AbilityLabel returns the three-letter label for a line's ability.
func (l AbilityLine) AbilityLabel() string { return character.AbilityName(l.ID) }
