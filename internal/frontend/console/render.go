package console

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/command"
	"github.com/cory-johannsen/charsheet/internal/game/inventory"
	"github.com/cory-johannsen/charsheet/internal/game/ruleset"
	"github.com/cory-johannsen/charsheet/internal/game/stat"
	"github.com/cory-johannsen/charsheet/internal/gameserver"
	"github.com/cory-johannsen/charsheet/internal/observability"
)

// num formats a stat value without trailing zeros.
func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func signed(v int) string {
	if v >= 0 {
		return "+" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func profMark(p stat.Proficiency) string {
	switch p {
	case stat.Proficient:
		return "*"
	case stat.Expert:
		return "**"
	default:
		return ""
	}
}

// RenderSheet formats a character sheet.
func RenderSheet(s Style, sh gameserver.Sheet) string {
	var b strings.Builder

	title := s.Paint(Bold+BrightYellow, sh.Name)
	if sh.Enemy {
		title += s.Paint(Red, " (enemy)")
	}
	ident := "unit " + shortID(sh.UnitID)
	if sh.SavedID != 0 {
		ident += fmt.Sprintf(", saved #%d", sh.SavedID)
	}
	fmt.Fprintf(&b, "%s  %s\n", title, s.Paint(Dim, "["+ident+"]"))

	if sh.Enemy {
		fmt.Fprintf(&b, "Level %d\n", sh.Level)
	} else {
		fmt.Fprintf(&b, "%s %s %d, %s, %s\n", sh.Race, sh.Class, sh.Level, sh.Background, sh.Alignment)
		if sh.PlayerName != "" {
			fmt.Fprintf(&b, "Player: %s\n", sh.PlayerName)
		}
	}
	fmt.Fprintf(&b, "%s %s   %s %d/%s   %s %s   %s %s   %s %s\n",
		s.Paint(Cyan, "AC"), num(sh.ArmorClass),
		s.Paint(Cyan, "HP"), sh.Health, num(sh.MaxHealth),
		s.Paint(Cyan, "Speed"), num(sh.Speed),
		s.Paint(Cyan, "Darkvision"), num(sh.DarkVision),
		s.Paint(Cyan, "Proficiency"), signed(sh.ProficiencyBonus),
	)

	b.WriteString(s.Paint(BrightWhite, "Abilities") + "\n")
	for _, a := range sh.Abilities {
		fmt.Fprintf(&b, "  %s %s (%s)  save %s%s\n",
			s.Paint(Green, a.AbilityLabel()),
			padRight(num(a.Total), 3),
			signed(a.Modifier),
			signed(a.Save),
			profMark(a.SaveProficiency),
		)
	}

	b.WriteString(s.Paint(BrightWhite, "Skills") + "\n")
	for _, sk := range sh.Skills {
		label := fmt.Sprintf("%s (%s)", sk.ID, character.AbilityName(sk.Ability))
		fmt.Fprintf(&b, "  %s %s%s\n", padRight(label, 24), signed(sk.Bonus), profMark(sk.Proficiency))
	}

	if len(sh.Equipped) > 0 {
		b.WriteString(s.Paint(BrightWhite, "Equipped") + "\n")
		for _, e := range sh.Equipped {
			fmt.Fprintf(&b, "  %s %s %s\n",
				padRight(e.Name, 28),
				padRight("["+e.Slot.DisplayName()+"]", 12),
				s.Paint(Dim, shortID(e.InstanceID)),
			)
		}
	}
	return b.String()
}

// RenderUnits formats the list of units in play.
func RenderUnits(s Style, units []gameserver.UnitSummary) string {
	if len(units) == 0 {
		return "No units in play.\n"
	}
	var b strings.Builder
	for _, u := range units {
		kind := "character"
		if u.Enemy {
			kind = s.Paint(Red, "enemy")
		} else if u.SavedID != 0 {
			kind = fmt.Sprintf("character #%d", u.SavedID)
		}
		fmt.Fprintf(&b, "  %s %s %s\n", s.Paint(Dim, shortID(u.ID)), padRight(u.Name, 24), kind)
	}
	return b.String()
}

// RenderItems formats unequipped item instances.
func RenderItems(s Style, items []gameserver.ItemView) string {
	if len(items) == 0 {
		return "No unequipped items.\n"
	}
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "  %s %s %s\n",
			s.Paint(Dim, shortID(it.InstanceID)),
			padRight(it.Name, 28),
			s.Paint(Cyan, it.ItemID),
		)
	}
	return b.String()
}

// CatalogKinds lists the sections the catalog command accepts.
var CatalogKinds = []string{"items", "races", "classes", "backgrounds", "enemies"}

// RenderCatalog formats one section of loaded content. An empty kind renders a
// summary of every section.
func RenderCatalog(s Style, kind string, items []*inventory.ItemDef, rules *ruleset.Registry) (string, error) {
	var b strings.Builder
	switch kind {
	case "":
		fmt.Fprintf(&b, "%d items, %d races, %d classes, %d backgrounds, %d enemies\n",
			len(items), len(rules.RaceIDs()), len(rules.ClassIDs()), len(rules.BackgroundIDs()), len(rules.EnemyIDs()))
		b.WriteString(s.Paint(Dim, "catalog "+strings.Join(CatalogKinds, "|")+" for details") + "\n")
	case "items":
		for _, d := range items {
			mods := make([]string, 0, len(d.Modifiers))
			for _, m := range d.Modifiers {
				mods = append(mods, fmt.Sprintf("%s %s %s", m.Stat, m.Kind, num(m.Value)))
			}
			fmt.Fprintf(&b, "  %s %s %s\n", padRight(s.Paint(Cyan, d.ID), 30), padRight(d.Slot.DisplayName(), 10), strings.Join(mods, ", "))
		}
	case "races":
		for _, id := range rules.RaceIDs() {
			r, _ := rules.Race(id)
			bonuses := make([]string, 0, len(r.Abilities))
			for _, a := range stat.Abilities() {
				if v, ok := r.AbilityBonuses()[a]; ok {
					bonuses = append(bonuses, character.AbilityName(a)+" "+signed(v))
				}
			}
			fmt.Fprintf(&b, "  %s %s speed %d, darkvision %d, %s\n", padRight(s.Paint(Cyan, id), 20), padRight(r.Name, 18), r.Speed, r.DarkVision, strings.Join(bonuses, " "))
		}
	case "classes":
		for _, id := range rules.ClassIDs() {
			c, _ := rules.Class(id)
			fmt.Fprintf(&b, "  %s %s d%d, saves %s\n", padRight(s.Paint(Cyan, id), 20), padRight(c.Name, 18), c.HitDie, strings.Join(c.SavingThrows, " "))
		}
	case "backgrounds":
		for _, id := range rules.BackgroundIDs() {
			bg, _ := rules.Background(id)
			fmt.Fprintf(&b, "  %s %s %s\n", padRight(s.Paint(Cyan, id), 20), padRight(bg.Name, 18), strings.Join(bg.Skills, " "))
		}
	case "enemies":
		for _, id := range rules.EnemyIDs() {
			e, _ := rules.Enemy(id)
			fmt.Fprintf(&b, "  %s %s level %d, ac %d, hp %d\n", padRight(s.Paint(Cyan, id), 20), padRight(e.Name, 18), e.Level, e.ArmorClass, e.MaxHealth)
		}
	default:
		return "", fmt.Errorf("%w: unknown catalog section %q (choose from %s)", command.ErrUsage, kind, strings.Join(CatalogKinds, ", "))
	}
	return b.String(), nil
}

// RenderSaved formats persisted characters.
func RenderSaved(s Style, chars []*character.Character) string {
	if len(chars) == 0 {
		return "No saved characters.\n"
	}
	var b strings.Builder
	for _, c := range chars {
		fmt.Fprintf(&b, "  %s %s %s %s %d  %s\n",
			padRight(s.Paintf(Cyan, "#%d", c.ID), 6),
			padRight(c.Name, 24), c.Race, c.Class, max(1, c.Level),
			s.Paint(Dim, c.UpdatedAt.Format("2006-01-02 15:04")),
		)
	}
	return b.String()
}

// RenderStats formats the recomputation counters.
func RenderStats(s Style, st observability.RecomputeStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d recomputations, %d changed a total, deepest cascade %d\n", st.Total, st.Changed, st.MaxDepth)
	keys := make([]string, 0, len(st.PerStat))
	for k := range st.PerStat {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, c string) int {
		if d := st.PerStat[c] - st.PerStat[a]; d != 0 {
			return d
		}
		return strings.Compare(a, c)
	})
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s %d\n", padRight(s.Paint(Cyan, k), 20), st.PerStat[k])
	}
	return b.String()
}

// RenderHelp lists every command by category, or the usage of one command.
func RenderHelp(s Style, reg *command.Registry, name string) (string, error) {
	var b strings.Builder
	if name != "" {
		cmd, ok := reg.Resolve(name)
		if !ok {
			return "", fmt.Errorf("%w: no command %q", command.ErrUsage, name)
		}
		fmt.Fprintf(&b, "%s %s\n  %s\n", s.Paint(Green, cmd.Name), cmd.Usage, cmd.Help)
		if len(cmd.Aliases) > 0 {
			fmt.Fprintf(&b, "  aliases: %s\n", strings.Join(cmd.Aliases, ", "))
		}
		return b.String(), nil
	}
	byCategory := reg.CommandsByCategory()
	for _, cat := range command.Categories() {
		cmds := byCategory[cat]
		if len(cmds) == 0 {
			continue
		}
		b.WriteString(s.Paintf(BrightYellow, "%s:", cat) + "\n")
		for _, cmd := range cmds {
			fmt.Fprintf(&b, "  %s %s\n", padRight(s.Paint(Green, cmd.Name), 10), cmd.Help)
		}
	}
	return b.String(), nil
}
