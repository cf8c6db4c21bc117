// Package command provides the command registry, the line parser and the argument
// parsers for the built-in console commands.
package command

// Categories for organizing commands in help output.
const (
	CategoryCharacter = "character"
	CategoryItems     = "items"
	CategoryEnemies   = "enemies"
	CategoryStorage   = "storage"
	CategorySystem    = "system"
)

// Handler identifiers mapping commands to console handlers.
const (
	HandlerCreate  = "create"
	HandlerRoll    = "roll"
	HandlerSheet   = "sheet"
	HandlerSet     = "set"
	HandlerUnits   = "units"
	HandlerSpawn   = "spawn"
	HandlerEquip   = "equip"
	HandlerUnequip = "unequip"
	HandlerItems   = "items"
	HandlerCatalog = "catalog"
	HandlerEnemy   = "enemy"
	HandlerSave    = "save"
	HandlerLoad    = "load"
	HandlerSaved   = "saved"
	HandlerStats   = "stats"
	HandlerHelp    = "help"
	HandlerQuit    = "quit"
)

// Command defines a console command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage is the argument synopsis shown after the name in help output.
	Usage string
	// Help is the short help text.
	Help string
	// Category groups the command in help output.
	Category string
	// Handler selects the console handler that executes the command.
	Handler string
}

// BuiltinCommands returns every built-in console command.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "create", Aliases: []string{"new"}, Usage: "<name> <race> <class> <background> [alignment] [standard|roll]", Help: "Create a level 1 character", Category: CategoryCharacter, Handler: HandlerCreate},
		{Name: "roll", Usage: "", Help: "Roll a set of ability scores (4d6, drop lowest)", Category: CategoryCharacter, Handler: HandlerRoll},
		{Name: "sheet", Aliases: []string{"sh", "show"}, Usage: "<unit>", Help: "Show a unit's character sheet", Category: CategoryCharacter, Handler: HandlerSheet},
		{Name: "set", Aliases: []string{"setbase"}, Usage: "<unit> <stat> <value>", Help: "Set the base value of a stat", Category: CategoryCharacter, Handler: HandlerSet},
		{Name: "units", Aliases: []string{"who", "ls"}, Help: "List units in play", Category: CategoryCharacter, Handler: HandlerUnits},

		{Name: "spawn", Usage: "<item_id>", Help: "Create an unequipped item", Category: CategoryItems, Handler: HandlerSpawn},
		{Name: "equip", Aliases: []string{"eq", "wear"}, Usage: "<unit> <item>", Help: "Equip an unequipped item on a unit", Category: CategoryItems, Handler: HandlerEquip},
		{Name: "unequip", Aliases: []string{"ueq", "remove"}, Usage: "<unit> <item>", Help: "Remove an equipped item from a unit", Category: CategoryItems, Handler: HandlerUnequip},
		{Name: "items", Aliases: []string{"inv", "i"}, Help: "List unequipped items", Category: CategoryItems, Handler: HandlerItems},
		{Name: "catalog", Aliases: []string{"cat"}, Usage: "[items|races|classes|backgrounds|enemies]", Help: "List loaded content", Category: CategoryItems, Handler: HandlerCatalog},

		{Name: "enemy", Aliases: []string{"summon"}, Usage: "<enemy_id>", Help: "Spawn an enemy from its template", Category: CategoryEnemies, Handler: HandlerEnemy},

		{Name: "save", Usage: "<unit>", Help: "Persist a character", Category: CategoryStorage, Handler: HandlerSave},
		{Name: "load", Usage: "<character_id>", Help: "Bring a saved character into play", Category: CategoryStorage, Handler: HandlerLoad},
		{Name: "saved", Help: "List saved characters", Category: CategoryStorage, Handler: HandlerSaved},

		{Name: "stats", Help: "Show stat recomputation counters", Category: CategorySystem, Handler: HandlerStats},
		{Name: "help", Aliases: []string{"?"}, Usage: "[command]", Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Help: "Leave the console", Category: CategorySystem, Handler: HandlerQuit},
	}
}

// Categories returns the command categories in display order.
func Categories() []string {
	return []string{CategoryCharacter, CategoryItems, CategoryEnemies, CategoryStorage, CategorySystem}
}
