package command

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cory-johannsen/charsheet/internal/game/ruleset"
)

// ErrUsage is wrapped by every argument error so the console can print the
// command's usage line.
var ErrUsage = errors.New("usage")

// AbilityMethod selects how a new character's ability scores are produced.
type AbilityMethod string

const (
	// MethodStandard assigns the standard array in ability order.
	MethodStandard AbilityMethod = "standard"
	// MethodRoll rolls 4d6 drop lowest for each ability.
	MethodRoll AbilityMethod = "roll"
)

// CreateArgs are the parsed arguments of the create command.
type CreateArgs struct {
	Name       string
	Race       string
	Class      string
	Background string
	Alignment  ruleset.Alignment
	Method     AbilityMethod
}

// ParseCreate parses "<name> <race> <class> <background> [alignment] [standard|roll]".
// The optional arguments may appear in either order.
//
// Postcondition: Returns CreateArgs with Alignment defaulting to Neutral and Method
// to MethodStandard, or an error wrapping ErrUsage.
func ParseCreate(args []string) (CreateArgs, error) {
	if len(args) < 4 || len(args) > 6 {
		return CreateArgs{}, fmt.Errorf("%w: create takes 4 to 6 arguments, got %d", ErrUsage, len(args))
	}
	out := CreateArgs{
		Name:       args[0],
		Race:       strings.ToLower(args[1]),
		Class:      strings.ToLower(args[2]),
		Background: strings.ToLower(args[3]),
		Alignment:  ruleset.Neutral,
		Method:     MethodStandard,
	}
	if strings.TrimSpace(out.Name) == "" {
		return CreateArgs{}, fmt.Errorf("%w: name must not be blank", ErrUsage)
	}
	var sawAlignment, sawMethod bool
	for _, opt := range args[4:] {
		opt = strings.ToLower(opt)
		switch m := AbilityMethod(opt); m {
		case MethodStandard, MethodRoll:
			if sawMethod {
				return CreateArgs{}, fmt.Errorf("%w: ability method given twice", ErrUsage)
			}
			out.Method, sawMethod = m, true
			continue
		}
		a, err := ruleset.ParseAlignment(opt)
		if err != nil {
			return CreateArgs{}, fmt.Errorf("%w: %v", ErrUsage, err)
		}
		if sawAlignment {
			return CreateArgs{}, fmt.Errorf("%w: alignment given twice", ErrUsage)
		}
		out.Alignment, sawAlignment = a, true
	}
	return out, nil
}

// SetArgs are the parsed arguments of the set command.
type SetArgs struct {
	Unit  string
	Stat  string
	Value float64
}

// ParseSet parses "<unit> <stat> <value>". The stat key is passed through for the
// world to validate.
func ParseSet(args []string) (SetArgs, error) {
	if len(args) != 3 {
		return SetArgs{}, fmt.Errorf("%w: set takes 3 arguments, got %d", ErrUsage, len(args))
	}
	v, err := strconv.ParseFloat(args[2], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return SetArgs{}, fmt.Errorf("%w: %q is not a number", ErrUsage, args[2])
	}
	return SetArgs{Unit: args[0], Stat: strings.ToLower(args[1]), Value: v}, nil
}

// ParsePair parses the "<unit> <item>" arguments shared by equip and unequip.
func ParsePair(name string, args []string) (unitRef, itemRef string, err error) {
	if len(args) != 2 {
		return "", "", fmt.Errorf("%w: %s takes 2 arguments, got %d", ErrUsage, name, len(args))
	}
	return args[0], args[1], nil
}

// ParseOne parses a command that takes exactly one argument.
func ParseOne(name string, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%w: %s takes 1 argument, got %d", ErrUsage, name, len(args))
	}
	return args[0], nil
}

// ParseCharacterID parses a positive saved character ID.
func ParseCharacterID(args []string) (int64, error) {
	raw, err := ParseOne("load", args)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %q is not a character id", ErrUsage, raw)
	}
	return id, nil
}
