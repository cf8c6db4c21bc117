// Package console is the interactive text frontend: it reads command lines, runs them
// against the game service and prints rendered results.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/command"
	"github.com/cory-johannsen/charsheet/internal/game/dice"
	"github.com/cory-johannsen/charsheet/internal/game/inventory"
	"github.com/cory-johannsen/charsheet/internal/game/ruleset"
	"github.com/cory-johannsen/charsheet/internal/gameserver"
	"github.com/cory-johannsen/charsheet/internal/observability"
)

// Game is the subset of gameserver.GameService the console drives.
type Game interface {
	HasStorage() bool
	CreateCharacter(ctx context.Context, spec character.Spec) (string, error)
	RollAbilities(ctx context.Context) ([]int, error)
	SpawnItem(ctx context.Context, defID string) (gameserver.ItemView, error)
	Equip(ctx context.Context, unitRef, itemRef string) error
	Unequip(ctx context.Context, unitRef, itemRef string) error
	SpawnEnemy(ctx context.Context, templateID string) (string, error)
	SetBase(ctx context.Context, unitRef, statKey string, value float64) error
	Snapshot(ctx context.Context, unitRef string) (gameserver.Sheet, error)
	Units(ctx context.Context) ([]gameserver.UnitSummary, error)
	LooseItems(ctx context.Context) ([]gameserver.ItemView, error)
	Catalog() ([]*inventory.ItemDef, *ruleset.Registry)
	Save(ctx context.Context, unitRef string) (int64, error)
	Load(ctx context.Context, id int64) (string, error)
	Saved(ctx context.Context) ([]*character.Character, error)
}

// StatsSource reports stat recomputation counters.
type StatsSource interface {
	Snapshot() observability.RecomputeStats
}

// Options configures a Console.
type Options struct {
	// Color enables ANSI styling.
	Color bool
	// Prompt is printed before each line is read. Empty disables the prompt.
	Prompt string
	// CommandTimeout bounds each command. Zero means no bound.
	CommandTimeout time.Duration
}

// Console reads commands from in and writes results to out.
//
// Console implements server.Service.
type Console struct {
	game     Game
	stats    StatsSource
	registry *command.Registry
	in       io.Reader
	out      io.Writer
	opts     Options
	style    Style
	logger   *zap.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// New creates a Console. stats may be nil.
//
// Precondition: game, in, out and logger must be non-nil.
func New(game Game, stats StatsSource, in io.Reader, out io.Writer, opts Options, logger *zap.Logger) *Console {
	if game == nil || in == nil || out == nil || logger == nil {
		panic("console.New: game, in, out and logger must not be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Console{
		game:     game,
		stats:    stats,
		registry: command.DefaultRegistry(),
		in:       in,
		out:      out,
		opts:     opts,
		style:    Style{Enabled: opts.Color},
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start runs the read-eval-print loop until the input ends, quit is entered or Stop
// is called.
func (c *Console) Start() error {
	defer c.Stop()
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-c.ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	if !c.game.HasStorage() {
		_, _ = io.WriteString(c.out, c.style.Paint(Yellow, "Storage is disabled; save and load are unavailable.")+"\n")
	}
	c.writePrompt()
	for {
		select {
		case <-c.ctx.Done():
			return nil
		case err := <-readErr:
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			return nil
		case line := <-lines:
			out, quit := c.Execute(c.ctx, line)
			if out != "" {
				if _, err := io.WriteString(c.out, out); err != nil {
					return fmt.Errorf("writing output: %w", err)
				}
			}
			if quit {
				return nil
			}
			c.writePrompt()
		}
	}
}

// Stop ends Start. It is idempotent.
func (c *Console) Stop() {
	c.stopOnce.Do(c.cancel)
}

func (c *Console) writePrompt() {
	if c.opts.Prompt != "" {
		_, _ = io.WriteString(c.out, c.style.Paint(BrightCyan, c.opts.Prompt))
	}
}

// Execute runs one command line and returns its rendered output and whether the
// console should exit. Errors are rendered into the output.
func (c *Console) Execute(ctx context.Context, line string) (string, bool) {
	parsed, err := command.Parse(line)
	if err != nil {
		return c.renderError(nil, err), false
	}
	if parsed.Command == "" {
		return "", false
	}
	cmd, ok := c.registry.Resolve(parsed.Command)
	if !ok {
		return c.style.Paintf(Dim, "Unknown command %q. Type help for a list.", parsed.Command) + "\n", false
	}
	if cmd.Handler == command.HandlerQuit {
		return c.style.Paint(Cyan, "Farewell.") + "\n", true
	}

	if c.opts.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.CommandTimeout)
		defer cancel()
	}
	start := time.Now()
	out, err := c.run(ctx, cmd, parsed.Args)
	c.logger.Debug("command executed",
		zap.String("command", cmd.Name),
		zap.Int("args", len(parsed.Args)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)
	if err != nil {
		return c.renderError(cmd, err), false
	}
	return out, false
}

func (c *Console) renderError(cmd *command.Command, err error) string {
	msg := c.style.Paint(Red, err.Error()) + "\n"
	if cmd != nil && errors.Is(err, command.ErrUsage) {
		msg += c.style.Paintf(Dim, "usage: %s %s", cmd.Name, cmd.Usage) + "\n"
	}
	return msg
}

func (c *Console) run(ctx context.Context, cmd *command.Command, args []string) (string, error) {
	switch cmd.Handler {
	case command.HandlerCreate:
		return c.create(ctx, args)
	case command.HandlerRoll:
		scores, err := c.game.RollAbilities(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Rolled %v (4d6, drop lowest)\n", scores), nil
	case command.HandlerSheet:
		ref, err := command.ParseOne(cmd.Name, args)
		if err != nil {
			return "", err
		}
		return c.sheet(ctx, ref)
	case command.HandlerSet:
		a, err := command.ParseSet(args)
		if err != nil {
			return "", err
		}
		if err := c.game.SetBase(ctx, a.Unit, a.Stat, a.Value); err != nil {
			return "", err
		}
		return c.sheet(ctx, a.Unit)
	case command.HandlerUnits:
		units, err := c.game.Units(ctx)
		if err != nil {
			return "", err
		}
		return RenderUnits(c.style, units), nil
	case command.HandlerSpawn:
		defID, err := command.ParseOne(cmd.Name, args)
		if err != nil {
			return "", err
		}
		it, err := c.game.SpawnItem(ctx, defID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Spawned %s %s\n", it.Name, c.style.Paint(Dim, shortID(it.InstanceID))), nil
	case command.HandlerEquip, command.HandlerUnequip:
		unitRef, itemRef, err := command.ParsePair(cmd.Name, args)
		if err != nil {
			return "", err
		}
		if cmd.Handler == command.HandlerEquip {
			err = c.game.Equip(ctx, unitRef, itemRef)
		} else {
			err = c.game.Unequip(ctx, unitRef, itemRef)
		}
		if err != nil {
			return "", err
		}
		return c.sheet(ctx, unitRef)
	case command.HandlerItems:
		items, err := c.game.LooseItems(ctx)
		if err != nil {
			return "", err
		}
		return RenderItems(c.style, items), nil
	case command.HandlerCatalog:
		if len(args) > 1 {
			return "", fmt.Errorf("%w: catalog takes at most 1 argument", command.ErrUsage)
		}
		kind := ""
		if len(args) == 1 {
			kind = strings.ToLower(args[0])
		}
		items, rules := c.game.Catalog()
		return RenderCatalog(c.style, kind, items, rules)
	case command.HandlerEnemy:
		templateID, err := command.ParseOne(cmd.Name, args)
		if err != nil {
			return "", err
		}
		id, err := c.game.SpawnEnemy(ctx, strings.ToLower(templateID))
		if err != nil {
			return "", err
		}
		return c.sheet(ctx, id)
	case command.HandlerSave:
		ref, err := command.ParseOne(cmd.Name, args)
		if err != nil {
			return "", err
		}
		id, err := c.game.Save(ctx, ref)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Saved as #%d\n", id), nil
	case command.HandlerLoad:
		id, err := command.ParseCharacterID(args)
		if err != nil {
			return "", err
		}
		unitID, err := c.game.Load(ctx, id)
		if unitID == "" {
			return "", err
		}
		out, serr := c.sheet(ctx, unitID)
		if err != nil {
			out += c.style.Paint(Yellow, err.Error()) + "\n"
		}
		return out, serr
	case command.HandlerSaved:
		chars, err := c.game.Saved(ctx)
		if err != nil {
			return "", err
		}
		return RenderSaved(c.style, chars), nil
	case command.HandlerStats:
		if c.stats == nil {
			return "Recomputation counters are disabled.\n", nil
		}
		return RenderStats(c.style, c.stats.Snapshot()), nil
	case command.HandlerHelp:
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		return RenderHelp(c.style, c.registry, name)
	default:
		return "", fmt.Errorf("command %q has no handler", cmd.Name)
	}
}

func (c *Console) create(ctx context.Context, args []string) (string, error) {
	a, err := command.ParseCreate(args)
	if err != nil {
		return "", err
	}
	scores := dice.StandardArray
	if a.Method == command.MethodRoll {
		if scores, err = c.game.RollAbilities(ctx); err != nil {
			return "", err
		}
	}
	abilities, err := character.AbilitiesFromScores(scores)
	if err != nil {
		return "", err
	}
	id, err := c.game.CreateCharacter(ctx, character.Spec{
		Name:       a.Name,
		Race:       a.Race,
		Class:      a.Class,
		Background: a.Background,
		Alignment:  a.Alignment,
		Abilities:  abilities,
	})
	if err != nil {
		return "", err
	}
	return c.sheet(ctx, id)
}

func (c *Console) sheet(ctx context.Context, ref string) (string, error) {
	sh, err := c.game.Snapshot(ctx, ref)
	if err != nil {
		return "", err
	}
	return RenderSheet(c.style, sh), nil
}
