// Package demo implements the sample command set the server ships with.
// It exercises every registration kind: a command, a regex, static and
// dynamic button payloads, the start button, chat service actions and
// both fallback hooks.
package demo

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/garyellow/vkbot-go/internal/bot"
	domerrors "github.com/garyellow/vkbot-go/internal/errors"
	"github.com/garyellow/vkbot-go/internal/event"
	"github.com/garyellow/vkbot-go/internal/keyboard"
	"github.com/garyellow/vkbot-go/internal/logger"
)

// ModuleName is used for handler names and log fields.
const ModuleName = "demo"

// ButtonBPayload is the payload carried by the "B" keyboard button.
const ButtonBPayload = `{"a": "b"}`

// Dice limits for the roll command.
const (
	maxDice  = 20
	maxSides = 1000
)

// Handler owns the demo keyboard and registers the demo commands.
type Handler struct {
	logger   *logger.Logger
	keyboard *keyboard.Keyboard
	help     string
	welcome  string
	errs     *domerrors.ErrorWrapper
}

// NewHandler builds the demo keyboard. prefix is the registry's command
// prefix and only affects the help text. It fails only if the keyboard is
// rejected by the VK layout limits.
func NewHandler(log *logger.Logger, prefix string) (*Handler, error) {
	kb, err := keyboard.New().
		Add(
			keyboard.NewTextButton("A", keyboard.Primary),
			keyboard.NewTextButton("B", keyboard.Default).WithPayload(ButtonBPayload),
		).
		Build()
	if err != nil {
		return nil, fmt.Errorf("demo keyboard: %w", err)
	}
	return &Handler{
		logger:   log.WithModule(ModuleName),
		keyboard: kb,
		help:     strings.ReplaceAll(helpTemplate, "{p}", prefix),
		welcome:  strings.ReplaceAll(welcomeTemplate, "{p}", prefix),
		errs:     domerrors.NewWrapper(ModuleName, "roll"),
	}, nil
}

// Name returns the module name.
func (h *Handler) Name() string {
	return ModuleName
}

// Register adds the demo handlers to r in matching order. The static
// payload handler comes before the catch-all payload handler, otherwise
// button B would never be answered specifically.
func (h *Handler) Register(r *bot.Registry) error {
	steps := []func() error{
		func() error { return r.OnPrefix("keyboard", h.handleKeyboard, bot.Named("demo.keyboard")) },
		func() error { return r.OnExact("help", bot.Respond(h.help), bot.Named("demo.help")) },
		func() error { return r.OnRegex(rollPattern, h.handleRoll, bot.Named("demo.roll")) },
		func() error { return r.OnRegex("nice", bot.Respond(thanksText), bot.Named("demo.nice")) },
		func() error { return r.OnPayload(ButtonBPayload, bot.Respond(buttonBText), bot.Named("demo.button_b")) },
		func() error { return r.OnPayloadFunc(anyPayload, bot.Respond(payloadText), bot.Named("demo.payload")) },
		func() error { return r.OnEvent(event.Start, h.handleStart, bot.Named("demo.start")) },
		func() error { return r.OnEvent(event.ServiceAction, h.handleServiceAction, bot.Named("demo.service_action")) },
		func() error { return r.OnNoMatch(bot.Respond(noMatchText), bot.Named("demo.no_match")) },
		func() error { return r.OnHandlerError(h.handleError, bot.Named("demo.handler_error")) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func anyPayload(string) bool { return true }

func (h *Handler) handleKeyboard(context.Context, *bot.Context) (*bot.Reply, error) {
	return bot.Text(keyboardText).WithKeyboard(h.keyboard), nil
}

// handleRoll answers "roll NdM" with N dice of M sides and their sum.
func (h *Handler) handleRoll(_ context.Context, c *bot.Context) (*bot.Reply, error) {
	m := c.Matches()
	if len(m) != 3 {
		return nil, fmt.Errorf("roll: unexpected submatches %q", m)
	}
	dice, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, h.errs.Wrap(err, rollUsageText)
	}
	sides, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, h.errs.Wrap(err, rollUsageText)
	}
	if dice < 1 || dice > maxDice || sides < 2 || sides > maxSides {
		return nil, h.errs.Wrapf(fmt.Errorf("roll %dd%d out of range", dice, sides),
			"I can roll 1 to %d dice with 2 to %d sides.", maxDice, maxSides)
	}

	rolls := make([]string, dice)
	total := 0
	for i := range dice {
		v := rand.IntN(sides) + 1
		total += v
		rolls[i] = strconv.Itoa(v)
	}
	return bot.Text(fmt.Sprintf("%s = %d", strings.Join(rolls, " + "), total)), nil
}

func (h *Handler) handleStart(context.Context, *bot.Context) (*bot.Reply, error) {
	return bot.Text(h.welcome).WithKeyboard(h.keyboard), nil
}

// handleServiceAction greets members invited to a chat. Other actions
// (title changes, pins) are acknowledged silently.
func (h *Handler) handleServiceAction(ctx context.Context, c *bot.Context) (*bot.Reply, error) {
	switch c.Action() {
	case actionInviteUser, actionInviteByLink:
		member, ok := c.ActionMemberID()
		if ok && member == -c.GroupID() {
			return bot.Text(joinedText + h.help), nil
		}
		return bot.Text(greetMemberText), nil
	default:
		h.logger.WithField("action", c.Action()).DebugContext(ctx, "Ignoring service action")
		return nil, nil
	}
}

// handleError turns a failed handler into a short apology. Errors wrapped
// with a user message keep that message.
func (h *Handler) handleError(ctx context.Context, c *bot.Context) (*bot.Reply, error) {
	h.logger.WithError(c.Err()).WarnContext(ctx, "Answering failed handler")
	return bot.Text(domerrors.GetUserMessage(c.Err(), errorText)), nil
}
