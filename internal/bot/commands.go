package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/robalobadob/worduel/internal/game"
	"github.com/robalobadob/worduel/internal/limit"
	"github.com/robalobadob/worduel/internal/scores"
	"github.com/robalobadob/worduel/internal/session"
)

const (
	defaultTop = 10
	maxTop     = 50
	maxDice    = 100
)

// handler runs one command. args excludes the command itself.
type handler func(ctx context.Context, user game.UserID, args []string) (string, error)

type command struct {
	usage string
	help  string
	run   handler
}

// Commands turns chat messages into session operations and replies.
// It knows nothing about Telegram so it can be driven directly in tests.
type Commands struct {
	svc    *session.Service
	limits *limit.Registry
	roll   func(size int) int
	table  map[string]command
}

// NewCommands builds the command table. limits may be nil.
func NewCommands(svc *session.Service, limits *limit.Registry) *Commands {
	c := &Commands{
		svc:    svc,
		limits: limits,
		roll:   func(size int) int { return rand.IntN(size) + 1 },
	}
	c.table = map[string]command{
		"start": {"/start", "show this help", c.help},
		"help":  {"/help", "show this help", c.help},

		"wd_challenge": {"/wd_challenge <user> <word|length>", "challenge a player to a timed duel", c.challenge(game.Timed)},
		"wd_accept":    {"/wd_accept <user> <word>", "accept a timed duel with the word they must guess", c.accept(game.Timed)},
		"wd_reject":    {"/wd_reject <user>", "reject a timed duel invite", c.reject(game.Timed)},
		"wd_send":      {"/wd_send <word>", "guess in your timed duel", c.guess(game.Timed)},
		"wd_status":    {"/wd_status", "show your timed duel", c.status(game.Timed)},
		"wd_forfeit":   {"/wd_forfeit <user>", "give up your timed duel", c.forfeit(game.Timed)},
		"wd_kb":        {"/wd_kb", "show your keyboard in the timed duel", c.keyboard(game.Timed)},

		"wdturn_challenge": {"/wdturn_challenge <user> <word|length>", "challenge a player to a turn-based duel", c.challenge(game.TurnBased)},
		"wdturn_accept":    {"/wdturn_accept <user> <word>", "accept a turn-based duel", c.accept(game.TurnBased)},
		"wdturn_reject":    {"/wdturn_reject <user>", "reject a turn-based duel invite", c.reject(game.TurnBased)},
		"wdturn_send":      {"/wdturn_send <user> <word>", "guess in your turn-based duel with user", c.guess(game.TurnBased)},
		"wdturn_remind":    {"/wdturn_remind <user>", "show your turn-based duel with user", c.status(game.TurnBased)},
		"wdturn_forfeit":   {"/wdturn_forfeit <user>", "give up your turn-based duel with user", c.forfeit(game.TurnBased)},
		"wdturn_kb":        {"/wdturn_kb <user>", "show your keyboard in the duel with user", c.keyboard(game.TurnBased)},

		"wd_top":    {"/wd_top [n]", "show the leaderboard", c.top},
		"wd_score":  {"/wd_score", "show your points", c.score},
		"wd_duels":  {"/wd_duels", "list your duels and invites", c.duels},
		"lookup":    {"/lookup <word>", "look a word up in the dictionary", c.lookup},
		"testmatch": {"/testmatch <base> <word>", "see how well word matches base", c.testmatch},
		"roll":      {"/roll [size] [count]", "roll dice", c.rollDice},
	}
	return c
}

// usageError is shown with the command's usage line.
type usageError struct{}

func (usageError) Error() string { return "bad arguments" }

var errUsage = usageError{}

// Dispatch runs the command in text on behalf of user and returns the reply.
// Text that is not a known command yields an empty reply.
func (c *Commands) Dispatch(ctx context.Context, user game.UserID, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	name := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	cmd, ok := c.table[name]
	if !ok {
		return ""
	}

	reqID := uuid.NewString()
	logger := log.With().
		Str("request_id", reqID).
		Int64("user", int64(user)).
		Str("command", name).
		Logger()

	if c.limits != nil && !c.limits.Allow(user) {
		logger.Debug().Msg("rate limited")
		return "Slow down a little."
	}

	reply, err := cmd.run(ctx, user, fields[1:])
	if err != nil {
		if errors.Is(err, errUsage) {
			return "Usage: " + cmd.usage
		}
		if !knownError(err) {
			logger.Error().Err(err).Msg("command failed")
			return "Something went wrong, please try again later."
		}
		logger.Debug().Err(err).Msg("command rejected")
		return "Error: " + err.Error()
	}
	logger.Debug().Msg("command handled")
	return reply
}

var gameErrors = []error{
	game.ErrBadWordLength, game.ErrWordNotFound, game.ErrNoGame,
	game.ErrSelfChallenge, game.ErrAlreadyInGame, game.ErrNoInvite,
	game.ErrGameDeleted, game.ErrBadAccept, game.ErrGameStarted,
	game.ErrForfeitBadUser,
}

func knownError(err error) bool {
	return lo.ContainsBy(gameErrors, func(target error) bool { return errors.Is(err, target) })
}

func parseUser(s string) (game.UserID, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "@"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errUsage
	}
	return game.UserID(id), nil
}

// ---- duels ----

func (c *Commands) challenge(v game.Variant) handler {
	return func(_ context.Context, user game.UserID, args []string) (string, error) {
		if len(args) != 2 {
			return "", errUsage
		}
		opp, err := parseUser(args[0])
		if err != nil {
			return "", err
		}
		id, err := c.svc.Challenge(user, opp, v, args[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Challenged %d to a %s duel (game %d). The invite expires in %s.",
			opp, v, id, c.svc.Policy().InviteTTL(v)), nil
	}
}

func (c *Commands) accept(v game.Variant) handler {
	return func(_ context.Context, user game.UserID, args []string) (string, error) {
		if len(args) != 2 {
			return "", errUsage
		}
		opp, err := parseUser(args[0])
		if err != nil {
			return "", err
		}
		id, err := c.svc.AcceptInvite(user, opp, v, args[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Duel %d against %d has started. Send guesses with %s.", id, opp, sendCommand(v)), nil
	}
}

func (c *Commands) reject(v game.Variant) handler {
	return func(_ context.Context, user game.UserID, args []string) (string, error) {
		if len(args) != 1 {
			return "", errUsage
		}
		opp, err := parseUser(args[0])
		if err != nil {
			return "", err
		}
		duel, err := c.svc.RejectInvite(user, opp, v)
		if err != nil {
			return "", err
		}
		if duel == nil {
			return fmt.Sprintf("Rejected the invite from %d.", opp), nil
		}
		return fmt.Sprintf("Rejected the invite from %d. Their word was %s.",
			opp, strings.ToUpper(duel.Secret(1))), nil
	}
}

func (c *Commands) guess(v game.Variant) handler {
	return func(_ context.Context, user game.UserID, args []string) (string, error) {
		var opp game.UserID
		switch {
		case v == game.Timed && len(args) == 1:
		case v == game.TurnBased && len(args) == 2:
			var err error
			if opp, err = parseUser(args[0]); err != nil {
				return "", err
			}
		default:
			return "", errUsage
		}
		m, err := c.svc.Guess(user, v, opp, args[len(args)-1])
		if err != nil {
			return "", err
		}
		return formatMove(user, m), nil
	}
}

func (c *Commands) status(v game.Variant) handler {
	return func(_ context.Context, user game.UserID, args []string) (string, error) {
		opp, err := optionalOpponent(v, args)
		if err != nil {
			return "", err
		}
		m, err := c.svc.Status(user, v, opp)
		if err != nil {
			return "", err
		}
		return formatMove(user, m), nil
	}
}

func (c *Commands) forfeit(v game.Variant) handler {
	return func(_ context.Context, user game.UserID, args []string) (string, error) {
		if len(args) != 1 {
			return "", errUsage
		}
		opp, err := parseUser(args[0])
		if err != nil {
			return "", err
		}
		m, err := c.svc.Forfeit(user, v, opp)
		if err != nil {
			return "", err
		}
		return m.Views + "\n\nYou forfeited the duel against " + strconv.FormatInt(int64(opp), 10) + ".", nil
	}
}

func (c *Commands) keyboard(v game.Variant) handler {
	return func(_ context.Context, user game.UserID, args []string) (string, error) {
		opp, err := optionalOpponent(v, args)
		if err != nil {
			return "", err
		}
		return c.svc.Keyboard(user, v, opp)
	}
}

// optionalOpponent reads the opponent argument turn-based commands need.
func optionalOpponent(v game.Variant, args []string) (game.UserID, error) {
	if v == game.Timed {
		if len(args) != 0 {
			return 0, errUsage
		}
		return 0, nil
	}
	if len(args) != 1 {
		return 0, errUsage
	}
	return parseUser(args[0])
}

func sendCommand(v game.Variant) string {
	if v == game.TurnBased {
		return "/wdturn_send"
	}
	return "/wd_send"
}

func formatMove(user game.UserID, m session.Move) string {
	var b strings.Builder
	if !m.Accepted {
		b.WriteString("That guess was not accepted, it is not your turn to move.\n\n")
	}
	b.WriteString(m.Views)
	b.WriteString("\n\n")
	b.WriteString(m.State)
	if m.Progress.State == game.Over {
		switch {
		case m.Progress.Draw():
			b.WriteString("\nIt's a draw.")
		case m.Winner == user:
			b.WriteString("\nYou win!")
		default:
			b.WriteString("\nYou lose.")
		}
		if sec := m.Snapshot.Secrets; sec != nil {
			fmt.Fprintf(&b, "\nWords: %s / %s", strings.ToUpper(sec[1]), strings.ToUpper(sec[0]))
		}
	}
	return b.String()
}

// ---- scores ----

func (c *Commands) top(ctx context.Context, _ game.UserID, args []string) (string, error) {
	n := defaultTop
	if len(args) > 1 {
		return "", errUsage
	}
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return "", errUsage
		}
		n = max(1, min(v, maxTop))
	}
	entries, err := c.svc.Scores().ListTop(ctx, n)
	if err != nil {
		return "", fmt.Errorf("list top: %w", err)
	}
	if len(entries) == 0 {
		return "Nobody has scored yet.", nil
	}
	lines := lo.Map(entries, func(e scores.Entry, i int) string {
		return fmt.Sprintf("%d. %d: %d", i+1, e.User, e.Points)
	})
	return "Leaderboard\n" + strings.Join(lines, "\n"), nil
}

func (c *Commands) score(ctx context.Context, user game.UserID, _ []string) (string, error) {
	pts, err := c.svc.Scores().Get(ctx, user)
	if err != nil {
		return "", fmt.Errorf("get score: %w", err)
	}
	return fmt.Sprintf("You have %d points.", pts), nil
}

func (c *Commands) duels(_ context.Context, user game.UserID, _ []string) (string, error) {
	ov := c.svc.Overview(user)
	if len(ov.Games) == 0 && len(ov.Invites) == 0 {
		return "You have no duels or invites.", nil
	}
	var b strings.Builder
	for _, g := range ov.Games {
		fmt.Fprintf(&b, "Game %d (%s) against %d: %s\n", g.ID, g.Variant, g.Players[1-g.Side], g.State)
	}
	for _, p := range ov.Invites {
		fmt.Fprintf(&b, "Invite from %d (%s), expires %s\n", p.From, p.Variant, p.Invite.Expiry.Format("15:04:05"))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// ---- dictionary and misc ----

func (c *Commands) lookup(_ context.Context, _ game.UserID, args []string) (string, error) {
	if len(args) != 1 {
		return "", errUsage
	}
	if c.svc.Dictionary().Contains(args[0]) {
		return "Found in the dictionary", nil
	}
	return "Not found in the dictionary", nil
}

func (c *Commands) testmatch(_ context.Context, _ game.UserID, args []string) (string, error) {
	if len(args) != 2 {
		return "", errUsage
	}
	base, word := strings.ToLower(args[0]), strings.ToLower(args[1])
	if len(base) != len(word) {
		return "Word lengths mismatched!", nil
	}
	return "Match status:\n" + game.RenderMatch(word, game.MatchWord(base, word)), nil
}

func (c *Commands) rollDice(_ context.Context, _ game.UserID, args []string) (string, error) {
	size, count := 6, 1
	if len(args) > 2 {
		return "", errUsage
	}
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return "", errUsage
		}
		size = v
	}
	if len(args) > 1 {
		v, err := strconv.Atoi(args[1])
		if err != nil || v < 1 || v > maxDice {
			return "", errUsage
		}
		count = v
	}
	if size <= 1 {
		return fmt.Sprintf("Error: %d is not a valid size of dice.", size), nil
	}
	total := 0
	for range count {
		total += c.roll(size)
	}
	out := fmt.Sprintf("Rolling %dd%d...\nResult: %d", count, size, total)
	if count == 1 && size == 20 && total == 20 {
		out += "\nDon't let it go to your head."
	}
	return out, nil
}

func (c *Commands) help(context.Context, game.UserID, []string) (string, error) {
	names := lo.Keys(c.table)
	slices.Sort(names)
	lines := lo.FilterMap(names, func(n string, _ int) (string, bool) {
		cmd := c.table[n]
		return cmd.usage + " - " + cmd.help, n != "start"
	})
	return "Worduel commands:\n" + strings.Join(lines, "\n"), nil
}
