package challenge

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/ihsan/internal/challenges"
	"github.com/julianstephens/ihsan/internal/cli"
	"github.com/julianstephens/ihsan/internal/models"
)

type ChallengeCmd struct {
	List     ChallengeListCmd     `cmd:"" help:"List challenges and their state."`
	Start    ChallengeStartCmd    `cmd:"" help:"Start an available challenge."`
	Complete ChallengeCompleteCmd `cmd:"" help:"Complete an active challenge and collect its XP."`
	Reset    ChallengeResetCmd    `cmd:"" help:"Make a completed challenge available again (XP is kept)."`
	Create   ChallengeCreateCmd   `cmd:"" help:"Create a custom challenge."`
	Delete   ChallengeDeleteCmd   `cmd:"" help:"Delete an available custom challenge."`
}

type ChallengeListCmd struct {
	State string `help:"Only show challenges in this state (available|active|completed)."`
}

func (c *ChallengeListCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	board, err := sess.ChallengeBoard()
	if err != nil {
		return err
	}

	filter := models.ChallengeState(strings.ToLower(c.State))
	shown := 0
	fmt.Println("Challenges:")
	for _, e := range board {
		if filter != "" && e.State != filter {
			continue
		}
		shown++
		custom := ""
		if e.Challenge.IsCustom {
			custom = " [custom]"
		}
		fmt.Printf("  [%s] %s %s%s (ID: %s) - %d XP, %s, %s\n",
			e.State, e.Challenge.Icon, e.Challenge.Title, custom, e.Challenge.ID,
			e.Challenge.XP, e.Challenge.Category, e.Challenge.Difficulty)
	}
	if shown == 0 {
		fmt.Println("  No challenges found.")
	}
	return nil
}

type ChallengeStartCmd struct {
	ID string `arg:"" help:"Challenge ID."`
}

func (c *ChallengeStartCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	if err := sess.StartChallenge(c.ID); err != nil {
		return err
	}
	fmt.Printf("Started challenge: %s\n", c.ID)
	return nil
}

type ChallengeCompleteCmd struct {
	ID string `arg:"" help:"Challenge ID."`
}

func (c *ChallengeCompleteCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	res, err := sess.CompleteChallenge(c.ID)
	if err != nil {
		return err
	}
	fmt.Printf("Completed challenge %s: %s\n", c.ID, cli.FormatResult(res))
	return nil
}

type ChallengeResetCmd struct {
	ID string `arg:"" help:"Challenge ID."`
}

func (c *ChallengeResetCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	if err := sess.ResetChallenge(c.ID); err != nil {
		return err
	}
	fmt.Printf("Reset challenge: %s\n", c.ID)
	return nil
}

type ChallengeCreateCmd struct {
	Title       string `arg:"" help:"Challenge title."`
	Description string `short:"D" help:"Description."`
	XP          int    `short:"x" help:"XP reward (10-500)." default:"50"`
	Icon        string `help:"Icon shown next to the title." default:"⭐"`
	Category    string `short:"c" help:"Category (faith|community|self)." default:"self"`
	Difficulty  string `short:"d" help:"Difficulty (easy|medium|hard)." default:"medium"`
	Duration    string `help:"Free-form duration, e.g. '7 days'."`
}

func (c *ChallengeCreateCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	ch, err := sess.CreateCustomChallenge(challenges.Draft{
		Title:       c.Title,
		Description: c.Description,
		XP:          c.XP,
		Icon:        c.Icon,
		Category:    models.ChallengeCategory(strings.ToLower(c.Category)),
		Difficulty:  models.ChallengeDifficulty(strings.ToLower(c.Difficulty)),
		Duration:    c.Duration,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created challenge: %s (ID: %s, %d XP)\n", ch.Title, ch.ID, ch.XP)
	return nil
}

type ChallengeDeleteCmd struct {
	ID string `arg:"" help:"Custom challenge ID."`
}

func (c *ChallengeDeleteCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	if err := sess.DeleteCustomChallenge(c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted challenge: %s\n", c.ID)
	return nil
}
