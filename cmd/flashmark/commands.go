package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/flashmark/flashmark/internal/domain"
	"github.com/flashmark/flashmark/internal/domain/filter"
	"github.com/flashmark/flashmark/internal/domain/stats"
	"github.com/flashmark/flashmark/internal/service/review"
	"github.com/flashmark/flashmark/internal/store"
)

// dispatch routes a parsed command line to its implementation.
func (app *application) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "deck":
		return app.runDeck(ctx, args)
	case "card":
		return app.runCard(ctx, args)
	case "due":
		return app.runDue(ctx, args)
	case "review":
		return app.runReview(ctx, args)
	case "stats":
		return app.runStats(ctx)
	case "serve":
		return app.runServe(ctx)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func (app *application) runDeck(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("deck: missing subcommand (add, list, rename, rm)")
	}

	switch args[0] {
	case "add":
		if len(args) != 2 {
			return errors.New("usage: flashmark deck add <name>")
		}
		deck, err := app.repo.CreateDeck(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("created deck %s (%s)\n", deck.Name, deck.ID)
		return nil

	case "list":
		decks, err := app.repo.ListDecks(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCREATED")
		for _, d := range decks {
			fmt.Fprintf(w, "%s\t%s\t%s\n", d.ID, d.Name, d.CreatedAt.Format(time.DateOnly))
		}
		return w.Flush()

	case "rename":
		if len(args) != 3 {
			return errors.New("usage: flashmark deck rename <id> <name>")
		}
		id, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid deck id: %w", err)
		}
		deck, err := app.repo.RenameDeck(ctx, id, args[2])
		if err != nil {
			return err
		}
		fmt.Printf("renamed deck %s to %s\n", deck.ID, deck.Name)
		return nil

	case "rm":
		if len(args) != 2 {
			return errors.New("usage: flashmark deck rm <id>")
		}
		id, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid deck id: %w", err)
		}
		if err := app.repo.DeleteDeck(ctx, id); err != nil {
			return err
		}
		fmt.Printf("deleted deck %s\n", id)
		return nil

	default:
		return fmt.Errorf("deck: unknown subcommand %q", args[0])
	}
}

func (app *application) runCard(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("card: missing subcommand (add, list, rm, suspend)")
	}

	switch args[0] {
	case "add":
		if len(args) < 4 || len(args) > 5 {
			return errors.New("usage: flashmark card add <deck-id> <front> <back> [hint]")
		}
		deckID, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid deck id: %w", err)
		}
		card, err := domain.NewCard(deckID, args[2], args[3])
		if err != nil {
			return err
		}
		if len(args) == 5 {
			card.Hint = args[4]
		}
		if err := app.repo.AddCard(ctx, card); err != nil {
			return err
		}
		fmt.Printf("created card %s\n", card.ID)
		return nil

	case "list":
		var deckID *uuid.UUID
		if len(args) == 2 {
			id, err := uuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid deck id: %w", err)
			}
			deckID = &id
		}
		cards, err := app.repo.ListCards(ctx, deckID)
		if err != nil {
			return err
		}
		return printCards(cards)

	case "rm":
		if len(args) != 2 {
			return errors.New("usage: flashmark card rm <id>")
		}
		id, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid card id: %w", err)
		}
		if err := app.repo.DeleteCard(ctx, id); err != nil {
			return err
		}
		fmt.Printf("deleted card %s\n", id)
		return nil

	case "suspend":
		if len(args) != 3 || (args[2] != "on" && args[2] != "off") {
			return errors.New("usage: flashmark card suspend <id> <on|off>")
		}
		id, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid card id: %w", err)
		}
		suspended := args[2] == "on"
		if err := app.repo.SetSuspended(ctx, id, suspended); err != nil {
			return err
		}
		if suspended {
			fmt.Printf("suspended card %s\n", id)
		} else {
			fmt.Printf("resumed card %s\n", id)
		}
		return nil

	default:
		return fmt.Errorf("card: unknown subcommand %q", args[0])
	}
}

func (app *application) dueQuery(args []string) (store.DueQuery, error) {
	q := store.DueQuery{
		DueOptions: filter.DueOptions{
			Now:           time.Now().UTC(),
			IncludeNew:    app.dueDefaults.IncludeNew,
			IncludeLapsed: app.dueDefaults.IncludeLapsed,
			Max:           app.dueDefaults.Max,
		},
	}
	if len(args) == 1 {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return q, fmt.Errorf("invalid deck id: %w", err)
		}
		q.DeckID = &id
	}
	return q, nil
}

func (app *application) runDue(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return errors.New("usage: flashmark due [deck-id]")
	}
	q, err := app.dueQuery(args)
	if err != nil {
		return err
	}
	cards, err := app.repo.DueCards(ctx, q)
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		fmt.Println("no cards due")
		return nil
	}
	return printCards(cards)
}

// runReview drives an interactive review session on stdin: show the
// front, reveal the back on Enter, then record the grade. The session
// ends when the queue drains or the user quits.
func (app *application) runReview(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return errors.New("usage: flashmark review [deck-id]")
	}

	reader := bufio.NewReader(os.Stdin)
	reviewed := 0

	for {
		q, err := app.dueQuery(args)
		if err != nil {
			return err
		}

		card, err := app.reviewService.NextCard(ctx, q)
		if errors.Is(err, review.ErrNoCardsDue) {
			break
		}
		if err != nil {
			return err
		}

		fmt.Printf("\nQ: %s\n", card.Front)
		if card.Hint != "" {
			fmt.Printf("   hint: %s\n", card.Hint)
		}
		fmt.Print("[Enter to reveal, q to quit] ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == "q" {
			break
		}

		fmt.Printf("A: %s\n", card.Back)

		grade, quit, err := promptGrade(reader)
		if err != nil {
			return err
		}
		if quit {
			break
		}

		outcome, err := app.reviewService.SubmitReview(ctx, card.ID, grade)
		if err != nil {
			return err
		}
		reviewed++
		fmt.Printf("next review in %d day(s)\n", outcome.Card.IntervalDays)
	}

	fmt.Printf("\nsession complete: %d card(s) reviewed\n", reviewed)
	return nil
}

func promptGrade(reader *bufio.Reader) (domain.Grade, bool, error) {
	for {
		fmt.Print("grade [hard/medium/easy, q to quit]: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", false, err
		}
		input := strings.TrimSpace(line)
		if input == "q" {
			return "", true, nil
		}
		grade, err := domain.ParseGrade(input)
		if err != nil {
			fmt.Println(err)
			continue
		}
		return grade, false, nil
	}
}

func (app *application) runStats(ctx context.Context) error {
	cards, err := app.repo.ListCards(ctx, nil)
	if err != nil {
		return err
	}
	reviews, err := app.repo.ListReviews(ctx, store.ReviewFilter{})
	if err != nil {
		return err
	}
	decks, err := app.repo.ListDecks(ctx)
	if err != nil {
		return err
	}

	cardsByID := make(map[uuid.UUID]*domain.Card, len(cards))
	for _, c := range cards {
		cardsByID[c.ID] = c
	}
	deckNames := make(map[uuid.UUID]string, len(decks))
	for _, d := range decks {
		deckNames[d.ID] = d.Name
	}

	now := time.Now().UTC()
	summary := stats.Aggregate(reviews, cardsByID, stats.Options{Now: now})

	fmt.Printf("reviews: %d (hard %d, medium %d, easy %d)\n",
		summary.Totals.Total, summary.Totals.Hard, summary.Totals.Medium, summary.Totals.Easy)
	fmt.Printf("accuracy: %.0f%%\n", summary.Totals.Accuracy()*100)
	fmt.Printf("streak: %d day(s)\n", stats.DailyStreak(reviews, now))

	if len(summary.PerDeck) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\nDECK\tREVIEWS\tACCURACY\tDUE\tNEW\tLAPSED")
	for deckID, dt := range summary.PerDeck {
		name := deckNames[deckID]
		if name == "" {
			name = deckID.String()
		}
		fmt.Fprintf(w, "%s\t%d\t%.0f%%\t%d\t%d\t%d\n",
			name, dt.Total, dt.Accuracy()*100, dt.Due, dt.New, dt.Lapsed)
	}
	return w.Flush()
}

func printCards(cards []*domain.Card) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFRONT\tDUE\tREPS\tEF\tSUSPENDED")
	for _, c := range cards {
		due := c.DueAt.Format(time.DateOnly)
		if c.IsNew() {
			due = "new"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\t%t\n",
			c.ID, c.Front, due, c.Reps, c.EaseFactor, c.Suspended)
	}
	return w.Flush()
}
