package voice

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/domain/reconcile"
	"github.com/mamadbah2/pantry/internal/service/pantry"
	"github.com/mamadbah2/pantry/pkg/clients/anthropic"
)

// ErrInvalidChoice indicates a button reply that does not name a stock row.
var ErrInvalidChoice = errors.New("invalid choice")

const removeChoicePrefix = "remove:"

const helpReply = "Sorry, I did not understand. Try \"add milk expires tomorrow\" or \"remove eggs\"."

// Extractor turns a transcript into a structured command. anthropic.Client satisfies it.
type Extractor interface {
	ExtractVoiceCommand(ctx context.Context, transcript string, today civil.Date) (*anthropic.VoiceExtraction, error)
}

// Pantry is the part of the pantry service voice commands act on.
type Pantry interface {
	Today() civil.Date
	ListIngredients(ctx context.Context) ([]models.IngredientRef, error)
	ListStocks(ctx context.Context) ([]pantry.StockView, error)
	AddStock(ctx context.Context, userID string, ingredientID int64, req models.StockWriteRequest) (*models.StockRecord, error)
	DeleteStock(ctx context.Context, userID string, stockID int64) error
}

// Choice is an option offered back to the user when a command is ambiguous.
type Choice struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Outcome reports what a voice command did.
type Outcome struct {
	Action     models.VoiceAction   `json:"action"`
	Expiration *civil.Date          `json:"expiration_date,omitempty"`
	Added      []models.StockRecord `json:"added,omitempty"`
	Removed    []int64              `json:"removed,omitempty"`
	Unmatched  []string             `json:"unmatched,omitempty"`
	Choices    []Choice             `json:"choices,omitempty"`
	Reply      string               `json:"reply"`
}

// Service interprets spoken pantry commands.
type Service struct {
	pantry Pantry
	ai     Extractor
	logger *zap.Logger
}

// NewService constructs a voice command service. A nil extractor means
// keyword parsing only.
func NewService(p Pantry, ai Extractor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{pantry: p, ai: ai, logger: logger}
}

type command struct {
	action     models.VoiceAction
	items      []string
	expiration *civil.Date
}

// Applied reports whether the command changed any stock.
func (o *Outcome) Applied() bool {
	return o != nil && (len(o.Added) > 0 || len(o.Removed) > 0)
}

// Handle interprets a transcript and applies it to the pantry. When a write
// fails partway, the returned Outcome describes the changes already made
// together with the error.
func (s *Service) Handle(ctx context.Context, userID, transcript string) (*Outcome, error) {
	today := s.pantry.Today()
	cmd := s.interpret(ctx, transcript, today)

	s.logger.Debug("interpreted voice command",
		zap.String("user_id", userID),
		zap.String("action", string(cmd.action)),
		zap.Strings("items", cmd.items))

	if cmd.action == models.VoiceUnknown || len(cmd.items) == 0 {
		return &Outcome{Action: models.VoiceUnknown, Reply: helpReply}, nil
	}

	catalog, err := s.pantry.ListIngredients(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ingredient catalog: %w", err)
	}

	out := &Outcome{Action: cmd.action, Expiration: cmd.expiration}
	switch cmd.action {
	case models.VoiceAdd:
		err = s.add(ctx, userID, cmd, catalog, out)
	case models.VoiceRemove:
		err = s.remove(ctx, userID, cmd, catalog, out)
	}
	out.Reply = replyFor(out)
	if err != nil {
		return out, err
	}
	return out, nil
}

func (s *Service) interpret(ctx context.Context, transcript string, today civil.Date) command {
	if s.ai != nil {
		ext, err := s.ai.ExtractVoiceCommand(ctx, transcript, today)
		if err != nil {
			s.logger.Warn("ai extraction failed, using keyword parser", zap.Error(err))
		} else if cmd, ok := fromExtraction(ext, today); ok {
			return cmd
		}
	}

	parsed := models.ParseVoiceCommand(transcript)
	cmd := command{action: parsed.Action, items: parsed.Items}
	if d, ok := ResolveExpiration(transcript, today); ok {
		cmd.expiration = d
	}
	return cmd
}

func fromExtraction(ext *anthropic.VoiceExtraction, today civil.Date) (command, bool) {
	if ext == nil || strings.TrimSpace(ext.Item) == "" {
		return command{}, false
	}

	action := models.VoiceAction(strings.ToLower(strings.TrimSpace(ext.Action)))
	if action != models.VoiceAdd && action != models.VoiceRemove {
		return command{}, false
	}

	cmd := command{action: action, items: []string{strings.TrimSpace(ext.Item)}}
	if d, ok := extractionDate(ext, today); ok {
		cmd.expiration = d
	}
	return cmd, true
}

func (s *Service) add(ctx context.Context, userID string, cmd command, catalog []models.IngredientRef, out *Outcome) error {
	for _, item := range cmd.items {
		ing, score, ok := MatchIngredient(item, catalog)
		if !ok {
			s.logger.Info("no ingredient match", zap.String("item", item), zap.Int("best_score", score))
			out.Unmatched = append(out.Unmatched, item)
			continue
		}

		stock, err := s.pantry.AddStock(ctx, userID, ing.ID, models.StockWriteRequest{ExpirationDate: cmd.expiration})
		if err != nil {
			return fmt.Errorf("add %s: %w", ing.Name, err)
		}
		out.Added = append(out.Added, *stock)
	}
	return nil
}

func (s *Service) remove(ctx context.Context, userID string, cmd command, catalog []models.IngredientRef, out *Outcome) error {
	stocks, err := s.pantry.ListStocks(ctx)
	if err != nil {
		return fmt.Errorf("load stocks: %w", err)
	}

	for _, item := range cmd.items {
		ing, _, ok := MatchIngredient(item, catalog)
		if !ok {
			out.Unmatched = append(out.Unmatched, item)
			continue
		}

		candidates := stocksOf(ing, stocks, cmd.expiration)
		if len(candidates) == 0 {
			out.Unmatched = append(out.Unmatched, item)
			continue
		}

		if cmd.expiration == nil && distinctExpirations(candidates) > 1 {
			for _, st := range candidates {
				out.Choices = append(out.Choices, Choice{
					ID:    removeChoicePrefix + strconv.FormatInt(st.ID, 10),
					Title: choiceTitle(st),
				})
			}
			continue
		}

		for _, st := range candidates {
			if err := s.pantry.DeleteStock(ctx, userID, st.ID); err != nil {
				return fmt.Errorf("remove %s: %w", ing.Name, err)
			}
			out.Removed = append(out.Removed, st.ID)
		}
	}
	return nil
}

// HandleChoice applies a button reply produced by an ambiguous remove.
func (s *Service) HandleChoice(ctx context.Context, userID, choiceID string) (*Outcome, error) {
	raw, ok := strings.CutPrefix(choiceID, removeChoicePrefix)
	if !ok {
		return nil, ErrInvalidChoice
	}
	stockID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || stockID <= 0 {
		return nil, ErrInvalidChoice
	}

	if err := s.pantry.DeleteStock(ctx, userID, stockID); err != nil {
		return nil, fmt.Errorf("remove stock %d: %w", stockID, err)
	}

	out := &Outcome{Action: models.VoiceRemove, Removed: []int64{stockID}}
	out.Reply = replyFor(out)
	return out, nil
}

// IsChoice reports whether text is a button reply id understood by HandleChoice.
func IsChoice(text string) bool {
	return strings.HasPrefix(text, removeChoicePrefix)
}

func stocksOf(ing models.IngredientRef, stocks []pantry.StockView, exp *civil.Date) []models.StockRecord {
	key := reconcile.Normalize(ing.Name)

	var out []models.StockRecord
	for _, st := range stocks {
		if st.Disable {
			continue
		}
		sameRef := st.Ingredient != nil && st.Ingredient.ID == ing.ID
		if !sameRef && reconcile.Normalize(st.Name()) != key {
			continue
		}
		if exp != nil && (st.ExpirationDate == nil || *st.ExpirationDate != *exp) {
			continue
		}
		out = append(out, st.StockRecord)
	}

	sort.Slice(out, func(i, j int) bool { return expiresBefore(out[i], out[j]) })
	return out
}

func expiresBefore(a, b models.StockRecord) bool {
	switch {
	case a.ExpirationDate == nil && b.ExpirationDate == nil:
		return a.ID < b.ID
	case a.ExpirationDate == nil:
		return false
	case b.ExpirationDate == nil:
		return true
	case *a.ExpirationDate == *b.ExpirationDate:
		return a.ID < b.ID
	default:
		return a.ExpirationDate.Before(*b.ExpirationDate)
	}
}

func distinctExpirations(stocks []models.StockRecord) int {
	seen := map[string]struct{}{}
	for _, st := range stocks {
		key := "none"
		if st.ExpirationDate != nil {
			key = st.ExpirationDate.String()
		}
		seen[key] = struct{}{}
	}
	return len(seen)
}

func choiceTitle(st models.StockRecord) string {
	if st.ExpirationDate == nil {
		return st.Name() + " (no date)"
	}
	return st.Name() + " " + st.ExpirationDate.String()
}

func replyFor(out *Outcome) string {
	var parts []string

	if len(out.Added) > 0 {
		names := make([]string, 0, len(out.Added))
		for _, st := range out.Added {
			names = append(names, st.Name())
		}
		line := "Added " + strings.Join(names, ", ")
		if exp := out.Added[0].ExpirationDate; exp != nil {
			line += " (expires " + exp.String() + ")"
		}
		parts = append(parts, line+".")
	}

	if len(out.Removed) > 0 {
		parts = append(parts, fmt.Sprintf("Removed %d item(s).", len(out.Removed)))
	}

	if len(out.Choices) > 0 {
		parts = append(parts, "Several expiry dates found. Which one should I remove?")
	}

	if len(out.Unmatched) > 0 {
		parts = append(parts, "Not found: "+strings.Join(out.Unmatched, ", ")+".")
	}

	if len(parts) == 0 {
		return "Nothing changed."
	}
	return strings.Join(parts, "\n")
}
