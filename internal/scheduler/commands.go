package scheduler

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"MetricRecipes/internal/model"
	"MetricRecipes/internal/notifier"
	"MetricRecipes/internal/recipe"
	"MetricRecipes/internal/recorder"
)

const historyLimit = 10

const helpText = "Available commands:\n" +
	"• /latest\n" +
	"• /run [date]\n" +
	"• /value &lt;recipe&gt; [date]\n" +
	"• /postfix &lt;recipe&gt;\n" +
	"• /history &lt;recipe&gt;\n" +
	"• /recipes"

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	name, rest, _ := strings.Cut(strings.TrimSpace(command), " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "/latest":
		state := s.Ledger.GetState()
		return notifier.FormatLedger(&state, s.Ledger.Snapshot())
	case "/run":
		dateKey := rest
		if dateKey == "" {
			dateKey = s.Config.DateKey(s.Now())
		} else if !s.isDateKey(dateKey) {
			return fmt.Sprintf("Invalid date %q, expected layout %s", html.EscapeString(dateKey), s.Config.Schedule.DateLayout)
		}
		s.RunNow(ctx, dateKey, recorder.TriggerCommand)
		return ""
	case "/value":
		def, dateKey, ok := s.recipeAndDate(rest)
		if !ok {
			return fmt.Sprintf("Unknown recipe %q", html.EscapeString(rest))
		}
		res := s.EvaluateRecipe(ctx, def, dateKey)
		return fmt.Sprintf("<b>%s</b> @ %s: %s", html.EscapeString(def.Name), html.EscapeString(dateKey),
			html.EscapeString(notifier.FormatValue(res)))
	case "/postfix":
		def, ok := s.Config.Recipe(rest)
		if !ok {
			return fmt.Sprintf("Unknown recipe %q", html.EscapeString(rest))
		}
		return s.postfixReply(def)
	case "/history":
		def, ok := s.Config.Recipe(rest)
		if !ok {
			return fmt.Sprintf("Unknown recipe %q", html.EscapeString(rest))
		}
		results, err := s.Recorder.History(def.Name, historyLimit)
		if err != nil {
			return fmt.Sprintf("History unavailable: %s", html.EscapeString(err.Error()))
		}
		return notifier.FormatHistory(def.Name, results)
	case "/recipes":
		var b strings.Builder
		for _, def := range s.Config.Recipes {
			b.WriteString(fmt.Sprintf("• <b>%s</b>: <code>%s</code>\n", html.EscapeString(def.Name), html.EscapeString(def.Formula)))
		}
		return b.String()
	default:
		return helpText
	}
}

// postfixReply shows how a recipe's formula is ordered for evaluation. Only
// ingredient names matter for this, so no series are fetched.
func (s *Scheduler) postfixReply(def model.RecipeDef) string {
	ingredients := make([]model.Ingredient, len(def.Ingredients))
	for i, name := range def.Ingredients {
		ingredients[i] = model.Ingredient{Name: name}
	}
	r, err := recipe.New(def.Formula, ingredients)
	if err != nil {
		return fmt.Sprintf("%s: %s", html.EscapeString(def.Name), html.EscapeString(err.Error()))
	}
	return fmt.Sprintf("<b>%s</b>\ninfix: <code>%s</code>\npostfix: <code>%s</code>",
		html.EscapeString(def.Name),
		html.EscapeString(recipe.FormatSteps(r.Steps())),
		html.EscapeString(recipe.FormatSteps(r.Postfix())))
}

// recipeAndDate splits "<recipe> [date]". Recipe names may contain spaces, so
// the trailing word is only taken as a date when it parses as one.
func (s *Scheduler) recipeAndDate(arg string) (model.RecipeDef, string, bool) {
	if def, ok := s.Config.Recipe(arg); ok {
		return def, s.Config.DateKey(s.Now()), true
	}
	i := strings.LastIndex(arg, " ")
	if i < 0 {
		return model.RecipeDef{}, "", false
	}
	name, dateKey := strings.TrimSpace(arg[:i]), arg[i+1:]
	if !s.isDateKey(dateKey) {
		return model.RecipeDef{}, "", false
	}
	def, ok := s.Config.Recipe(name)
	return def, dateKey, ok
}

func (s *Scheduler) isDateKey(v string) bool {
	_, err := time.Parse(s.Config.Schedule.DateLayout, v)
	return err == nil
}
