package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/prep/internal/recipeapi"
)

// RenderRecipe renders the title, bulleted ingredients and numbered steps.
// Long steps wrap under their number.
func RenderRecipe(recipe *recipeapi.Recipe, width int) string {
	if recipe == nil {
		return ""
	}
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	b.WriteString(RecipeTitleStyle.Render(recipe.Title))
	b.WriteString("\n\n")

	b.WriteString(SectionTitleStyle.Render("Ingredients"))
	b.WriteString("\n")
	for _, ing := range recipe.Ingredients {
		b.WriteString("  ")
		b.WriteString(BulletStyle.Render(IngredientBullet))
		b.WriteString(" ")
		b.WriteString(BodyStyle.Render(ing))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(SectionTitleStyle.Render("Steps"))
	b.WriteString("\n")

	numWidth := len(fmt.Sprintf("%d.", len(recipe.Steps)))
	for i, step := range recipe.Steps {
		num := StepNumberStyle.Width(numWidth).Render(fmt.Sprintf("%d.", i+1))
		text := BodyStyle.Width(width - numWidth - 3).Render(step)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, "  ", num, " ", text))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// RenderIngredients renders a bulleted ingredient list. With cursor >= 0 the
// entry at that index is highlighted.
func RenderIngredients(ingredients []string, cursor int) string {
	if len(ingredients) == 0 {
		return StepPendingStyle.Render("  (no ingredients)")
	}

	lines := make([]string, 0, len(ingredients))
	for i, ing := range ingredients {
		if i == cursor {
			lines = append(lines, StepRunningStyle.Render("> "+IngredientBullet+" "+ing))
			continue
		}
		lines = append(lines, "  "+BulletStyle.Render(IngredientBullet)+" "+BodyStyle.Render(ing))
	}
	return strings.Join(lines, "\n")
}

// RecipePlainText renders a recipe without styling, for pipes and files
func RecipePlainText(recipe *recipeapi.Recipe) string {
	if recipe == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(recipe.Title)
	b.WriteString("\n\nIngredients\n")
	for _, ing := range recipe.Ingredients {
		b.WriteString("  - " + ing + "\n")
	}
	b.WriteString("\nSteps\n")
	for i, step := range recipe.Steps {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, step))
	}
	return b.String()
}
