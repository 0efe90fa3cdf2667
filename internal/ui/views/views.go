// Package views renders journey state as styled terminal text for the CLI.
package views

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/marcoskids/marcos/internal/answers"
	"github.com/marcoskids/marcos/internal/badges"
	"github.com/marcoskids/marcos/internal/content"
	"github.com/marcoskids/marcos/internal/progress"
	"github.com/marcoskids/marcos/internal/session"
	"github.com/marcoskids/marcos/internal/ui/components"
	"github.com/marcoskids/marcos/internal/ui/theme"
)

const (
	dimensionLabelWidth = 16
	countWidth          = 8 // "  99/99" after a bar
)

// AnswerLabel is the guardian-facing label of an answer value.
func AnswerLabel(v answers.Value) string {
	switch v {
	case answers.Yes:
		return "Sim"
	case answers.No:
		return "Não"
	case answers.Unknown:
		return "Não sei"
	default:
		return v.String()
	}
}

// Question renders the question card with the answer choices.
func Question(q content.Question, position, total, width int) string {
	cw := components.ContentWidth(width)

	dim := lipgloss.NewStyle().
		Foreground(theme.DimensionColor(q.Dimension)).
		Bold(true).
		Render(q.Dimension.DisplayName())

	var b strings.Builder
	b.WriteString(dim)
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("  pergunta %d de %d", position, total)))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Width(cw - 6).Render(q.Text))
	b.WriteString("\n\n")
	b.WriteString(theme.Hint.Render(fmt.Sprintf("1 = %s   2 = %s   3 = %s   (id %s)",
		AnswerLabel(answers.Yes), AnswerLabel(answers.No), AnswerLabel(answers.Unknown), q.ID)))
	return components.Card(b.String(), cw)
}

// Session renders the session header and, when open, the current question.
func Session(s session.Session, current *content.Question, width int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(components.Heading(
		"Jornada "+s.BandID,
		fmt.Sprintf("sessão %s · %s", s.ID, statusLabel(s.Status)),
	))
	b.WriteString("\n\n")

	pct := 0.0
	if s.TotalQuestions > 0 {
		pct = float64(s.AnsweredCount) / float64(s.TotalQuestions) * 100
	}
	bar := components.NewProgressBar(fmt.Sprintf("%d/%d", s.AnsweredCount, s.TotalQuestions), pct, true, cw-6)
	bar.Fill = theme.Primary
	b.WriteString(bar.View())

	out := components.Card(b.String(), cw)
	if current != nil && s.Status == session.StatusActive {
		position := s.Cursor + 1
		out += "\n" + Question(*current, position, s.TotalQuestions, width)
	}
	if s.Status == session.StatusPaused {
		out += "\n" + theme.Hint.Render("Sessão pausada. Use `journey resume` para continuar.")
	}
	return out
}

func statusLabel(st session.Status) string {
	switch st {
	case session.StatusActive:
		return theme.Positive.Render("ativa")
	case session.StatusPaused:
		return theme.Alert.Render("pausada")
	case session.StatusCompleted:
		return theme.Title.Render("concluída")
	default:
		return string(st)
	}
}

// Answer renders the feedback for a recorded answer and any new badges.
func Answer(r answers.Response, unlocked []badges.UnlockedBadge, width int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(theme.Positive.Render("Resposta registrada: " + AnswerLabel(r.Answer)))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Width(cw - 6).Render(r.Feedback))
	if r.MissingAlert != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Alert.Width(cw - 6).Render("Atenção: " + r.MissingAlert))
	}
	if r.Activity != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Width(cw - 6).Render("Atividade: " + r.Activity))
	}
	out := components.Card(b.String(), cw)
	if len(unlocked) > 0 {
		out += "\n" + Unlocked(unlocked)
	}
	return out
}

// Unlocked announces freshly unlocked badges, one per line.
func Unlocked(list []badges.UnlockedBadge) string {
	lines := make([]string, 0, len(list))
	for _, u := range list {
		name := u.BadgeID
		icon := badges.KindMilestone.Icon()
		if bd, ok := badges.Get(u.BadgeID); ok {
			name = bd.Name
			icon = bd.Icon()
		}
		lines = append(lines, theme.Title.Render(fmt.Sprintf("%s Nova conquista: %s", icon, name)))
	}
	return strings.Join(lines, "\n")
}

// Progress renders per-dimension bars and the overall figure.
func Progress(agg progress.Aggregate, width int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(components.Heading("Progresso", "criança "+agg.ChildID))
	b.WriteString("\n\n")

	for _, d := range content.AllDimensions() {
		dp, ok := agg.PerDimension[d]
		if !ok || !dp.Reached() {
			b.WriteString(lipgloss.NewStyle().Width(dimensionLabelWidth).Foreground(theme.TextDim).Render(d.DisplayName()))
			b.WriteString(theme.Hint.Render("  ainda não alcançada"))
			b.WriteString("\n")
			continue
		}
		bar := components.NewProgressBar(d.DisplayName(), dp.Percent, true, cw-6-countWidth)
		bar.LabelWidth = dimensionLabelWidth
		bar.Fill = theme.DimensionColor(d)
		b.WriteString(bar.View())
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf("  %d/%d", dp.Answered, dp.Total)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.Title.Render(fmt.Sprintf("Geral: %.0f%%", agg.Overall)))
	if len(agg.CompletedBands) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Subtitle.Render("Faixas completas: " + strings.Join(agg.CompletedBands, ", ")))
	}
	return components.Card(b.String(), cw)
}

// Badges renders the unlocked badges, most recent first.
func Badges(list []badges.UnlockedBadge, width int) string {
	cw := components.ContentWidth(width)

	sorted := append([]badges.UnlockedBadge(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UnlockedAt.After(sorted[j].UnlockedAt)
	})

	var b strings.Builder
	b.WriteString(components.Heading("Conquistas", fmt.Sprintf("%d de %d", len(list), len(badges.All()))))
	b.WriteString("\n")
	if len(sorted) == 0 {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("Nenhuma conquista ainda. Responda a primeira pergunta!"))
	}
	for _, u := range sorted {
		b.WriteString("\n")
		bd, ok := badges.Get(u.BadgeID)
		if !ok {
			b.WriteString(theme.Body.Render(u.BadgeID))
			continue
		}
		b.WriteString(theme.Body.Bold(true).Render(bd.Icon() + " " + bd.Name))
		b.WriteString(theme.Subtitle.Render("  " + u.UnlockedAt.Format(time.DateOnly)))
		b.WriteString("\n   ")
		b.WriteString(theme.Hint.Render(bd.Description))
	}
	return components.Card(b.String(), cw)
}

// Summary renders the end-of-session figures.
func Summary(sum session.Summary, width int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(components.Heading("Resumo da sessão", statusLabel(sum.Status)))
	b.WriteString("\n\n")

	mins := int(sum.Duration.Minutes())
	secs := int(sum.Duration.Seconds()) % 60
	b.WriteString(theme.Body.Render(fmt.Sprintf("Respondidas: %d/%d (%.0f%%)   Duração: %d:%02d",
		sum.Answered, sum.TotalQuestions, sum.Percent, mins, secs)))
	b.WriteString("\n\n")

	for _, d := range content.AllDimensions() {
		dc, ok := sum.ByDimension[d]
		if !ok {
			continue
		}
		pct := 0.0
		if dc.Total > 0 {
			pct = float64(dc.Answered) / float64(dc.Total) * 100
		}
		bar := components.NewProgressBar(d.DisplayName(), pct, true, cw-6)
		bar.LabelWidth = dimensionLabelWidth
		bar.Fill = theme.DimensionColor(d)
		b.WriteString(bar.View())
		b.WriteString("\n")
	}
	return components.Card(strings.TrimRight(b.String(), "\n"), cw)
}
