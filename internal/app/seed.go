package app

import (
	"context"
	"fmt"

	"postsurvey/internal/model"
)

type seedSurvey struct {
	question   string
	options    []string
	active     bool
	allowOther bool
	responses  []seedResponse
}

type seedResponse struct {
	option    string
	otherText string
	orderID   string
	email     string
}

// sampleSurveys are created in order, so the last active one stays active.
var sampleSurveys = []seedSurvey{
	{
		question: "¿Qué influyó en tu decisión de compra?",
		options:  []string{"Precio", "Calidad", "Reseñas", "Reputación de marca", "Recomendación"},
	},
	{
		question:   "¿Dónde viste nuestra marca por primera vez?",
		options:    []string{"Redes sociales", "TV/Streaming", "Anuncio online", "Tienda física", "Email"},
		allowOther: true,
	},
	{
		question:   "¿Cómo nos conociste?",
		options:    []string{"Instagram", "TikTok", "Búsqueda en Google", "Amigo/Familiar", "Podcast"},
		active:     true,
		allowOther: true,
		responses: []seedResponse{
			{option: "Instagram", orderID: "ORD-1234567", email: "maria.garcia@email.com"},
			{option: "TikTok", orderID: "ORD-1234568", email: "juan.lopez@email.com"},
			{option: "Amigo/Familiar", orderID: "ORD-1234569", email: "ana.martinez@email.com"},
			{option: "Instagram", orderID: "ORD-1234570", email: "carlos.rodriguez@email.com"},
			{option: "Búsqueda en Google", orderID: "ORD-1234571", email: "laura.fernandez@email.com"},
			{option: "Podcast", orderID: "ORD-1234572", email: "diego.sanchez@email.com"},
			{option: model.OtherOption, otherText: "Video de YouTube", orderID: "ORD-1234573", email: "sofia.torres@email.com"},
			{option: "Instagram", orderID: "ORD-1234574", email: "pablo.ruiz@email.com"},
			{option: "TikTok", orderID: "ORD-1234575", email: "lucia.morales@email.com"},
			{option: "Amigo/Familiar", orderID: "ORD-1234576", email: "miguel.castro@email.com"},
			{option: "Instagram", orderID: "ORD-1234577", email: "elena.diaz@email.com"},
			{option: "Búsqueda en Google", orderID: "ORD-1234578", email: "roberto.jimenez@email.com"},
		},
	},
}

// SeedResult reports what Seed wrote.
type SeedResult struct {
	Surveys   int
	Responses int
	Skipped   bool
}

// Seed loads the sample surveys and responses through the services, so the
// single-active and one-response-per-order rules apply as for API calls.
// A store that already holds surveys is left alone unless force is set.
func (a *App) Seed(ctx context.Context, force bool) (SeedResult, error) {
	var res SeedResult
	if !force {
		existing, err := a.SurveyService.ListSurveys(ctx)
		if err != nil {
			return res, fmt.Errorf("failed to check existing surveys: %w", err)
		}
		if len(existing) > 0 {
			a.logger.Info().Int("surveys", len(existing)).Msg("Store already seeded, skipping")
			res.Skipped = true
			return res, nil
		}
	}

	for _, s := range sampleSurveys {
		active, allowOther := s.active, s.allowOther
		survey, err := a.SurveyService.CreateSurvey(ctx, model.SurveyInput{
			Question:   s.question,
			Options:    s.options,
			IsActive:   &active,
			AllowOther: &allowOther,
		})
		if err != nil {
			return res, fmt.Errorf("failed to create survey %q: %w", s.question, err)
		}
		res.Surveys++

		for _, r := range s.responses {
			_, err := a.ResponseService.SubmitResponse(ctx, model.ResponseInput{
				SurveyID:       survey.ID,
				SelectedOption: r.option,
				OtherText:      r.otherText,
				OrderID:        r.orderID,
				ClientEmail:    r.email,
			})
			if err != nil {
				return res, fmt.Errorf("failed to submit response for %s: %w", r.orderID, err)
			}
			res.Responses++
		}
	}
	a.logger.Info().Int("surveys", res.Surveys).Int("responses", res.Responses).Msg("Seed complete")
	return res, nil
}
