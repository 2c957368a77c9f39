package organizer

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/organizer/internal/apperr"
	"github.com/starford/organizer/internal/models"
)

// Normalize trims draft fields, drops link slots that were left blank and
// drops blank tasks.
func Normalize(d models.Draft) models.Draft {
	out := models.Draft{
		Title: strings.TrimSpace(d.Title),
		Body:  d.Body,
		Links: []models.Link{},
	}
	for _, l := range d.Links {
		l.Title = strings.TrimSpace(l.Title)
		l.URL = strings.TrimSpace(l.URL)
		if l.Title == "" && l.URL == "" {
			continue
		}
		out.Links = append(out.Links, l)
	}
	for _, t := range d.Tasks {
		if t = normalizeTask(t); t != "" {
			out.Tasks = append(out.Tasks, t)
		}
	}
	return out
}

func normalizeTask(text string) string {
	return strings.TrimSpace(text)
}

// Validate checks a normalized draft: at most three links, each with a
// well-formed URL.
func Validate(d models.Draft) error {
	err := validation.ValidateStruct(&d,
		validation.Field(&d.Links, validation.Length(0, models.MaxLinks)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	for i := range d.Links {
		l := &d.Links[i]
		if err := validation.ValidateStruct(l,
			validation.Field(&l.URL, validation.Required, is.URL),
		); err != nil {
			return fmt.Errorf("%w: link %d: %v", apperr.ErrInvalid, i+1, err)
		}
	}
	return nil
}
