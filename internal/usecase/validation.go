package usecase

import (
	"fmt"
	"math"
	"strings"

	"github.com/xavierca1/proposal-control/internal/entity"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// maxValue é o limite de NUMERIC(14, 2).
const maxValue = 1e12

// ValidateProposal aplica as regras que o banco também garante via CHECK;
// validar antes evita uma ida ao servidor só para receber a recusa.
func ValidateProposal(d entity.ProposalData) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(d.ClientName) == "" {
		errors = append(errors, ValidationError{"clientName", "is required"})
	}

	if d.SentDate.IsZero() {
		errors = append(errors, ValidationError{"sentDate", "is required"})
	}

	if math.IsNaN(d.Value) || math.IsInf(d.Value, 0) {
		errors = append(errors, ValidationError{"value", "must be a number"})
	} else if d.Value < 0 {
		errors = append(errors, ValidationError{"value", "must not be negative"})
	} else if d.Value >= maxValue {
		errors = append(errors, ValidationError{"value", "is too large"})
	} else if cents := d.Value * 100; math.Abs(cents-math.Round(cents)) > 1e-6 {
		// A coluna é NUMERIC(14, 2): o banco arredondaria em silêncio.
		errors = append(errors, ValidationError{"value", "must have at most 2 decimal places"})
	}

	if strings.TrimSpace(string(d.Status)) == "" {
		errors = append(errors, ValidationError{"status", "is required"})
	}

	if d.LastFollowUp != nil && !d.SentDate.IsZero() && d.LastFollowUp.Before(d.SentDate) {
		errors = append(errors, ValidationError{"lastFollowUp", "must not be before sentDate"})
	}

	return errors
}

func validationMessage(fields []ValidationError) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Error())
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
