package survivorship

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/Gobusters/ectoerror/httperror"

	"github.com/Ramsey-B/dahlia/pkg/models"
)

// builtinFormats are the canonical format patterns per field type, used by
// the validation strategy and the quality_score format bonus. Callers can
// replace any of them via SurvivorshipConfig.FormatOverrides.
var builtinFormats = map[models.FieldType]string{
	models.FieldTypeEmail: `^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`,
	models.FieldTypePhone: `^\+?[0-9][0-9\s().\-]{5,18}[0-9]$`,
	models.FieldTypeDate:  `^(\d{4}[-/]\d{1,2}[-/]\d{1,2}|\d{1,2}[-/]\d{1,2}[-/]\d{2,4})([T ].*)?$`,
	models.FieldTypeZip:   `^\d{5}(-\d{4})?$|^\d{6}$`,
	models.FieldTypeName:  `^[a-zA-Z][a-zA-Z\s.,'\-]*$`,
}

// compileFormats resolves the effective format regex per field type.
// A malformed override is a configuration error and rejects the run.
func compileFormats(overrides map[models.FieldType]string) (map[models.FieldType]*regexp.Regexp, error) {
	patterns := make(map[models.FieldType]string, len(builtinFormats))
	for ft, pattern := range builtinFormats {
		patterns[ft] = pattern
	}
	for ft, pattern := range overrides {
		patterns[ft] = pattern
	}

	compiled := make(map[models.FieldType]*regexp.Regexp, len(patterns))
	for ft, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, httperror.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid format pattern for field type %q: %v", ft, err))
		}
		compiled[ft] = re
	}
	return compiled, nil
}
