package models

import (
	"fmt"
	"slices"
	"strings"

	dErrors "atelier/pkg/domain-errors"
)

// parseEnum uppercases and trims s and accepts it only if it is one of known.
// Unknown values fail with invalid_<scope>_state:<s>.
func parseEnum[S ~string](scope, s string, known []S) (S, error) {
	v := S(strings.ToUpper(strings.TrimSpace(s)))
	if slices.Contains(known, v) {
		return v, nil
	}
	return "", dErrors.InvalidInput(fmt.Sprintf("invalid_%s_state:%s", scope, s))
}
