package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rileyhilliard/plantdash/internal/errors"
)

// parseSeconds reads a positive whole number of seconds.
func parseSeconds(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, errors.New(errors.ErrInput,
			fmt.Sprintf("'%s' is not a valid sampling interval", s),
			"Use a whole number of seconds greater than zero, like 30.")
	}
	return n, nil
}

// validateDropRate checks the simulator's failure probability.
func validateDropRate(rate float64) error {
	if rate < 0 || rate > 1 {
		return errors.New(errors.ErrInput,
			fmt.Sprintf("--drop-rate %.2f is outside 0-1", rate),
			"Use a probability like 0.1 for one failed reading in ten.")
	}
	return nil
}
