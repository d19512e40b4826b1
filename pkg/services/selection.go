package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidSelection is returned for non-numeric input. The caller aborts
// the current selection scope, not the process.
var ErrInvalidSelection = errors.New("seleção inválida")

// ParseSelection resolves operator input into 0-based indices over a list of
// n items. "0" selects everything; otherwise the input is a comma-separated
// list of 1-based positions. Out-of-range positions are silently dropped.
func ParseSelection(input string, n int) ([]int, error) {
	input = strings.TrimSpace(input)
	if input == "0" {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	var selected []int
	for _, part := range strings.Split(input, ",") {
		choice, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSelection, part)
		}
		if idx := choice - 1; idx >= 0 && idx < n {
			selected = append(selected, idx)
		}
	}
	return selected, nil
}
