package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
)

// parseIntArgs parses every argument as an integer. names label the
// arguments in error messages and fix their count.
func parseIntArgs(args []string, names ...string) ([]int, error) {
	if len(args) != len(names) {
		return nil, fmt.Errorf("invalid number of arguments: expected %d, got %d", len(names), len(args))
	}

	values := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %v", names[i], err)
		}
		values[i] = v
	}

	return values, nil
}

func checkByte(name string, v int) error {
	if v < 0 || v > 255 {
		return fmt.Errorf("%s must be between 0 and 255, got %d", name, v)
	}
	return nil
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
