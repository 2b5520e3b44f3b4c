package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "taskninja/internal/errors"
)

var stdin = bufio.NewReader(os.Stdin)

// prompt reads one trimmed line from the terminal. A final line without a
// trailing newline still counts; a bare EOF is returned so menu loops can
// exit instead of re-asking forever.
func prompt(label string) (string, error) {
	fmt.Print(label)
	line, err := stdin.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return line, nil
}

// quitOnEOF turns end of input into a clean menu exit.
func quitOnEOF(err error) error {
	if err == io.EOF {
		return nil
	}
	return apperrors.Wrap(apperrors.CodeIO, "failed to read input", err)
}

// promptFloat re-asks until it gets a number.
func promptFloat(label string) (float64, error) {
	for {
		raw, err := prompt(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err == nil {
			return v, nil
		}
		fmt.Printf("%q is not a number, try again.\n", raw)
	}
}

// promptInt re-asks until it gets an integer.
func promptInt(label string) (int, error) {
	for {
		raw, err := prompt(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(raw)
		if err == nil {
			return v, nil
		}
		fmt.Printf("%q is not a whole number, try again.\n", raw)
	}
}

// promptChoice re-asks until the answer is one of the allowed values.
func promptChoice(label string, allowed ...string) (string, error) {
	for {
		raw, err := prompt(label)
		if err != nil {
			return "", err
		}
		raw = strings.ToLower(raw)
		for _, a := range allowed {
			if raw == a {
				return raw, nil
			}
		}
		fmt.Printf("Please answer one of: %s\n", strings.Join(allowed, ", "))
	}
}

func confirm(label string) (bool, error) {
	answer, err := promptChoice(label+" [y/n]: ", "y", "n", "yes", "no")
	if err != nil {
		return false, err
	}
	return answer[0] == 'y', nil
}
