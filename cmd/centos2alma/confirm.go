package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// confirm asks question on out and reads the answer from in. The --yes flag
// answers for the user.
func confirm(in io.Reader, out io.Writer, question string) bool {
	if yesFlag {
		return true
	}
	_, _ = fmt.Fprintf(out, "%s [y/N]: ", question)
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
