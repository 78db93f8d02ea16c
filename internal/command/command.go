// Package command turns raw chat text into a closed set of commands.
// Parsing is lexical only: what a command means depends on the session
// state and is decided by the service layer.
package command

import (
	"strconv"
	"strings"
)

type Kind int

const (
	KindEmpty Kind = iota
	KindDigits
	KindPay
	KindBack
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindDigits:
		return "digits"
	case KindPay:
		return "pay"
	case KindBack:
		return "back"
	default:
		return "text"
	}
}

// Command is a normalized chat input.
//
//   - KindDigits: Raw holds the digit string, Value its numeric value
//     (0 when it does not fit an int).
//   - KindPay: Value holds the requested order number, ValidIndex is false
//     when the argument was not a number.
//   - KindText: Raw holds the normalized text.
type Command struct {
	Kind       Kind
	Raw        string
	Value      int
	ValidIndex bool
}

const payPrefix = "pay "

// Parse normalizes raw (trim, lower case) and classifies it.
func Parse(raw string) Command {
	msg := strings.ToLower(strings.TrimSpace(raw))

	switch {
	case msg == "":
		return Command{Kind: KindEmpty}
	case strings.HasPrefix(msg, payPrefix):
		return parsePay(msg)
	case isDigits(msg):
		n, err := strconv.Atoi(msg)
		if err != nil {
			n = 0
		}
		return Command{Kind: KindDigits, Raw: msg, Value: n}
	case msg == "menu" || msg == "back":
		return Command{Kind: KindBack, Raw: msg}
	default:
		return Command{Kind: KindText, Raw: msg}
	}
}

func parsePay(msg string) Command {
	cmd := Command{Kind: KindPay, Raw: msg}
	fields := strings.Fields(msg)
	if len(fields) < 2 {
		return cmd
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return cmd
	}
	cmd.Value = n
	cmd.ValidIndex = true
	return cmd
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
