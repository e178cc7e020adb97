package absence

import (
	"strings"

	dErrors "rollcall/pkg/domain-errors"
)

// Command is the parsed form of a dayoff message:
//
//	<command> <identity> <startMMDD> <endMMDD> [reason]
type Command struct {
	IdentityToken string
	StartMMDD     string
	EndMMDD       string
	Reason        string
}

// ParseCommand splits a raw message on whitespace and extracts the command
// arguments. The caller has already matched the command token prefix; this
// only validates argument count.
//
// Errors: CodeInvalidInput when fewer than three arguments follow the token.
func ParseCommand(text string) (Command, error) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) < 4 {
		return Command{}, dErrors.New(dErrors.CodeInvalidInput, "expected <command> <identity> <startMMDD> <endMMDD> [reason]")
	}
	return Command{
		IdentityToken: fields[1],
		StartMMDD:     fields[2],
		EndMMDD:       fields[3],
		Reason:        strings.Join(fields[4:], " "),
	}, nil
}
