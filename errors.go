package oaisim

import (
	"errors"
	"fmt"
	"strings"
)

// OAI-PMH error codes (3.6 Error and Exception Conditions).
const (
	CodeBadArgument             = "badArgument"
	CodeBadResumptionToken      = "badResumptionToken"
	CodeBadVerb                 = "badVerb"
	CodeCannotDisseminateFormat = "cannotDisseminateFormat"
	CodeIdDoesNotExist          = "idDoesNotExist"
	CodeNoRecordsMatch          = "noRecordsMatch"
	CodeNoMetadataFormats       = "noMetadataFormats"
	CodeNoSetHierarchy          = "noSetHierarchy"
)

// maxEcho limits how much of a caller supplied value ends up in a message.
const maxEcho = 40

// OAIError wraps OAI error codes and messages.
type OAIError struct {
	Code    string
	Message string
}

// Error to satisfy interface.
func (e *OAIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCode reports whether err is an OAIError with the given code.
func IsCode(err error, code string) bool {
	var oe *OAIError
	if errors.As(err, &oe) {
		return oe.Code == code
	}
	return false
}

func withDetail(base, detail string) string {
	if detail == "" {
		return base
	}
	return base + " " + detail
}

// BadArgument is returned for illegal, missing, repeated or malformed arguments.
func BadArgument(detail string) *OAIError {
	return &OAIError{
		Code:    CodeBadArgument,
		Message: withDetail("The request includes illegal arguments, is missing required arguments, includes a repeated argument, or values for arguments have an illegal syntax.", detail),
	}
}

// BadArgumentf is BadArgument with a formatted detail.
func BadArgumentf(format string, a ...interface{}) *OAIError {
	return BadArgument(fmt.Sprintf(format, a...))
}

// BadVerb reports a missing, unknown or repeated verb. An empty verb means
// the verb argument was missing.
func BadVerb(verb string) *OAIError {
	msg := "Value of the verb argument is not a legal OAI-PMH verb, the verb argument is missing, or the verb argument is repeated."
	if verb == "" {
		msg += " Missing verb."
	} else {
		msg += fmt.Sprintf(" Bad verb (%s).", sanitize(verb))
	}
	return &OAIError{Code: CodeBadVerb, Message: msg}
}

// RepeatedVerb reports a verb argument given more than once.
func RepeatedVerb() *OAIError {
	return &OAIError{
		Code:    CodeBadVerb,
		Message: "Value of the verb argument is not a legal OAI-PMH verb, the verb argument is missing, or the verb argument is repeated. Repeated verb.",
	}
}

// BadResumptionToken rejects any resumption token, none are ever issued.
func BadResumptionToken(token string) *OAIError {
	return &OAIError{
		Code:    CodeBadResumptionToken,
		Message: fmt.Sprintf("The value of the resumptionToken argument (%s) is invalid or expired.", sanitize(token)),
	}
}

// CannotDisseminateFormat reports a metadata prefix not available for the
// item or the repository.
func CannotDisseminateFormat(prefix string) *OAIError {
	msg := "The metadata format identified by the value given for the metadataPrefix argument is not supported by the item or by the repository."
	if prefix != "" {
		msg += fmt.Sprintf(" Format (%s).", sanitize(prefix))
	}
	return &OAIError{Code: CodeCannotDisseminateFormat, Message: msg}
}

// IdDoesNotExist reports an unknown or empty identifier.
func IdDoesNotExist(identifier string) *OAIError {
	return &OAIError{
		Code:    CodeIdDoesNotExist,
		Message: fmt.Sprintf("The value of the identifier argument (%s) is unknown or illegal in this repository.", sanitize(identifier)),
	}
}

// NoRecordsMatch reports an empty list result.
func NoRecordsMatch() *OAIError {
	return &OAIError{
		Code:    CodeNoRecordsMatch,
		Message: "The combination of the values of the from, until, set and metadataPrefix arguments results in an empty list.",
	}
}

// NoMetadataFormats reports an item or repository without any records.
func NoMetadataFormats() *OAIError {
	return &OAIError{
		Code:    CodeNoMetadataFormats,
		Message: "There are no metadata formats available for the specified item.",
	}
}

// NoSetHierarchy reports a set request to a repository without sets.
func NoSetHierarchy() *OAIError {
	return &OAIError{
		Code:    CodeNoSetHierarchy,
		Message: "The repository does not support sets.",
	}
}

const upperhex = "0123456789ABCDEF"

// sanitize percent-encodes s and truncates the result, so that it is safe to
// echo caller input in messages and logs.
func sanitize(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldKeep(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	out := b.String()
	if len(out) > maxEcho {
		return out[:maxEcho] + "..."
	}
	return out
}

func shouldKeep(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '~', '/':
		return true
	}
	return false
}

// sortedJoin joins names alphabetically, for reproducible messages.
func sortedJoin(names []string) string {
	return strings.Join(sortedCopy(names), ",")
}
