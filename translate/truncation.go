package translate

import (
	"encoding/json"
	"errors"
	"strings"
)

// truncationMinBuffered is the minimum amount of already-buffered text
// required before a parse failure can be classified as truncation.
// Short responses that fail to parse are genuinely malformed.
const truncationMinBuffered = 512

// truncationPhrases are the end-of-input parse error shapes produced
// when the upstream process dies mid-emission. Any other parse error
// phrasing (an unexpected token at a position, say) is genuine
// malformed output. The transport exposes no buffer offsets, so phrase
// matching plus the content-length floor is the only robust signal.
var truncationPhrases = []string{
	"unexpected end of json input",
	"unexpected end of input",
	"unexpected end of string",
	"unexpected end of file",
	"unterminated string",
}

// IsTruncation reports whether err, raised while buffered text had
// already accumulated, represents the upstream process terminating
// mid-JSON-emission rather than genuinely malformed output.
func IsTruncation(err error, buffered string) bool {
	if err == nil {
		return false
	}
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return false
	}
	if len(buffered) < truncationMinBuffered {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, phrase := range truncationPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
