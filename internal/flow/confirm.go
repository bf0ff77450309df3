package flow

import "strings"

// confirmReply classifies a reply to a confirmation prompt. Anything outside
// the accepted token sets is ambiguous; confirmation steps fail open to
// continuing the assessment on ambiguity.
type confirmReply int

const (
	replyAmbiguous confirmReply = iota
	replyAffirmative
	replyNegative
)

var (
	affirmativeTokens = map[string]bool{"yes": true, "y": true}
	negativeTokens    = map[string]bool{"no": true, "n": true}
)

func classifyConfirmation(input string) confirmReply {
	token := strings.ToLower(strings.TrimSpace(input))
	switch {
	case affirmativeTokens[token]:
		return replyAffirmative
	case negativeTokens[token]:
		return replyNegative
	default:
		return replyAmbiguous
	}
}
