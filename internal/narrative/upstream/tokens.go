package upstream

import (
	"github.com/tiktoken-go/tokenizer"

	log "github.com/ridgeline/caseflow/internal/logging"
)

var tokenCodec tokenizer.Codec

func init() {
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		log.WithError(err).Warn("tokenizer unavailable, falling back to length-based token estimates")
		return
	}
	tokenCodec = codec
}

// estimateTokens approximates the token count of text for accounting when
// the upstream response omits usage metadata. Falls back to a characters
// divided by four heuristic if the tokenizer is unavailable.
func estimateTokens(text string) int64 {
	if text == "" {
		return 0
	}
	if tokenCodec != nil {
		if n, err := tokenCodec.Count(text); err == nil {
			return int64(n)
		}
	}
	return int64(len(text)/4) + 1
}
