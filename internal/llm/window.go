package llm

import (
	"github.com/ashprao/chatbox/internal/constants"
	"github.com/ashprao/chatbox/internal/models"
	"github.com/ashprao/chatbox/internal/tokens"
)

// BuildContext picks the messages that fit into a context of limit tokens.
//
// A leading system message is always kept and costs only its own tokens.
// The rest are taken newest first, each costing its tokens plus
// MessageTokenOverhead, until the next one would overflow the limit. The
// result keeps the original order.
func BuildContext(messages []models.Message, limit int, unlimited bool) []models.Message {
	if len(messages) == 0 {
		return nil
	}
	if unlimited {
		out := make([]models.Message, len(messages))
		copy(out, messages)
		return out
	}

	var head []models.Message
	rest := messages
	total := 0
	if messages[0].Role == models.RoleSystem {
		head = messages[:1]
		rest = messages[1:]
		total = tokens.Estimate(messages[0].Content)
	}

	start := len(rest)
	for i := len(rest) - 1; i >= 0; i-- {
		cost := tokens.Estimate(rest[i].Content) + constants.MessageTokenOverhead
		if cost+total > limit {
			break
		}
		total += cost
		start = i
	}

	out := make([]models.Message, 0, len(head)+len(rest)-start)
	out = append(out, head...)
	out = append(out, rest[start:]...)
	return out
}
