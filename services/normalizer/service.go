package normalizer

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/statflow/listrelay/dto"
	"github.com/statflow/listrelay/interfaces"
	er "github.com/statflow/listrelay/internal/errors"
)

type normalizerService struct{}

func NewNormalizerService() interfaces.NormalizerService {
	return &normalizerService{}
}

// Normalize parses the body according to its declared content type.
// JSON bodies pass through as-is. Everything else is treated as
// Mailchimp's form encoding, where keys carry a nested path in bracket
// notation: data[merges][EMAIL] -> data.merges.EMAIL.
func (s *normalizerService) Normalize(contentType string, body []byte) (dto.InboundEvent, error) {
	if strings.Contains(strings.ToLower(contentType), "application/json") {
		event := dto.InboundEvent{}
		if err := json.Unmarshal(body, &event); err != nil {
			return nil, errors.Wrap(er.ErrMalformedPayload, err.Error())
		}
		return event, nil
	}

	// Pairs are walked in body order so duplicate keys overwrite with
	// ordinary last-write-wins semantics. Pairs that fail to unescape
	// are skipped rather than failing the whole body.
	event := dto.InboundEvent{}
	for _, pair := range strings.Split(string(body), "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			continue
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			continue
		}
		assign(event, splitBracketPath(key), value)
	}
	return event, nil
}

// splitBracketPath turns "data[merges][EMAIL]" into
// ["data", "merges", "EMAIL"].
func splitBracketPath(key string) []string {
	return strings.Split(strings.ReplaceAll(key, "]", ""), "[")
}

func assign(node map[string]interface{}, path []string, value string) {
	for i, segment := range path {
		if i == len(path)-1 {
			node[segment] = parseLeaf(value)
			return
		}
		child, ok := node[segment].(map[string]interface{})
		if !ok {
			// A scalar sitting where the path needs a mapping is
			// replaced by one.
			child = map[string]interface{}{}
			node[segment] = child
		}
		node = child
	}
}

// parseLeaf attempts structured parsing first so JSON-looking values
// ("[1,2,3]", "{\"a\":1}") become nested values, falling back to the
// raw string.
func parseLeaf(value string) interface{} {
	var parsed interface{}
	if err := json.Unmarshal([]byte(value), &parsed); err == nil {
		return parsed
	}
	return value
}
