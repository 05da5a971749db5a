package extractor

import (
	"fmt"

	"github.com/statflow/listrelay/config"
	"github.com/statflow/listrelay/dto"
	"github.com/statflow/listrelay/interfaces"
)

// Merge field names as Mailchimp sends them. The webhook payload shape
// has varied across integration versions, so every field is read
// through an ordered chain of accessors.
var mergeFieldNames = []string{"COMPANY", "JOBTITLE", "INTERESTS", "FNAME", "LNAME"}

type extractorService struct {
	cfg *config.ExtractorConfig
}

func NewExtractorService(cfg *config.ExtractorConfig) interfaces.ExtractorService {
	return &extractorService{cfg: cfg}
}

// accessor is one lookup strategy for a logical field. Accessors are
// evaluated in priority order until one yields a non-empty value.
type accessor func(event dto.InboundEvent) string

func nested(path ...string) accessor {
	return func(event dto.InboundEvent) string {
		return stringify(lookup(event, path...))
	}
}

// flat reads a key that was never expanded, i.e. a literal
// "data[merges][EMAIL]" sitting at the top level.
func flat(key string) accessor {
	return func(event dto.InboundEvent) string {
		return stringify(event[key])
	}
}

func firstNonEmpty(event dto.InboundEvent, accessors ...accessor) string {
	for _, access := range accessors {
		if v := access(event); v != "" {
			return v
		}
	}
	return ""
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return fmt.Sprintf("%v", v)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return ""
	}
}

func (s *extractorService) Extract(event dto.InboundEvent) *dto.SubscriptionRecord {
	record := &dto.SubscriptionRecord{
		EventType: firstNonEmpty(event, nested("type")),
		Email: firstNonEmpty(event,
			nested("data", "email"),
			nested("data", "email_address"),
			flat("data[email]"),
			flat("data[merges][EMAIL]"),
		),
		ListID: firstNonEmpty(event,
			nested("data", "list_id"),
			nested("list_id"),
			flat("data[list_id]"),
		),
		MergeFields: map[string]string{},
	}

	for _, field := range mergeFieldNames {
		value := firstNonEmpty(event,
			nested("data", "merges", field),
			flat("data[merges]["+field+"]"),
		)
		if value != "" {
			record.MergeFields[field] = value
		}
	}

	record.Grouping = s.extractGrouping(event)

	return record
}

// extractGrouping walks data.merges.GROUPINGS, an array of
// {name, groups} entries, and returns the groups value of the entry
// matching the configured label. Empty at any miss.
func (s *extractorService) extractGrouping(event dto.InboundEvent) string {
	groupings := lookup(event, "data", "merges", "GROUPINGS")
	entries, ok := groupings.([]interface{})
	if !ok {
		return ""
	}
	for _, entry := range entries {
		node, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		if stringify(node["name"]) != s.cfg.NewsletterGroupLabel {
			continue
		}
		return stringify(node["groups"])
	}
	return ""
}

func lookup(event dto.InboundEvent, path ...string) interface{} {
	var current interface{} = map[string]interface{}(event)
	for _, segment := range path {
		node, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current, ok = node[segment]
		if !ok {
			return nil
		}
	}
	return current
}
