package query

import (
	"github.com/w-h-a/factfinder/internal/service/agent"
	toolhandler "github.com/w-h-a/factfinder/tool_handler"
	"github.com/w-h-a/factfinder/tool_handler/encyclopedia"
)

const MaxSources = 3

// ExtractSources harvests cited URLs from the trace, deduplicates them and
// keeps at most MaxSources. The order of the result is not part of the
// contract.
func ExtractSources(steps []agent.Step) []string {
	var sources []string

	for _, step := range steps {
		switch step.Action.Kind {
		case toolhandler.KindWebSearch:
			for _, item := range step.Observation.Results {
				if len(item.URL) > 0 {
					sources = append(sources, item.URL)
				}
			}
		case toolhandler.KindEncyclopedia:
			sources = append(sources, encyclopedia.ParseSources(step.Observation.Content)...)
		}
	}

	return capSources(dedupe(sources), MaxSources)
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))

	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}

	return out
}

func capSources(items []string, limit int) []string {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
