package engine

import (
	"sort"
	"strings"

	"github.com/notesmith/notesmith/internal/config"
	"github.com/notesmith/notesmith/internal/logger"
	"github.com/notesmith/notesmith/internal/model"
	"github.com/notesmith/notesmith/internal/note"
	"github.com/notesmith/notesmith/internal/prompt"
)

// Graph is a note's field dependency graph, keyed by lowercase field
// identifier. Edges run from a referenced field to the fields whose
// prompts mention it.
type Graph map[string]*model.FieldNode

// Fields returns the graph's field identifiers in sorted order.
func (g Graph) Fields() []string {
	fields := make([]string, 0, len(g))
	for field := range g {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// BuildOptions control graph construction.
type BuildOptions struct {
	// Overwrite lets every node replace a non-empty existing value.
	Overwrite bool

	// TargetField names a single field requested for regeneration. The
	// graph is pruned to the target and its transitive dependencies,
	// and those dependencies may run even when marked manual.
	TargetField string

	// OverridePrompts replaces the configured prompts (lowercase field
	// to template) when non-nil. Used to validate an edited template
	// before it is saved.
	OverridePrompts map[string]string
}

// BuildGraph constructs the dependency graph for one note. Fields are
// visited in the note's canonical order; a field joins the graph only
// when it exists on the note and has a non-empty template. Prompt
// references to fields outside the graph are plain inputs and produce
// no edge. Construction never fails: problems shrink the graph instead,
// down to an empty one.
func BuildGraph(cfg *config.Config, n note.Note, deckID int64, opts BuildOptions, log *logger.Logger) Graph {
	prompts := opts.OverridePrompts
	if prompts == nil {
		prompts = prompt.ForNote(cfg, n.NoteType(), deckID)
	}

	graph := make(Graph)
	if len(prompts) == 0 {
		return graph
	}

	target := strings.ToLower(strings.TrimSpace(opts.TargetField))

	for _, field := range n.Fields() {
		lower := strings.ToLower(field)
		template, ok := prompts[lower]
		if !ok || template == "" {
			continue
		}

		extras := prompt.ExtrasFor(cfg, n.NoteType(), field, deckID)
		fieldType := model.FieldType(extras.Type)
		if !fieldType.IsValid() {
			log.WithFields(map[string]any{
				"field": lower,
				"type":  extras.Type,
			}).Warn("skipping field with unknown generation type")
			continue
		}

		node := model.NewFieldNode(lower, field)
		node.ExistingValue = n.GetField(field)
		node.IsManual = !extras.Automatic
		node.Overwrite = opts.Overwrite
		node.IsTarget = target != "" && lower == target
		node.Type = fieldType
		node.DeckID = deckID
		node.PromptTemplate = template
		graph[lower] = node
	}

	for _, node := range graph {
		for _, ref := range prompt.Fields(node.PromptTemplate) {
			dep, ok := graph[ref]
			if !ok {
				continue
			}
			node.InEdges[dep.Field] = struct{}{}
			dep.OutEdges[node.Field] = struct{}{}
		}
	}

	if target != "" {
		return pruneToTarget(graph, target, log)
	}
	return graph
}

// pruneToTarget cuts the graph down to the target node and its
// transitive dependencies. Dependencies regenerate even when manual,
// since the user explicitly asked for the target. A target without a
// node yields an empty graph.
func pruneToTarget(graph Graph, target string, log *logger.Logger) Graph {
	targetNode, ok := graph[target]
	if !ok {
		log.WithFields(map[string]any{"field": target}).Warn("target field has no prompt, nothing to generate")
		return Graph{}
	}

	trimmed := Graph{target: targetNode}
	explore := make([]string, 0, len(targetNode.InEdges))
	for dep := range targetNode.InEdges {
		explore = append(explore, dep)
	}

	for len(explore) > 0 {
		field := explore[len(explore)-1]
		explore = explore[:len(explore)-1]
		if _, seen := trimmed[field]; seen {
			continue
		}

		node := graph[field]
		node.GenerateDespiteManual = true
		trimmed[field] = node
		for dep := range node.InEdges {
			explore = append(explore, dep)
		}
	}

	// Out-edges may point at discarded nodes; drop them so every edge
	// stays inside the graph.
	for _, node := range trimmed {
		for out := range node.OutEdges {
			if _, kept := trimmed[out]; !kept {
				delete(node.OutEdges, out)
			}
		}
	}
	return trimmed
}
