package llmresolve

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shelfsight/shelf-cli/internal/model"
	"github.com/shelfsight/shelf-cli/internal/schema"
)

// fieldInstructions carry per-field guidance beyond the bare valid-value
// enumeration. Fields without an entry get the generic instruction.
var fieldInstructions = map[string]string{
	schema.ColProductType: "Classify from the product name and context. " +
		"Juice shots (small-format functional drinks) are \"Shots\" even when labelled as juice.",
	schema.ColNeedState: "\"Functional\" covers health-positioned products (shots, " +
		"added vitamins, gut/immunity claims); everything drunk for taste is \"Indulgence\".",
	schema.ColExtractionMethod: "Infer from brand knowledge and claims. HPP-treated " +
		"products are cold pressed. \"Not from concentrate\" means Squeezed.",
	schema.ColProcessingMethod: "HPP treatment implies \"HPP\". Untreated fresh juice is \"Raw\".",
	schema.ColShelfLocation: "Map the observed location to the closest canonical section.",
	schema.ColStoreFormat: "Classify the store by trade format, not floor size: express and " +
		"local city-centre stores are \"Convenience\", full-range grocery stores are " +
		"\"Supermarket\", out-of-town megastores are \"Hypermarket\", hard discounters " +
		"are \"Discount\".",
	schema.ColFlavor: "Extract the flavor from the product name, e.g. " +
		"\"Orange\" from \"Innocent Orange Juice 900ml\". Use \" & \" to join multiple " +
		"fruits. Leave blank if the name carries no flavor.",
}

const genericInstruction = "Choose the best value from the valid set using the row context."

// SystemPrompt builds the cached system block text: role, output contract,
// and the per-field valid sets with instructions. Stable for a given schema
// so prompt caching pays off across batches.
func SystemPrompt(sch *schema.Schema) string {
	var sb strings.Builder
	sb.WriteString("You are a data normalization assistant for retail shelf observation data ")
	sb.WriteString("(juice category). You receive a JSON array of unresolved cells, each with an ")
	sb.WriteString("id, a target field, the original raw value (possibly empty), and sibling ")
	sb.WriteString("column context from the same row.\n\n")
	sb.WriteString("Respond with ONLY a JSON array, one object per input item:\n")
	sb.WriteString(`[{"id": 0, "value": "<resolved value>", "rationale": "<one short sentence>"}, ...]` + "\n\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("- For fields with a valid set, \"value\" MUST be one of the listed values, or \"\" if undeterminable.\n")
	sb.WriteString("- Never invent placeholder values. If you cannot determine a value, use \"\".\n")
	sb.WriteString("- Never answer \"unknown\", \"N/A\" or similar; the empty string is the only way to say that.\n")
	sb.WriteString("- \"rationale\" states in one short sentence what the value was based on.\n\n")
	sb.WriteString("Fields:\n")

	for _, field := range schema.Columns {
		constrained := sch.Constrained(field)
		freeForm := sch.FreeForm(field)
		if !constrained && !freeForm {
			continue
		}

		instruction, ok := fieldInstructions[field]
		if !ok {
			instruction = genericInstruction
		}

		if constrained {
			fmt.Fprintf(&sb, "- %s: valid values %s. %s\n",
				field, quoteJoin(sch.ValidValues(field)), instruction)
		} else {
			fmt.Fprintf(&sb, "- %s: free text. %s\n", field, instruction)
		}
	}

	return sb.String()
}

func quoteJoin(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}

// promptItem is the wire shape of one flagged cell in the user message.
// Ids are batch-local so responses can be mapped back regardless of how the
// batch was split.
type promptItem struct {
	ID       int               `json:"id"`
	Field    string            `json:"field"`
	Original string            `json:"original"`
	Context  map[string]string `json:"context,omitempty"`
}

// BuildUserMessage renders one batch of flagged items as the user message.
func BuildUserMessage(items []model.FlaggedItem) (string, error) {
	wire := make([]promptItem, len(items))
	for i, it := range items {
		wire[i] = promptItem{
			ID:       i,
			Field:    it.Field,
			Original: it.Original,
			Context:  it.Context,
		}
	}

	data, err := json.MarshalIndent(wire, "", "  ")
	if err != nil {
		return "", err
	}

	return "Resolve these cells:\n\n" + string(data), nil
}
