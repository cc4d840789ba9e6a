package board

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// payloadSchema only pins the root type. Everything below the root is
// repaired by the normalizer instead of rejected.
const payloadSchema = `{
	"type": "object",
	"properties": {
		"sections": {},
		"targetLanguage": {}
	}
}`

var rootSchema = mustCompile(payloadSchema)

func mustCompile(src string) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(src))
	if err != nil {
		panic(fmt.Sprintf("board: unmarshal schema: %v", err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("payload.json", doc); err != nil {
		panic(fmt.Sprintf("board: add schema resource: %v", err))
	}
	s, err := c.Compile("payload.json")
	if err != nil {
		panic(fmt.Sprintf("board: compile schema: %v", err))
	}
	return s
}

// Decode parses raw JSON and checks it is an object. The returned map holds
// json.Number for numeric values.
func Decode(raw []byte) (map[string]any, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	if err := rootSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return obj, nil
}
