// Package api embeds the OpenAPI document of the capacity HTTP surface. The
// document drives request validation and the served API docs.
package api

import (
	"context"
	_ "embed"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/swaggo/swag"
)

// DocsInstance is the swag registry name the docs handler reads from.
const DocsInstance = "capacity"

//go:embed openapi.yaml
var document []byte

// Load parses and validates the embedded document.
func Load(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(document)
	if err != nil {
		return nil, err
	}
	if err = doc.Validate(ctx); err != nil {
		return nil, err
	}
	return doc, nil
}

type docs struct {
	json []byte
}

func (d docs) ReadDoc() string {
	return string(d.json)
}

var registerOnce sync.Once

// RegisterDocs publishes doc as JSON to swag so the swagger UI can serve it.
// Only the first call registers.
func RegisterDocs(doc *openapi3.T) error {
	raw, err := doc.MarshalJSON()
	if err != nil {
		return err
	}
	registerOnce.Do(func() {
		swag.Register(DocsInstance, docs{json: raw})
	})
	return nil
}
