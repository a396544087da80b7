// Package api embeds the OpenAPI document served and enforced by the HTTP
// adapter.
package api

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/swaggo/swag"
)

//go:embed openapi.yaml
var document []byte

// Load parses and validates the embedded document.
func Load() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err = doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return doc, nil
}

type swaggerDoc struct {
	json string
}

func (d swaggerDoc) ReadDoc() string {
	return d.json
}

var registerOnce sync.Once

// RegisterSwagger publishes doc in the swag registry read by the swagger UI.
// Only the first call has an effect.
func RegisterSwagger(doc *openapi3.T) error {
	var err error
	registerOnce.Do(func() {
		var data []byte
		data, err = doc.MarshalJSON()
		if err != nil {
			err = fmt.Errorf("marshal openapi document: %w", err)
			return
		}
		swag.Register(swag.Name, swaggerDoc{json: string(data)})
	})
	return err
}
