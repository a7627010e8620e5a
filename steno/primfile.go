package steno

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type primitivesFile struct {
	Primitives []PrimitiveDescriptor `yaml:"primitives"`
}

// LoadPrimitivesFile reads a primitive catalog from a YAML file:
//
//	primitives:
//	  - name: pca
//	    verb: viz
//	    target: pca
//	    input_slots: [data]
//	    defaults: {components: 2}
//	    category: stats
func LoadPrimitivesFile(path string) ([]PrimitiveDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read primitives file: %w", err)
	}
	var file primitivesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse primitives file %s: %w", path, err)
	}
	for i, desc := range file.Primitives {
		if desc.Name == "" || desc.Verb == "" {
			return nil, fmt.Errorf("primitives file %s: entry %d needs name and verb", path, i)
		}
	}
	return file.Primitives, nil
}
