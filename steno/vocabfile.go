package steno

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadExtensionFile reads a vocabulary extension from a YAML file:
//
//	name: ml
//	description: model-fitting vocabulary
//	verbs:
//	  aug: {name: augment, description: augment a dataset}
//	  trn: {alias_of: fit}
//	flags:
//	  gpu: {name: gpu, description: run on the GPU}
//	modes:
//	  audit: {name: audit, description: review only, delegates: true}
func LoadExtensionFile(path string) (Extension, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Extension{}, fmt.Errorf("read extension file: %w", err)
	}
	var ext Extension
	if err := yaml.Unmarshal(data, &ext); err != nil {
		return Extension{}, fmt.Errorf("parse extension file %s: %w", path, err)
	}
	if ext.Name == "" {
		return Extension{}, fmt.Errorf("extension file %s: name required", path)
	}
	return ext, nil
}
