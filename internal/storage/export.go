package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/chaindyn/internal/dynamo"
)

type ExportData struct {
	RunMetadata
	Data []dynamo.Sample `json:"data"`
}

// ExportJSON writes meta and samples as one indented JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, samples []dynamo.Sample) error {
	meta.Samples = len(samples)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{RunMetadata: meta, Data: samples})
}

func ExportJSONFile(path string, meta RunMetadata, samples []dynamo.Sample) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ExportJSON(file, meta, samples); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
