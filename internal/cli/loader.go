package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/strata/internal/doc"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric    = "E001" // Generic/unknown error
	ErrCodeLoadFailed = "E004" // Document parse/build failed
	ErrCodeNotFound   = "E005" // Path not found
	ErrCodeBadDoc     = "E006" // Document conversion failed
	ErrCodeBadParams  = "E007" // Parameter decode failed
	ErrCodeStore      = "E008" // Store operation failed
)

// LoadError represents an error that occurred during document loading.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// itemsFile is the top-level shape of an items document: a single
// "items" list.
type itemsFile struct {
	Items []doc.ItemDoc `yaml:"items" json:"items"`
}

// LoadQueryDoc reads a query document from a CUE, YAML, or JSON file.
// The file's top level is the query itself. The format is chosen by
// extension.
func LoadQueryDoc(path string) (*doc.QueryDoc, error) {
	data, err := readDocFile(path)
	if err != nil {
		return nil, err
	}

	var qd doc.QueryDoc
	if err := decodeDoc(path, data, &qd); err != nil {
		return nil, err
	}
	return &qd, nil
}

// LoadItemDocs reads an items document from a CUE, YAML, or JSON file.
// The file's top level holds a single "items" list.
func LoadItemDocs(path string) ([]doc.ItemDoc, error) {
	data, err := readDocFile(path)
	if err != nil {
		return nil, err
	}

	var file itemsFile
	if err := decodeDoc(path, data, &file); err != nil {
		return nil, err
	}
	if len(file.Items) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("%s: no items found (expected a top-level items list)", path)}
	}
	return file.Items, nil
}

func readDocFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error reading %s: %v", path, err)}
	}
	return data, nil
}

// decodeDoc parses data into out based on the file extension.
// CUE documents are compiled and decoded through their JSON shape; YAML
// decoding is strict so a typoed field is rejected, not dropped.
func decodeDoc(path string, data []byte, out any) error {
	switch filepath.Ext(path) {
	case ".cue":
		ctx := cuecontext.New()
		value := ctx.CompileBytes(data, cue.Filename(path))
		if err := value.Err(); err != nil {
			return &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
		}
		if err := value.Decode(out); err != nil {
			return &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("decoding CUE value: %v", err)}
		}
		return nil

	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(out); err != nil {
			return &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("parsing YAML: %v", err)}
		}
		return nil

	case ".json":
		if err := json.Unmarshal(data, out); err != nil {
			return &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("parsing JSON: %v", err)}
		}
		return nil

	default:
		return &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("unsupported document format: %s", path)}
	}
}
