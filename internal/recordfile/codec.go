// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package recordfile

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/holomush/holocred/internal/credential"
)

// Error codes.
const (
	CodeInvalidFormat      = "RECORDFILE_INVALID_FORMAT"
	CodeUnsetRecord        = "RECORDFILE_UNSET_RECORD"
	CodeParseFailed        = "RECORDFILE_PARSE_FAILED"
	CodeSchemaInvalid      = "RECORDFILE_SCHEMA_INVALID"
	CodeUnsupportedVersion = "RECORDFILE_UNSUPPORTED_VERSION"
	CodeIOFailed           = "RECORDFILE_IO_FAILED"
)

// FormatVersion is written into every new document.
const FormatVersion = "1.0.0"

// supportedVersions is the range of format versions this package reads.
const supportedVersions = "^1"

// fileMode keeps record files readable by their owner only.
const fileMode = 0o600

// Format is a document encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat converts a format name to a Format. Empty means JSON.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", oops.Code(CodeInvalidFormat).
		With("format", name).
		Errorf("record format must be 'json' or 'yaml', got %q", name)
}

// FormatForPath picks the format from a file extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Document is the serialized form of a record.
type Document struct {
	FormatVersion string            `json:"format_version" yaml:"format_version" jsonschema:"minLength=1"`
	Record        credential.Record `json:"record" yaml:"record"`
}

// Marshal encodes a Set record as a document in the given format.
func Marshal(rec *credential.Record, format Format) ([]byte, error) {
	if rec == nil || !rec.IsSet() {
		return nil, oops.Code(CodeUnsetRecord).
			Errorf("cannot encode a record without a password")
	}

	doc := Document{FormatVersion: FormatVersion, Record: *rec}

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, oops.Code(CodeParseFailed).With("format", format).Wrap(err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, oops.Code(CodeParseFailed).With("format", format).Wrap(err)
		}
		if err := enc.Close(); err != nil {
			return nil, oops.Code(CodeParseFailed).With("format", format).Wrap(err)
		}
		return buf.Bytes(), nil
	}
	return nil, oops.Code(CodeInvalidFormat).
		With("format", string(format)).
		Errorf("record format must be 'json' or 'yaml', got %q", format)
}

// Unmarshal decodes a JSON or YAML document. The document is checked against
// the schema and the supported format versions before the record is returned.
func Unmarshal(data []byte) (*credential.Record, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, oops.Code(CodeParseFailed).Wrap(err)
	}

	if err := checkVersion(doc.FormatVersion); err != nil {
		return nil, err
	}

	rec := doc.Record
	return &rec, nil
}

func checkVersion(raw string) error {
	v, err := semver.NewVersion(raw)
	if err != nil {
		return oops.Code(CodeUnsupportedVersion).
			With("format_version", raw).
			Wrap(err)
	}

	c, err := semver.NewConstraint(supportedVersions)
	if err != nil {
		return oops.Code(CodeUnsupportedVersion).Wrap(err)
	}
	if !c.Check(v) {
		return oops.Code(CodeUnsupportedVersion).
			With("format_version", raw).
			With("supported", supportedVersions).
			Errorf("unsupported record format version %s", raw)
	}
	return nil
}

// ReadFile reads and decodes the document at path.
func ReadFile(path string) (*credential.Record, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, oops.Code(CodeIOFailed).
			With("path", path).
			Wrap(err)
	}

	rec, err := Unmarshal(data)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	return rec, nil
}

// WriteFile encodes rec in the format implied by the path's extension and
// writes it with owner-only permissions.
func WriteFile(path string, rec *credential.Record) error {
	data, err := Marshal(rec, FormatForPath(path))
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, fileMode); err != nil {
		return oops.Code(CodeIOFailed).
			With("path", path).
			Wrap(err)
	}
	return nil
}
