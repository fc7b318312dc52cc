package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/GatorEducator/reporover/internal/githubapi"
)

const (
	rootFieldNameConstant          = "reporover"
	configurationFieldNameConstant = "configuration"
	repositoriesFieldNameConstant  = "repos"

	nameFieldNameConstant          = "name"
	fullNameFieldNameConstant      = "full_name"
	urlFieldNameConstant           = "url"
	descriptionFieldNameConstant   = "description"
	languageFieldNameConstant      = "language"
	starsFieldNameConstant         = "stars"
	forksFieldNameConstant         = "forks"
	sizeFieldNameConstant          = "size"
	issuesEnabledFieldNameConstant = "issues_enabled"
	wikiEnabledFieldNameConstant   = "wiki_enabled"
	licenseFieldNameConstant       = "license"
	createdAtFieldNameConstant     = "created_at"
	updatedAtFieldNameConstant     = "updated_at"

	commandFieldNameConstant      = "command"
	createdAfterFieldNameConstant = "created_after"
	updatedAfterFieldNameConstant = "updated_after"
	filesFieldNameConstant        = "files"
	topicsFieldNameConstant       = "topics"
	maxDepthFieldNameConstant     = "max_depth"
	maxFilterFieldNameConstant    = "max_filter"
	maxDisplayFieldNameConstant   = "max_display"
	searchQueryFieldNameConstant  = "search_query"
	timestampFieldNameConstant    = "timestamp"

	savedTimestampFormatConstant = time.RFC3339

	descriptorNotObjectMessageConstant = "repository descriptor must be a JSON object"
)

// ErrDescriptorNotObject reports a repository entry that is not a JSON object.
var ErrDescriptorNotObject = errors.New(descriptorNotObjectMessageConstant)

// Document is the on-disk record written by repository discovery.
type Document struct {
	RepoRover Contents `json:"reporover"`
}

// Contents holds the configuration a discovery run used and the repositories
// it found.
type Contents struct {
	Configuration Configuration `json:"configuration"`
	Repositories  []Descriptor  `json:"repos"`
}

// Configuration captures the discovery inputs so a saved record explains how
// its repositories were selected.
type Configuration struct {
	Command       string   `json:"command"`
	Language      string   `json:"language,omitempty"`
	MinimumStars  int      `json:"stars,omitempty"`
	MinimumForks  int      `json:"forks,omitempty"`
	CreatedAfter  string   `json:"created_after,omitempty"`
	UpdatedAfter  string   `json:"updated_after,omitempty"`
	RequiredFiles []string `json:"files,omitempty"`
	Topics        []string `json:"topics,omitempty"`
	License       string   `json:"license,omitempty"`
	MinimumSize   int      `json:"size,omitempty"`
	IssuesEnabled *bool    `json:"issues_enabled,omitempty"`
	WikiEnabled   *bool    `json:"wiki_enabled,omitempty"`
	MaxDepth      int      `json:"max_depth"`
	MaxFilter     int      `json:"max_filter"`
	MaxDisplay    int      `json:"max_display"`
	SearchQuery   string   `json:"search_query"`
	Timestamp     string   `json:"timestamp,omitempty"`
}

// Descriptor describes one discovered repository. Fields this release does
// not know about are kept in Extra in their original order and written back
// on save.
type Descriptor struct {
	Name          string
	FullName      string
	URL           string
	Description   string
	Language      string
	Stars         int
	Forks         int
	Size          int
	IssuesEnabled bool
	WikiEnabled   bool
	License       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Extra         *orderedmap.OrderedMap[string, json.RawMessage]
}

// NewDescriptor converts a repository reported by the gateway into a
// persistable descriptor.
func NewDescriptor(repositoryDescriptor githubapi.RepositoryDescriptor) Descriptor {
	return Descriptor{
		Name:          repositoryDescriptor.Name,
		FullName:      repositoryDescriptor.FullName,
		URL:           repositoryDescriptor.URL,
		Description:   repositoryDescriptor.Description,
		Language:      repositoryDescriptor.Language,
		Stars:         repositoryDescriptor.Stars,
		Forks:         repositoryDescriptor.Forks,
		Size:          repositoryDescriptor.Size,
		IssuesEnabled: repositoryDescriptor.HasIssues,
		WikiEnabled:   repositoryDescriptor.HasWiki,
		License:       repositoryDescriptor.License,
		CreatedAt:     repositoryDescriptor.CreatedAt,
		UpdatedAt:     repositoryDescriptor.UpdatedAt,
	}
}

// MarshalJSON writes the descriptor fields in a fixed order so consecutive
// saves of the same record produce identical bytes. Preserved unknown fields
// follow the known ones in the order they were read.
func (descriptor Descriptor) MarshalJSON() ([]byte, error) {
	orderedFields := []struct {
		fieldName  string
		fieldValue any
	}{
		{nameFieldNameConstant, descriptor.Name},
		{fullNameFieldNameConstant, descriptor.FullName},
		{urlFieldNameConstant, descriptor.URL},
		{descriptionFieldNameConstant, descriptor.Description},
		{languageFieldNameConstant, descriptor.Language},
		{starsFieldNameConstant, descriptor.Stars},
		{forksFieldNameConstant, descriptor.Forks},
		{sizeFieldNameConstant, descriptor.Size},
		{issuesEnabledFieldNameConstant, descriptor.IssuesEnabled},
		{wikiEnabledFieldNameConstant, descriptor.WikiEnabled},
		{licenseFieldNameConstant, descriptor.License},
		{createdAtFieldNameConstant, descriptor.CreatedAt.UTC().Format(savedTimestampFormatConstant)},
		{updatedAtFieldNameConstant, descriptor.UpdatedAt.UTC().Format(savedTimestampFormatConstant)},
	}

	var encodedDescriptor bytes.Buffer
	encodedDescriptor.WriteByte('{')
	for fieldIndex, orderedField := range orderedFields {
		if fieldIndex > 0 {
			encodedDescriptor.WriteByte(',')
		}
		if writeError := writeEncodedField(&encodedDescriptor, orderedField.fieldName, orderedField.fieldValue); writeError != nil {
			return nil, writeError
		}
	}
	if descriptor.Extra != nil {
		for extraElement := descriptor.Extra.Front(); extraElement != nil; extraElement = extraElement.Next() {
			encodedDescriptor.WriteByte(',')
			if writeError := writeEncodedField(&encodedDescriptor, extraElement.Key, extraElement.Value); writeError != nil {
				return nil, writeError
			}
		}
	}
	encodedDescriptor.WriteByte('}')
	return encodedDescriptor.Bytes(), nil
}

// UnmarshalJSON reads the known descriptor fields and collects every other
// field into Extra without interpreting it.
func (descriptor *Descriptor) UnmarshalJSON(encodedDescriptor []byte) error {
	fieldDecoder := json.NewDecoder(bytes.NewReader(encodedDescriptor))
	openingToken, openingError := fieldDecoder.Token()
	if openingError != nil {
		return openingError
	}
	openingDelimiter, isDelimiter := openingToken.(json.Delim)
	if !isDelimiter || openingDelimiter != '{' {
		return ErrDescriptorNotObject
	}

	for fieldDecoder.More() {
		keyToken, keyError := fieldDecoder.Token()
		if keyError != nil {
			return keyError
		}
		fieldName, _ := keyToken.(string)
		var rawFieldValue json.RawMessage
		if valueError := fieldDecoder.Decode(&rawFieldValue); valueError != nil {
			return valueError
		}
		if assignError := descriptor.assignField(fieldName, rawFieldValue); assignError != nil {
			return assignError
		}
	}

	_, closingError := fieldDecoder.Token()
	return closingError
}

func (descriptor *Descriptor) assignField(fieldName string, rawFieldValue json.RawMessage) error {
	switch fieldName {
	case nameFieldNameConstant:
		return json.Unmarshal(rawFieldValue, &descriptor.Name)
	case fullNameFieldNameConstant:
		return json.Unmarshal(rawFieldValue, &descriptor.FullName)
	case urlFieldNameConstant:
		return json.Unmarshal(rawFieldValue, &descriptor.URL)
	case descriptionFieldNameConstant:
		return json.Unmarshal(rawFieldValue, &descriptor.Description)
	case languageFieldNameConstant:
		return json.Unmarshal(rawFieldValue, &descriptor.Language)
	case starsFieldNameConstant:
		return json.Unmarshal(rawFieldValue, &descriptor.Stars)
	case forksFieldNameConstant:
		return json.Unmarshal(rawFieldValue, &descriptor.Forks)
	case sizeFieldNameConstant:
		return json.Unmarshal(rawFieldValue, &descriptor.Size)
	case issuesEnabledFieldNameConstant:
		return json.Unmarshal(rawFieldValue, &descriptor.IssuesEnabled)
	case wikiEnabledFieldNameConstant:
		return json.Unmarshal(rawFieldValue, &descriptor.WikiEnabled)
	case licenseFieldNameConstant:
		return json.Unmarshal(rawFieldValue, &descriptor.License)
	case createdAtFieldNameConstant:
		return assignTimestamp(&descriptor.CreatedAt, rawFieldValue)
	case updatedAtFieldNameConstant:
		return assignTimestamp(&descriptor.UpdatedAt, rawFieldValue)
	default:
		if descriptor.Extra == nil {
			descriptor.Extra = orderedmap.NewOrderedMap[string, json.RawMessage]()
		}
		descriptor.Extra.Set(fieldName, rawFieldValue)
		return nil
	}
}

func assignTimestamp(timestampTarget *time.Time, rawFieldValue json.RawMessage) error {
	var timestampText string
	if unmarshalError := json.Unmarshal(rawFieldValue, &timestampText); unmarshalError != nil {
		return unmarshalError
	}
	parsedTimestamp, parseError := time.Parse(savedTimestampFormatConstant, timestampText)
	if parseError != nil {
		return parseError
	}
	*timestampTarget = parsedTimestamp
	return nil
}

func writeEncodedField(encodedDescriptor *bytes.Buffer, fieldName string, fieldValue any) error {
	encodedName, nameError := json.Marshal(fieldName)
	if nameError != nil {
		return nameError
	}
	encodedDescriptor.Write(encodedName)
	encodedDescriptor.WriteByte(':')
	encodedValue, valueError := json.Marshal(fieldValue)
	if valueError != nil {
		return valueError
	}
	encodedDescriptor.Write(encodedValue)
	return nil
}
