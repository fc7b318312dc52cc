package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/GatorEducator/reporover/internal/githubapi"
)

const (
	documentFieldNameConstant = "document"

	configurationFieldPathConstant         = "reporover.configuration"
	repositoriesFieldPathConstant          = "reporover.repos"
	repositoryEntryPathTemplateConstant    = "reporover.repos[%d]"
	fieldPathTemplateConstant              = "%s.%s"
	validationErrorTemplateConstant        = "%s: %s"
	invalidDocumentMessageTemplateConstant = "document is not valid JSON: %v"
	missingFieldMessageConstant            = "required field is missing"
	objectFieldMessageConstant             = "value must be an object"
	arrayFieldMessageConstant              = "value must be an array"
	stringFieldMessageConstant             = "value must be a string"
	nonEmptyStringFieldMessageConstant     = "value must be a non-empty string"
	integerFieldMessageConstant            = "value must be an integer"
	booleanFieldMessageConstant            = "value must be a boolean"
	timestampFieldMessageConstant          = "value must be an RFC 3339 timestamp"
	stringListFieldMessageConstant         = "value must be a list of strings"
)

// ValidationError reports the first field of a loaded record that is missing
// or malformed.
type ValidationError struct {
	Field   string
	Message string
}

// Error describes the offending field.
func (validationError ValidationError) Error() string {
	return fmt.Sprintf(validationErrorTemplateConstant, validationError.Field, validationError.Message)
}

// Severity marks validation errors fatal so a broken record never feeds a
// bulk run.
func (validationError ValidationError) Severity() githubapi.Severity {
	return githubapi.SeverityFatal
}

type fieldKind string

const (
	fieldKindString     fieldKind = "string"
	fieldKindInteger    fieldKind = "integer"
	fieldKindBoolean    fieldKind = "boolean"
	fieldKindTimestamp  fieldKind = "timestamp"
	fieldKindStringList fieldKind = "string list"
)

type fieldRule struct {
	fieldName string
	kind      fieldKind
	required  bool
}

func configurationFieldRules() []fieldRule {
	return []fieldRule{
		{fieldName: commandFieldNameConstant, kind: fieldKindString, required: true},
		{fieldName: languageFieldNameConstant, kind: fieldKindString},
		{fieldName: starsFieldNameConstant, kind: fieldKindInteger},
		{fieldName: forksFieldNameConstant, kind: fieldKindInteger},
		{fieldName: createdAfterFieldNameConstant, kind: fieldKindString},
		{fieldName: updatedAfterFieldNameConstant, kind: fieldKindString},
		{fieldName: filesFieldNameConstant, kind: fieldKindStringList},
		{fieldName: topicsFieldNameConstant, kind: fieldKindStringList},
		{fieldName: licenseFieldNameConstant, kind: fieldKindString},
		{fieldName: sizeFieldNameConstant, kind: fieldKindInteger},
		{fieldName: issuesEnabledFieldNameConstant, kind: fieldKindBoolean},
		{fieldName: wikiEnabledFieldNameConstant, kind: fieldKindBoolean},
		{fieldName: maxDepthFieldNameConstant, kind: fieldKindInteger},
		{fieldName: maxFilterFieldNameConstant, kind: fieldKindInteger},
		{fieldName: maxDisplayFieldNameConstant, kind: fieldKindInteger},
		{fieldName: searchQueryFieldNameConstant, kind: fieldKindString, required: true},
		{fieldName: timestampFieldNameConstant, kind: fieldKindTimestamp},
	}
}

func descriptorFieldRules() []fieldRule {
	return []fieldRule{
		{fieldName: nameFieldNameConstant, kind: fieldKindString, required: true},
		{fieldName: fullNameFieldNameConstant, kind: fieldKindString},
		{fieldName: urlFieldNameConstant, kind: fieldKindString, required: true},
		{fieldName: descriptionFieldNameConstant, kind: fieldKindString},
		{fieldName: languageFieldNameConstant, kind: fieldKindString},
		{fieldName: starsFieldNameConstant, kind: fieldKindInteger, required: true},
		{fieldName: forksFieldNameConstant, kind: fieldKindInteger, required: true},
		{fieldName: sizeFieldNameConstant, kind: fieldKindInteger},
		{fieldName: issuesEnabledFieldNameConstant, kind: fieldKindBoolean},
		{fieldName: wikiEnabledFieldNameConstant, kind: fieldKindBoolean},
		{fieldName: licenseFieldNameConstant, kind: fieldKindString},
		{fieldName: createdAtFieldNameConstant, kind: fieldKindTimestamp, required: true},
		{fieldName: updatedAtFieldNameConstant, kind: fieldKindTimestamp, required: true},
	}
}

// Validate inspects raw record bytes before they are decoded and reports the
// first missing or malformed field. Fields outside the known set are left
// alone so records written by newer releases still load.
func Validate(recordContents []byte) error {
	rawDecoder := json.NewDecoder(bytes.NewReader(recordContents))
	rawDecoder.UseNumber()
	var rawDocument any
	if decodeError := rawDecoder.Decode(&rawDocument); decodeError != nil {
		return ValidationError{Field: documentFieldNameConstant, Message: fmt.Sprintf(invalidDocumentMessageTemplateConstant, decodeError)}
	}

	topLevelObject, topLevelIsObject := rawDocument.(map[string]any)
	if !topLevelIsObject {
		return ValidationError{Field: documentFieldNameConstant, Message: objectFieldMessageConstant}
	}

	contentsValue, contentsPresent := topLevelObject[rootFieldNameConstant]
	if !contentsPresent {
		return ValidationError{Field: rootFieldNameConstant, Message: missingFieldMessageConstant}
	}
	contentsObject, contentsIsObject := contentsValue.(map[string]any)
	if !contentsIsObject {
		return ValidationError{Field: rootFieldNameConstant, Message: objectFieldMessageConstant}
	}

	configurationValue, configurationPresent := contentsObject[configurationFieldNameConstant]
	if !configurationPresent {
		return ValidationError{Field: configurationFieldPathConstant, Message: missingFieldMessageConstant}
	}
	configurationObject, configurationIsObject := configurationValue.(map[string]any)
	if !configurationIsObject {
		return ValidationError{Field: configurationFieldPathConstant, Message: objectFieldMessageConstant}
	}
	if ruleError := checkObjectFields(configurationObject, configurationFieldRules(), configurationFieldPathConstant); ruleError != nil {
		return ruleError
	}

	repositoriesValue, repositoriesPresent := contentsObject[repositoriesFieldNameConstant]
	if !repositoriesPresent {
		return ValidationError{Field: repositoriesFieldPathConstant, Message: missingFieldMessageConstant}
	}
	repositoriesList, repositoriesIsList := repositoriesValue.([]any)
	if !repositoriesIsList {
		return ValidationError{Field: repositoriesFieldPathConstant, Message: arrayFieldMessageConstant}
	}
	for repositoryIndex, repositoryValue := range repositoriesList {
		repositoryEntryPath := fmt.Sprintf(repositoryEntryPathTemplateConstant, repositoryIndex)
		repositoryObject, repositoryIsObject := repositoryValue.(map[string]any)
		if !repositoryIsObject {
			return ValidationError{Field: repositoryEntryPath, Message: objectFieldMessageConstant}
		}
		if ruleError := checkObjectFields(repositoryObject, descriptorFieldRules(), repositoryEntryPath); ruleError != nil {
			return ruleError
		}
	}
	return nil
}

func checkObjectFields(objectFields map[string]any, fieldRules []fieldRule, pathPrefix string) error {
	for _, currentRule := range fieldRules {
		fieldPath := fmt.Sprintf(fieldPathTemplateConstant, pathPrefix, currentRule.fieldName)
		fieldValue, fieldPresent := objectFields[currentRule.fieldName]
		if !fieldPresent {
			if currentRule.required {
				return ValidationError{Field: fieldPath, Message: missingFieldMessageConstant}
			}
			continue
		}
		if kindMessage := checkFieldKind(fieldValue, currentRule); kindMessage != "" {
			return ValidationError{Field: fieldPath, Message: kindMessage}
		}
	}
	return nil
}

func checkFieldKind(fieldValue any, currentRule fieldRule) string {
	switch currentRule.kind {
	case fieldKindString:
		stringValue, isString := fieldValue.(string)
		if !isString {
			return stringFieldMessageConstant
		}
		if currentRule.required && strings.TrimSpace(stringValue) == "" {
			return nonEmptyStringFieldMessageConstant
		}
	case fieldKindInteger:
		numberValue, isNumber := fieldValue.(json.Number)
		if !isNumber {
			return integerFieldMessageConstant
		}
		if _, parseError := numberValue.Int64(); parseError != nil {
			return integerFieldMessageConstant
		}
	case fieldKindBoolean:
		if _, isBoolean := fieldValue.(bool); !isBoolean {
			return booleanFieldMessageConstant
		}
	case fieldKindTimestamp:
		timestampValue, isString := fieldValue.(string)
		if !isString {
			return timestampFieldMessageConstant
		}
		if _, parseError := time.Parse(savedTimestampFormatConstant, timestampValue); parseError != nil {
			return timestampFieldMessageConstant
		}
	case fieldKindStringList:
		listValue, isList := fieldValue.([]any)
		if !isList {
			return stringListFieldMessageConstant
		}
		for _, listEntry := range listValue {
			if _, entryIsString := listEntry.(string); !entryIsString {
				return stringListFieldMessageConstant
			}
		}
	}
	return ""
}
