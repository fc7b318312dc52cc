package record_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/GatorEducator/reporover/internal/githubapi"
	"github.com/GatorEducator/reporover/internal/record"
)

const (
	recordFileNameConstant    = "search.json"
	resavedFileNameConstant   = "resaved.json"
	preservedDocumentConstant = `{
  "reporover": {
    "configuration": {
      "command": "search",
      "max_depth": 0,
      "max_filter": 25,
      "max_display": 10,
      "search_query": "language:Python is:public"
    },
    "repos": [
      {
        "name": "lab-1-hawk",
        "url": "https://github.com/demo-org/lab-1-hawk",
        "stars": 3,
        "forks": 1,
        "created_at": "2024-01-02T03:04:05Z",
        "updated_at": "2024-02-03T04:05:06Z",
        "grade": 95,
        "review": {"reviewer": "faculty-owl", "approved": true}
      }
    ]
  }
}`
)

func boolPointer(value bool) *bool {
	return &value
}

func sampleDocument() record.Document {
	return record.Document{
		RepoRover: record.Contents{
			Configuration: record.Configuration{
				Command:       "search",
				Language:      "Python",
				MinimumStars:  2,
				RequiredFiles: []string{"uv.lock", "pyproject.toml", "src"},
				IssuesEnabled: boolPointer(true),
				MaxDepth:      1,
				MaxFilter:     25,
				MaxDisplay:    10,
				SearchQuery:   "language:Python stars:>=2 is:public",
				Timestamp:     "2026-02-01T10:30:00Z",
			},
			Repositories: []record.Descriptor{
				{
					Name:          "lab-1-hawk",
					FullName:      "demo-org/lab-1-hawk",
					URL:           "https://github.com/demo-org/lab-1-hawk",
					Description:   "Lab one",
					Language:      "Python",
					Stars:         3,
					Forks:         1,
					Size:          128,
					IssuesEnabled: true,
					License:       "MIT",
					CreatedAt:     time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC),
					UpdatedAt:     time.Date(2024, time.February, 3, 4, 5, 6, 0, time.UTC),
				},
				{
					Name:      "lab-1-finch",
					FullName:  "demo-org/lab-1-finch",
					URL:       "https://github.com/demo-org/lab-1-finch",
					Language:  "Python",
					Stars:     1,
					Forks:     0,
					Size:      64,
					License:   "NOASSERTION",
					CreatedAt: time.Date(2024, time.March, 4, 5, 6, 7, 0, time.UTC),
					UpdatedAt: time.Date(2024, time.April, 5, 6, 7, 8, 0, time.UTC),
				},
			},
		},
	}
}

func TestSaveLoadRoundTripKeepsEveryField(testInstance *testing.T) {
	recordPath := filepath.Join(testInstance.TempDir(), recordFileNameConstant)
	originalDocument := sampleDocument()

	require.NoError(testInstance, record.Save(recordPath, originalDocument))
	loadedDocument, loadError := record.Load(recordPath)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, originalDocument, loadedDocument)
}

func TestSaveProducesIdenticalBytesForTheSameDocument(testInstance *testing.T) {
	tempDirectory := testInstance.TempDir()
	firstPath := filepath.Join(tempDirectory, "first.json")
	secondPath := filepath.Join(tempDirectory, "second.json")
	document := sampleDocument()

	require.NoError(testInstance, record.Save(firstPath, document))
	require.NoError(testInstance, record.Save(secondPath, document))

	firstContents, firstReadError := os.ReadFile(firstPath)
	require.NoError(testInstance, firstReadError)
	secondContents, secondReadError := os.ReadFile(secondPath)
	require.NoError(testInstance, secondReadError)
	require.Equal(testInstance, string(firstContents), string(secondContents))
}

func TestSaveAfterLoadIsByteStable(testInstance *testing.T) {
	tempDirectory := testInstance.TempDir()
	originalPath := filepath.Join(tempDirectory, recordFileNameConstant)
	resavedPath := filepath.Join(tempDirectory, resavedFileNameConstant)

	require.NoError(testInstance, record.Save(originalPath, sampleDocument()))
	loadedDocument, loadError := record.Load(originalPath)
	require.NoError(testInstance, loadError)
	require.NoError(testInstance, record.Save(resavedPath, loadedDocument))

	originalContents, originalReadError := os.ReadFile(originalPath)
	require.NoError(testInstance, originalReadError)
	resavedContents, resavedReadError := os.ReadFile(resavedPath)
	require.NoError(testInstance, resavedReadError)
	require.Equal(testInstance, string(originalContents), string(resavedContents))
}

func TestLoadPreservesUnknownDescriptorFields(testInstance *testing.T) {
	tempDirectory := testInstance.TempDir()
	originalPath := filepath.Join(tempDirectory, recordFileNameConstant)
	resavedPath := filepath.Join(tempDirectory, resavedFileNameConstant)
	require.NoError(testInstance, os.WriteFile(originalPath, []byte(preservedDocumentConstant), 0o644))

	loadedDocument, loadError := record.Load(originalPath)
	require.NoError(testInstance, loadError)
	require.Len(testInstance, loadedDocument.RepoRover.Repositories, 1)

	loadedDescriptor := loadedDocument.RepoRover.Repositories[0]
	require.NotNil(testInstance, loadedDescriptor.Extra)
	gradeValue, gradePresent := loadedDescriptor.Extra.Get("grade")
	require.True(testInstance, gradePresent)
	require.JSONEq(testInstance, "95", string(gradeValue))
	reviewValue, reviewPresent := loadedDescriptor.Extra.Get("review")
	require.True(testInstance, reviewPresent)
	require.JSONEq(testInstance, `{"reviewer": "faculty-owl", "approved": true}`, string(reviewValue))

	require.NoError(testInstance, record.Save(resavedPath, loadedDocument))
	resavedContents, resavedReadError := os.ReadFile(resavedPath)
	require.NoError(testInstance, resavedReadError)
	resavedText := string(resavedContents)
	require.Contains(testInstance, resavedText, `"grade": 95`)
	require.Contains(testInstance, resavedText, `"reviewer"`)

	nameIndex := strings.Index(resavedText, `"name"`)
	gradeIndex := strings.Index(resavedText, `"grade"`)
	reviewIndex := strings.Index(resavedText, `"review"`)
	require.Less(testInstance, nameIndex, gradeIndex)
	require.Less(testInstance, gradeIndex, reviewIndex)

	reloadedDocument, reloadError := record.Load(resavedPath)
	require.NoError(testInstance, reloadError)
	reloadedGrade, reloadedGradePresent := reloadedDocument.RepoRover.Repositories[0].Extra.Get("grade")
	require.True(testInstance, reloadedGradePresent)
	require.JSONEq(testInstance, "95", string(reloadedGrade))
}

func TestDescriptorFieldOrderIsFixed(testInstance *testing.T) {
	encodedDescriptor, marshalError := json.Marshal(sampleDocument().RepoRover.Repositories[0])
	require.NoError(testInstance, marshalError)
	require.Equal(testInstance,
		`{"name":"lab-1-hawk","full_name":"demo-org/lab-1-hawk","url":"https://github.com/demo-org/lab-1-hawk",`+
			`"description":"Lab one","language":"Python","stars":3,"forks":1,"size":128,`+
			`"issues_enabled":true,"wiki_enabled":false,"license":"MIT",`+
			`"created_at":"2024-01-02T03:04:05Z","updated_at":"2024-02-03T04:05:06Z"}`,
		string(encodedDescriptor))
}

func TestNewDescriptorCopiesGatewayFields(testInstance *testing.T) {
	reportedRepository := githubapi.RepositoryDescriptor{
		Name:        "lab-1-heron",
		FullName:    "demo-org/lab-1-heron",
		URL:         "https://github.com/demo-org/lab-1-heron",
		Description: "Lab one for heron",
		Language:    "Python",
		Stars:       7,
		Forks:       2,
		Size:        256,
		HasIssues:   true,
		HasWiki:     true,
		License:     "MIT",
		CreatedAt:   time.Date(2024, time.May, 6, 7, 8, 9, 0, time.UTC),
		UpdatedAt:   time.Date(2024, time.June, 7, 8, 9, 10, 0, time.UTC),
	}

	builtDescriptor := record.NewDescriptor(reportedRepository)
	require.Equal(testInstance, reportedRepository.Name, builtDescriptor.Name)
	require.Equal(testInstance, reportedRepository.FullName, builtDescriptor.FullName)
	require.Equal(testInstance, reportedRepository.URL, builtDescriptor.URL)
	require.Equal(testInstance, reportedRepository.Description, builtDescriptor.Description)
	require.Equal(testInstance, reportedRepository.Language, builtDescriptor.Language)
	require.Equal(testInstance, reportedRepository.Stars, builtDescriptor.Stars)
	require.Equal(testInstance, reportedRepository.Forks, builtDescriptor.Forks)
	require.Equal(testInstance, reportedRepository.Size, builtDescriptor.Size)
	require.True(testInstance, builtDescriptor.IssuesEnabled)
	require.True(testInstance, builtDescriptor.WikiEnabled)
	require.Equal(testInstance, reportedRepository.License, builtDescriptor.License)
	require.Equal(testInstance, reportedRepository.CreatedAt, builtDescriptor.CreatedAt)
	require.Equal(testInstance, reportedRepository.UpdatedAt, builtDescriptor.UpdatedAt)
}

func TestSaveWritesEmptyRepositoryList(testInstance *testing.T) {
	recordPath := filepath.Join(testInstance.TempDir(), recordFileNameConstant)
	document := sampleDocument()
	document.RepoRover.Repositories = nil

	require.NoError(testInstance, record.Save(recordPath, document))
	savedContents, readError := os.ReadFile(recordPath)
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(savedContents), `"repos": []`)

	loadedDocument, loadError := record.Load(recordPath)
	require.NoError(testInstance, loadError)
	require.Empty(testInstance, loadedDocument.RepoRover.Repositories)
}

func TestSaveRequiresRecordPath(testInstance *testing.T) {
	saveError := record.Save("   ", sampleDocument())
	var configurationFailure githubapi.ConfigurationError
	require.ErrorAs(testInstance, saveError, &configurationFailure)
	require.Equal(testInstance, "record_file", configurationFailure.Field)
}

func TestLoadRequiresRecordPath(testInstance *testing.T) {
	_, loadError := record.Load("")
	var configurationFailure githubapi.ConfigurationError
	require.ErrorAs(testInstance, loadError, &configurationFailure)
	require.Equal(testInstance, "record_file", configurationFailure.Field)
}

func TestLoadReportsMissingFile(testInstance *testing.T) {
	_, loadError := record.Load(filepath.Join(testInstance.TempDir(), "absent.json"))
	require.ErrorContains(testInstance, loadError, "failed to read record file")
}

func TestLoadNamesFirstOffendingField(testInstance *testing.T) {
	recordPath := filepath.Join(testInstance.TempDir(), recordFileNameConstant)
	brokenDocument := `{"reporover": {"configuration": {"command": "search", "search_query": "x"}, "repos": [{"url": "https://github.com/demo-org/lab-1-hawk"}]}}`
	require.NoError(testInstance, os.WriteFile(recordPath, []byte(brokenDocument), 0o644))

	_, loadError := record.Load(recordPath)
	var validationFailure record.ValidationError
	require.ErrorAs(testInstance, loadError, &validationFailure)
	require.Equal(testInstance, "reporover.repos[0].name", validationFailure.Field)
	require.Equal(testInstance, githubapi.SeverityFatal, githubapi.ClassifySeverity(loadError))
}
