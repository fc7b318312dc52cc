// Package githubapi provides the typed gateway used for every GitHub REST
// call the application issues.
//
// It exposes Client, which wraps google/go-github behind one method per
// operation (collaborator access changes, pull request comments, workflow
// status lookups, directory listings, and repository search), routes each call
// through a shared quota governor, and converts transport failures into the
// classified error taxonomy consumed by the bulk dispatcher.
package githubapi
