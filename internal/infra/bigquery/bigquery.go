// Package bigquery persists statement documents, parsing runs and extracted
// transactions in the expenses dataset. Table writes go through the streaming
// inserter; status transitions on parsing runs use parameterized DML.
package bigquery

var (
	projectID = "expense-intelligence"
	datasetID = "expenses"
)

// Configure overrides the default project and dataset. Call once at startup,
// before any repository is constructed.
func Configure(project, dataset string) {
	if project != "" {
		projectID = project
	}
	if dataset != "" {
		datasetID = dataset
	}
}
