package driver

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type executedQuery struct {
	Query  string
	Params map[string]any
}

type MockDriver struct {
	Executed []executedQuery
	// FailOn makes ExecuteQuery fail for this exact query.
	FailOn string
	Err    error
	Closed bool
	// Results are returned for matching queries.
	Results map[string]neo4j.EagerResult
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	m.Executed = append(m.Executed, executedQuery{Query: query, Params: params})
	if m.Err != nil && (m.FailOn == "" || m.FailOn == query) {
		return neo4j.EagerResult{}, m.Err
	}
	return m.Results[query], nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	m.Closed = true
	return nil
}

func (m *MockDriver) queries(query string) []executedQuery {
	var out []executedQuery
	for _, q := range m.Executed {
		if q.Query == query {
			out = append(out, q)
		}
	}
	return out
}
