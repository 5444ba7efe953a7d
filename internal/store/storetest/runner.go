// Package storetest provides a store.Runner double backed by testify's mock.
package storetest

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/mock"

	"github.com/psidex/arat/internal/store"
)

// Runner records every Read and answers with whatever was set up through On.
type Runner struct {
	mock.Mock
}

var _ store.Runner = (*Runner)(nil)

func (r *Runner) Read(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	args := r.Called(ctx, cypher, params)
	records, _ := args.Get(0).([]*neo4j.Record)
	return records, args.Error(1)
}

// Record builds a result row, keys and values are paired by position.
func Record(keys []string, values ...any) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}

// EnrollmentKeys are the columns of the dashboard query.
var EnrollmentKeys = []string{"alumno_id", "carrera", "grupo_id", "asignatura"}

// Enrollment is a row of the dashboard query.
func Enrollment(alumnoID, carrera, grupoID, asignatura any) *neo4j.Record {
	return Record(EnrollmentKeys, alumnoID, carrera, grupoID, asignatura)
}
