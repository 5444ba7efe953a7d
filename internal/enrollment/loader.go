// Package enrollment loads student/group enrollments from Neo4j and shapes them into
// a graph for the dashboard.
package enrollment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/psidex/arat/internal/graphs"
	"github.com/psidex/arat/internal/metrics"
	"github.com/psidex/arat/internal/store"
)

// GraphQuery returns one row per enrollment, at most $limit of them.
const GraphQuery = `MATCH (a:Alumno)-[r:INSCRITO_EN]->(g:Grupo)
RETURN a.id AS alumno_id, a.carrera AS carrera, g.id AS grupo_id, g.asignatura AS asignatura
LIMIT $limit`

// Visual styling of the two node kinds and the edge between them.
const (
	StudentLabel    = "Estudiante"
	StudentSize     = 15
	StudentColor    = "#FF6B6B"
	GroupSize       = 20
	GroupColor      = "#4D96FF"
	EnrollmentLabel = "CURSA"

	// Node groups, one legend entry each.
	StudentGroup = "Estudiante"
	SubjectGroup = "Grupo"
)

// ErrNotFound is returned when a lookup by ID matches nothing.
var ErrNotFound = errors.New("record not found")

// Loader runs enrollment queries. It is safe for concurrent use if its Runner is.
type Loader struct {
	runner store.Runner
	logger *slog.Logger
}

func NewLoader(runner store.Runner, logger *slog.Logger) *Loader {
	return &Loader{
		runner: runner,
		logger: logger,
	}
}

// Load fetches at most limit enrollments and builds the graph in a single pass over
// the rows, in the order the database returned them: a student node the first time
// each alumno_id shows up, a group node the first time each grupo_id shows up, and
// one edge for every row. An empty result is an empty graph, not an error.
func (l *Loader) Load(ctx context.Context, limit int) (*graphs.Graph, error) {
	start := time.Now()

	records, err := l.runner.Read(ctx, GraphQuery, map[string]any{"limit": int64(limit)})
	if err != nil {
		metrics.ObserveQuery(metrics.QueryGraph, start, 0, err)
		return nil, err
	}

	b := graphs.NewBuilder()
	for i, record := range records {
		row, err := readEnrollment(record)
		if err != nil {
			err = fmt.Errorf("row %d: %w", i, err)
			metrics.ObserveQuery(metrics.QueryGraph, start, len(records), err)
			return nil, err
		}
		addEnrollment(b, row)
	}

	metrics.ObserveQuery(metrics.QueryGraph, start, len(records), nil)

	g := b.Graph()
	l.logger.Debug("Loaded enrollment graph",
		"limit", limit, "rows", len(records), "nodes", len(g.Nodes), "edges", len(g.Edges))
	return g, nil
}

type enrollmentRow struct {
	alumnoID   string
	carrera    string
	grupoID    string
	asignatura string
}

func readEnrollment(record *neo4j.Record) (enrollmentRow, error) {
	var row enrollmentRow
	var err error

	if row.alumnoID, err = requiredColumn(record, "alumno_id"); err != nil {
		return row, err
	}
	if row.grupoID, err = requiredColumn(record, "grupo_id"); err != nil {
		return row, err
	}
	row.carrera = optionalColumn(record, "carrera")
	row.asignatura = optionalColumn(record, "asignatura")

	return row, nil
}

func addEnrollment(b *graphs.Builder, row enrollmentRow) {
	b.AddNode(studentNode(row.alumnoID, row.carrera))
	b.AddNode(groupNode(row.grupoID, row.asignatura))
	b.AddEdge(graphs.Edge{
		Source: row.alumnoID,
		Target: row.grupoID,
		Label:  EnrollmentLabel,
	})
}

func studentNode(id, carrera string) graphs.Node {
	return graphs.Node{
		ID:    id,
		Label: StudentLabel,
		Size:  StudentSize,
		Color: StudentColor,
		Title: "Carrera: " + carrera,
		Group: StudentGroup,
	}
}

func groupNode(id, asignatura string) graphs.Node {
	return graphs.Node{
		ID:    id,
		Label: asignatura,
		Size:  GroupSize,
		Color: GroupColor,
		Group: SubjectGroup,
	}
}

// requiredColumn reads an identifier. IDs stored as numbers are formatted, a missing
// column or a null is an error.
func requiredColumn(record *neo4j.Record, key string) (string, error) {
	v, ok := record.Get(key)
	if !ok {
		return "", fmt.Errorf("missing column %q", key)
	}
	if v == nil {
		return "", fmt.Errorf("column %q is null", key)
	}
	return stringify(v), nil
}

// optionalColumn reads a descriptive value, a missing column or a null reads as "".
func optionalColumn(record *neo4j.Record, key string) string {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return ""
	}
	return stringify(v)
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
