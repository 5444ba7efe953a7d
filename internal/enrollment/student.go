package enrollment

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/saulfrancisco-ruizacevedo/gocypher"

	"github.com/psidex/arat/internal/graphs"
	"github.com/psidex/arat/internal/metrics"
)

// studentQuery matches a single student and every group they are enrolled in,
// returning whole nodes rather than projected columns.
func studentQuery(id string) (string, map[string]interface{}, error) {
	return gocypher.NewQueryBuilder().
		Match(
			gocypher.N("a", "Alumno").WithProperties(map[string]interface{}{"id": id}),
			gocypher.R("r", "INSCRITO_EN").To(),
			gocypher.N("g", "Grupo"),
		).
		Return("a", "r", "g").
		Build()
}

// Student builds the neighbourhood of one student: the student node, the groups they
// are enrolled in and one edge per enrollment. ErrNotFound if the student has no
// enrollments or does not exist.
func (l *Loader) Student(ctx context.Context, id string) (*graphs.Graph, error) {
	start := time.Now()

	query, params, err := studentQuery(id)
	if err != nil {
		return nil, fmt.Errorf("could not build query: %w", err)
	}

	records, err := l.runner.Read(ctx, query, params)
	if err != nil {
		metrics.ObserveQuery(metrics.QueryStudent, start, 0, err)
		return nil, err
	}
	metrics.ObserveQuery(metrics.QueryStudent, start, len(records), nil)

	if len(records) == 0 {
		return nil, fmt.Errorf("student %q: %w", id, ErrNotFound)
	}

	b := graphs.NewBuilder()
	for i, record := range records {
		row, err := readStudentRow(record)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		addEnrollment(b, row)
	}

	return b.Graph(), nil
}

func readStudentRow(record *neo4j.Record) (enrollmentRow, error) {
	student, err := nodeColumn(record, "a")
	if err != nil {
		return enrollmentRow{}, err
	}
	group, err := nodeColumn(record, "g")
	if err != nil {
		return enrollmentRow{}, err
	}

	row := enrollmentRow{
		carrera:    optionalProp(student, "carrera"),
		asignatura: optionalProp(group, "asignatura"),
	}
	if row.alumnoID, err = requiredProp(student, "id"); err != nil {
		return row, err
	}
	if row.grupoID, err = requiredProp(group, "id"); err != nil {
		return row, err
	}
	return row, nil
}

func nodeColumn(record *neo4j.Record, key string) (neo4j.Node, error) {
	v, ok := record.Get(key)
	if !ok {
		return neo4j.Node{}, fmt.Errorf("missing column %q", key)
	}
	node, ok := v.(neo4j.Node)
	if !ok {
		return neo4j.Node{}, fmt.Errorf("column %q is not a node", key)
	}
	return node, nil
}

func requiredProp(node neo4j.Node, key string) (string, error) {
	v, ok := node.Props[key]
	if !ok || v == nil {
		return "", fmt.Errorf("node %s has no %q property", node.ElementId, key)
	}
	return stringify(v), nil
}

func optionalProp(node neo4j.Node, key string) string {
	v, ok := node.Props[key]
	if !ok || v == nil {
		return ""
	}
	return stringify(v)
}
