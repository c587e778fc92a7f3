package solver

import (
	"fmt"
	"sort"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

// EmptyDomainError reports a variable with no feasible candidates in one
// dimension. It is raised before search starts, never mid-backtrack.
type EmptyDomainError struct {
	VariableID string
	Dimension  ValueType
}

func (e *EmptyDomainError) Error() string {
	return fmt.Sprintf("variable %s has no eligible %s values", e.VariableID, e.Dimension)
}

// Domain holds the feasible values for one variable: the per-dimension
// value lists and the enumerated candidate triples derived from them.
// Domains shrink monotonically during propagation and never grow mid-solve.
type Domain struct {
	Values     map[ValueType][]Value
	Candidates []Candidate
}

// Clone copies the candidate list so a worker can prune independently.
func (d *Domain) Clone() *Domain {
	clone := &Domain{Values: d.Values}
	clone.Candidates = make([]Candidate, len(d.Candidates))
	copy(clone.Candidates, d.Candidates)
	return clone
}

// ScoreWeights blends the three per-dimension preference scores into a
// candidate score. The exact weighting is a tunable, not a hard contract.
type ScoreWeights struct {
	Teacher   float64
	Classroom float64
	TimeSlot  float64
}

func (w ScoreWeights) normalized() ScoreWeights {
	total := w.Teacher + w.Classroom + w.TimeSlot
	if total <= 0 {
		return ScoreWeights{Teacher: 0.4, Classroom: 0.35, TimeSlot: 0.25}
	}
	return ScoreWeights{Teacher: w.Teacher / total, Classroom: w.Classroom / total, TimeSlot: w.TimeSlot / total}
}

// DomainBuilder turns course offerings into scheduling variables and
// enumerates their candidate values using eligibility filters.
type DomainBuilder struct {
	catalog *models.Catalog
	weights ScoreWeights
}

// NewDomainBuilder creates a builder over the catalog snapshot.
func NewDomainBuilder(catalog *models.Catalog, weights ScoreWeights) *DomainBuilder {
	return &DomainBuilder{catalog: catalog, weights: weights.normalized()}
}

// Build produces one variable and one domain per offering. Offering order is
// ascending id so identical catalogs yield identical variable sequences.
func (b *DomainBuilder) Build(offeringIDs []string) ([]Variable, map[string]*Domain, error) {
	ids := offeringIDs
	if len(ids) == 0 {
		ids = make([]string, 0, len(b.catalog.Offerings))
		for id := range b.catalog.Offerings {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	variables := make([]Variable, 0, len(ids))
	domains := make(map[string]*Domain, len(ids))

	for _, id := range ids {
		offering, ok := b.catalog.Offerings[id]
		if !ok {
			return nil, nil, fmt.Errorf("unknown offering %s", id)
		}
		domain, err := b.buildDomain(offering)
		if err != nil {
			return nil, nil, err
		}
		variables = append(variables, Variable{
			ID:    offering.ID,
			Label: fmt.Sprintf("%s %s", offering.CourseCode, offering.Title),
		})
		domains[offering.ID] = domain
	}

	return variables, domains, nil
}

func (b *DomainBuilder) buildDomain(offering models.CourseOffering) (*Domain, error) {
	teachers := b.eligibleTeachers(offering)
	if len(teachers) == 0 {
		return nil, &EmptyDomainError{VariableID: offering.ID, Dimension: ValueTeacher}
	}
	classrooms := b.eligibleClassrooms(offering)
	if len(classrooms) == 0 {
		return nil, &EmptyDomainError{VariableID: offering.ID, Dimension: ValueClassroom}
	}
	slots := b.eligibleTimeSlots()
	if len(slots) == 0 {
		return nil, &EmptyDomainError{VariableID: offering.ID, Dimension: ValueTimeSlot}
	}

	domain := &Domain{
		Values: map[ValueType][]Value{
			ValueTeacher:   teachers,
			ValueClassroom: classrooms,
			ValueTimeSlot:  slots,
		},
	}

	domain.Candidates = make([]Candidate, 0, len(teachers)*len(classrooms)*len(slots))
	for _, t := range teachers {
		for _, r := range classrooms {
			for _, s := range slots {
				domain.Candidates = append(domain.Candidates, Candidate{
					TeacherID:   t.ID,
					ClassroomID: r.ID,
					TimeSlotID:  s.ID,
					Score:       b.weights.Teacher*t.Score + b.weights.Classroom*r.Score + b.weights.TimeSlot*s.Score,
				})
			}
		}
	}
	sortCandidates(domain.Candidates)
	return domain, nil
}

// eligibleTeachers keeps active teachers declaring a matching subject
// specialization; proficiency becomes the preference score.
func (b *DomainBuilder) eligibleTeachers(offering models.CourseOffering) []Value {
	var values []Value
	for _, t := range b.catalog.Teachers {
		if !t.Active {
			continue
		}
		spec, ok := t.SpecializationFor(offering.Subject)
		if !ok {
			continue
		}
		values = append(values, Value{
			Type:  ValueTeacher,
			ID:    t.ID,
			Label: t.FullName,
			Score: clamp01(spec.Proficiency),
		})
	}
	sortValues(values)
	return values
}

// eligibleClassrooms keeps active rooms with enough seats and the required
// type/equipment; the score favours rooms sized close to the enrollment.
func (b *DomainBuilder) eligibleClassrooms(offering models.CourseOffering) []Value {
	var values []Value
	for _, r := range b.catalog.Classrooms {
		if !r.Active || r.Capacity < offering.MaxEnrollment {
			continue
		}
		if offering.RequiredRoomType != "" && r.Type != offering.RequiredRoomType {
			continue
		}
		if !r.HasEquipment(offering.RequiredEquipment) {
			continue
		}
		fit := 0.0
		if r.Capacity > 0 {
			fit = float64(offering.MaxEnrollment) / float64(r.Capacity)
		}
		values = append(values, Value{
			Type:  ValueClassroom,
			ID:    r.ID,
			Label: r.Name,
			Score: clamp01(fit),
		})
	}
	sortValues(values)
	return values
}

// eligibleTimeSlots keeps all active slots; mid-morning starts score best.
func (b *DomainBuilder) eligibleTimeSlots() []Value {
	const preferredStart = 10 * 60
	var values []Value
	for _, s := range b.catalog.TimeSlots {
		if !s.Active {
			continue
		}
		distance := s.StartMinute - preferredStart
		if distance < 0 {
			distance = -distance
		}
		values = append(values, Value{
			Type:  ValueTimeSlot,
			ID:    s.ID,
			Label: fmt.Sprintf("day %d %02d:%02d", s.DayOfWeek, s.StartMinute/60, s.StartMinute%60),
			Score: clamp01(1 - float64(distance)/float64(preferredStart)),
		})
	}
	sortValues(values)
	return values
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
