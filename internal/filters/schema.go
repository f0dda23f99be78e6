package filters

// Kind is the value type a field's raw parameters are parsed into.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindInteger
	KindTime
	KindUUID
	KindStringArray
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindInteger:
		return "integer"
	case KindTime:
		return "time"
	case KindUUID:
		return "uuid"
	case KindStringArray:
		return "string array"
	default:
		return "string"
	}
}

// Field describes one API field of a queryable collection.
type Field struct {
	Name     string   // name used in query parameters and JSON
	Column   string   // storage column for filtering and sorting; empty means not filterable
	Kind     Kind     // value kind of Column
	Sortable bool     // may appear in sort=
	Selects  []string // storage columns read when the field is projected; empty means not selectable
}

// Schema is the set of fields a collection exposes to the filter engine.
type Schema struct {
	fields      []Field
	byName      map[string]int
	defaultSort []SortField
	tiebreak    string
}

// NewSchema builds a schema. defaultSort is used when sort= is absent or
// names no known field; tiebreak is appended to every sort for stable pages.
func NewSchema(defaultSort []SortField, tiebreak string, fields ...Field) Schema {
	s := Schema{
		fields:      fields,
		byName:      make(map[string]int, len(fields)),
		defaultSort: defaultSort,
		tiebreak:    tiebreak,
	}
	for i, f := range fields {
		s.byName[f.Name] = i
	}
	return s
}

// Lookup returns the field named name.
func (s Schema) Lookup(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// DefaultFields lists the fields projected when fields= is absent.
func (s Schema) DefaultFields() []string {
	out := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		if len(f.Selects) > 0 {
			out = append(out, f.Name)
		}
	}
	return out
}

// Columns returns the de-duplicated storage columns needed to project fields.
// A nil fields slice selects DefaultFields.
func (s Schema) Columns(fields []string) []string {
	if fields == nil {
		fields = s.DefaultFields()
	}
	seen := make(map[string]struct{})
	var cols []string
	for _, name := range fields {
		f, ok := s.Lookup(name)
		if !ok {
			continue
		}
		for _, c := range f.Selects {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			cols = append(cols, c)
		}
	}
	return cols
}

// JobSchema exposes the job collection. Names follow the JSON representation of models.Job.
var JobSchema = NewSchema(
	[]SortField{{Field: "postingDate", Column: "posting_date", Desc: true}},
	"id",
	Field{Name: "id", Column: "id", Kind: KindUUID, Sortable: true, Selects: []string{"id"}},
	Field{Name: "title", Column: "title", Kind: KindString, Sortable: true, Selects: []string{"title"}},
	Field{Name: "slug", Column: "slug", Kind: KindString, Selects: []string{"slug"}},
	Field{Name: "description", Column: "description", Kind: KindString, Selects: []string{"description"}},
	Field{Name: "email", Column: "email", Kind: KindString, Selects: []string{"email"}},
	Field{Name: "address", Column: "address", Kind: KindString, Selects: []string{"address"}},
	Field{Name: "company", Column: "company", Kind: KindString, Sortable: true, Selects: []string{"company"}},
	Field{Name: "industry", Column: "industry", Kind: KindStringArray, Selects: []string{"industry"}},
	Field{Name: "jobType", Column: "job_type", Kind: KindString, Sortable: true, Selects: []string{"job_type"}},
	Field{Name: "minEducation", Column: "min_education", Kind: KindString, Sortable: true, Selects: []string{"min_education"}},
	Field{Name: "experience", Column: "experience", Kind: KindString, Sortable: true, Selects: []string{"experience"}},
	Field{Name: "positions", Column: "positions", Kind: KindInteger, Sortable: true, Selects: []string{"positions"}},
	Field{Name: "salary", Column: "salary", Kind: KindNumber, Sortable: true, Selects: []string{"salary"}},
	Field{Name: "location", Selects: []string{
		"location_lon", "location_lat", "formatted_address", "city", "state", "zipcode", "country",
	}},
	Field{Name: "location.city", Column: "city", Kind: KindString, Sortable: true},
	Field{Name: "location.state", Column: "state", Kind: KindString, Sortable: true},
	Field{Name: "location.zipcode", Column: "zipcode", Kind: KindString},
	Field{Name: "location.country", Column: "country", Kind: KindString, Sortable: true},
	Field{Name: "postingDate", Column: "posting_date", Kind: KindTime, Sortable: true, Selects: []string{"posting_date"}},
	Field{Name: "lastDate", Column: "last_date", Kind: KindTime, Sortable: true, Selects: []string{"last_date"}},
	Field{Name: "user", Column: "user_id", Kind: KindUUID, Selects: []string{"user_id"}},
)
