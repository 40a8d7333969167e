package skemalink

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Converter drives Schema-to-Schema transformation through canonical
// annotations. It keeps no state between calls, so one Converter may serve
// concurrent conversions. The zero value converts best-effort against
// DefaultRegistry without logging.
type Converter struct {
	Policy   Policy
	Registry *Registry // relation resolution; nil means DefaultRegistry
	// Parallel converts sibling elements concurrently. Output order and report
	// contents are identical to the sequential pass.
	Parallel bool
	Logger   zerolog.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithPolicy selects Strict or BestEffort.
func WithPolicy(p Policy) Option { return func(c *Converter) { c.Policy = p } }

// WithRegistry sets the registry used to resolve relations.
func WithRegistry(r *Registry) Option { return func(c *Converter) { c.Registry = r } }

// WithParallel enables concurrent conversion of sibling elements.
func WithParallel(on bool) Option { return func(c *Converter) { c.Parallel = on } }

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option { return func(c *Converter) { c.Logger = l } }

// NewConverter returns a best-effort Converter with the options applied.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{Policy: BestEffort, Logger: zerolog.Nop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Convert is shorthand for NewConverter(opts...).Convert(src, f).
func Convert(src Schema, f Factory, opts ...Option) (Schema, *Report, error) {
	return NewConverter(opts...).Convert(src, f)
}

// Convert rebuilds src in the dialect of f. Elements keep their source order
// and schema-level metadata is copied verbatim. Under BestEffort every
// unsupported constraint is dropped and recorded in the Report; under Strict
// the first one aborts the conversion. Unresolvable relations never abort:
// they are marked relation_unresolved and reported.
//
// On error the returned Report still lists what was observed up to the
// failure.
func (c *Converter) Convert(src Schema, f Factory) (Schema, *Report, error) {
	if src == nil || f == nil {
		return nil, nil, errors.New("skemalink: convert needs a source schema and a factory")
	}
	id := uuid.NewString()
	s := &session{
		c:   c,
		reg: orDefault(c.Registry),
		f:   f,
		log: c.Logger.With().Str("conversion_id", id).Str("target", f.Dialect()).Logger(),
		report: &Report{
			ID:      id,
			Target:  f.Dialect(),
			Policy:  c.Policy,
			Related: map[string]Schema{},
		},
		seen: map[string]bool{},
	}
	if src.ID() != "" {
		s.seen[src.ID()] = true
	}
	s.log.Debug().Str("schema", src.ID()).Int("elements", len(src.Elements())).Msg("conversion started")

	out, err := s.convertSchema(src, true)
	if err != nil {
		return nil, s.report, err
	}
	// related schemas are converted after the root, breadth first; seen
	// guards against cycles
	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		conv, err := s.convertSchema(next, false)
		if err != nil {
			return nil, s.report, err
		}
		s.report.Related[next.ID()] = conv
	}
	s.log.Debug().Int("entries", len(s.report.Entries)).Int("related", len(s.report.Related)).Msg("conversion finished")
	return out, s.report, nil
}

// session is the per-call scratch state of Convert.
type session struct {
	c      *Converter
	reg    *Registry
	f      Factory
	log    zerolog.Logger
	report *Report
	seen   map[string]bool
	queue  []Schema
}

type elemResult struct {
	elem    Element
	entries []Entry
	related []Schema
}

func (s *session) convertSchema(src Schema, root bool) (Schema, error) {
	schemaKey := src.ID()
	if root {
		schemaKey = ""
	}
	elems, err := s.foldNames(schemaKey, src.Elements())
	if err != nil {
		return nil, err
	}

	results := make([]elemResult, len(elems))
	work := func(i int) error {
		r, err := s.convertElement(schemaKey, elems[i])
		results[i] = r
		return err
	}
	if s.c.Parallel && len(elems) > 1 {
		var g errgroup.Group
		for i := range elems {
			g.Go(func() error { return work(i) })
		}
		err = g.Wait()
	} else {
		for i := range elems {
			if err = work(i); err != nil {
				break
			}
		}
	}
	for _, r := range results {
		s.report.Entries = append(s.report.Entries, r.entries...)
	}
	if err != nil {
		return nil, err
	}

	out := make([]Element, 0, len(results))
	for _, r := range results {
		out = append(out, r.elem)
		for _, rel := range r.related {
			if id := rel.ID(); !s.seen[id] {
				s.seen[id] = true
				s.queue = append(s.queue, rel)
			}
		}
	}
	sch, err := s.f.NewSchema(src.ID(), out, src.Metadata())
	if err != nil {
		return nil, fmt.Errorf("skemalink: assemble %s schema: %w", s.f.Dialect(), err)
	}
	return sch, nil
}

// foldNames drops elements whose folded name collides with an earlier one
// when the target dialect folds names. The first declaration wins.
func (s *session) foldNames(schemaKey string, elems []Element) ([]Element, error) {
	nf, ok := s.f.(NameFolder)
	if !ok {
		return elems, nil
	}
	first := make(map[string]string, len(elems))
	out := make([]Element, 0, len(elems))
	for _, e := range elems {
		k := nf.FoldName(e.Name())
		if prev, dup := first[k]; dup {
			if s.c.Policy == Strict {
				return nil, &NameCollisionError{First: prev, Second: e.Name()}
			}
			s.report.Entries = append(s.report.Entries, newEntry(schemaKey, e.Name(), "", CodeNameCollision, ""))
			s.log.Warn().Str("element", e.Name()).Str("collides_with", prev).Msg("element dropped")
			continue
		}
		first[k] = e.Name()
		out = append(out, e)
	}
	return out, nil
}

func (s *session) convertElement(schemaKey string, e Element) (elemResult, error) {
	var res elemResult
	name := e.Name()
	a := s.normalize(schemaKey, name, "", e.Canonical(), &res)
	for {
		el, err := s.f.NewElement(name, a)
		if err == nil {
			res.elem = el
			s.log.Debug().Str("element", name).Str("annotation", a.String()).Msg("element converted")
			return res, nil
		}
		var uc *UnsupportedConstraintError
		if !errors.As(err, &uc) || s.c.Policy == Strict {
			return res, err
		}
		sub, ok := a.At(uc.Path)
		if !ok {
			return res, err
		}
		next := sub.WithoutConstraint(uc.Constraint)
		if next.Equal(sub) {
			// the factory rejected something that is not there; retrying would loop
			return res, err
		}
		a, _ = a.Replace(uc.Path, next)
		res.entries = append(res.entries, newEntry(schemaKey, name, uc.Path, CodeUnsupportedConstraint, uc.Constraint.String()))
		s.log.Warn().Str("element", name).Str("path", uc.Path).Str("constraint", uc.Constraint.String()).Msg("constraint dropped")
	}
}

// normalize resolves relations inside-out: container members are handled
// before the container so nested information is canonical when the target
// element is constructed.
func (s *session) normalize(schemaKey, name, path string, a Annotation, res *elemResult) Annotation {
	if a.Container != nil {
		c := Container{Kind: a.Container.Kind}
		c.Elem = s.normalize(schemaKey, name, joinPath(path, "items"), a.Container.Elem, res)
		if a.Container.Key != nil {
			k := s.normalize(schemaKey, name, joinPath(path, "keys"), *a.Container.Key, res)
			c.Key = &k
		}
		a = a.WithContainer(c)
	}
	if a.Relation != nil {
		target, ok := s.reg.Resolve(a.Relation.SchemaID)
		if !ok {
			a = a.WithRelationUnresolved()
			res.entries = append(res.entries, newEntry(schemaKey, name, path, CodeRelationUnresolved, "ref("+a.Relation.SchemaID+")"))
			s.log.Warn().Str("element", name).Str("relation", a.Relation.SchemaID).Msg("relation unresolved")
			return a
		}
		if a.Relation.Unresolved {
			a = a.Clone()
			a.Relation.Unresolved = false
		}
		res.related = append(res.related, target)
	}
	return a
}
