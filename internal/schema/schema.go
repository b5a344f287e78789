// Package schema holds the fixed LDBC SNB vertex and edge registry used by the loader.
//
// The benchmark schema is closed: entities and relations are small integer enums
// backed by constant tables, so lookups never allocate and cannot be extended at runtime.
package schema

import "fmt"

// IDSpace groups vertex ids into disjoint namespaces. A local id only has to be
// unique among entities sharing the same space.
type IDSpace int

const (
	SpacePerson IDSpace = iota + 1
	SpaceMessage
	SpaceForum
	SpaceOrganisation
	SpacePlace
	SpaceTag
	SpaceTagClass
)

// Entity is one of the SNB vertex types.
type Entity int

const (
	Comment Entity = iota
	Forum
	Organisation
	Person
	Place
	Post
	Tag
	TagClass
	numEntities
)

type entityInfo struct {
	name  string // file tag used by the data generator
	label string
	space IDSpace
	props []string // property columns in generator order, id excluded
}

var entities = [numEntities]entityInfo{
	Comment: {"comment", "Comment", SpaceMessage,
		[]string{"creationDate", "locationIP", "browserUsed", "content", "length"}},
	Forum: {"forum", "Forum", SpaceForum,
		[]string{"title", "creationDate"}},
	Organisation: {"organisation", "Organisation", SpaceOrganisation,
		[]string{"type", "name", "url"}},
	Person: {"person", "Person", SpacePerson,
		[]string{"firstName", "lastName", "gender", "birthday", "creationDate", "locationIP", "browserUsed", "language", "email"}},
	Place: {"place", "Place", SpacePlace,
		[]string{"name", "url", "type"}},
	Post: {"post", "Post", SpaceMessage,
		[]string{"imageFile", "creationDate", "locationIP", "browserUsed", "language", "content", "length"}},
	Tag: {"tag", "Tag", SpaceTag,
		[]string{"name", "url"}},
	TagClass: {"tagclass", "TagClass", SpaceTagClass,
		[]string{"name", "url"}},
}

// Entities returns every entity in registry order.
func Entities() []Entity {
	out := make([]Entity, 0, numEntities)
	for e := Entity(0); e < numEntities; e++ {
		out = append(out, e)
	}
	return out
}

// Valid reports whether e is a registered entity.
func (e Entity) Valid() bool { return e >= 0 && e < numEntities }

// Name returns the generator file tag.
func (e Entity) Name() string { return e.info().name }

// Label returns the vertex label written to the sink.
func (e Entity) Label() string { return e.info().label }

// IDSpace returns the id namespace of the entity.
func (e Entity) IDSpace() IDSpace { return e.info().space }

// Properties returns a copy of the property columns in file order.
func (e Entity) Properties() []string {
	props := e.info().props
	out := make([]string, len(props))
	copy(out, props)
	return out
}

func (e Entity) String() string {
	if !e.Valid() {
		return fmt.Sprintf("Entity(%d)", int(e))
	}
	return e.info().name
}

func (e Entity) info() entityInfo {
	if !e.Valid() {
		return entityInfo{}
	}
	return entities[e]
}
