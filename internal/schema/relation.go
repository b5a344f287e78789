package schema

import "fmt"

// Relation is one of the SNB edge types, identified by (tail, name, head).
type Relation int

const (
	CommentHasCreatorPerson Relation = iota
	CommentHasTagTag
	CommentIsLocatedInPlace
	CommentReplyOfComment
	CommentReplyOfPost
	ForumContainerOfPost
	ForumHasMemberPerson
	ForumHasModeratorPerson
	ForumHasTagTag
	OrganisationIsLocatedInPlace
	PersonHasInterestTag
	PersonIsLocatedInPlace
	PersonKnowsPerson
	PersonLikesComment
	PersonLikesPost
	PersonStudyAtOrganisation
	PersonWorkAtOrganisation
	PlaceIsPartOfPlace
	PostHasCreatorPerson
	PostHasTagTag
	PostIsLocatedInPlace
	TagHasTypeTagClass
	TagClassIsSubclassOfTagClass
	numRelations
)

type relationInfo struct {
	tail     Entity
	name     string
	head     Entity
	directed bool
	props    []string
}

var relations = [numRelations]relationInfo{
	CommentHasCreatorPerson:      {Comment, "hasCreator", Person, true, nil},
	CommentHasTagTag:             {Comment, "hasTag", Tag, true, nil},
	CommentIsLocatedInPlace:      {Comment, "isLocatedIn", Place, true, nil},
	CommentReplyOfComment:        {Comment, "replyOf", Comment, true, nil},
	CommentReplyOfPost:           {Comment, "replyOf", Post, true, nil},
	ForumContainerOfPost:         {Forum, "containerOf", Post, true, nil},
	ForumHasMemberPerson:         {Forum, "hasMember", Person, true, []string{"joinDate"}},
	ForumHasModeratorPerson:      {Forum, "hasModerator", Person, true, nil},
	ForumHasTagTag:               {Forum, "hasTag", Tag, true, nil},
	OrganisationIsLocatedInPlace: {Organisation, "isLocatedIn", Place, true, nil},
	PersonHasInterestTag:         {Person, "hasInterest", Tag, true, nil},
	PersonIsLocatedInPlace:       {Person, "isLocatedIn", Place, true, nil},
	PersonKnowsPerson:            {Person, "knows", Person, false, []string{"creationDate"}},
	PersonLikesComment:           {Person, "likes", Comment, true, []string{"creationDate"}},
	PersonLikesPost:              {Person, "likes", Post, true, []string{"creationDate"}},
	PersonStudyAtOrganisation:    {Person, "studyAt", Organisation, true, []string{"classYear"}},
	PersonWorkAtOrganisation:     {Person, "workAt", Organisation, true, []string{"workFrom"}},
	PlaceIsPartOfPlace:           {Place, "isPartOf", Place, true, nil},
	PostHasCreatorPerson:         {Post, "hasCreator", Person, true, nil},
	PostHasTagTag:                {Post, "hasTag", Tag, true, nil},
	PostIsLocatedInPlace:         {Post, "isLocatedIn", Place, true, nil},
	TagHasTypeTagClass:           {Tag, "hasType", TagClass, true, nil},
	TagClassIsSubclassOfTagClass: {TagClass, "isSubclassOf", TagClass, true, nil},
}

// Relations returns every relation in registry order.
func Relations() []Relation {
	out := make([]Relation, 0, numRelations)
	for r := Relation(0); r < numRelations; r++ {
		out = append(out, r)
	}
	return out
}

// Valid reports whether r is a registered relation.
func (r Relation) Valid() bool { return r >= 0 && r < numRelations }

// Name returns the edge label, e.g. "hasCreator".
func (r Relation) Name() string { return r.info().name }

// Tail is the entity listed first in forward files.
func (r Relation) Tail() Entity { return r.info().tail }

// Head is the entity listed second in forward files.
func (r Relation) Head() Entity { return r.info().head }

// Directed is false for relations the generator writes once per direction (knows).
func (r Relation) Directed() bool { return r.info().directed }

// Properties returns a copy of the edge property columns in file order.
func (r Relation) Properties() []string {
	props := r.info().props
	out := make([]string, len(props))
	copy(out, props)
	return out
}

// HasProperties reports whether edges of this relation carry property columns.
func (r Relation) HasProperties() bool { return len(r.info().props) > 0 }

// FileTag is the generator filename stem without the part suffix,
// e.g. "person_knows_person".
func (r Relation) FileTag() string {
	info := r.info()
	return info.tail.Name() + "_" + info.name + "_" + info.head.Name()
}

func (r Relation) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Relation(%d)", int(r))
	}
	info := r.info()
	if info.directed {
		return fmt.Sprintf("(%s)-[%s]->(%s)", info.tail.Name(), info.name, info.head.Name())
	}
	return fmt.Sprintf("(%s)-[%s]-(%s)", info.tail.Name(), info.name, info.head.Name())
}

func (r Relation) info() relationInfo {
	if !r.Valid() {
		return relationInfo{}
	}
	return relations[r]
}
