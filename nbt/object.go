package nbt

// Object is implemented by every typed value that maps to a subtree.
//
// LoadTree populates the value from tag without checking its shape first and may fail deeper on
// malformed input. LoadTreeSafe verifies tag against the value's schema first and returns a
// *SchemaViolation instead of loading when it does not match. BuildTree produces a fresh tree;
// implementations write their typed fields first and then MergeFrom the compound they were
// loaded from, so unrecognized fields survive a load/build cycle without overwriting typed ones.
type Object interface {
	LoadTree(tag Tag) error
	LoadTreeSafe(tag Tag) error
	BuildTree() Tag
	ValidateTree(tag Tag) bool
}

// Source holds the compound an Object was loaded from.
type Source struct {
	raw *Compound
}

// Keep records a deep copy of c as the passthrough snapshot.
func (s *Source) Keep(c *Compound) {
	if c == nil {
		s.raw = nil
		return
	}
	s.raw = c.Copy().(*Compound)
}

// Restore fills every entry of out the snapshot has and out lacks.
func (s *Source) Restore(out *Compound) {
	out.MergeFrom(s.raw)
}

// Raw returns the snapshot, or nil.
func (s *Source) Raw() *Compound {
	return s.raw
}

func (s *Source) Copy() Source {
	var out Source
	out.Keep(s.raw)
	return out
}
