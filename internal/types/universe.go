package types

// universe maps every type name of the language to its type.
var universe map[string]AstType

func init() {
	universe = make(map[string]AstType, int(Error))
	for t := Void; t < Error; t++ {
		universe[t.String()] = t
	}
}

// Lookup returns the type spelled name. ok is false when name is not a
// type name.
func Lookup(name string) (t AstType, ok bool) {
	t, ok = universe[name]
	if !ok {
		return Error, false
	}
	return t, true
}
