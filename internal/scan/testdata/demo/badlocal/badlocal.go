package badlocal

// MakeHidden registers a type with no stable identity.
func MakeHidden() interface{} {
	//autosvc:service greet.Greeter
	type hidden struct{}
	return hidden{}
}
