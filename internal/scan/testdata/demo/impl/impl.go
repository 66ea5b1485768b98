package impl

// English greets in English.
//autosvc:service greet.Greeter
type English struct{}

func (English) Greet() string { return "hello" }

// Both greets and says goodbye.
//autosvc:service greet.Greeter, greet.Farewell
type Both struct{}

func (Both) Greet() string { return "hey" }

func (Both) Bye() string { return "bye" }

// Rude has a marker but not the methods.
//autosvc:service greet.Greeter
type Rude struct{}

// Skipped is explicitly ignored.
//autosvc:ignore
//autosvc:service greet.Greeter
type Skipped struct{}

func (Skipped) Greet() string { return "nope" }
