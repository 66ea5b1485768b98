package greet

// Greeter greets.
type Greeter interface {
	Greet() string
}

// Farewell says goodbye.
type Farewell interface {
	Bye() string
}
