// Package object is a small runtime object model: classes with a typed
// payload, single inheritance and method dispatch resolved at call time.
//
//   - [Registry]: method tables, selectors and instance storage
//   - [DefineRoot], [Define]: build a [Class] and its methods
//   - [Registry.Create], [Registry.Destroy]: instance lifecycle
//   - [Registry.Invoke], [Registry.Send], [Call]: dynamic dispatch
//
// # Inheritance
//
// A derived payload keeps its parent's payload as an explicit field and
// the class is defined with an accessor to it. A method inherited from an
// ancestor always receives the payload viewed at the ancestor's level:
//
//	type AnimalData struct{ Name string }
//	type DogData struct {
//	    Animal     AnimalData
//	    TailLength int
//	}
//
//	animal, _ := object.DefineRoot[AnimalData]("Animal").
//	    Method("move", move).Build()
//	dog, _ := object.Define("Dog", animal, func(d *DogData) *AnimalData { return &d.Animal }).
//	    Method("wagTail", wagTail).Build()
//
// A class declares only the methods it adds or overrides. Methods are
// identified by [Selector]s interned from their names, so a derived class
// can never shift another method's identifier.
//
// Constructors are not chained. Only the constructor of the instantiated
// class runs, and it is responsible for every field of its payload,
// inherited ones included.
//
// # Thread Safety
//
// Nothing in this package is safe for concurrent use. Callers sharing an
// instance across goroutines must serialize access to it themselves.
package object
