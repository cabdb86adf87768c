package object

import "fmt"

type animalData struct {
	Age  int
	Name string
}

type dogData struct {
	Animal     animalData
	TailLength int
}

func (d *dogData) base() *animalData { return &d.Animal }

type zoo struct {
	reg    *Registry
	animal *Class
	dog    *Class
	dtors  int
}

// newZoo registers Animal and Dog. Dog overrides makeSound, inherits move
// and adds wagTail and grow.
func newZoo(capacity int) *zoo {
	z := &zoo{reg: NewRegistry(Options{Capacity: capacity})}

	animal, err := DefineRoot[animalData]("Animal").
		Method("makeSound", func(self *Instance, p *animalData, args Args) (any, error) {
			return fmt.Sprintf("Animal %s (age %d) makes a sound", p.Name, p.Age), nil
		}).
		Method("move", func(self *Instance, p *animalData, args Args) (any, error) {
			return fmt.Sprintf("Animal %s moves", p.Name), nil
		}).
		Method("age", func(self *Instance, p *animalData, args Args) (any, error) {
			return p.Age, nil
		}).
		Build()
	if err != nil {
		panic(err)
	}
	if _, err := z.reg.Register(animal); err != nil {
		panic(err)
	}

	dog, err := Define("Dog", animal, (*dogData).base).
		Constructor(func(self *Instance, p *dogData, args Args) error {
			if args.Len() > 0 {
				n, err := args.Int(0)
				if err != nil {
					return err
				}
				p.TailLength = n
			}
			return nil
		}).
		Destructor(func(self *Instance, p *dogData) { z.dtors++ }).
		Method("makeSound", func(self *Instance, p *dogData, args Args) (any, error) {
			return fmt.Sprintf("Dog %s (age %d) barks: Woof!", p.Animal.Name, p.Animal.Age), nil
		}).
		Method("wagTail", func(self *Instance, p *dogData, args Args) (any, error) {
			return fmt.Sprintf("Dog %s wags tail (length: %d cm) happily", p.Animal.Name, p.TailLength), nil
		}).
		Method("grow", func(self *Instance, p *dogData, args Args) (any, error) {
			n, err := args.Int(0)
			if err != nil {
				return nil, err
			}
			p.TailLength += n
			return p.TailLength, nil
		}).
		Build()
	if err != nil {
		panic(err)
	}
	if _, err := z.reg.Register(dog); err != nil {
		panic(err)
	}

	z.animal, z.dog = animal, dog
	return z
}

func rex() *dogData {
	return &dogData{Animal: animalData{Age: 5, Name: "Rex"}, TailLength: 30}
}
