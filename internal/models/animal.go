package models

import (
	"fmt"

	"github.com/san-kum/dynobj/internal/object"
)

type AnimalData struct {
	Name string `yaml:"name" cbor:"name"`
	Age  int    `yaml:"age" cbor:"age"`
}

type DogData struct {
	Animal     AnimalData `yaml:"animal" cbor:"animal"`
	TailLength int        `yaml:"tail_length" cbor:"tail_length"`
}

func (d *DogData) base() *AnimalData { return &d.Animal }

func defineAnimal() (*object.Class, error) {
	return object.DefineRoot[AnimalData]("Animal").
		Method("makeSound", func(self *object.Instance, p *AnimalData, args object.Args) (any, error) {
			return fmt.Sprintf("Animal %s (age %d) makes a sound", p.Name, p.Age), nil
		}).
		Method("move", func(self *object.Instance, p *AnimalData, args object.Args) (any, error) {
			return fmt.Sprintf("Animal %s moves", p.Name), nil
		}).
		Method("birthday", func(self *object.Instance, p *AnimalData, args object.Args) (any, error) {
			p.Age++
			return fmt.Sprintf("%s is now %d", p.Name, p.Age), nil
		}).
		Method("metrics", func(self *object.Instance, p *AnimalData, args object.Args) (any, error) {
			return Metrics{"age": float64(p.Age)}, nil
		}).
		Build()
}

// defineDog overrides makeSound and metrics, inherits move and birthday.
func defineDog(animal *object.Class) (*object.Class, error) {
	return object.Define("Dog", animal, (*DogData).base).
		Method("makeSound", func(self *object.Instance, p *DogData, args object.Args) (any, error) {
			return fmt.Sprintf("Dog %s (age %d) barks: Woof!", p.Animal.Name, p.Animal.Age), nil
		}).
		Method("wagTail", func(self *object.Instance, p *DogData, args object.Args) (any, error) {
			return fmt.Sprintf("Dog %s wags tail (length: %d cm) happily", p.Animal.Name, p.TailLength), nil
		}).
		Method("grow", func(self *object.Instance, p *DogData, args object.Args) (any, error) {
			cm, err := args.FloatOr(0, 1)
			if err != nil {
				return nil, err
			}
			p.TailLength += int(cm)
			return fmt.Sprintf("Dog %s tail grows to %d cm", p.Animal.Name, p.TailLength), nil
		}).
		Method("metrics", func(self *object.Instance, p *DogData, args object.Args) (any, error) {
			return Metrics{
				"age":         float64(p.Animal.Age),
				"tail_length": float64(p.TailLength),
			}, nil
		}).
		Build()
}
