// Package models defines the application classes driven through the
// object runtime: the Animal/Dog example, spectral annealing, stability
// zones and two airframe controllers.
//
// Every class with a constructor expects a *Env as its first argument.
// Constructors are not chained, so a derived constructor binds the
// collaborators of its parent's payload as well.
package models
