package experiment

func animalsScenario() *Scenario {
	return &Scenario{
		Name:        "animals",
		Description: "Dog overrides makeSound, inherits move from Animal",
		Instances: []InstanceSpec{
			{Name: "rex", Class: "Dog"},
			{Name: "generic", Class: "Animal"},
		},
		Steps: []StepSpec{
			{Instance: "rex", Method: "makeSound"},
			{Instance: "rex", Method: "move"},
			{Instance: "rex", Method: "wagTail"},
			{Instance: "rex", Method: "grow", Args: []float64{5}},
			{Instance: "rex", Method: "birthday", Repeat: 2},
			{Instance: "generic", Method: "makeSound"},
			{Instance: "generic", Method: "wagTail", ExpectError: "unknown method"},
		},
	}
}

func annealingScenario() *Scenario {
	return &Scenario{
		Name:        "annealing",
		Description: "Classic and quantum spectral annealing toward 95%",
		Instances: []InstanceSpec{
			{Name: "classic", Class: "SpectralAnnealing"},
			{Name: "quantum", Class: "QuantumAnnealing"},
		},
		Steps: []StepSpec{
			{Instance: "classic", Method: "fetchSpectralData", ExpectError: "not active"},
			{Instance: "classic", Method: "initializeAnnealing"},
			{Instance: "classic", Method: "fetchSpectralData"},
			{Instance: "classic", Method: "calculateAnnealing", Args: []float64{95}, Repeat: 10},
			{Instance: "classic", Method: "reportSpectralStatus"},
			{Instance: "quantum", Method: "initializeAnnealing"},
			{Instance: "quantum", Method: "fetchSpectralData"},
			{Instance: "quantum", Method: "calculateAnnealing", Args: []float64{95}, Repeat: 10},
			{Instance: "quantum", Method: "reportSpectralStatus"},
			{Instance: "quantum", Method: "shutdown"},
		},
	}
}

func zonesScenario() *Scenario {
	return &Scenario{
		Name:        "zones",
		Description: "Classic and quantum stability zones under fluctuation",
		Instances: []InstanceSpec{
			{Name: "classic", Class: "StabilityZone"},
			{Name: "quantum", Class: "QuantumZone"},
		},
		Steps: []StepSpec{
			{Instance: "classic", Method: "initializeZone"},
			{Instance: "classic", Method: "monitorStability", Repeat: 5},
			{Instance: "classic", Method: "applyStabilization", Args: []float64{95}, Repeat: 5},
			{Instance: "classic", Method: "reportZoneStatus"},
			{Instance: "quantum", Method: "initializeZone"},
			{Instance: "quantum", Method: "monitorStability", Repeat: 5},
			{Instance: "quantum", Method: "applyStabilization", Args: []float64{95}, Repeat: 5},
			{Instance: "quantum", Method: "reportZoneStatus"},
			{Instance: "classic", Method: "shutdown"},
			{Instance: "classic", Method: "monitorStability", ExpectError: "not active"},
		},
	}
}

func glideScenario() *Scenario {
	return &Scenario{
		Name:        "glide",
		Description: "Deploy wings, spin down rotors and glide until the exit altitude",
		Instances: []InstanceSpec{
			{Name: "glider", Class: "Glide"},
		},
		Steps: []StepSpec{
			{Instance: "glider", Method: "initialize"},
			{Instance: "glider", Method: "deployWings"},
			{Instance: "glider", Method: "spinDownRotors"},
			{Instance: "glider", Method: "glideStep", Repeat: 80},
			{Instance: "glider", Method: "status"},
			{Instance: "glider", Method: "standby"},
		},
	}
}

func wingsScenario() *Scenario {
	return &Scenario{
		Name:        "wings",
		Description: "Descend from cruise, drop bait, then climb out in VTOL",
		Instances: []InstanceSpec{
			{Name: "flapper", Class: "WingFlapper"},
		},
		Steps: []StepSpec{
			{Instance: "flapper", Method: "initialize"},
			{Instance: "flapper", Method: "armBaitDrop"},
			{Instance: "flapper", Method: "controlStep", Repeat: 70},
			{Instance: "flapper", Method: "throttle", Args: []float64{1}},
			{Instance: "flapper", Method: "controlStep", Repeat: 20},
			{Instance: "flapper", Method: "status"},
			{Instance: "flapper", Method: "standby"},
		},
	}
}
