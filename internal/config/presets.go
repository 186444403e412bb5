package config

var presets = map[string]map[string]*Config{
	"damped-cavity": {
		"quick": {
			Scenario: "damped-cavity",
			Solver:   "euler-maruyama",
			Method:   "homodyne",
			NTraj:    50,
			NSub:     10,
			Duration: 2.0,
			Steps:    40,
		},
		"fine": {
			Scenario: "damped-cavity",
			Solver:   "taylor1.5",
			Method:   "homodyne",
			NTraj:    500,
			NSub:     50,
			Duration: 5.0,
			Steps:    200,
		},
		"heterodyne": {
			Scenario: "damped-cavity",
			Solver:   "platen",
			Method:   "heterodyne",
			NTraj:    300,
			NSub:     25,
			Duration: 5.0,
			Steps:    100,
		},
	},
	"relaxing-qubit": {
		"quick": {
			Scenario: "relaxing-qubit",
			Solver:   "platen",
			Method:   "homodyne",
			NTraj:    100,
			NSub:     15,
			Duration: 4.0,
			Steps:    80,
		},
		"counting": {
			Scenario: "relaxing-qubit",
			Method:   "photocurrent",
			NTraj:    400,
			NSub:     40,
			Duration: 8.0,
			Steps:    80,
		},
	},
	"driven-qubit": {
		"rabi": {
			Scenario: "driven-qubit",
			Solver:   "milstein",
			Method:   "homodyne",
			NTraj:    200,
			NSub:     30,
			Duration: 6.0,
			Steps:    120,
		},
	},
}

func GetPreset(scenario, name string) *Config {
	group, ok := presets[scenario]
	if !ok {
		return nil
	}
	cfg, ok := group[name]
	if !ok {
		return nil
	}
	out := *cfg
	return &out
}

func ListPresets(scenario string) []string {
	group, ok := presets[scenario]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(group))
	for name := range group {
		names = append(names, name)
	}
	return names
}
