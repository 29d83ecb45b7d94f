package concepts

import "regexp"

// Defaults returns the built-in concept set used when no valid concepts are
// configured. Patterns here are written as final regexes and compiled
// directly, without the term normalization user definitions go through.
func Defaults() []Concept {
	defs := []struct{ name, pattern string }{
		{"AI", `\bAI\b|Artificial Intelligence|GPT|Claude|LLM`},
		{"ATLAS", `\bATLAS\b|A_T_L_A_S`},
		{"MACO", `\bMACO\b|MACAO|Multiple Ant Colony`},
		{"Server", `Server|RCON|Admin|Discord Bot`},
		{"Framework", `Framework|Structure|System`},
		{"Python", `Python|Script|Code|Programming`},
		{"Squad", `\bSquad\b|Server|Gaming`},
		{"Emergent", `Emergent|Resonance|Cognition`},
		{"Optimization", `Optimization|Optimizer|Performance`},
		{"Quantum", `Quantum|Q-`},
		{"GPU", `GPU|RTX|Graphics`},
		{"Mental Health", `Mental Health|Depression|Anxiety|Support`},
		{"Neurodiversity", `Neuro|ADHD|Autism`},
	}
	out := make([]Concept, len(defs))
	for i, d := range defs {
		out[i] = Concept{Name: d.name, Pattern: regexp.MustCompile("(?i)" + d.pattern)}
	}
	return out
}
