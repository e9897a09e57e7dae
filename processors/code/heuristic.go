package code

import "strings"

// marker is one weighted signal for the heuristic fallback stage (spec
// §4.6 stage 2: "weighted keyword/shebang/pragma/comment-style patterns
// per language").
type marker struct {
	token  string
	weight float64
	unique bool // a language-unique token required to break close ties (C++ vs TypeScript)
}

// languageProfile is one candidate language's marker set for the
// heuristic fallback.
type languageProfile struct {
	name    string
	markers []marker
}

// heuristicProfiles is the closed set of languages the fallback stage
// recognizes. Weights are chosen so that a handful of characteristic
// hits clears the 0.6 acceptance bar (spec §4.6) without a single
// generic token (e.g. a brace) winning on its own.
var heuristicProfiles = []languageProfile{
	{
		name: "python",
		markers: []marker{
			{token: "#!/usr/bin/env python", weight: 0.5, unique: true},
			{token: "def ", weight: 0.25},
			{token: "import ", weight: 0.15},
			{token: "elif ", weight: 0.3, unique: true},
			{token: "self.", weight: 0.2},
			{token: ":\n", weight: 0.1},
		},
	},
	{
		name: "go",
		markers: []marker{
			{token: "package main", weight: 0.4, unique: true},
			{token: "func ", weight: 0.2},
			{token: ":=", weight: 0.2, unique: true},
			{token: "import (", weight: 0.2},
			{token: "fmt.", weight: 0.15},
		},
	},
	{
		name: "cpp",
		markers: []marker{
			{token: "#include", weight: 0.35, unique: true},
			{token: "std::", weight: 0.35, unique: true},
			{token: "template<", weight: 0.35, unique: true},
			{token: "template <", weight: 0.35, unique: true},
			{token: "::", weight: 0.2, unique: true},
			{token: "cout <<", weight: 0.2},
			{token: "#pragma", weight: 0.2},
		},
	},
	{
		name: "typescript",
		markers: []marker{
			{token: "interface ", weight: 0.35, unique: true},
			{token: "readonly ", weight: 0.3, unique: true},
			{token: ": string", weight: 0.25, unique: true},
			{token: ": number", weight: 0.25, unique: true},
			{token: "export const", weight: 0.2},
			{token: "export default", weight: 0.15},
			{token: "=>", weight: 0.1},
		},
	},
	{
		name: "java",
		markers: []marker{
			{token: "public static void main", weight: 0.5, unique: true},
			{token: "public class ", weight: 0.3, unique: true},
			{token: "System.out.println", weight: 0.3, unique: true},
			{token: "import java.", weight: 0.25, unique: true},
		},
	},
	{
		name: "rust",
		markers: []marker{
			{token: "fn main()", weight: 0.4, unique: true},
			{token: "let mut ", weight: 0.35, unique: true},
			{token: "->", weight: 0.1},
			{token: "impl ", weight: 0.2, unique: true},
			{token: "use std::", weight: 0.2, unique: true},
		},
	},
	{
		name: "bash",
		markers: []marker{
			{token: "#!/bin/bash", weight: 0.5, unique: true},
			{token: "#!/bin/sh", weight: 0.5, unique: true},
			{token: "echo ", weight: 0.15},
			{token: "fi\n", weight: 0.2},
			{token: "$(", weight: 0.1},
		},
	},
}

// heuristicDetect scores source against every known profile and returns
// the winner when it clears the 0.6 acceptance bar (spec §4.6 stage 2).
// Close ties between C++ and TypeScript are broken by requiring the
// winner to have at least one unique-marker hit and rejecting the result
// when another candidate with a unique-marker hit scores at least as high.
func heuristicDetect(source string) (string, float64, bool) {
	type scored struct {
		name       string
		score      float64
		uniqueHits int
	}

	var results []scored
	for _, profile := range heuristicProfiles {
		var score float64
		var uniqueHits int
		for _, m := range profile.markers {
			if strings.Contains(source, m.token) {
				score += m.weight
				if m.unique {
					uniqueHits++
				}
			}
		}
		if score > 1 {
			score = 1
		}
		if score > 0 {
			results = append(results, scored{name: profile.name, score: score, uniqueHits: uniqueHits})
		}
	}

	if len(results) == 0 {
		return "", 0, false
	}

	best := results[0]
	for _, r := range results[1:] {
		if r.score > best.score {
			best = r
		}
	}
	if best.score < 0.6 {
		return "", 0, false
	}

	// Disambiguate C++ vs TypeScript: both use angle brackets and curly
	// braces, so require the winner to actually carry a language-unique
	// marker rather than winning on generic score alone (spec §4.6).
	if best.uniqueHits == 0 {
		return "", 0, false
	}
	for _, r := range results {
		if r.name != best.name && r.score >= best.score && r.uniqueHits > 0 {
			return "", 0, false // genuine ambiguity between two well-supported candidates
		}
	}

	return best.name, best.score, true
}
