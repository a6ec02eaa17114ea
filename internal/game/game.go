package game

import (
	"math/rand"
	"sort"
)

// MinPlayers is the smallest roster a round can start with.
const MinPlayers = 4

type Role string

const (
	RoleWaiting  Role = "waiting"
	RoleNormal   Role = "normal"
	RoleImposter Role = "imposter"
)

// ImposterCount returns how many imposters a roster of the given size gets:
// one per four players, never fewer than one, never more than three.
func ImposterCount(playerCount int) int {
	n := playerCount / 4
	if n < 1 {
		n = 1
	}
	if n > 3 {
		n = 3
	}
	return n
}

// ChooseImposters picks ImposterCount(playerCount) distinct indices in
// [0, playerCount), uniformly without replacement. Callers must guarantee
// playerCount >= MinPlayers so the loop terminates.
func ChooseImposters(rng *rand.Rand, playerCount int) map[int]struct{} {
	target := ImposterCount(playerCount)
	chosen := make(map[int]struct{}, target)
	for len(chosen) < target {
		chosen[rng.Intn(playerCount)] = struct{}{}
	}
	return chosen
}

// Tally counts the votes and returns every name tied for the maximum count,
// sorted. Ties are all reported, never broken arbitrarily.
func Tally(votes map[string]string) []string {
	counts := make(map[string]int, len(votes))
	for _, voted := range votes {
		counts[voted]++
	}

	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}

	votedOut := make([]string, 0, 1)
	for name, c := range counts {
		if c == max {
			votedOut = append(votedOut, name)
		}
	}
	sort.Strings(votedOut)
	return votedOut
}
