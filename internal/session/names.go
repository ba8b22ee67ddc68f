package session

import (
	"fmt"
	"math/rand"
)

var adjectives = []string{
	"Happy", "Sleepy", "Grumpy", "Sneezy", "Dopey",
	"Bashful", "Doc", "Swift", "Silent", "Brave",
}

var animals = []string{
	"Badger", "Fox", "Owl", "Bear", "Raccoon",
	"Eagle", "Wolf", "Tiger", "Lion", "Hawk",
}

// GenerateUsername produces a throwaway two-word pseudonym for joiners who
// did not pick a name. Collisions are permitted; names are not identities.
func GenerateUsername() string {
	adj := adjectives[rand.Intn(len(adjectives))]
	animal := animals[rand.Intn(len(animals))]
	return fmt.Sprintf("Anonymous %s %s", adj, animal)
}
