package user

import (
	"fmt"
	"math/rand"
)

var adjectives = []string{
	"Cool", "Mighty", "Brave", "Clever", "Happy", "Calm", "Eager",
	"Gentle", "Kind", "Jolly", "Swift", "Bold", "Fierce", "Wise",
	"Valiant", "Bright", "Noble", "Zany", "Epic",
}

var nouns = []string{
	"Tiger", "Eagle", "Panda", "Shark", "Lion", "Wolf", "Dragon",
	"Phoenix", "Hawk", "Bear", "Falcon", "Panther", "Griffin", "Lynx",
	"Orca", "Cobra", "Jaguar", "Kraken", "Pegasus", "Stallion",
}

// RandomName generates a fallback name like "BraveTiger42" for users
// who connect without one or whose name is already taken.
func RandomName() string {
	return fmt.Sprintf("%s%s%d",
		adjectives[rand.Intn(len(adjectives))],
		nouns[rand.Intn(len(nouns))],
		1+rand.Intn(9999))
}
